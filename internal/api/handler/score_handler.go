package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"ats-scorer/internal/processor"
	"ats-scorer/internal/tracing"
	"ats-scorer/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// 表单字段名
const (
	FieldResume         = "resume"
	FieldJobDescription = "job_description"
)

// MsgFileTooLarge 上传文件超过大小限制
const MsgFileTooLarge = "File exceeds the maximum upload size."

var errFileTooLarge = errors.New("file too large")

// Scorer 评分服务
type Scorer interface {
	Score(ctx context.Context, req processor.ScoreRequest) (*types.ScoringResult, error)
	Stats() processor.CacheStats
}

// ScoreHandler 处理 ATS 评分请求
type ScoreHandler struct {
	scorer         Scorer
	maxUploadBytes int64
	logger         *zerolog.Logger
}

// NewScoreHandler 创建评分处理器; maxUploadBytes <= 0 表示不限制单个文件大小
func NewScoreHandler(scorer Scorer, maxUploadBytes int64, logger *zerolog.Logger) *ScoreHandler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ScoreHandler{
		scorer:         scorer,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// HandleScore 接收 multipart 表单中的简历和职位描述, 返回评分结果
func (h *ScoreHandler) HandleScore(c context.Context, ctx *app.RequestContext) {
	requestID := newRequestID()
	ctx.Response.Header.Set("X-Request-ID", requestID)
	span := trace.SpanFromContext(c)
	span.SetAttributes(attribute.String("request_id", requestID))

	resume, err := h.readDocument(ctx, FieldResume)
	if err != nil {
		h.writeUploadError(span, ctx, requestID, err)
		return
	}
	job, err := h.readDocument(ctx, FieldJobDescription)
	if err != nil {
		h.writeUploadError(span, ctx, requestID, err)
		return
	}

	result, err := h.scorer.Score(c, processor.ScoreRequest{
		RequestID:      requestID,
		Resume:         resume,
		JobDescription: job,
	})
	if err != nil {
		status := consts.StatusInternalServerError
		if processor.IsClientError(err) {
			status = consts.StatusBadRequest
			h.logger.Info().Err(err).Str("request_id", requestID).Msg("评分请求被拒绝")
		} else {
			h.logger.Error().Err(err).Str("request_id", requestID).Msg("评分处理失败")
		}
		tracing.RecordHTTPError(span, err, status)
		ctx.JSON(status, types.ErrorResponse{Error: processor.UserMessage(err)})
		return
	}

	stats := h.scorer.Stats()
	h.logger.Debug().
		Str("request_id", requestID).
		Int64("cache_hits", stats.Hits).
		Int64("cache_misses", stats.Misses).
		Msg("分数缓存统计")

	ctx.JSON(consts.StatusOK, result)
}

// HandleHealth 健康检查, 附带缓存统计
func (h *ScoreHandler) HandleHealth(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, utils.H{
		"status": "ok",
		"cache":  h.scorer.Stats(),
	})
}

// readDocument 读取表单文件; 字段缺失时返回 nil 文档, 由评分流程按格式错误处理
func (h *ScoreHandler) readDocument(ctx *app.RequestContext, field string) (*types.Document, error) {
	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		h.logger.Debug().Err(err).Str("field", field).Msg("表单文件缺失")
		return nil, nil
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return nil, fmt.Errorf("%w: %s %d 字节", errFileTooLarge, field, fileHeader.Size)
	}

	content, err := readFileHeader(fileHeader)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件 %s 失败: %w", field, err)
	}
	return &types.Document{Filename: fileHeader.Filename, Content: content}, nil
}

func readFileHeader(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (h *ScoreHandler) writeUploadError(span trace.Span, ctx *app.RequestContext, requestID string, err error) {
	if errors.Is(err, errFileTooLarge) {
		h.logger.Info().Err(err).Str("request_id", requestID).Msg("上传文件过大")
		tracing.RecordHTTPError(span, err, consts.StatusRequestEntityTooLarge)
		ctx.JSON(consts.StatusRequestEntityTooLarge, types.ErrorResponse{Error: MsgFileTooLarge})
		return
	}
	h.logger.Error().Err(err).Str("request_id", requestID).Msg("读取上传文件失败")
	tracing.RecordHTTPError(span, err, consts.StatusInternalServerError)
	ctx.JSON(consts.StatusInternalServerError, types.ErrorResponse{Error: processor.MsgProcessingFailure})
}

// newRequestID 生成 UUIDv7, 失败时退回 UUIDv4
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Must(uuid.NewV4()).String()
	}
	return id.String()
}
