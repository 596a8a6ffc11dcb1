package processor

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"ats-scorer/internal/constants"
	"ats-scorer/internal/keywords"
	"ats-scorer/internal/parser"
	"ats-scorer/internal/tracing"
	"ats-scorer/internal/types"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("processor")

// ScoringPipeline 串联提取、规范化、语言检查、语义评分、关键词匹配和建议生成
// 任一阶段失败即终止, 不返回部分结果
type ScoringPipeline struct {
	extractor TextExtractor
	language  LanguageChecker
	matcher   *keywords.Matcher
	scorer    *SimilarityScorer
	publisher ResultPublisher

	tipThreshold float64
	maxTips      int
	now          func() time.Time
	logger       *zerolog.Logger
}

// NewScoringPipeline 创建评分流水线; matcher 为 nil 时使用内置词表
func NewScoringPipeline(extractor TextExtractor, language LanguageChecker, matcher *keywords.Matcher, scorer *SimilarityScorer, options ...PipelineOption) *ScoringPipeline {
	nop := zerolog.Nop()
	if matcher == nil {
		matcher = keywords.NewMatcher(nil)
	}
	p := &ScoringPipeline{
		extractor:    extractor,
		language:     language,
		matcher:      matcher,
		scorer:       scorer,
		tipThreshold: constants.ScoreTipThreshold,
		maxTips:      constants.MaxKeywordTips,
		now:          time.Now,
		logger:       &nop,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Score 对一份简历和一份职位描述评分
func (p *ScoringPipeline) Score(ctx context.Context, req ScoreRequest) (result *types.ScoringResult, err error) {
	ctx, span := tracer.Start(ctx, "ScoringPipeline.Score",
		trace.WithAttributes(attribute.String("request.id", req.RequestID)))
	defer span.End()

	log := p.logger.With().Str("request_id", req.RequestID).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("评分流程发生panic")
			result = nil
			err = newProcessingError("panic", fmt.Errorf("%v", r))
		}
		if err != nil {
			tracing.RecordError(span, err, errorTypeOf(err))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}()

	// 1. 扩展名校验
	if err := validateDocuments(req.Resume, req.JobDescription); err != nil {
		log.Info().Err(err).Msg("文件格式不受支持")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("resume.filename", tracing.SafeFilename(req.Resume.Filename)),
		attribute.String("job.filename", tracing.SafeFilename(req.JobDescription.Filename)),
	)

	// 2. 提取并规范化
	resumeText, jobText, err := p.extractBoth(ctx, req.Resume, req.JobDescription)
	if err != nil {
		log.Info().Err(err).Msg("文档内容为空")
		return nil, err
	}

	// 3. 语言检查
	if err := p.checkLanguage(ctx, resumeText, jobText); err != nil {
		log.Info().Err(err).Msg("文档语言不受支持")
		return nil, err
	}

	// 4. 语义评分
	outcome, err := p.semanticScore(ctx, resumeText, jobText)
	if err != nil {
		log.Error().Err(err).Msg("语义评分失败")
		return nil, newProcessingError("similarity", err)
	}

	// 5. 关键词匹配
	found, missing := p.matchKeywords(ctx, resumeText, jobText)

	// 6. 改进建议
	tips := []string{}
	if outcome.Score < p.tipThreshold {
		tips = GenerateTips(missing, p.maxTips)
	}

	result = &types.ScoringResult{
		RequestID:       req.RequestID,
		Score:           outcome.Score,
		FoundKeywords:   found,
		MissingKeywords: missing,
		Tips:            tips,
	}

	span.SetAttributes(
		attribute.Float64("score", outcome.Score),
		attribute.Bool("cache.hit", outcome.CacheHit),
		attribute.Int("keywords.found", len(found)),
		attribute.Int("keywords.missing", len(missing)),
	)
	log.Info().
		Float64("score", outcome.Score).
		Bool("cache_hit", outcome.CacheHit).
		Int("found", len(found)).
		Int("missing", len(missing)).
		Msg("评分完成")

	p.publish(ctx, req.RequestID, outcome, result)
	return result, nil
}

func validateDocuments(docs ...*types.Document) error {
	for _, doc := range docs {
		if doc == nil {
			return newInvalidFormatError("缺少上传文件")
		}
		if ext := doc.Ext(); !constants.AllowedExtensions[ext] {
			return newInvalidFormatError(fmt.Sprintf("扩展名 %q 不受支持", ext))
		}
	}
	return nil
}

func (p *ScoringPipeline) extractBoth(ctx context.Context, resume, job *types.Document) (string, string, error) {
	ctx, span := tracer.Start(ctx, "ExtractDocuments")
	defer span.End()

	resumeText, err := p.extractNormalized(ctx, "resume", resume)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return "", "", err
	}
	jobText, err := p.extractNormalized(ctx, "job_description", job)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return "", "", err
	}
	span.SetAttributes(
		attribute.Int("resume.chars", len(resumeText)),
		attribute.Int("job.chars", len(jobText)),
	)
	return resumeText, jobText, nil
}

func (p *ScoringPipeline) extractNormalized(ctx context.Context, field string, doc *types.Document) (string, error) {
	extraction := p.extractor.Extract(ctx, *doc)
	if extraction.Empty() {
		return "", newEmptyContentError(field, extraction.Cause)
	}
	// 只含数字、符号或非拉丁字符的文本规范化后为空
	text := parser.NormalizeText(extraction.Text)
	if text == "" {
		return "", newEmptyContentError(field, nil)
	}
	return text, nil
}

func (p *ScoringPipeline) checkLanguage(ctx context.Context, resumeText, jobText string) error {
	_, span := tracer.Start(ctx, "CheckLanguage")
	defer span.End()

	if !p.language.IsEnglish(resumeText) {
		err := newUnsupportedLanguageError("resume")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return err
	}
	if !p.language.IsEnglish(jobText) {
		err := newUnsupportedLanguageError("job_description")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return err
	}
	return nil
}

func (p *ScoringPipeline) semanticScore(ctx context.Context, resumeText, jobText string) (SimilarityOutcome, error) {
	ctx, span := tracer.Start(ctx, "SemanticScore")
	defer span.End()

	outcome, err := p.scorer.Evaluate(ctx, resumeText, jobText)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeEmbedding)
		return SimilarityOutcome{}, err
	}
	span.SetAttributes(
		attribute.String("fingerprint", outcome.Fingerprint),
		attribute.Bool("cache.hit", outcome.CacheHit),
	)
	return outcome, nil
}

func (p *ScoringPipeline) matchKeywords(ctx context.Context, resumeText, jobText string) ([]string, []string) {
	_, span := tracer.Start(ctx, "MatchKeywords")
	defer span.End()
	return p.matcher.Compare(resumeText, jobText)
}

// publish 发布评分事件, 失败只记录日志
func (p *ScoringPipeline) publish(ctx context.Context, requestID string, outcome SimilarityOutcome, result *types.ScoringResult) {
	if p.publisher == nil {
		return
	}
	event := types.ScoreComputedEvent{
		RequestID:       requestID,
		Fingerprint:     outcome.Fingerprint,
		Score:           result.Score,
		FoundCount:      len(result.FoundKeywords),
		MissingKeywords: result.MissingKeywords,
		CacheHit:        outcome.CacheHit,
		ComputedAt:      p.now(),
	}
	if err := p.publisher.PublishScore(context.WithoutCancel(ctx), event); err != nil {
		p.logger.Warn().Err(err).Str("request_id", requestID).Msg("发布评分事件失败")
	}
}

// Stats 返回语义分数缓存的命中统计
func (p *ScoringPipeline) Stats() CacheStats {
	return p.scorer.Stats()
}

func errorTypeOf(err error) tracing.ErrorType {
	if IsClientError(err) {
		return tracing.ErrorTypeValidation
	}
	return tracing.ErrorTypeInternal
}
