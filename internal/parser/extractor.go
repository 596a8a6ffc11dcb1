package parser

import (
	"context"
	"fmt"

	"ats-scorer/internal/constants"
	"ats-scorer/internal/types"

	"github.com/rs/zerolog"
)

// FormatExtractor 单一文件格式的文本提取器
type FormatExtractor interface {
	ExtractText(ctx context.Context, data []byte, uri string) (string, error)
}

// Extraction 文本提取结果: 要么是文本, 要么被标记为不可读
// 不可读与空文本在下游统一视为空内容
type Extraction struct {
	Text       string
	Unreadable bool
	Cause      error
}

// Empty 提取结果是否不可用
func (e Extraction) Empty() bool {
	return e.Unreadable || e.Text == ""
}

func unreadable(cause error) Extraction {
	return Extraction{Unreadable: true, Cause: cause}
}

// DocumentExtractor 按扩展名分派到 PDF / DOCX / TXT 提取器
// 任何提取失败都被吸收为 Unreadable, 不向调用方传播
type DocumentExtractor struct {
	pdf    FormatExtractor
	docx   FormatExtractor
	txt    FormatExtractor
	logger *zerolog.Logger
}

// ExtractorOption DocumentExtractor 的配置选项
type ExtractorOption func(*DocumentExtractor)

// WithExtractorLogger 配置日志记录器
func WithExtractorLogger(logger *zerolog.Logger) ExtractorOption {
	return func(d *DocumentExtractor) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithPDFExtractor 替换默认的 PDF 提取器
func WithPDFExtractor(fe FormatExtractor) ExtractorOption {
	return func(d *DocumentExtractor) {
		if fe != nil {
			d.pdf = fe
		}
	}
}

// WithDOCXExtractor 替换默认的 DOCX 提取器
func WithDOCXExtractor(fe FormatExtractor) ExtractorOption {
	return func(d *DocumentExtractor) {
		if fe != nil {
			d.docx = fe
		}
	}
}

// NewDocumentExtractor 创建文档提取器, 默认使用 ledongthuc PDF 引擎
func NewDocumentExtractor(options ...ExtractorOption) *DocumentExtractor {
	nop := zerolog.Nop()
	d := &DocumentExtractor{
		logger: &nop,
	}
	for _, option := range options {
		option(d)
	}
	if d.pdf == nil {
		d.pdf = NewLedongthucPDFExtractor(d.logger)
	}
	if d.docx == nil {
		d.docx = NewDocxExtractor()
	}
	if d.txt == nil {
		d.txt = PlainTextDecoder{}
	}
	return d
}

// Extract 提取文档文本; 不支持的扩展名返回空文本
func (d *DocumentExtractor) Extract(ctx context.Context, doc types.Document) (result Extraction) {
	ext := doc.Ext()

	var fe FormatExtractor
	var label string
	switch ext {
	case constants.ExtPDF:
		fe, label = d.pdf, "PDF"
	case constants.ExtDOCX:
		fe, label = d.docx, "DOCX"
	case constants.ExtTXT:
		fe, label = d.txt, "TXT"
	default:
		d.logger.Debug().Str("filename", doc.Filename).Str("ext", ext).Msg("不支持的扩展名, 返回空文本")
		return Extraction{}
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%s 解析器 panic: %v", label, r)
			d.logger.Error().Err(err).Str("filename", doc.Filename).Msgf("Error reading %s", label)
			result = unreadable(err)
		}
	}()

	text, err := fe.ExtractText(ctx, doc.Content, doc.Filename)
	if err != nil {
		d.logger.Error().Err(err).Str("filename", doc.Filename).Msgf("Error reading %s", label)
		return unreadable(err)
	}

	d.logger.Debug().
		Str("filename", doc.Filename).
		Str("format", label).
		Int("chars", len(text)).
		Msg("文本提取完成")
	return Extraction{Text: text}
}

// NewPDFExtractor 按配置选择 PDF 解析引擎
func NewPDFExtractor(ctx context.Context, engine string, logger *zerolog.Logger) (FormatExtractor, error) {
	switch engine {
	case "", constants.PDFEngineLedongthuc:
		return NewLedongthucPDFExtractor(logger), nil
	case constants.PDFEngineEino:
		return NewEinoPDFExtractor(ctx, WithEinoLogger(logger))
	default:
		return nil, fmt.Errorf("不支持的PDF解析引擎: %s", engine)
	}
}
