package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

// LedongthucPDFExtractor 逐页提取 PDF 文本, 单页失败时该页记为空串
type LedongthucPDFExtractor struct {
	logger *zerolog.Logger
}

// NewLedongthucPDFExtractor 创建 PDF 提取器
func NewLedongthucPDFExtractor(logger *zerolog.Logger) *LedongthucPDFExtractor {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &LedongthucPDFExtractor{logger: logger}
}

// ExtractText 各页文本以单个空格连接
func (e *LedongthucPDFExtractor) ExtractText(_ context.Context, data []byte, uri string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("打开PDF失败 %s: %w", uri, err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		pages = append(pages, e.pageText(reader, i, uri))
	}
	return strings.Join(pages, " "), nil
}

func (e *LedongthucPDFExtractor) pageText(reader *pdf.Reader, index int, uri string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn().Str("uri", uri).Int("page", index).Interface("panic", r).Msg("PDF页面解析异常, 按空页处理")
			text = ""
		}
	}()

	page := reader.Page(index)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		e.logger.Warn().Err(err).Str("uri", uri).Int("page", index).Msg("PDF页面文本提取失败, 按空页处理")
		return ""
	}
	return content
}
