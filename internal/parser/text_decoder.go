package parser

import (
	"context"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrInvalidUTF8 纯文本文件不是合法的 UTF-8
var ErrInvalidUTF8 = errors.New("文本不是合法的 UTF-8 编码")

// PlainTextDecoder 按 UTF-8 严格解码 TXT 文件, 去掉开头的 BOM
type PlainTextDecoder struct{}

// ExtractText 实现 FormatExtractor
func (PlainTextDecoder) ExtractText(_ context.Context, data []byte, _ string) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
