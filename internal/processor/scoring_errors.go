package processor

import (
	"errors"
	"fmt"
)

// 评分流程的四类终止错误
var (
	ErrInvalidFormat       = errors.New("invalid file format")
	ErrEmptyContent        = errors.New("empty resume or job description")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrProcessingFailure   = errors.New("processing failure")
)

// 返回给调用方的提示文案
const (
	MsgInvalidFormat       = "Invalid file format. Only PDF, DOCX, and TXT files are allowed."
	MsgEmptyContent        = "Empty resume or job description. Please check the files and try again."
	MsgUnsupportedLanguage = "Only English text is supported."
	MsgProcessingFailure   = "An error occurred while processing the files. Please try again."
)

// ScoringError 包含详细错误信息的自定义错误
type ScoringError struct {
	Kind   error
	Op     string
	Detail string
	Cause  error
}

func (e *ScoringError) Error() string {
	msg := fmt.Sprintf("%s (操作:%s)", e.Kind, e.Op)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ScoringError) Unwrap() error {
	return e.Kind
}

// Is 实现 errors.Is 接口, 同时匹配错误类别和底层原因
func (e *ScoringError) Is(target error) bool {
	if errors.Is(e.Kind, target) {
		return true
	}
	return e.Cause != nil && errors.Is(e.Cause, target)
}

// 错误构造函数
func newInvalidFormatError(detail string) error {
	return &ScoringError{Kind: ErrInvalidFormat, Op: "validate", Detail: detail}
}

func newEmptyContentError(detail string, cause error) error {
	return &ScoringError{Kind: ErrEmptyContent, Op: "extract", Detail: detail, Cause: cause}
}

func newUnsupportedLanguageError(detail string) error {
	return &ScoringError{Kind: ErrUnsupportedLanguage, Op: "language", Detail: detail}
}

func newProcessingError(op string, cause error) error {
	return &ScoringError{Kind: ErrProcessingFailure, Op: op, Cause: cause}
}

// IsClientError 是否属于调用方输入错误 (对应 4xx)
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrUnsupportedLanguage)
}

// UserMessage 返回可直接展示给用户的错误文案
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return MsgInvalidFormat
	case errors.Is(err, ErrEmptyContent):
		return MsgEmptyContent
	case errors.Is(err, ErrUnsupportedLanguage):
		return MsgUnsupportedLanguage
	default:
		return MsgProcessingFailure
	}
}
