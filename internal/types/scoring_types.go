package types

import (
	"path/filepath"
	"strings"
	"time"
)

// Document 一次请求中上传的原始文档, 提取文本后即丢弃
type Document struct {
	Filename  string // 原始文件名
	Content   []byte // 文件字节
	Extension string // 小写扩展名, 不含点; 为空时由文件名推断
}

// ScoringResult 评分结果, 每个请求生成一次, 不做持久化
type ScoringResult struct {
	RequestID       string   `json:"request_id,omitempty"`
	Score           float64  `json:"ats_score"`
	FoundKeywords   []string `json:"keywords_found"`
	MissingKeywords []string `json:"missing_keywords"`
	Tips            []string `json:"improvement_tips"`
}

// ScoreComputedEvent 评分完成后发布到消息队列的事件
type ScoreComputedEvent struct {
	RequestID       string    `json:"request_id"`
	Fingerprint     string    `json:"fingerprint"`
	Score           float64   `json:"ats_score"`
	FoundCount      int       `json:"found_count"`
	MissingKeywords []string  `json:"missing_keywords"`
	CacheHit        bool      `json:"cache_hit"`
	ComputedAt      time.Time `json:"computed_at"`
}

// ErrorResponse 对外暴露的错误结构
type ErrorResponse struct {
	Error string `json:"error"`
}

// Ext 返回文档的小写扩展名 (不含点)
func (d Document) Ext() string {
	if d.Extension != "" {
		return strings.ToLower(strings.TrimPrefix(d.Extension, "."))
	}
	return ExtensionOf(d.Filename)
}

// ExtensionOf 从文件名推断小写扩展名, 无扩展名时返回空串
func ExtensionOf(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
