package processor

import (
	"context"
	"time"

	"ats-scorer/internal/parser"
	"ats-scorer/internal/types"

	"github.com/cloudwego/eino/components/embedding"
)

// TextEmbedder 句向量模型, 启动时构造一次, 之后只读
type TextEmbedder interface {
	embedding.Embedder
}

// ScoreCache 语义分数缓存, 由评分器持有
type ScoreCache interface {
	Get(ctx context.Context, key string) (score float64, found bool, err error)
	Set(ctx context.Context, key string, score float64, ttl time.Duration) error
}

// TextExtractor 文档文本提取, 失败时返回不可读标记而不是错误
type TextExtractor interface {
	Extract(ctx context.Context, doc types.Document) parser.Extraction
}

// LanguageChecker 判断文本是否为英文
type LanguageChecker interface {
	IsEnglish(text string) bool
}

// ResultPublisher 评分完成后的事件发布
type ResultPublisher interface {
	PublishScore(ctx context.Context, event types.ScoreComputedEvent) error
}

// ScoreRequest 一次评分请求
type ScoreRequest struct {
	RequestID      string
	Resume         *types.Document
	JobDescription *types.Document
}
