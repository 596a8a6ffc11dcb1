package ratelimit

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/embedding"
)

// RateLimitedEmbedder 对句向量模型的调用进行限流的代理
type RateLimitedEmbedder struct {
	original    embedding.Embedder
	rateLimiter *TokenBucket
}

// NewRateLimitedEmbedder 创建限流代理, 容量设为QPM的一半以允许一定的突发流量
func NewRateLimitedEmbedder(original embedding.Embedder, qpm int) *RateLimitedEmbedder {
	return &RateLimitedEmbedder{
		original:    original,
		rateLimiter: NewTokenBucket(qpm, qpm/2),
	}
}

// WithRetryPolicy 设置重试策略
func (rl *RateLimitedEmbedder) WithRetryPolicy(waitTime time.Duration, maxRetries int) *RateLimitedEmbedder {
	rl.rateLimiter.WithRetryPolicy(waitTime, maxRetries)
	return rl
}

// EmbedStrings 代理 EmbedStrings, 增加限流和重试逻辑
func (rl *RateLimitedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	var vectors [][]float64
	err := rl.rateLimiter.RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = rl.original.EmbedStrings(ctx, texts, opts...)
		return embedErr
	})
	return vectors, err
}
