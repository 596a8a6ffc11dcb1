package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ats-scorer/internal/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("storage")

// RedisScoreCache 基于 Redis 的分数缓存, 依赖 Redis 自身的过期机制
type RedisScoreCache struct {
	redis *Redis
}

// NewRedisScoreCache 创建 Redis 分数缓存
func NewRedisScoreCache(r *Redis) *RedisScoreCache {
	return &RedisScoreCache{redis: r}
}

// Get 实现 ScoreCache
func (c *RedisScoreCache) Get(ctx context.Context, key string) (float64, bool, error) {
	ctx, span := startCacheSpan(ctx, "RedisScoreCache.Get", key)
	defer span.End()

	raw, err := c.redis.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return 0, false, nil
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return 0, false, fmt.Errorf("读取缓存分数失败: %w", err)
	}
	score, found, err := parseScore(raw)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
	}
	span.SetAttributes(attribute.Bool("cache.hit", found))
	return score, found, err
}

// GetWithTTL 返回分数及剩余有效期
func (c *RedisScoreCache) GetWithTTL(ctx context.Context, key string) (float64, time.Duration, bool, error) {
	ctx, span := startCacheSpan(ctx, "RedisScoreCache.GetWithTTL", key)
	defer span.End()

	raw, ttl, err := c.redis.GetWithTTL(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return 0, 0, false, nil
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return 0, 0, false, fmt.Errorf("读取缓存分数失败: %w", err)
	}
	score, found, err := parseScore(raw)
	return score, ttl, found, err
}

// Set 实现 ScoreCache
func (c *RedisScoreCache) Set(ctx context.Context, key string, score float64, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, span := startCacheSpan(ctx, "RedisScoreCache.Set", key)
	defer span.End()

	if err := c.redis.Set(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), ttl); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入缓存分数失败: %w", err)
	}
	return nil
}

func startCacheSpan(ctx context.Context, name, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("redis.key", tracing.SafeRedisKey(key)),
	))
}

func parseScore(raw string) (float64, bool, error) {
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("缓存分数格式错误 %q: %w", raw, err)
	}
	return score, true, nil
}
