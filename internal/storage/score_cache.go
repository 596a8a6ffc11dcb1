package storage

import (
	"context"
	"fmt"
	"time"

	"ats-scorer/internal/config"
	"ats-scorer/internal/constants"

	"github.com/rs/zerolog"
)

// ScoreCache 语义分数缓存, 值为 0-100 的分数
// found 为 false 表示未命中或已过期
type ScoreCache interface {
	Get(ctx context.Context, key string) (score float64, found bool, err error)
	Set(ctx context.Context, key string, score float64, ttl time.Duration) error
}

// ttlScoreCache 可返回剩余有效期的缓存, 作为二级缓存时用于回填一级缓存
type ttlScoreCache interface {
	ScoreCache
	GetWithTTL(ctx context.Context, key string) (score float64, remaining time.Duration, found bool, err error)
}

// ScoreCacheKey 由内容指纹生成缓存键
func ScoreCacheKey(fingerprint string) string {
	return fmt.Sprintf(constants.KeySemanticScore, fingerprint)
}

// NewScoreCache 按配置创建分数缓存; redis/tiered 后端要求 store.Redis 已初始化
// 返回的 stop 函数用于停止内存缓存的清理协程
func NewScoreCache(cfg *config.Config, store *Storage, logger *zerolog.Logger) (ScoreCache, func(), error) {
	memory := func() *MemoryScoreCache {
		return NewMemoryScoreCache(
			WithMaxEntries(cfg.Cache.MaxEntries),
			WithSweepInterval(config.GetDuration(cfg.Cache.SweepInterval, time.Minute)),
		)
	}

	switch cfg.Cache.Backend {
	case "", constants.CacheBackendMemory:
		m := memory()
		return m, m.Close, nil
	case constants.CacheBackendRedis, constants.CacheBackendTiered:
		if store == nil || store.Redis == nil {
			return nil, nil, fmt.Errorf("缓存后端 %s 需要可用的 Redis 连接", cfg.Cache.Backend)
		}
		remote := NewRedisScoreCache(store.Redis)
		if cfg.Cache.Backend == constants.CacheBackendRedis {
			return remote, func() {}, nil
		}
		m := memory()
		return NewTieredScoreCache(m, remote, logger), m.Close, nil
	default:
		return nil, nil, fmt.Errorf("不支持的缓存后端: %s", cfg.Cache.Backend)
	}
}
