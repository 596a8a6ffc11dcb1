package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TieredScoreCache 一级内存 + 二级远端缓存
// 二级命中时按剩余有效期回填一级, 保证条目不会比远端活得更久
type TieredScoreCache struct {
	l1     *MemoryScoreCache
	l2     ttlScoreCache
	logger *zerolog.Logger
}

// NewTieredScoreCache 创建两级缓存
func NewTieredScoreCache(l1 *MemoryScoreCache, l2 ttlScoreCache, logger *zerolog.Logger) *TieredScoreCache {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &TieredScoreCache{l1: l1, l2: l2, logger: logger}
}

// Get 先查一级, 再查二级
func (c *TieredScoreCache) Get(ctx context.Context, key string) (float64, bool, error) {
	if score, found, _ := c.l1.Get(ctx, key); found {
		return score, true, nil
	}

	score, remaining, found, err := c.l2.GetWithTTL(ctx, key)
	if err != nil || !found {
		return 0, false, err
	}
	if remaining > 0 {
		_ = c.l1.Set(ctx, key, score, remaining)
	}
	return score, true, nil
}

// Set 同时写入两级; 二级写入失败时一级仍然生效
func (c *TieredScoreCache) Set(ctx context.Context, key string, score float64, ttl time.Duration) error {
	_ = c.l1.Set(ctx, key, score, ttl)
	if err := c.l2.Set(ctx, key, score, ttl); err != nil {
		c.logger.Warn().Err(err).Msg("二级缓存写入失败")
		return err
	}
	return nil
}
