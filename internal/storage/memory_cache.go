package storage

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	score     float64
	expiresAt time.Time
}

// MemoryScoreCache 进程内分数缓存, 互斥锁保护读写, 条目到期后自动失效
type MemoryScoreCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time

	sweepInterval time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// MemoryCacheOption MemoryScoreCache 配置选项
type MemoryCacheOption func(*MemoryScoreCache)

// WithClock 注入时钟, 测试中用于控制过期
func WithClock(now func() time.Time) MemoryCacheOption {
	return func(c *MemoryScoreCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMaxEntries 条目上限, 0 表示不限
func WithMaxEntries(n int) MemoryCacheOption {
	return func(c *MemoryScoreCache) { c.maxEntries = n }
}

// WithSweepInterval 后台清理过期条目的间隔, 0 表示不启动清理协程
func WithSweepInterval(d time.Duration) MemoryCacheOption {
	return func(c *MemoryScoreCache) { c.sweepInterval = d }
}

// NewMemoryScoreCache 创建内存缓存
func NewMemoryScoreCache(options ...MemoryCacheOption) *MemoryScoreCache {
	c := &MemoryScoreCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	for _, option := range options {
		option(c)
	}
	if c.sweepInterval > 0 {
		c.wg.Add(1)
		go c.sweepLoop()
	}
	return c
}

// Get 实现 ScoreCache
func (c *MemoryScoreCache) Get(ctx context.Context, key string) (float64, bool, error) {
	score, _, found, err := c.GetWithTTL(ctx, key)
	return score, found, err
}

// GetWithTTL 返回分数及剩余有效期
func (c *MemoryScoreCache) GetWithTTL(_ context.Context, key string) (float64, time.Duration, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return 0, 0, false, nil
	}
	now := c.now()
	if !now.Before(entry.expiresAt) {
		delete(c.entries, key)
		return 0, 0, false, nil
	}
	return entry.score, entry.expiresAt.Sub(now), true, nil
}

// Set 实现 ScoreCache; ttl <= 0 时不写入
func (c *MemoryScoreCache) Set(_ context.Context, key string, score float64, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists {
		c.evictLocked(now)
	}
	c.entries[key] = memoryEntry{score: score, expiresAt: now.Add(ttl)}
	return nil
}

// Len 当前条目数 (含尚未清理的过期条目)
func (c *MemoryScoreCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep 删除所有过期条目, 返回删除数量
func (c *MemoryScoreCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeExpiredLocked(c.now())
}

// Close 停止清理协程, 可重复调用
func (c *MemoryScoreCache) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

func (c *MemoryScoreCache) sweepLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

func (c *MemoryScoreCache) removeExpiredLocked(now time.Time) int {
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// evictLocked 达到上限时先清理过期条目, 仍超限则淘汰最早过期的条目
func (c *MemoryScoreCache) evictLocked(now time.Time) {
	if c.maxEntries <= 0 || len(c.entries) < c.maxEntries {
		return
	}
	c.removeExpiredLocked(now)

	for len(c.entries) >= c.maxEntries {
		var oldestKey string
		var oldestAt time.Time
		first := true
		for key, entry := range c.entries {
			if first || entry.expiresAt.Before(oldestAt) {
				oldestKey, oldestAt, first = key, entry.expiresAt, false
			}
		}
		delete(c.entries, oldestKey)
	}
}
