package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestMemoryScoreCacheExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newManualClock()
	cache := NewMemoryScoreCache(WithClock(clock.Now))
	defer cache.Close()

	require.NoError(t, cache.Set(ctx, "k", 87.5, 5*time.Minute))

	score, found, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 87.5, score)

	clock.Advance(4*time.Minute + 59*time.Second)
	_, remaining, found, _ := cache.GetWithTTL(ctx, "k")
	assert.True(t, found, "有效期内应命中")
	assert.Equal(t, time.Second, remaining)

	clock.Advance(time.Second)
	_, found, _ = cache.Get(ctx, "k")
	assert.False(t, found, "到期后应失效")
	assert.Equal(t, 0, cache.Len(), "过期条目读取时应被删除")
}

func TestMemoryScoreCacheIgnoresNonPositiveTTL(t *testing.T) {
	cache := NewMemoryScoreCache()
	require.NoError(t, cache.Set(context.Background(), "k", 1, 0))
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryScoreCacheSweep(t *testing.T) {
	ctx := context.Background()
	clock := newManualClock()
	cache := NewMemoryScoreCache(WithClock(clock.Now))

	require.NoError(t, cache.Set(ctx, "short", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "long", 2, time.Hour))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, cache.Sweep())
	assert.Equal(t, 1, cache.Len())
}

func TestMemoryScoreCacheEviction(t *testing.T) {
	ctx := context.Background()
	clock := newManualClock()
	cache := NewMemoryScoreCache(WithClock(clock.Now), WithMaxEntries(2))

	require.NoError(t, cache.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "b", 2, 2*time.Minute))
	require.NoError(t, cache.Set(ctx, "c", 3, 3*time.Minute))

	assert.Equal(t, 2, cache.Len())
	_, found, _ := cache.Get(ctx, "a")
	assert.False(t, found, "最早过期的条目应被淘汰")
	_, found, _ = cache.Get(ctx, "c")
	assert.True(t, found)

	// 覆盖已有键不触发淘汰
	require.NoError(t, cache.Set(ctx, "c", 4, time.Minute))
	assert.Equal(t, 2, cache.Len())
}

func TestMemoryScoreCacheSweepLoopStops(t *testing.T) {
	cache := NewMemoryScoreCache(WithSweepInterval(time.Millisecond))
	require.NoError(t, cache.Set(context.Background(), "k", 1, time.Nanosecond))

	assert.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 5*time.Millisecond)
	cache.Close()
	cache.Close()
}

func TestMemoryScoreCacheConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryScoreCache(WithMaxEntries(50))
	defer cache.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := ScoreCacheKey(string(rune('a' + (i+j)%26)))
				_ = cache.Set(ctx, key, float64(j), time.Minute)
				_, _, _ = cache.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.Len(), 50)
}
