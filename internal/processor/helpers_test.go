package processor

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ats-scorer/internal/types"

	"github.com/cloudwego/eino/components/embedding"
)

// bagOfWordsEmbedder 把每个词哈希到固定维度上计数, 结果确定且与输入顺序无关
type bagOfWordsEmbedder struct {
	dims  int
	calls atomic.Int64
	err   error
}

func newBagOfWordsEmbedder() *bagOfWordsEmbedder {
	return &bagOfWordsEmbedder{dims: 64}
}

func (e *bagOfWordsEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec := make([]float64, e.dims)
		for _, tok := range strings.Fields(text) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(tok))
			vec[int(h.Sum32())%e.dims]++
		}
		out[i] = vec
	}
	return out, nil
}

// fixedEmbedder 不论输入返回同一对向量
type fixedEmbedder struct {
	vectors [][]float64
}

func (e fixedEmbedder) EmbedStrings(_ context.Context, _ []string, _ ...embedding.Option) ([][]float64, error) {
	return e.vectors, nil
}

type stubLanguage func(text string) bool

func (f stubLanguage) IsEnglish(text string) bool { return f(text) }

func alwaysEnglish() stubLanguage {
	return func(string) bool { return true }
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (float64, bool, error) {
	return 0, false, errors.New("cache unavailable")
}

func (failingCache) Set(context.Context, string, float64, time.Duration) error {
	return errors.New("cache unavailable")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []types.ScoreComputedEvent
	err    error
}

func (p *recordingPublisher) PublishScore(_ context.Context, event types.ScoreComputedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func txtDoc(name, content string) *types.Document {
	return &types.Document{Filename: name, Content: []byte(content)}
}
