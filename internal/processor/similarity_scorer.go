package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"ats-scorer/internal/constants"
	"ats-scorer/internal/storage"

	"github.com/rs/zerolog"
)

// ErrEmbeddingShape 模型返回的向量数量或维度不符合预期
var ErrEmbeddingShape = errors.New("unexpected embedding shape")

// SimilarityOutcome 一次语义评分的结果
type SimilarityOutcome struct {
	Score       float64
	Fingerprint string
	CacheHit    bool
}

// CacheStats 缓存命中统计
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// SimilarityScorer 计算简历与职位描述的语义相似度 (0-100, 两位小数)
// 结果按内容指纹缓存; 并发的相同请求可能各自计算一次
type SimilarityScorer struct {
	embedder TextEmbedder
	cache    ScoreCache
	ttl      time.Duration
	logger   *zerolog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewSimilarityScorer 创建评分器; cache 为 nil 时不缓存, ttl <= 0 时使用默认 5 分钟
func NewSimilarityScorer(embedder TextEmbedder, cache ScoreCache, ttl time.Duration, logger *zerolog.Logger) *SimilarityScorer {
	if ttl <= 0 {
		ttl = constants.SemanticScoreCacheTTL
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &SimilarityScorer{
		embedder: embedder,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// Fingerprint 两段规范化文本拼接后的 SHA-256 (十六进制)
func Fingerprint(resumeText, jobText string) string {
	sum := sha256.Sum256([]byte(resumeText + jobText))
	return hex.EncodeToString(sum[:])
}

// Score 返回语义相似度分数
func (s *SimilarityScorer) Score(ctx context.Context, resumeText, jobText string) (float64, error) {
	outcome, err := s.Evaluate(ctx, resumeText, jobText)
	if err != nil {
		return 0, err
	}
	return outcome.Score, nil
}

// Evaluate 返回分数以及指纹和缓存命中情况
func (s *SimilarityScorer) Evaluate(ctx context.Context, resumeText, jobText string) (SimilarityOutcome, error) {
	fp := Fingerprint(resumeText, jobText)
	key := storage.ScoreCacheKey(fp)

	if s.cache != nil {
		score, found, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Str("fingerprint", fp).Msg("读取分数缓存失败, 按未命中处理")
		} else if found {
			s.hits.Add(1)
			return SimilarityOutcome{Score: score, Fingerprint: fp, CacheHit: true}, nil
		}
	}
	s.misses.Add(1)

	vectors, err := s.embedder.EmbedStrings(ctx, []string{resumeText, jobText})
	if err != nil {
		return SimilarityOutcome{}, fmt.Errorf("生成句向量失败: %w", err)
	}
	if len(vectors) != 2 {
		return SimilarityOutcome{}, fmt.Errorf("%w: 期望 2 条向量, 实际 %d", ErrEmbeddingShape, len(vectors))
	}

	sim, err := CosineSimilarity(vectors[0], vectors[1])
	if err != nil {
		return SimilarityOutcome{}, err
	}
	score := ToPercentage(sim)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, score, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("fingerprint", fp).Msg("写入分数缓存失败")
		}
	}

	s.logger.Debug().Str("fingerprint", fp).Float64("score", score).Msg("语义分数计算完成")
	return SimilarityOutcome{Score: score, Fingerprint: fp}, nil
}

// Stats 返回缓存命中统计
func (s *SimilarityScorer) Stats() CacheStats {
	return CacheStats{Hits: s.hits.Load(), Misses: s.misses.Load()}
}

// CosineSimilarity 计算两个向量的余弦相似度; 任一向量为零向量时返回 0
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("%w: 维度 %d 与 %d", ErrEmbeddingShape, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0, fmt.Errorf("%w: 相似度不是有限数", ErrEmbeddingShape)
	}
	return sim, nil
}

// ToPercentage 相似度换算为百分制, 限制在 [0,100] 并保留两位小数
func ToPercentage(sim float64) float64 {
	score := sim * 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return math.Round(score*100) / 100
}
