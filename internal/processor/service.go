package processor

import (
	"context"
	"fmt"
	"time"

	"ats-scorer/internal/config"
	"ats-scorer/internal/constants"
	"ats-scorer/internal/keywords"
	"ats-scorer/internal/language"
	"ats-scorer/internal/parser"
	"ats-scorer/internal/ratelimit"
	"ats-scorer/internal/storage"

	"github.com/rs/zerolog"
)

// Service 按配置组装好的评分服务, 进程生命周期内只创建一次
type Service struct {
	*ScoringPipeline

	closers []func()
}

// NewService 根据配置创建评分服务
// store 可为 nil, 此时只能使用内存缓存且不发布评分事件
func NewService(ctx context.Context, cfg *config.Config, store *storage.Storage, logger *zerolog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	taxonomy, err := keywords.LoadTaxonomy(cfg.Keywords.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("加载关键词词表失败: %w", err)
	}
	logger.Info().Int("keywords", taxonomy.Size()).Msg("关键词词表加载完成")

	pdfExtractor, err := parser.NewPDFExtractor(ctx, cfg.Extractor.PDFEngine, logger)
	if err != nil {
		return nil, fmt.Errorf("创建PDF解析器失败: %w", err)
	}
	extractor := parser.NewDocumentExtractor(
		parser.WithExtractorLogger(logger),
		parser.WithPDFExtractor(pdfExtractor),
	)

	embedder, err := NewEmbedder(ctx, &cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}

	cache, stopCache, err := storage.NewScoreCache(cfg, store, logger)
	if err != nil {
		return nil, fmt.Errorf("创建分数缓存失败: %w", err)
	}
	logger.Info().Str("backend", cfg.Cache.Backend).Dur("ttl", cfg.CacheTTL()).Msg("分数缓存就绪")

	options := []PipelineOption{
		WithLogger(logger),
		WithTipThreshold(cfg.Scoring.TipThreshold),
		WithMaxTips(cfg.Scoring.MaxTips),
	}
	if store != nil && store.RabbitMQ != nil {
		publisher, err := storage.NewScoreEventPublisher(store.RabbitMQ, &cfg.RabbitMQ, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("创建评分事件发布者失败, 跳过事件发布")
		} else {
			options = append(options, WithPublisher(publisher))
		}
	}

	scorer := NewSimilarityScorer(embedder, cache, cfg.CacheTTL(), logger)
	pipeline := NewScoringPipeline(
		extractor,
		language.NewGuard(nil, logger),
		keywords.NewMatcher(taxonomy),
		scorer,
		options...,
	)

	return &Service{
		ScoringPipeline: pipeline,
		closers:         []func(){stopCache},
	}, nil
}

// NewEmbedder 按配置创建句向量模型客户端, qpm > 0 时包装限流
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig, logger *zerolog.Logger) (TextEmbedder, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	var embedder TextEmbedder

	switch cfg.Provider {
	case "", constants.EmbeddingProviderHTTP:
		httpEmbedder, err := parser.NewHTTPEmbedder(cfg.BaseURL, cfg.Model,
			parser.WithAPIKey(cfg.APIKey),
			parser.WithExpectedDimensions(cfg.Dimensions),
			parser.WithHTTPTimeout(config.GetDuration(cfg.Timeout, 30*time.Second)),
			parser.WithEmbedderLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("创建句向量客户端失败: %w", err)
		}
		embedder = httpEmbedder
	case constants.EmbeddingProviderGemini:
		gemini, err := parser.NewGeminiEmbedder(ctx, cfg.APIKey, cfg.Model, logger)
		if err != nil {
			return nil, fmt.Errorf("创建Gemini向量客户端失败: %w", err)
		}
		embedder = gemini
	default:
		return nil, fmt.Errorf("不支持的向量服务提供方: %s", cfg.Provider)
	}

	if cfg.QPM > 0 {
		embedder = ratelimit.NewRateLimitedEmbedder(embedder, cfg.QPM).
			WithRetryPolicy(time.Second, cfg.MaxRetries)
	}

	logger.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Int("qpm", cfg.QPM).
		Msg("句向量模型初始化完成")
	return embedder, nil
}

// Close 释放缓存清理协程等资源
func (s *Service) Close() {
	for _, c := range s.closers {
		if c != nil {
			c()
		}
	}
}
