package storage

import (
	"context"
	"fmt"

	"ats-scorer/internal/config"

	"github.com/rs/zerolog"
)

// Storage 存储管理器，聚合 Redis 与 RabbitMQ 连接
type Storage struct {
	// 消息队列 (可选)
	RabbitMQ *RabbitMQ

	// 键值存储 (redis/tiered 缓存后端时必需)
	Redis *Redis

	logger *zerolog.Logger
}

// NewStorage 按配置初始化外部连接
// Redis 在缓存后端需要时必须可用; RabbitMQ 初始化失败只记录警告
func NewStorage(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	s := &Storage{logger: logger}
	var err error

	if cfg.RedisEnabled() {
		s.Redis, err = NewRedisAdapter(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("初始化Redis失败: %w", err)
		}
		logger.Info().Str("address", cfg.Redis.Address).Msg("Redis初始化成功")
	} else {
		logger.Info().Msg("缓存后端不需要Redis, 跳过初始化")
	}

	if cfg.RabbitMQ.URL != "" {
		s.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化RabbitMQ失败, 评分事件将不会发布")
			s.RabbitMQ = nil
		}
	}

	return s, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("关闭Redis连接失败")
		}
	}
}
