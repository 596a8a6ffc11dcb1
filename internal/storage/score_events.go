package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ats-scorer/internal/config"
	"ats-scorer/internal/tracing"
	"ats-scorer/internal/types"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// ScoreEventPublisher 把评分完成事件发布到 topic exchange
type ScoreEventPublisher struct {
	mq         MessageQueue
	exchange   string
	routingKey string
	timeout    time.Duration
	logger     *zerolog.Logger
}

// NewScoreEventPublisher 声明 exchange (以及可选的队列绑定) 并返回发布器
func NewScoreEventPublisher(mq MessageQueue, cfg *config.RabbitMQConfig, logger *zerolog.Logger) (*ScoreEventPublisher, error) {
	if mq == nil {
		return nil, fmt.Errorf("消息队列不能为空")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if err := mq.EnsureExchange(cfg.ScoreEventsExchange, "topic", true); err != nil {
		return nil, err
	}
	if cfg.ScoreEventsQueue != "" {
		if err := mq.EnsureBoundQueue(cfg.ScoreEventsQueue, cfg.ScoreEventsExchange, cfg.ScoredRoutingKey, true); err != nil {
			return nil, err
		}
	}

	return &ScoreEventPublisher{
		mq:         mq,
		exchange:   cfg.ScoreEventsExchange,
		routingKey: cfg.ScoredRoutingKey,
		timeout:    config.GetDuration(cfg.PublishTimeout, 3*time.Second),
		logger:     logger,
	}, nil
}

// PublishScore 发布单个评分事件, 超时由 publish_timeout 控制
func (p *ScoreEventPublisher) PublishScore(ctx context.Context, event types.ScoreComputedEvent) error {
	ctx, span := tracer.Start(ctx, "ScoreEventPublisher.PublishScore")
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.destination", p.exchange),
		attribute.String("messaging.routing_key", p.routingKey),
		attribute.String("request_id", event.RequestID),
	)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.mq.PublishJSON(ctx, p.exchange, p.routingKey, event, true); err != nil {
		errorType := tracing.ErrorTypeRabbitMQ
		if errors.Is(err, context.DeadlineExceeded) {
			errorType = tracing.ErrorTypeTimeout
		}
		tracing.RecordError(span, err, errorType)
		return fmt.Errorf("发布评分事件失败: %w", err)
	}
	p.logger.Debug().Str("request_id", event.RequestID).Float64("score", event.Score).Msg("评分事件已发布")
	return nil
}
