package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"ats-scorer/internal/config"
	"ats-scorer/internal/tracing"
	"ats-scorer/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var (
	recorderOnce sync.Once
	spanRecorder *tracetest.SpanRecorder
)

// recordSpans 安装一次全局 TracerProvider, 返回调用之后结束的 span
func recordSpans(t *testing.T) func() []sdktrace.ReadOnlySpan {
	t.Helper()
	recorderOnce.Do(func() {
		spanRecorder = tracetest.NewSpanRecorder()
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder)))
	})
	start := len(spanRecorder.Ended())
	return func() []sdktrace.ReadOnlySpan { return spanRecorder.Ended()[start:] }
}

func TestRedisScoreCacheRecordsRedisError(t *testing.T) {
	ended := recordSpans(t)
	cache := NewRedisScoreCache(&Redis{})
	key := ScoreCacheKey(strings.Repeat("a", 64) + strings.Repeat("b", 64))

	_, found, err := cache.Get(context.Background(), key)
	require.Error(t, err, "未初始化的客户端应返回错误")
	assert.False(t, found)

	spans := ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "RedisScoreCache.Get", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Contains(t, span.Attributes(), attribute.String("error.type", string(tracing.ErrorTypeRedis)))
	assert.Contains(t, span.Attributes(), attribute.String("redis.key", tracing.SafeRedisKey(key)), "过长的键应被截断")
}

func TestRedisScoreCacheSetSkipsSpanForNonPositiveTTL(t *testing.T) {
	ended := recordSpans(t)
	cache := NewRedisScoreCache(&Redis{})

	assert.NoError(t, cache.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, ended())
}

func TestScoreEventPublisherRecordsErrorType(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		errorType tracing.ErrorType
	}{
		{"通道错误", errors.New("channel closed"), tracing.ErrorTypeRabbitMQ},
		{"发布超时", context.DeadlineExceeded, tracing.ErrorTypeTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ended := recordSpans(t)
			cfg := config.DefaultConfig().RabbitMQ
			publisher, err := NewScoreEventPublisher(&fakeQueue{publishErr: tc.err}, &cfg, nil)
			require.NoError(t, err)

			err = publisher.PublishScore(context.Background(), types.ScoreComputedEvent{RequestID: "req-2"})
			require.Error(t, err)

			spans := ended()
			require.Len(t, spans, 1)
			assert.Equal(t, codes.Error, spans[0].Status().Code)
			assert.Contains(t, spans[0].Attributes(), attribute.String("error.type", string(tc.errorType)))
			assert.Contains(t, spans[0].Attributes(), attribute.String("request_id", "req-2"))
		})
	}
}
