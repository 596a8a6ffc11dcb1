package tracing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "ab...ij", TruncateString("abcdefghij", 7))
}

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "张*", MaskPII("张三"))
	assert.Equal(t, "王*明", MaskPII("王小明"))
	assert.Equal(t, "13*******78", MaskPII("13812345678"))
}

func TestSafeAttributeValue(t *testing.T) {
	assert.Equal(t, "se********ue", SafeAttributeValue("api_key", "secret-value", 100), "敏感字段应被掩码")
	assert.Equal(t, "resume.pdf", SafeAttributeValue("filename", "resume.pdf", 100))
	assert.Equal(t, "ab...ij", SafeAttributeValue("upload.filename", "abcdefghij", 7), "非敏感字段只截断")
}

func TestSafeAttributeValueKeySegments(t *testing.T) {
	testCases := []struct {
		key       string
		sensitive bool
	}{
		{"email", true},
		{"candidate.email", true},
		{"user_name", true},
		{"auth.token", true},
		{"embedding.api_key", true},
		{"Client-Address", true},
		{"filename", false},
		{"resume.filename", false},
		{"hostname", false},
		{"tokenizer", false},
		{"redis.key", false},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			got := SafeAttributeValue(tc.key, "value-1234", 100)
			if tc.sensitive {
				assert.Equal(t, "va******34", got, "敏感字段应被掩码")
			} else {
				assert.Equal(t, "value-1234", got, "普通字段不应被掩码")
			}
		})
	}
}

func TestSafeRedisKey(t *testing.T) {
	short := "app:score:semantic:abc"
	assert.Equal(t, short, SafeRedisKey(short))

	long := "app:score:semantic:" + strings.Repeat("f", 128)
	safe := SafeRedisKey(long)
	assert.Len(t, []rune(safe), MaxRedisLength-1)
	assert.Contains(t, safe, "...")
}

func TestRecordErrorSetsStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	RecordError(span, errors.New("boom"), ErrorTypeEmbedding)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("error.type", string(ErrorTypeEmbedding)))
}

func TestRecordErrorIgnoresNil(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordError(nil, errors.New("x"), ErrorTypeInternal)
		RecordHTTPError(nil, nil, 500)
	})
}

func TestInitTracerProviderWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracerProvider(context.Background(), ProviderConfig{ServiceName: "ats-scorer"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
