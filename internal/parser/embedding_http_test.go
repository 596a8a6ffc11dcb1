package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbeddingServer(t *testing.T, handler func(w http.ResponseWriter, req EmbeddingRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req EmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPEmbedderEmbedStrings(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req EmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-MiniLM-L6-v2", req.Model)
		require.Len(t, req.Input, 2)

		// 故意倒序返回, 验证按 index 回填
		_ = json.NewEncoder(w).Encode(EmbeddingResponse{
			Object: "list",
			Data: []EmbeddingDataEntry{
				{Index: 1, Embedding: []float64{0, 1, 0}},
				{Index: 0, Embedding: []float64{1, 0, 0}},
			},
			Usage: EmbeddingUsage{TotalTokens: 7},
		})
	}))
	defer server.Close()

	embedder, err := NewHTTPEmbedder(server.URL, "all-MiniLM-L6-v2", WithAPIKey("secret"), WithExpectedDimensions(3))
	require.NoError(t, err)

	vectors, err := embedder.EmbedStrings(context.Background(), []string{"resume", "job"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0, 0}, {0, 1, 0}}, vectors)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestHTTPEmbedderModelOverride(t *testing.T) {
	server := newEmbeddingServer(t, func(w http.ResponseWriter, req EmbeddingRequest) {
		assert.Equal(t, "override-model", req.Model)
		_ = json.NewEncoder(w).Encode(EmbeddingResponse{Data: []EmbeddingDataEntry{{Index: 0, Embedding: []float64{1}}}})
	})

	embedder, err := NewHTTPEmbedder(server.URL, "default-model")
	require.NoError(t, err)

	_, err = embedder.EmbedStrings(context.Background(), []string{"x"}, embedding.WithModel("override-model"))
	require.NoError(t, err)
}

func TestHTTPEmbedderErrors(t *testing.T) {
	testCases := []struct {
		name    string
		handler func(w http.ResponseWriter, req EmbeddingRequest)
		errPart string
	}{
		{
			name: "非200状态码",
			handler: func(w http.ResponseWriter, _ EmbeddingRequest) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":{"message":"model loading","type":"unavailable"}}`))
			},
			errPart: "model loading",
		},
		{
			name: "数量不匹配",
			handler: func(w http.ResponseWriter, _ EmbeddingRequest) {
				_ = json.NewEncoder(w).Encode(EmbeddingResponse{Data: []EmbeddingDataEntry{{Index: 0, Embedding: []float64{1, 2}}}})
			},
			errPart: "数量不匹配",
		},
		{
			name: "维度不匹配",
			handler: func(w http.ResponseWriter, _ EmbeddingRequest) {
				_ = json.NewEncoder(w).Encode(EmbeddingResponse{Data: []EmbeddingDataEntry{
					{Index: 0, Embedding: []float64{1}},
					{Index: 1, Embedding: []float64{1}},
				}})
			},
			errPart: "维度不匹配",
		},
		{
			name: "200中携带错误",
			handler: func(w http.ResponseWriter, _ EmbeddingRequest) {
				_, _ = w.Write([]byte(`{"error":{"message":"input too long","type":"invalid_request"}}`))
			},
			errPart: "input too long",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := newEmbeddingServer(t, tc.handler)
			embedder, err := NewHTTPEmbedder(server.URL, "m", WithExpectedDimensions(2))
			require.NoError(t, err)

			_, err = embedder.EmbedStrings(context.Background(), []string{"a", "b"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errPart)
		})
	}
}

func TestHTTPEmbedderEmptyInput(t *testing.T) {
	embedder, err := NewHTTPEmbedder("http://127.0.0.1:1/unused", "m")
	require.NoError(t, err)

	vectors, err := embedder.EmbedStrings(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestNewHTTPEmbedderValidation(t *testing.T) {
	_, err := NewHTTPEmbedder("", "m")
	assert.Error(t, err)
	_, err = NewHTTPEmbedder("http://x", "")
	assert.Error(t, err)
}
