package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"
)

// HTTPEmbedder 通过 OpenAI 兼容的 /v1/embeddings 接口获取句向量, 实现 embedding.Embedder 接口
// 适用于托管 sentence-transformers 模型的推理服务 (默认 all-MiniLM-L6-v2)
type HTTPEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	httpClient *http.Client
	baseURL    string
	logger     *zerolog.Logger
}

// HTTPEmbedderOption HTTPEmbedder 配置选项
type HTTPEmbedderOption func(*HTTPEmbedder)

// WithAPIKey 设置 Bearer 鉴权密钥
func WithAPIKey(apiKey string) HTTPEmbedderOption {
	return func(h *HTTPEmbedder) { h.apiKey = apiKey }
}

// WithExpectedDimensions 校验返回向量的维度, 0 表示不校验
func WithExpectedDimensions(dim int) HTTPEmbedderOption {
	return func(h *HTTPEmbedder) { h.dimensions = dim }
}

// WithHTTPTimeout 设置单次请求超时
func WithHTTPTimeout(timeout time.Duration) HTTPEmbedderOption {
	return func(h *HTTPEmbedder) { h.httpClient.Timeout = timeout }
}

// WithHTTPClient 替换 http.Client
func WithHTTPClient(client *http.Client) HTTPEmbedderOption {
	return func(h *HTTPEmbedder) {
		if client != nil {
			h.httpClient = client
		}
	}
}

// WithEmbedderLogger 配置日志记录器
func WithEmbedderLogger(logger *zerolog.Logger) HTTPEmbedderOption {
	return func(h *HTTPEmbedder) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHTTPEmbedder 创建 HTTP 句向量客户端
func NewHTTPEmbedder(baseURL, model string, options ...HTTPEmbedderOption) (*HTTPEmbedder, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("embedding base_url 不能为空")
	}
	if model == "" {
		return nil, fmt.Errorf("embedding model 不能为空")
	}

	nop := zerolog.Nop()
	h := &HTTPEmbedder{
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     &nop,
	}
	for _, option := range options {
		option(h)
	}
	return h, nil
}

// EmbeddingRequest OpenAI 兼容的请求结构
type EmbeddingRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

// EmbeddingResponse OpenAI 兼容的响应结构
type EmbeddingResponse struct {
	Object string               `json:"object"`
	Data   []EmbeddingDataEntry `json:"data"`
	Model  string               `json:"model"`
	Usage  EmbeddingUsage       `json:"usage"`
	Error  *EmbeddingAPIError   `json:"error,omitempty"`
}

// EmbeddingDataEntry 单条向量
type EmbeddingDataEntry struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

// EmbeddingUsage token 用量
type EmbeddingUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// EmbeddingAPIError 接口返回的错误 (可能随 200 一起返回)
type EmbeddingAPIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// EmbedStrings 将文本转换为向量, 返回顺序与输入一致
func (h *HTTPEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	options := &embedding.Options{}
	options = embedding.GetCommonOptions(options, opts...)

	effectiveModel := h.model
	if options.Model != nil && *options.Model != "" {
		effectiveModel = *options.Model
	}

	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	jsonData, err := json.Marshal(EmbeddingRequest{
		Input:          texts,
		Model:          effectiveModel,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	startTime := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var wrapped struct {
			Error *EmbeddingAPIError `json:"error"`
		}
		if json.Unmarshal(body, &wrapped) == nil && wrapped.Error != nil && wrapped.Error.Message != "" {
			return nil, fmt.Errorf("API调用失败, 状态码: %d, 类型: %s, 错误: %s", resp.StatusCode, wrapped.Error.Type, wrapped.Error.Message)
		}
		return nil, fmt.Errorf("API调用失败, 状态码: %d, 响应: %s", resp.StatusCode, truncateBody(body))
	}

	var parsedResp EmbeddingResponse
	if err := json.Unmarshal(body, &parsedResp); err != nil {
		return nil, fmt.Errorf("解析响应JSON失败: %w", err)
	}
	if parsedResp.Error != nil && parsedResp.Error.Message != "" {
		return nil, fmt.Errorf("API返回错误: 类型=%s, 消息='%s', Code=%s", parsedResp.Error.Type, parsedResp.Error.Message, parsedResp.Error.Code)
	}
	if len(parsedResp.Data) != len(texts) {
		return nil, fmt.Errorf("返回向量数量不匹配: 期望 %d, 实际 %d", len(texts), len(parsedResp.Data))
	}

	// 按 index 回填, 服务端不保证顺序
	outputEmbeddings := make([][]float64, len(texts))
	for _, entry := range parsedResp.Data {
		if entry.Index < 0 || entry.Index >= len(texts) {
			return nil, fmt.Errorf("返回向量 index 越界: %d", entry.Index)
		}
		if h.dimensions > 0 && len(entry.Embedding) != h.dimensions {
			return nil, fmt.Errorf("向量维度不匹配: 期望 %d, 实际 %d", h.dimensions, len(entry.Embedding))
		}
		outputEmbeddings[entry.Index] = entry.Embedding
	}
	for i, vec := range outputEmbeddings {
		if vec == nil {
			return nil, fmt.Errorf("缺少第 %d 条文本的向量", i)
		}
	}

	h.logger.Debug().
		Str("model", effectiveModel).
		Int("texts", len(texts)).
		Int("dim", firstEmbeddingDim(outputEmbeddings)).
		Int("total_tokens", parsedResp.Usage.TotalTokens).
		Dur("duration", time.Since(startTime)).
		Msg("句向量生成完成")

	return outputEmbeddings, nil
}

// firstEmbeddingDim 安全获取第一条向量的维度, 用于日志
func firstEmbeddingDim(embeddings [][]float64) int {
	if len(embeddings) > 0 {
		return len(embeddings[0])
	}
	return 0
}

func truncateBody(body []byte) string {
	const maxLen = 300
	if len(body) <= maxLen {
		return string(body)
	}
	return string(body[:maxLen]) + "..."
}
