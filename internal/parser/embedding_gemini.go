package parser

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// geminiMaxInputChars 单条文本截断长度, 约对应 embedding 模型的 token 上限
const geminiMaxInputChars = 40000

// GeminiEmbedder 使用 Gemini embedding 模型, 实现 embedding.Embedder 接口
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	logger *zerolog.Logger
}

// NewGeminiEmbedder 创建 Gemini 句向量客户端
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, logger *zerolog.Logger) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &GeminiEmbedder{client: client, model: model, logger: logger}, nil
}

// EmbedStrings 逐条请求向量, 返回顺序与输入一致
func (g *GeminiEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	options := embedding.GetCommonOptions(&embedding.Options{}, opts...)
	model := g.model
	if options.Model != nil && *options.Model != "" {
		model = *options.Model
	}

	out := make([][]float64, 0, len(texts))
	for i, text := range texts {
		if len(text) > geminiMaxInputChars {
			text = text[:geminiMaxInputChars]
		}
		result, err := g.client.Models.EmbedContent(ctx, model, genai.Text(text), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding for text %d: %w", i, err)
		}
		if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
			return nil, fmt.Errorf("empty embedding result for text %d", i)
		}
		out = append(out, float32To64(result.Embeddings[0].Values))
	}

	g.logger.Debug().Str("model", model).Int("texts", len(texts)).Int("dim", firstEmbeddingDim(out)).Msg("Gemini 句向量生成完成")
	return out, nil
}

func float32To64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
