package constants

import "time"

const (
	// ScoreTipThreshold 分数低于该阈值时才生成改进建议
	ScoreTipThreshold = 70.0
	// SemanticScoreCacheTTL 语义相似度分数缓存时长
	SemanticScoreCacheTTL = 5 * time.Minute
	// MaxKeywordTips 单次最多给出的关键词建议条数
	MaxKeywordTips = 5

	// DefaultEmbeddingModel 默认句向量模型 (通过 OpenAI 兼容接口暴露)
	DefaultEmbeddingModel = "all-MiniLM-L6-v2"
	// DefaultEmbeddingDimensions all-MiniLM-L6-v2 的输出维度
	DefaultEmbeddingDimensions = 384
	// DefaultGeminiEmbeddingModel Gemini 后端默认向量模型
	DefaultGeminiEmbeddingModel = "text-embedding-004"

	// DefaultMaxUploadMB 单个上传文件的大小上限
	DefaultMaxUploadMB = 10
)

// 支持的文档扩展名 (小写, 不含点)
const (
	ExtPDF  = "pdf"
	ExtDOCX = "docx"
	ExtTXT  = "txt"
)

// AllowedExtensions 允许上传的扩展名集合
var AllowedExtensions = map[string]bool{
	ExtPDF:  true,
	ExtDOCX: true,
	ExtTXT:  true,
}

// PDF 解析引擎
const (
	PDFEngineLedongthuc = "ledongthuc"
	PDFEngineEino       = "eino"
)

// 向量服务提供方
const (
	EmbeddingProviderHTTP   = "http"
	EmbeddingProviderGemini = "gemini"
)

// 缓存后端
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendTiered = "tiered"
)
