package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ats-scorer/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromYAML 验证 YAML 中的字段能覆盖默认值
func TestLoadConfigFromYAML(t *testing.T) {
	content := `
server:
  address: ":9090"
  api_keys: ["k1", "k2"]
scoring:
  tip_threshold: 65
  cache_ttl: "2m"
embedding:
  provider: http
  base_url: "http://embedder:8080/v1/embeddings"
  qpm: 600
cache:
  backend: tiered
redis:
  address: "localhost:6379"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644), "无法写入临时配置文件")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err, "加载配置不应返回错误")

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
	assert.Equal(t, 65.0, cfg.Scoring.TipThreshold)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 600, cfg.Embedding.QPM)
	assert.True(t, cfg.RedisEnabled())

	// 未出现在 YAML 中的字段应保留默认值
	assert.Equal(t, constants.MaxKeywordTips, cfg.Scoring.MaxTips)
	assert.Equal(t, constants.PDFEngineLedongthuc, cfg.Extractor.PDFEngine)
	assert.Equal(t, constants.DefaultEmbeddingModel, cfg.Embedding.Model)
}

// TestLoadConfigMissingFileUsesDefaults 文件不存在时返回默认配置
func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, constants.SemanticScoreCacheTTL, cfg.CacheTTL())
	assert.Equal(t, constants.ScoreTipThreshold, cfg.Scoring.TipThreshold)
	assert.Equal(t, constants.CacheBackendMemory, cfg.Cache.Backend)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ATS_SERVER_ADDRESS", ":7070")
	t.Setenv("ATS_EMBEDDING_BASE_URL", "http://override/v1/embeddings")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "http://override/v1/embeddings", cfg.Embedding.BaseURL)
}

func TestLoadConfigGeminiDefaults(t *testing.T) {
	content := `
embedding:
  provider: gemini
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultGeminiEmbeddingModel, cfg.Embedding.Model, "gemini 不应沿用 HTTP 默认模型")
	assert.Zero(t, cfg.Embedding.Dimensions, "gemini 默认不校验维度")
	assert.Equal(t, "gemini-key", cfg.Embedding.APIKey)
}

func TestLoadConfigEmbeddingDefaultsPerModel(t *testing.T) {
	testCases := []struct {
		name       string
		content    string
		model      string
		dimensions int
	}{
		{"默认HTTP模型补齐维度", "embedding:\n  provider: http\n", constants.DefaultEmbeddingModel, constants.DefaultEmbeddingDimensions},
		{"自定义模型不补维度", "embedding:\n  model: bge-large-en\n", "bge-large-en", 0},
		{"显式维度保留", "embedding:\n  model: bge-large-en\n  dimensions: 1024\n", "bge-large-en", 1024},
		{"gemini显式模型", "embedding:\n  provider: gemini\n  model: gemini-embedding-001\n", "gemini-embedding-001", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tc.content), 0o644))

			cfg, err := LoadConfig(configPath)
			require.NoError(t, err)
			assert.Equal(t, tc.model, cfg.Embedding.Model)
			assert.Equal(t, tc.dimensions, cfg.Embedding.Dimensions)
		})
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"未知PDF引擎", func(c *Config) { c.Extractor.PDFEngine = "tika" }},
		{"未知向量提供方", func(c *Config) { c.Embedding.Provider = "local" }},
		{"redis缓存缺少地址", func(c *Config) { c.Cache.Backend = constants.CacheBackendRedis }},
		{"未知缓存后端", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"采样率越界", func(c *Config) { c.Tracing.SampleRatio = 1.5 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("ATS_TEST_ENV_FILE_VALUE=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("ATS_TEST_ENV_FILE_VALUE") })

	require.NoError(t, LoadEnvFile(envPath, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "loaded", os.Getenv("ATS_TEST_ENV_FILE_VALUE"))
}

func TestCreateSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, CreateSampleConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err, "示例配置应能被重新加载")
	assert.Equal(t, DefaultConfig().Server.Address, cfg.Server.Address)

	assert.Error(t, CreateSampleConfig(path), "已存在的文件不应被覆盖")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, GetDuration("3s", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("abc", time.Minute))
}
