package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithFileOutput(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "logs", "app.log")

	closer, err := Init(Config{Level: "debug", Format: "json", FilePath: logPath})
	require.NoError(t, err, "初始化日志不应返回错误")
	defer closer.Close()

	Info().Str("case", "file").Msg("写入日志文件")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err, "日志文件应当存在")
	assert.Contains(t, string(data), "写入日志文件")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInitInvalidLevelFallsBackToInfo(t *testing.T) {
	closer, err := Init(Config{Level: "not-a-level"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel(), "无效级别应回退到 info")
}
