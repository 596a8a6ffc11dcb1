package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ats-scorer/internal/config"
	appCoreLogger "ats-scorer/internal/logger"
	"ats-scorer/internal/processor"
	"ats-scorer/internal/storage"
	"ats-scorer/internal/types"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/pflag"
)

// 命令行参数定义
var (
	resumePath = pflag.StringP("resume", "r", "", "简历文件路径 (pdf/docx/txt, 必填)")
	jobPath    = pflag.StringP("job", "j", "", "职位描述文件路径 (pdf/docx/txt, 必填)")
	configPath = pflag.StringP("config", "c", "config.yaml", "配置文件路径")
	envFile    = pflag.String("env-file", ".env", ".env 文件路径")
	verbose    = pflag.BoolP("verbose", "v", false, "输出调试日志")
)

func main() {
	pflag.Parse()

	if *resumePath == "" || *jobPath == "" {
		fmt.Fprintln(os.Stderr, "错误: 必须同时指定 --resume 和 --job")
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := config.LoadEnvFile(*envFile); err != nil {
		return err
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if *verbose {
		cfg.Logger.Level = "debug"
	} else {
		cfg.Logger.Level = "warn"
	}
	logCloser, err := appCoreLogger.Init(cfg.Logger)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	// 命令行模式不发布评分事件
	cfg.RabbitMQ.URL = ""
	store, err := storage.NewStorage(ctx, cfg, appCoreLogger.Named("storage"))
	if err != nil {
		return err
	}
	defer store.Close()

	svc, err := processor.NewService(ctx, cfg, store, appCoreLogger.Named("processor"))
	if err != nil {
		return err
	}
	defer svc.Close()

	resume, err := readDocument(*resumePath)
	if err != nil {
		return err
	}
	job, err := readDocument(*jobPath)
	if err != nil {
		return err
	}

	result, err := svc.Score(ctx, processor.ScoreRequest{
		RequestID:      uuid.Must(uuid.NewV7()).String(),
		Resume:         resume,
		JobDescription: job,
	})
	if err != nil {
		appCoreLogger.Debug().Err(err).Msg("评分失败")
		return errors.New(processor.UserMessage(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func readDocument(path string) (*types.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文件 %s 失败: %w", path, err)
	}
	return &types.Document{Filename: filepath.Base(path), Content: content}, nil
}
