package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ats-scorer/internal/api/handler"
	"ats-scorer/internal/api/router"
	"ats-scorer/internal/config"
	appCoreLogger "ats-scorer/internal/logger"
	"ats-scorer/internal/processor"
	"ats-scorer/internal/storage"
	"ats-scorer/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

var (
	version     = "1.0.0"      //nolint:gochecknoglobals
	serviceName = "ats-scorer" //nolint:gochecknoglobals
)

func main() {
	var configPath, envFile string
	var writeSample bool
	pflag.StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")
	pflag.StringVar(&envFile, "env-file", ".env", "Path to .env file")
	pflag.BoolVar(&writeSample, "write-sample-config", false, "Write a sample config to --config and exit")
	pflag.Parse()

	if writeSample {
		if err := config.CreateSampleConfig(configPath); err != nil {
			glog.Fatalf("创建示例配置失败: %v", err)
		}
		glog.Infof("示例配置已写入 %s", configPath)
		return
	}

	if err := config.LoadEnvFile(envFile); err != nil {
		glog.Fatalf("加载环境变量失败: %v", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}

	logCloser, err := appCoreLogger.Init(cfg.Logger)
	if err != nil {
		glog.Fatalf("初始化日志失败: %v", err)
	}
	defer logCloser.Close()
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitTracerProvider(ctx, tracing.ProviderConfig{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: serviceNameOr(cfg.Tracing.ServiceName),
		Version:     version,
		SampleRatio: cfg.Tracing.SampleRatio,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg, appCoreLogger.Named("storage"))
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	scoringService, err := processor.NewService(ctx, cfg, storageManager, appCoreLogger.Named("processor"))
	if err != nil {
		glog.Fatalf("初始化评分服务失败: %v", err)
	}
	defer scoringService.Close()
	glog.Info("评分服务初始化成功")

	scoreHandler := handler.NewScoreHandler(scoringService, int64(cfg.MaxUploadBytes()), appCoreLogger.Named("handler"))

	requestTimeout := config.GetDuration(cfg.Server.RequestTimeout, 60*time.Second)
	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		// 两个文件加上表单开销
		server.WithMaxRequestBodySize(2*cfg.MaxUploadBytes()+(1<<20)),
		server.WithReadTimeout(requestTimeout),
		server.WithWriteTimeout(requestTimeout),
		server.WithExitWaitTime(5*time.Second),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, scoreHandler, cfg.Server.APIKeys)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

func serviceNameOr(name string) string {
	if name == "" {
		return serviceName
	}
	return name
}
