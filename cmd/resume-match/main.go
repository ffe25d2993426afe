package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/api/router"
	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	appCoreLogger "resume-match-go/internal/logger"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/tracing"
)

func main() {
	var configPath, address string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径，为空时按默认位置查找")
	pflag.StringVarP(&address, "address", "a", "", "监听地址，覆盖 server.address")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}
	if address != "" {
		cfg.Server.Address = address
	}

	zl := initLogger(cfg.Logger)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, tracing.ProviderConfig{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: constants.Version,
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	svc, err := processor.NewResumeServiceFromConfig(ctx, cfg, &zl)
	if err != nil {
		glog.Fatalf("初始化简历服务失败: %v", err)
	}
	status := svc.Status()
	glog.Infof("简历服务初始化成功: extractor=%t document=%t", status.ExtractorConfigured, status.DocumentConversion)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize((cfg.Server.MaxUploadMB+1)<<20),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, handler.NewResumeHandler(svc, cfg.Server.MaxUploadMB), cfg.Server.APIKeys)
	if len(cfg.Server.APIKeys) == 0 {
		glog.Warn("未配置 server.api_keys，接口不做鉴权")
	}
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
	if err := svc.Close(); err != nil {
		glog.Errorf("释放服务资源失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化全局 zerolog，并把 Hertz 的 hlog 接到同一个 logger 上
func initLogger(cfg config.LoggerConfig) zerolog.Logger {
	zl := appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		TimeFormat:   cfg.TimeFormat,
		ReportCaller: cfg.ReportCaller,
		Output:       os.Stderr,
	})

	glog.SetLogger(hertzadapter.From(zl))
	if zl.GetLevel() <= zerolog.DebugLevel {
		glog.SetLevel(glog.LevelDebug)
	} else {
		glog.SetLevel(glog.LevelInfo)
	}
	return zl
}
