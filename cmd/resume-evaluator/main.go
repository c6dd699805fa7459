package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-evaluator-go/internal/api/handler"
	"resume-evaluator-go/internal/api/router"
	"resume-evaluator-go/internal/config"
	"resume-evaluator-go/internal/evaluator"
	appCoreLogger "resume-evaluator-go/internal/logger"
	"resume-evaluator-go/internal/parser"
	"resume-evaluator-go/internal/storage"
	"resume-evaluator-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	hertzadapter "github.com/hertz-contrib/logger/zerolog"
)

var version = "1.0.0" //nolint:gochecknoglobals

// @title Resume Evaluator API
// @version 1.0
// @description 简历与JD语义匹配评估服务
// @BasePath /api/v1
func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化zerolog并接管hertz的hlog
	appCoreLogger.Init(cfg.Logger)
	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化链路追踪
	shutdownTracing, err := tracing.InitTracerProvider(ctx, cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracing(shutdownCtx); err != nil {
			glog.Warnf("关闭链路追踪失败: %v", err)
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	// 初始化Embedder
	aliyunEmbedder, err := parser.NewAliyunEmbedder(cfg.Aliyun.APIKey, cfg.Aliyun.Embedding)
	if err != nil {
		glog.Fatalf("初始化阿里云Embedder失败: %v", err)
	}
	glog.Info("阿里云Embedder初始化成功")

	// 初始化文本提取器：配置了Tika时走Tika，否则使用Eino本地PDF解析
	var innerExtractor parser.TextExtractor
	if cfg.Tika.ServerURL != "" {
		var tikaOptions []parser.TikaOption
		if cfg.Tika.Timeout > 0 {
			tikaOptions = append(tikaOptions, parser.WithTikaTimeout(time.Duration(cfg.Tika.Timeout)*time.Second))
		}
		if cfg.Logger.Level == "debug" {
			tikaOptions = append(tikaOptions, parser.WithTikaLogger(log.New(os.Stderr, "[TikaMain] ", log.LstdFlags)))
		}
		innerExtractor = parser.NewTikaTextExtractor(cfg.Tika.ServerURL, tikaOptions...)
		glog.Info("使用Tika文本提取器")
	} else {
		einoExtractor, err := parser.NewEinoPDFTextExtractor(ctx)
		if err != nil {
			glog.Fatalf("创建Eino PDF提取器失败: %v", err)
		}
		innerExtractor = einoExtractor
		glog.Info("使用Eino PDF文本提取器")
	}
	textExtractor := parser.NewCompositeExtractor(innerExtractor)

	// 初始化实体识别器：配置了spaCy服务时走HTTP，否则使用内置prose识别器
	var recognizer parser.EntityRecognizer
	if cfg.NER.ServerURL != "" {
		var spacyOptions []parser.SpacyOption
		if cfg.NER.Timeout > 0 {
			spacyOptions = append(spacyOptions, parser.WithSpacyTimeout(time.Duration(cfg.NER.Timeout)*time.Second))
		}
		if cfg.Logger.Level == "debug" {
			spacyOptions = append(spacyOptions, parser.WithSpacyLogger(log.New(os.Stderr, "[SpacyMain] ", log.LstdFlags)))
		}
		recognizer = parser.NewSpacyEntityRecognizer(cfg.NER.ServerURL, spacyOptions...)
		glog.Info("使用spaCy实体识别器")
	} else {
		recognizer = parser.NewProseEntityRecognizer()
		glog.Info("使用内置prose实体识别器")
	}

	// 组装评估管道
	normalizer, err := evaluator.NewTextNormalizer()
	if err != nil {
		glog.Fatalf("初始化文本归一化器失败: %v", err)
	}

	entityExtractor := evaluator.NewEntityExtractor(recognizer, appCoreLogger.Logger)
	scorer := evaluator.NewRelevanceScorer(
		aliyunEmbedder,
		appCoreLogger.Logger,
		evaluator.WithHighlightThreshold(cfg.Evaluator.HighlightThreshold),
		evaluator.WithEmbedTimeout(config.GetDuration(cfg.Evaluator.EmbedTimeout, 30*time.Second)),
	)
	explainer := evaluator.NewExplanationGenerator(entityExtractor, normalizer)
	pipeline := evaluator.NewRankingPipeline(normalizer, entityExtractor, scorer, explainer, appCoreLogger.Logger)
	glog.Info("评估管道初始化成功")

	evaluateHandler := handler.NewEvaluateHandler(cfg, storageManager, textExtractor, pipeline)

	// 启动归档消费者（依赖RabbitMQ与MySQL，缺失时只记录警告）
	if storageManager.RabbitMQ != nil && storageManager.MySQL != nil {
		go func() {
			if err := evaluateHandler.StartArchiveConsumer(context.Background()); err != nil {
				glog.Warnf("启动归档消费者失败: %v", err)
			}
		}()
	} else {
		glog.Warn("RabbitMQ或MySQL未就绪，评估结果不会归档")
	}

	// 启动HTTP服务器
	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		// 请求体上限放宽到单文件限制的32倍，一次请求会携带多份简历
		server.WithMaxRequestBodySize(cfg.Server.MaxUploadSizeMB*1024*1024*32),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, cfg, evaluateHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，版本: %s, 监听地址: %s", version, cfg.Server.Address)

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
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}
