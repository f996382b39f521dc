package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Xushengqwer/publication_service/docs" // swagger 文档

	appConfig "github.com/Xushengqwer/publication_service/config"
	"github.com/Xushengqwer/publication_service/constant"
	"github.com/Xushengqwer/publication_service/controller"
	"github.com/Xushengqwer/publication_service/dependencies"
	"github.com/Xushengqwer/publication_service/mq/producer"
	"github.com/Xushengqwer/publication_service/repo/mysql"
	redisrepo "github.com/Xushengqwer/publication_service/repo/redis"
	"github.com/Xushengqwer/publication_service/router"
	"github.com/Xushengqwer/publication_service/service"
	"github.com/Xushengqwer/publication_service/tasks"

	sharedCore "github.com/Xushengqwer/go-common/core"
	sharedTracing "github.com/Xushengqwer/go-common/core/tracing"

	"go.uber.org/zap"
)

// @title           Publication Service API
// @version         1.0
// @description     医学内容发布服务，提供稿件生命周期管理、审核流转、重要位运营与浏览量查询。
// @termsOfService  http://swagger.io/terms/

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8082

// @schemes http https
func main() {
	// --- 配置和基础设置 ---
	var configFile string
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "Path to configuration file")
	flag.Parse()

	// 1. 加载配置
	var cfg appConfig.PublicationConfig
	if err := sharedCore.LoadConfig(configFile, &cfg); err != nil {
		log.Fatalf("FATAL: 加载配置失败 (%s): %v", configFile, err)
	}

	// 打印最终生效的配置以供调试
	configBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		log.Fatalf("无法序列化配置以进行打印: %v", err)
	}
	log.Printf("✅ 配置加载成功！最终生效的配置如下:\n%s\n", string(configBytes))

	// 2. 初始化 Logger
	logger, loggerErr := sharedCore.NewZapLogger(cfg.ZapConfig)
	if loggerErr != nil {
		log.Fatalf("FATAL: 初始化 ZapLogger 失败: %v", loggerErr)
	}
	defer func() {
		logger.Info("正在同步日志...")
		if err := logger.Logger().Sync(); err != nil {
			log.Printf("WARN: ZapLogger Sync 失败: %v\n", err)
		}
	}()
	logger.Info("Logger 初始化成功")

	// 3. 初始化 TracerProvider
	if cfg.TracerConfig.Enabled {
		tracerShutdown, err := sharedTracing.InitTracerProvider(
			constant.ServiceName,
			constant.ServiceVersion,
			cfg.TracerConfig,
		)
		if err != nil {
			logger.Fatal("初始化 TracerProvider 失败", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Info("正在关闭 TracerProvider...")
			if err := tracerShutdown(ctx); err != nil {
				logger.Error("关闭 TracerProvider 失败", zap.Error(err))
			} else {
				logger.Info("TracerProvider 已成功关闭")
			}
		}()
		logger.Info("分布式追踪已初始化")
	} else {
		logger.Info("分布式追踪已禁用")
	}

	// --- 4. 初始化核心依赖 ---
	// 4.1 数据库 (MySQL)
	db, dbErr := dependencies.InitMySQL(&cfg, logger)
	if dbErr != nil {
		logger.Fatal("初始化 MySQL 数据库失败", zap.Error(dbErr))
	}
	logger.Info("MySQL 数据库连接成功")

	// 4.2 Redis
	rdb, redisErr := dependencies.InitRedis(&cfg.RedisConfig, logger)
	if redisErr != nil {
		logger.Fatal("初始化 Redis 失败", zap.Error(redisErr))
	}
	logger.Info("Redis 连接成功")

	// 4.3 COS 客户端
	cosClient, cosErr := dependencies.InitCOS(&cfg.COSConfig, logger)
	if cosErr != nil {
		logger.Fatal("初始化 COS 客户端失败", zap.Error(cosErr))
	}
	logger.Info("COS 客户端初始化成功")

	// 4.4 统计系统客户端（出站调用带 OTel 追踪）
	analyticsClient, analyticsErr := dependencies.InitAnalyticsClient(&cfg.AnalyticsConfig, logger)
	if analyticsErr != nil {
		logger.Fatal("初始化统计系统客户端失败", zap.Error(analyticsErr))
	}
	logger.Info("统计系统客户端初始化成功")

	// 4.5 Kafka 审计事件生产者
	if len(cfg.KafkaConfig.Brokers) == 0 {
		logger.Fatal("未配置 Kafka brokers，审计事件无处可发")
	}
	auditProducer := producer.NewAuditProducer(cfg.KafkaConfig, logger)
	logger.Info("Kafka 审计事件生产者已初始化")

	// --- 5. 初始化数据仓库层 (Repositories) ---
	postRepo := mysql.NewPostRepository(db, logger)
	postQueryRepo := mysql.NewPostQueryRepository(db, logger)
	authorRepo := mysql.NewAuthorRepository(db, logger)
	userRepo := mysql.NewUserRepository(db, logger)
	postBatchRepo := mysql.NewPostBatchRepository(db, logger, cfg.ViewSyncConfig)
	logger.Debug("MySQL Repositories 初始化完成")

	featuredCache := redisrepo.NewFeaturedCache(
		rdb,
		logger,
		time.Duration(cfg.RedisConfig.FeaturedCacheTTLSeconds)*time.Second,
	)
	logger.Debug("Redis Repositories 初始化完成")

	// --- 6. 初始化服务层 (Services) ---
	authService := service.NewAuthService(userRepo, logger)
	postService := service.NewPostService(db, postRepo, authorRepo, authService, cosClient, auditProducer, logger)
	postListService := service.NewPostListService(postQueryRepo, logger)
	authorService := service.NewAuthorService(db, postRepo, authorRepo, auditProducer, logger)
	importanceService := service.NewImportanceService(db, postRepo, postBatchRepo, authService, featuredCache, logger)
	viewCountService := service.NewViewCountService(postRepo, postBatchRepo, analyticsClient, logger)
	logger.Debug("Services 初始化完成")

	// --- 7. 初始化控制器层 (Controllers) ---
	postController := controller.NewPostController(postListService, postService, importanceService, viewCountService)
	postAdminController := controller.NewPostAdminController(authService, postService, postListService, authorService, importanceService)
	logger.Debug("Controllers 初始化完成")

	// --- 8. 初始化定时任务 ---
	reconcileTask := tasks.NewViewReconcileTask(viewCountService, logger)
	featuredTask := tasks.NewFeaturedCacheTask(importanceService, logger)
	logger.Info("后台定时任务已初始化并启动")

	// --- 9. 设置 Gin 路由器 ---
	ginRouter := router.SetupRouter(logger, &cfg, postController, postAdminController)
	logger.Info("Gin 路由器已设置")

	// --- 10. 启动 HTTP 服务器 ---
	serverAddr := fmt.Sprintf(":%s", cfg.ServerConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: ginRouter,
	}

	go func() {
		logger.Info("HTTP 服务器开始监听", zap.String("address", serverAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
		logger.Info("HTTP 服务器已停止监听")
	}()

	// --- 11. 实现优雅关停 ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	logger.Info("收到关停信号，开始优雅退出...", zap.String("signal", receivedSignal.String()))

	shutdownCtx, shutdownCancelFunc := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancelFunc()

	// a. 停止 HTTP 服务器 (允许处理完当前请求)
	logger.Info("正在关闭 HTTP 服务器...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭 HTTP 服务器失败", zap.Error(err))
	} else {
		logger.Info("HTTP 服务器已成功关闭")
	}

	// b. 停止定时任务调度器 (等待任务结束)
	logger.Info("正在停止定时任务...")
	reconcileStopCtx := reconcileTask.Stop()
	featuredStopCtx := featuredTask.Stop()

	for _, stopCtx := range []context.Context{reconcileStopCtx, featuredStopCtx} {
		select {
		case <-stopCtx.Done():
		case <-shutdownCtx.Done():
			logger.Error("等待定时任务停止超时", zap.Error(shutdownCtx.Err()))
		}
	}
	logger.Info("所有定时任务已停止")

	// c. 关闭 Kafka 生产者，冲刷未发送的审计事件
	logger.Info("正在关闭 Kafka 审计事件生产者...")
	if err := auditProducer.Close(); err != nil {
		logger.Error("关闭 Kafka 审计事件生产者失败", zap.Error(err))
	} else {
		logger.Info("Kafka 审计事件生产者已关闭")
	}

	logger.Info("服务已成功关闭")
}
