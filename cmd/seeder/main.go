package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/publication_service/config"
	"github.com/Xushengqwer/publication_service/dependencies"
	"github.com/Xushengqwer/publication_service/mq/producer"
	"github.com/Xushengqwer/publication_service/repo/mysql"
	"github.com/Xushengqwer/publication_service/service"
)

func main() {
	// --- 0. 解析命令行参数 ---
	var numPosts int
	var configFile string
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "配置文件路径")
	flag.IntVar(&numPosts, "n", 50, "要生成的稿件数量 (默认: 50)")
	var waitSeconds int
	flag.IntVar(&waitSeconds, "wait", 5, "数据填充后等待的秒数 (确保异步审计事件发送完成, 默认: 5秒)")
	flag.Parse()

	absConfigFile, err := filepath.Abs(configFile)
	if err != nil {
		fmt.Printf("无法获取配置文件的绝对路径 '%s': %v\n", configFile, err)
		absConfigFile = configFile
	}
	fmt.Printf("准备使用配置文件 '%s' 生成 %d 条测试稿件...\n", absConfigFile, numPosts)

	if numPosts <= 0 {
		fmt.Println("错误: 生成的稿件数量必须大于 0")
		os.Exit(1)
	}
	if waitSeconds < 0 {
		fmt.Println("错误: 等待秒数不能为负")
		os.Exit(1)
	}

	// --- 1. 加载配置 ---
	var cfg appConfig.PublicationConfig
	if err := core.LoadConfig(absConfigFile, &cfg); err != nil {
		fmt.Printf("加载配置失败 (%s): %v\n", absConfigFile, err)
		os.Exit(1)
	}
	fmt.Println("配置加载成功。")
	if cfg.MySQLConfig.Write.DSN == "" {
		fmt.Println("警告: MySQL Write DSN 为空，请检查配置文件与环境变量。")
	}

	// --- 2. 初始化日志记录器 ---
	logger, loggerErr := core.NewZapLogger(cfg.ZapConfig)
	if loggerErr != nil {
		fmt.Printf("初始化 ZapLogger 失败: %v\n", loggerErr)
		os.Exit(1)
	}
	defer func() {
		logger.Info("Seeder: 正在刷新日志...")
		_ = logger.Logger().Sync()
	}()
	logger.Info("Logger 初始化成功 (Seeder)")

	// --- 3. 初始化 MySQL 数据库连接 ---
	db, dbErr := dependencies.InitMySQL(&cfg, logger)
	if dbErr != nil {
		logger.Fatal("初始化 MySQL 失败 (Seeder)", zap.Error(dbErr))
	}
	logger.Info("MySQL 连接成功 (Seeder)")

	// --- 4. 初始化 Kafka 审计事件生产者 ---
	auditProducer := producer.NewAuditProducer(cfg.KafkaConfig, logger)
	logger.Info("Kafka 审计事件生产者已初始化 (Seeder)")

	// --- 5. 初始化 COS 客户端 ---
	cosClient, cosErr := dependencies.InitCOS(&cfg.COSConfig, logger)
	if cosErr != nil {
		logger.Fatal("初始化 COS 客户端失败 (Seeder)", zap.Error(cosErr))
	}
	logger.Info("COS 客户端初始化成功 (Seeder)")

	// --- 6. 初始化 Repositories 与 Services ---
	postRepo := mysql.NewPostRepository(db, logger)
	authorRepo := mysql.NewAuthorRepository(db, logger)
	userRepo := mysql.NewUserRepository(db, logger)

	authSvc := service.NewAuthService(userRepo, logger)
	postSvc := service.NewPostService(db, postRepo, authorRepo, authSvc, cosClient, auditProducer, logger)
	logger.Info("PostService 已初始化 (Seeder)")

	// --- 7. 执行数据填充 ---
	ctx := context.Background()
	startTime := time.Now()
	logger.Info("开始执行数据填充...", zap.Int("预计数量", numPosts))

	Seed(ctx, db, authSvc, postSvc, logger, numPosts)

	duration := time.Since(startTime)
	logger.Info("数据填充主要逻辑完成！", zap.Duration("耗时", duration))

	// --- 8. 等待一段时间以确保异步审计事件有时间发送 ---
	if waitSeconds > 0 {
		logger.Info(fmt.Sprintf("Seeder: 等待 %d 秒以允许异步审计事件发送...", waitSeconds))
		time.Sleep(time.Duration(waitSeconds) * time.Second)
	}

	if err := auditProducer.Close(); err != nil {
		logger.Error("关闭 Kafka 审计事件生产者失败", zap.Error(err))
	}

	fmt.Printf("数据填充完成！总耗时（包括等待）: %v\n", time.Since(startTime))
	logger.Info("Seeder main: 所有任务完成，准备退出。")
}
