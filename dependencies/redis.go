package dependencies

import (
	"context"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Xushengqwer/publication_service/config"
)

// InitRedis 初始化 Redis 客户端并做一次连通性探测。
func InitRedis(cfg *config.RedisConfig, logger *core.ZapLogger) (*redis.Client, error) {
	if cfg == nil || cfg.Address == "" {
		logger.Error("Redis 配置为空或缺少 address")
		return nil, fmt.Errorf("redis 配置不完整，缺少 address")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Redis 连通性探测失败", zap.Error(err), zap.String("address", cfg.Address))
		return nil, fmt.Errorf("连接 Redis (%s) 失败: %w", cfg.Address, err)
	}

	logger.Info("Redis 客户端初始化成功",
		zap.String("address", cfg.Address),
		zap.Int("db", cfg.DB),
	)
	return client, nil
}
