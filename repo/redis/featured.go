package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Xushengqwer/publication_service/constant"
	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/myErrors"
)

// FeaturedCache 定义了精选区稿件列表的缓存操作接口。
// - 目标: 首页精选区是读最热的路径，整个列表作为一个值整体读写。
// - 重排提交后立即重建；定时任务兜底对齐旁路变更。
type FeaturedCache interface {
	// GetFeaturedPosts 读取精选区稿件列表（按 importance_order 升序的快照）。
	// - 缓存未命中时返回 myErrors.ErrCacheMiss，上层服务需要处理回源。
	GetFeaturedPosts(ctx context.Context) ([]*entities.Post, error)

	// SetFeaturedPosts 整体重建精选区缓存。
	SetFeaturedPosts(ctx context.Context, posts []*entities.Post) error

	// InvalidateFeaturedPosts 删除精选区缓存，下次读取回源。
	InvalidateFeaturedPosts(ctx context.Context) error
}

// featuredCacheImpl 是 FeaturedCache 接口的 Redis 实现。
type featuredCacheImpl struct {
	redisClient *redis.Client
	logger      *core.ZapLogger
	ttl         time.Duration // 0 表示不过期，依赖任务刷新
}

// NewFeaturedCache 是 featuredCacheImpl 的构造函数。
func NewFeaturedCache(redisClient *redis.Client, logger *core.ZapLogger, ttl time.Duration) FeaturedCache {
	return &featuredCacheImpl{
		redisClient: redisClient,
		logger:      logger,
		ttl:         ttl,
	}
}

// GetFeaturedPosts 实现精选区列表读取。
func (c *featuredCacheImpl) GetFeaturedPosts(ctx context.Context) ([]*entities.Post, error) {
	key := constant.FeaturedPostsKey

	jsonData, err := c.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.logger.Info("精选区列表缓存未命中", zap.String("key", key))
			return nil, myErrors.ErrCacheMiss
		}
		c.logger.Error("从 Redis 读取精选区列表失败", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("读取精选区缓存 (key: %s) 失败: %w", key, err)
	}

	var posts []*entities.Post
	if jsonErr := json.Unmarshal([]byte(jsonData), &posts); jsonErr != nil {
		// 缓存数据可能已损坏，删除后让下次读取回源
		c.logger.Error("反序列化精选区缓存数据失败，将删除该 key",
			zap.Error(jsonErr),
			zap.String("key", key),
		)
		if delErr := c.redisClient.Del(ctx, key).Err(); delErr != nil {
			c.logger.Error("删除损坏的精选区缓存失败", zap.Error(delErr), zap.String("key", key))
		}
		return nil, fmt.Errorf("解析精选区缓存 (key: %s) 数据失败: %w", key, jsonErr)
	}

	c.logger.Debug("成功从 Redis 读取精选区列表", zap.String("key", key), zap.Int("count", len(posts)))
	return posts, nil
}

// SetFeaturedPosts 实现精选区列表整体重建。
func (c *featuredCacheImpl) SetFeaturedPosts(ctx context.Context, posts []*entities.Post) error {
	key := constant.FeaturedPostsKey

	jsonData, err := json.Marshal(posts)
	if err != nil {
		c.logger.Error("序列化精选区列表失败", zap.Error(err), zap.Int("count", len(posts)))
		return fmt.Errorf("序列化精选区列表失败: %w", err)
	}

	if err := c.redisClient.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.logger.Error("写入精选区缓存失败", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("写入精选区缓存 (key: %s) 失败: %w", key, err)
	}

	c.logger.Info("精选区缓存已重建", zap.String("key", key), zap.Int("count", len(posts)))
	return nil
}

// InvalidateFeaturedPosts 实现精选区缓存删除。
func (c *featuredCacheImpl) InvalidateFeaturedPosts(ctx context.Context) error {
	key := constant.FeaturedPostsKey
	if err := c.redisClient.Del(ctx, key).Err(); err != nil {
		c.logger.Error("删除精选区缓存失败", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("删除精选区缓存 (key: %s) 失败: %w", key, err)
	}
	return nil
}
