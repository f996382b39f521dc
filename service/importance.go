package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/models/dto"
	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/vo"
	"github.com/Xushengqwer/publication_service/myErrors"
	"github.com/Xushengqwer/publication_service/repo/mysql"
	redisCache "github.com/Xushengqwer/publication_service/repo/redis"
)

// ErrEmptyImportanceSequence 空的重要位序列是校验错误，不做任何变更。
var ErrEmptyImportanceSequence = errors.New("importance: 重要位序列不能为空")

// ImportanceService 维护首页重要位（精选位）的稿件集合与排序。
// - 排序是 1 起始的连续序列，序列里的位置就是权重。
// - 重排是全量覆盖：不在新序列里的旧重要稿件会被整体降级。
type ImportanceService interface {
	// SetImportantOrder 用给定的稿件ID序列整体重建重要位排序。
	// - 空序列返回 ErrEmptyImportanceSequence，不产生变更。
	// - 任何一个ID不存在时整体拒绝，返回 commonerrors.ErrRepoNotFound。
	SetImportantOrder(ctx context.Context, principal *Principal, req *dto.SetImportantOrderRequest) error

	// GetFeaturedPosts 返回当前重要位稿件（按排序升序），优先走 Redis 缓存。
	GetFeaturedPosts(ctx context.Context) ([]*vo.PostResponse, error)

	// ListFeaturedCandidates 分页返回可入选重要位的已发布稿件。
	// 已配好精选图的排前面，运营可以直接从列表头部选用。
	ListFeaturedCandidates(ctx context.Context, page, pageSize int) (*vo.PostPageVO, error)

	// RebuildFeaturedCache 从数据库全量重建重要位缓存（定时任务调用）。
	RebuildFeaturedCache(ctx context.Context) error
}

type importanceService struct {
	db            *gorm.DB
	postRepo      mysql.PostRepository
	batchRepo     mysql.PostBatchRepository
	authSvc       AuthService
	featuredCache redisCache.FeaturedCache
	logger        *core.ZapLogger
}

// NewImportanceService 是 importanceService 的构造函数。
func NewImportanceService(
	db *gorm.DB,
	postRepo mysql.PostRepository,
	batchRepo mysql.PostBatchRepository,
	authSvc AuthService,
	featuredCache redisCache.FeaturedCache,
	logger *core.ZapLogger,
) ImportanceService {
	return &importanceService{
		db:            db,
		postRepo:      postRepo,
		batchRepo:     batchRepo,
		authSvc:       authSvc,
		featuredCache: featuredCache,
		logger:        logger,
	}
}

// SetImportantOrder 实现重要位排序的全量重建。
func (s *importanceService) SetImportantOrder(ctx context.Context, principal *Principal, req *dto.SetImportantOrderRequest) error {
	if err := s.authSvc.CanSetImportance(principal); err != nil {
		return err
	}

	// 空序列是校验失败，任何稿件的重要位状态都不动
	if len(req.PostIDs) == 0 {
		return ErrEmptyImportanceSequence
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 序列里的ID必须全部存在，缺一个就整体拒绝
		count, err := s.postRepo.CountPostsByIDs(ctx, tx, req.PostIDs)
		if err != nil {
			return fmt.Errorf("校验重要位序列失败: %w", err)
		}
		if count != int64(len(req.PostIDs)) {
			s.logger.Warn("重要位序列包含不存在的稿件，整体拒绝",
				zap.Int("requested", len(req.PostIDs)),
				zap.Int64("found", count),
			)
			return commonerrors.ErrRepoNotFound
		}

		// 2. 降级不在新序列里的旧重要稿件
		currentIDs, err := s.postRepo.FindImportantPostIDs(ctx, tx)
		if err != nil {
			return fmt.Errorf("读取当前重要位稿件失败: %w", err)
		}
		inSequence := make(map[uint64]struct{}, len(req.PostIDs))
		for _, id := range req.PostIDs {
			inSequence[id] = struct{}{}
		}
		var demoted []uint64
		for _, id := range currentIDs {
			if _, ok := inSequence[id]; !ok {
				demoted = append(demoted, id)
			}
		}
		if len(demoted) > 0 {
			if err := s.postRepo.ClearImportance(ctx, tx, demoted); err != nil {
				return fmt.Errorf("降级旧重要稿件失败: %w", err)
			}
		}

		// 3. 按序列位置写入 1 起始的连续排序
		for i, id := range req.PostIDs {
			if err := s.postRepo.SetImportance(ctx, tx, id, uint(i+1)); err != nil {
				return fmt.Errorf("写入重要位排序失败 (postID: %d): %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 序列刚提交，按它直接装配缓存即可，失败只记日志（定时任务会补上）
	if cacheErr := s.rebuildCacheFromSequence(ctx, req.PostIDs); cacheErr != nil {
		s.logger.Warn("重要位变更后重建缓存失败", zap.Error(cacheErr))
	}
	return nil
}

// rebuildCacheFromSequence 按已提交的ID序列批量取稿件并整体写入缓存。
// 省掉一次按 importance_order 排序的全表查询；序列顺序就是缓存顺序。
func (s *importanceService) rebuildCacheFromSequence(ctx context.Context, sequence []uint64) error {
	posts, err := s.batchRepo.GetPostsByIDs(ctx, sequence)
	if err != nil {
		return fmt.Errorf("批量读取重要位稿件失败: %w", err)
	}
	byID := make(map[uint64]*entities.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*entities.Post, 0, len(sequence))
	for _, id := range sequence {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return s.featuredCache.SetFeaturedPosts(ctx, ordered)
}

// GetFeaturedPosts 实现重要位稿件读取。
func (s *importanceService) GetFeaturedPosts(ctx context.Context) ([]*vo.PostResponse, error) {
	posts, err := s.featuredCache.GetFeaturedPosts(ctx)
	if err == nil {
		return vo.MapPostsToResponseVOs(posts), nil
	}
	if !errors.Is(err, myErrors.ErrCacheMiss) {
		s.logger.Warn("读取重要位缓存失败，回退数据库", zap.Error(err))
	}

	posts, err = s.postRepo.FindImportantPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("从数据库读取重要位稿件失败: %w", err)
	}

	// 回填缓存，失败不影响本次读取
	if cacheErr := s.featuredCache.SetFeaturedPosts(ctx, posts); cacheErr != nil {
		s.logger.Warn("回填重要位缓存失败", zap.Error(cacheErr))
	}
	return vo.MapPostsToResponseVOs(posts), nil
}

// ListFeaturedCandidates 实现候选稿件分页列表。
func (s *importanceService) ListFeaturedCandidates(ctx context.Context, page, pageSize int) (*vo.PostPageVO, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	posts, total, err := s.postRepo.FindFeaturedCandidates(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("查询重要位候选稿件失败: %w", err)
	}
	return &vo.PostPageVO{
		Posts: vo.MapPostsToResponseVOs(posts),
		Total: total,
	}, nil
}

// RebuildFeaturedCache 实现缓存全量重建。
func (s *importanceService) RebuildFeaturedCache(ctx context.Context) error {
	posts, err := s.postRepo.FindImportantPosts(ctx)
	if err != nil {
		return fmt.Errorf("读取重要位稿件失败: %w", err)
	}
	// 重要位被清空时直接删缓存键，读路径走正常的缓存未命中
	if len(posts) == 0 {
		if err := s.featuredCache.InvalidateFeaturedPosts(ctx); err != nil {
			return fmt.Errorf("清空重要位缓存失败: %w", err)
		}
		s.logger.Info("重要位为空，缓存键已删除")
		return nil
	}
	if err := s.featuredCache.SetFeaturedPosts(ctx, posts); err != nil {
		return fmt.Errorf("写入重要位缓存失败: %w", err)
	}
	s.logger.Info("重要位缓存已重建", zap.Int("count", len(posts)))
	return nil
}
