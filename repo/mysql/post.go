package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
)

// PostRepository 定义了稿件数据在 MySQL 中的持久化操作接口。
// 接口的设计旨在将数据访问逻辑与业务逻辑（服务层）解耦。
// - 参与事务的方法额外接收 db *gorm.DB，由服务层传入事务句柄。
type PostRepository interface {
	// CreatePost 持久化一条新的稿件记录。
	// - 这是稿件生命周期的起点，创建后状态为草稿。
	CreatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error

	// GetPostByID 根据单个 ID 检索稿件（预加载方向与标签）。
	// - 如果未找到稿件，返回 commonerrors.ErrRepoNotFound 错误。
	GetPostByID(ctx context.Context, id uint64) (*entities.Post, error)

	// UpdateFields 按字段映射更新指定稿件。
	// - 总是会自动更新稿件的修改时间 (updated_at)。
	// - 目标行不存在（或已软删除）时返回 commonerrors.ErrRepoNotFound。
	UpdateFields(ctx context.Context, db *gorm.DB, postID uint64, fields map[string]interface{}) error

	// ReplaceDirections 全量替换稿件的方向关联。
	ReplaceDirections(ctx context.Context, db *gorm.DB, post *entities.Post, directionIDs []uint64) error

	// ReplaceTags 全量替换稿件的标签关联。
	ReplaceTags(ctx context.Context, db *gorm.DB, post *entities.Post, tagIDs []uint64) error

	// CountPostsByIDs 统计给定 ID 集合中实际存在的稿件数。
	// - 重排前校验未知 ID 用，任何缺失都会导致整个重排被拒绝。
	CountPostsByIDs(ctx context.Context, db *gorm.DB, ids []uint64) (int64, error)

	// FindImportantPostIDs 返回当前所有重要位稿件的 ID。
	FindImportantPostIDs(ctx context.Context, db *gorm.DB) ([]uint64, error)

	// ClearImportance 撤下给定稿件的重要位标记与排序。
	ClearImportance(ctx context.Context, db *gorm.DB, ids []uint64) error

	// SetImportance 将稿件标记为重要位并写入 1 基排序值。
	SetImportance(ctx context.Context, db *gorm.DB, id uint64, order uint) error

	// FindImportantPosts 按 importance_order 升序返回精选区稿件。
	FindImportantPosts(ctx context.Context) ([]*entities.Post, error)

	// FindFeaturedCandidates 分页返回可进入精选区的候选稿件。
	// - 候选 = 已发布且当前不在精选区；带精选配图的排在前面。
	FindFeaturedCandidates(ctx context.Context, offset, limit int) ([]*entities.Post, int64, error)

	// FindDirectionsByIDs / FindTagsByIDs 字典查询，关联替换前解析实体用。
	FindDirectionsByIDs(ctx context.Context, ids []uint64) ([]*entities.Direction, error)
	FindTagsByIDs(ctx context.Context, ids []uint64) ([]*entities.Tag, error)
}

// postRepository 是 PostRepository 接口针对 MySQL 的具体实现。
type postRepository struct {
	db     *gorm.DB        // GORM 数据库实例
	logger *core.ZapLogger // 日志记录器实例
}

// NewPostRepository 是 postRepository 的构造函数。
func NewPostRepository(db *gorm.DB, logger *core.ZapLogger) PostRepository {
	return &postRepository{
		db:     db,
		logger: logger,
	}
}

// CreatePost 实现稿件的数据库插入操作。
func (r *postRepository) CreatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error {
	// 使用传入的 db 对象（通常为事务对象 tx）执行数据库操作。
	// GORM 会自动处理 BaseModel 中的 CreatedAt 和 UpdatedAt 字段。
	if err := db.WithContext(ctx).Create(post).Error; err != nil {
		// 仓库层直接返回数据库错误，由服务层决定如何处理或包装。
		return err
	}
	return nil
}

// GetPostByID 实现根据单个 ID 获取稿件。
func (r *postRepository) GetPostByID(ctx context.Context, id uint64) (*entities.Post, error) {
	var post entities.Post

	// First 会自动添加 "WHERE id = ?" 和 "LIMIT 1" 条件，
	// 未找到时返回 gorm.ErrRecordNotFound。
	err := r.db.WithContext(ctx).
		Preload("Directions").
		Preload("Tags").
		First(&post, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("根据 ID 获取稿件未找到", zap.Uint64("postID", id), zap.Error(err))
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据 ID 获取稿件数据库查询失败", zap.Uint64("postID", id), zap.Error(err))
		return nil, err
	}

	return &post, nil
}

// UpdateFields 按字段映射更新稿件。
func (r *postRepository) UpdateFields(ctx context.Context, db *gorm.DB, postID uint64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		r.logger.Info("没有提供任何有效的字段来更新稿件", zap.Uint64("postID", postID))
		return nil
	}

	// 总是更新 updated_at 字段
	fields["updated_at"] = time.Now()

	result := db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("id = ? AND deleted_at IS NULL", postID).
		Updates(fields)

	if result.Error != nil {
		r.logger.Error("更新稿件数据库操作失败",
			zap.Error(result.Error),
			zap.Uint64("postID", postID),
			zap.Any("updateData", fields),
		)
		return result.Error
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("尝试更新稿件但未找到记录或记录已被删除", zap.Uint64("postID", postID))
		return commonerrors.ErrRepoNotFound
	}

	return nil
}

// ReplaceDirections 全量替换稿件的方向关联。
func (r *postRepository) ReplaceDirections(ctx context.Context, db *gorm.DB, post *entities.Post, directionIDs []uint64) error {
	directions, err := r.FindDirectionsByIDs(ctx, directionIDs)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Model(post).Association("Directions").Replace(directions); err != nil {
		r.logger.Error("替换稿件方向关联失败", zap.Error(err), zap.Uint64("postID", post.ID))
		return err
	}
	return nil
}

// ReplaceTags 全量替换稿件的标签关联。
func (r *postRepository) ReplaceTags(ctx context.Context, db *gorm.DB, post *entities.Post, tagIDs []uint64) error {
	tags, err := r.FindTagsByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Model(post).Association("Tags").Replace(tags); err != nil {
		r.logger.Error("替换稿件标签关联失败", zap.Error(err), zap.Uint64("postID", post.ID))
		return err
	}
	return nil
}

// CountPostsByIDs 统计给定 ID 集合中实际存在的稿件数。
func (r *postRepository) CountPostsByIDs(ctx context.Context, db *gorm.DB, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("id IN ?", ids).
		Count(&count).Error
	if err != nil {
		r.logger.Error("按 ID 集合统计稿件数失败", zap.Error(err), zap.Int("idCount", len(ids)))
		return 0, err
	}
	return count, nil
}

// FindImportantPostIDs 返回当前所有重要位稿件的 ID。
func (r *postRepository) FindImportantPostIDs(ctx context.Context, db *gorm.DB) ([]uint64, error) {
	var ids []uint64
	err := db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("important = ?", true).
		Pluck("id", &ids).Error
	if err != nil {
		r.logger.Error("查询重要位稿件 ID 失败", zap.Error(err))
		return nil, err
	}
	return ids, nil
}

// ClearImportance 撤下给定稿件的重要位标记与排序。
func (r *postRepository) ClearImportance(ctx context.Context, db *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	err := db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"important":        false,
			"importance_order": 0,
			"updated_at":       time.Now(),
		}).Error
	if err != nil {
		r.logger.Error("撤下重要位标记失败", zap.Error(err), zap.Int("idCount", len(ids)))
	}
	return err
}

// SetImportance 将稿件标记为重要位并写入排序值。
func (r *postRepository) SetImportance(ctx context.Context, db *gorm.DB, id uint64, order uint) error {
	result := db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"important":        true,
			"importance_order": order,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		r.logger.Error("写入重要位排序失败",
			zap.Error(result.Error),
			zap.Uint64("postID", id),
			zap.Uint("order", order),
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

// FindImportantPosts 按 importance_order 升序返回精选区稿件。
func (r *postRepository) FindImportantPosts(ctx context.Context) ([]*entities.Post, error) {
	var posts []*entities.Post
	err := r.db.WithContext(ctx).
		Where("important = ?", true).
		Order("importance_order ASC").
		Find(&posts).Error
	if err != nil {
		r.logger.Error("查询精选区稿件列表失败", zap.Error(err))
		return nil, err
	}
	return posts, nil
}

// FindFeaturedCandidates 分页返回可进入精选区的候选稿件。
func (r *postRepository) FindFeaturedCandidates(ctx context.Context, offset, limit int) ([]*entities.Post, int64, error) {
	var posts []*entities.Post
	var totalCount int64

	base := r.db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("status = ?", enums.StatusPublished).
		Where("important = ?", false)

	if err := base.Count(&totalCount).Error; err != nil {
		r.logger.Error("精选候选：计数查询失败", zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return posts, 0, nil
	}

	// 带精选配图的排在前面，其余按最近修改时间
	err := base.
		Order("important_image_url = '' ASC").
		Order("updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		r.logger.Error("精选候选：列表查询失败", zap.Error(err))
		return nil, 0, err
	}
	return posts, totalCount, nil
}

// FindDirectionsByIDs 字典查询：按 ID 集合返回方向实体。
func (r *postRepository) FindDirectionsByIDs(ctx context.Context, ids []uint64) ([]*entities.Direction, error) {
	directions := make([]*entities.Direction, 0, len(ids))
	if len(ids) == 0 {
		return directions, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&directions).Error; err != nil {
		r.logger.Error("按 ID 集合查询方向失败", zap.Error(err))
		return nil, err
	}
	return directions, nil
}

// FindTagsByIDs 字典查询：按 ID 集合返回标签实体。
func (r *postRepository) FindTagsByIDs(ctx context.Context, ids []uint64) ([]*entities.Tag, error) {
	tags := make([]*entities.Tag, 0, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		r.logger.Error("按 ID 集合查询标签失败", zap.Error(err))
		return nil, err
	}
	return tags, nil
}
