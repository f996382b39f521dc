package mysql

import (
	"context"
	"errors"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/models/entities"
)

// AuthorRepository 定义了作者档案的持久化操作接口。
type AuthorRepository interface {
	// GetAuthorByID 根据主键获取作者档案。
	// - 未找到时返回 commonerrors.ErrRepoNotFound。
	GetAuthorByID(ctx context.Context, id uint64) (*entities.Author, error)

	// GetAuthorByUserID 根据用户ID获取作者档案（用户与作者一一对应）。
	GetAuthorByUserID(ctx context.Context, userID uint64) (*entities.Author, error)

	// IncrementPublishedPosts 将作者的稿件计数 +1。
	IncrementPublishedPosts(ctx context.Context, db *gorm.DB, authorID uint64) error

	// DecrementPublishedPosts 将作者的稿件计数 -1，下限为 0，永不出现负数。
	DecrementPublishedPosts(ctx context.Context, db *gorm.DB, authorID uint64) error

	// CreateAuthor 新建作者档案（种子数据与用户服务同步用）。
	CreateAuthor(ctx context.Context, db *gorm.DB, author *entities.Author) error
}

// authorRepository 是 AuthorRepository 接口的 MySQL 实现。
type authorRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewAuthorRepository 是 authorRepository 的构造函数。
func NewAuthorRepository(db *gorm.DB, logger *core.ZapLogger) AuthorRepository {
	return &authorRepository{
		db:     db,
		logger: logger,
	}
}

// GetAuthorByID 实现按主键获取作者。
func (r *authorRepository) GetAuthorByID(ctx context.Context, id uint64) (*entities.Author, error) {
	var author entities.Author
	err := r.db.WithContext(ctx).First(&author, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("根据 ID 获取作者未找到", zap.Uint64("authorID", id))
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据 ID 获取作者数据库查询失败", zap.Error(err), zap.Uint64("authorID", id))
		return nil, err
	}
	return &author, nil
}

// GetAuthorByUserID 实现按用户ID获取作者。
func (r *authorRepository) GetAuthorByUserID(ctx context.Context, userID uint64) (*entities.Author, error) {
	var author entities.Author
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&author).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("根据用户 ID 获取作者未找到", zap.Uint64("userID", userID))
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据用户 ID 获取作者数据库查询失败", zap.Error(err), zap.Uint64("userID", userID))
		return nil, err
	}
	return &author, nil
}

// IncrementPublishedPosts 实现稿件计数 +1。
func (r *authorRepository) IncrementPublishedPosts(ctx context.Context, db *gorm.DB, authorID uint64) error {
	result := db.WithContext(ctx).
		Model(&entities.Author{}).
		Where("id = ?", authorID).
		UpdateColumn("published_posts", gorm.Expr("published_posts + 1"))
	if result.Error != nil {
		r.logger.Error("作者稿件计数递增失败", zap.Error(result.Error), zap.Uint64("authorID", authorID))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

// DecrementPublishedPosts 实现稿件计数 -1。
// CASE 表达式保证计数不会减到 0 以下（数据曾被旁路修过时也不会出现负数）。
func (r *authorRepository) DecrementPublishedPosts(ctx context.Context, db *gorm.DB, authorID uint64) error {
	result := db.WithContext(ctx).
		Model(&entities.Author{}).
		Where("id = ?", authorID).
		UpdateColumn("published_posts", gorm.Expr("CASE WHEN published_posts > 0 THEN published_posts - 1 ELSE 0 END"))
	if result.Error != nil {
		r.logger.Error("作者稿件计数递减失败", zap.Error(result.Error), zap.Uint64("authorID", authorID))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

// CreateAuthor 实现作者档案插入。
func (r *authorRepository) CreateAuthor(ctx context.Context, db *gorm.DB, author *entities.Author) error {
	if err := db.WithContext(ctx).Create(author).Error; err != nil {
		r.logger.Error("创建作者档案失败", zap.Error(err), zap.Uint64("userID", author.UserID))
		return err
	}
	return nil
}
