package mysql

import (
	"context"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/models/dto"
	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
)

// PostQueryRepository 定义了列表查询族。
// - 设计为一组按条件组合预先特化的查询，而不是一条带大量可选谓词的通用 SQL，
//   服务层根据提供的维度选择最特化的那个（见 service/post_list.go 的分发表）。
// - 每个方法都返回当前页与满足条件的总数（count + page 模式）。
type PostQueryRepository interface {
	// --- 对外列表族（按方向浏览，状态集合由服务层注入） ---

	FindByDirections(ctx context.Context, directions []uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error)
	FindByDirectionsAndTypes(ctx context.Context, directions []uint64, types []enums.PostType, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error)
	FindByDirectionsAndTags(ctx context.Context, directions []uint64, tags []uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error)
	FindByDirectionsAndTypesAndTags(ctx context.Context, directions []uint64, types []enums.PostType, tags []uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error)

	// --- 按作者浏览族 ---

	// FindByAuthor 按发布时间降序返回作者稿件（作者主页场景）。
	FindByAuthor(ctx context.Context, authorID uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error)
	FindByAuthorAndTypes(ctx context.Context, authorID uint64, types []enums.PostType, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error)
	FindByAuthorAndDirections(ctx context.Context, authorID uint64, directions []uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error)
	FindByAuthorAndTypesAndDirections(ctx context.Context, authorID uint64, types []enums.PostType, directions []uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error)

	// --- 全局筛选（后台），所有维度可选，动态拼接 ---

	// FindFiltered 按 ListQueryDTO 的全部条件查询；AuthorID 非 nil 时即作者作用域变体。
	FindFiltered(ctx context.Context, query *dto.ListQueryDTO) ([]*entities.Post, int64, error)

	// FindAll 无任何筛选条件的兜底查询。
	FindAll(ctx context.Context, offset, limit int) ([]*entities.Post, int64, error)
}

// postQueryRepository 是 PostQueryRepository 接口的 MySQL 实现。
type postQueryRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewPostQueryRepository 是 postQueryRepository 的构造函数。
func NewPostQueryRepository(db *gorm.DB, logger *core.ZapLogger) PostQueryRepository {
	return &postQueryRepository{
		db:     db,
		logger: logger,
	}
}

// directionScope 用子查询表达 "方向集合有交集"，避免 JOIN 去重。
func (r *postQueryRepository) directionScope(ctx context.Context, directions []uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("post_directions").
		Select("post_id").
		Where("direction_id IN ?", directions)
}

// tagScope 同上，标签维度。
func (r *postQueryRepository) tagScope(ctx context.Context, tags []uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("post_tags").
		Select("post_id").
		Where("tag_id IN ?", tags)
}

// pageAndCount 先计数再取页，总数为 0 时跳过列表查询。
func (r *postQueryRepository) pageAndCount(query *gorm.DB, order string, offset, limit int) ([]*entities.Post, int64, error) {
	var posts []*entities.Post
	var totalCount int64

	if err := query.Count(&totalCount).Error; err != nil {
		r.logger.Error("列表查询：计数失败", zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return posts, 0, nil
	}

	if err := query.Order(order).Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		r.logger.Error("列表查询：取页失败", zap.Error(err))
		return nil, 0, err
	}
	return posts, totalCount, nil
}

func (r *postQueryRepository) FindByDirections(ctx context.Context, directions []uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("id IN (?)", r.directionScope(ctx, directions)).
		Where("status IN ?", statuses)
	return r.pageAndCount(query, "updated_at DESC", offset, limit)
}

func (r *postQueryRepository) FindByDirectionsAndTypes(ctx context.Context, directions []uint64, types []enums.PostType, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("id IN (?)", r.directionScope(ctx, directions)).
		Where("type IN ?", types).
		Where("status IN ?", statuses)
	return r.pageAndCount(query, "updated_at DESC", offset, limit)
}

func (r *postQueryRepository) FindByDirectionsAndTags(ctx context.Context, directions []uint64, tags []uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("id IN (?)", r.directionScope(ctx, directions)).
		Where("id IN (?)", r.tagScope(ctx, tags)).
		Where("status IN ?", statuses)
	return r.pageAndCount(query, "updated_at DESC", offset, limit)
}

func (r *postQueryRepository) FindByDirectionsAndTypesAndTags(ctx context.Context, directions []uint64, types []enums.PostType, tags []uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("id IN (?)", r.directionScope(ctx, directions)).
		Where("id IN (?)", r.tagScope(ctx, tags)).
		Where("type IN ?", types).
		Where("status IN ?", statuses)
	return r.pageAndCount(query, "updated_at DESC", offset, limit)
}

func (r *postQueryRepository) FindByAuthor(ctx context.Context, authorID uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("author_id = ?", authorID).
		Where("status IN ?", statuses)
	// 作者主页按发布时间排，未发布的稿件沉底
	return r.pageAndCount(query, "published_at DESC", offset, limit)
}

func (r *postQueryRepository) FindByAuthorAndTypes(ctx context.Context, authorID uint64, types []enums.PostType, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("author_id = ?", authorID).
		Where("type IN ?", types).
		Where("status IN ?", statuses)
	return r.pageAndCount(query, "published_at DESC", offset, limit)
}

func (r *postQueryRepository) FindByAuthorAndDirections(ctx context.Context, authorID uint64, directions []uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("author_id = ?", authorID).
		Where("id IN (?)", r.directionScope(ctx, directions)).
		Where("status IN ?", statuses)
	return r.pageAndCount(query, "published_at DESC", offset, limit)
}

func (r *postQueryRepository) FindByAuthorAndTypesAndDirections(ctx context.Context, authorID uint64, types []enums.PostType, directions []uint64, statuses []enums.PostStatus, offset, limit int) ([]*entities.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("author_id = ?", authorID).
		Where("type IN ?", types).
		Where("id IN (?)", r.directionScope(ctx, directions)).
		Where("status IN ?", statuses)
	return r.pageAndCount(query, "published_at DESC", offset, limit)
}

// FindFiltered 实现全局筛选查询，动态拼接所有提供的维度。
func (r *postQueryRepository) FindFiltered(ctx context.Context, params *dto.ListQueryDTO) ([]*entities.Post, int64, error) {
	dbQuery := r.db.WithContext(ctx).Model(&entities.Post{}).Where("deleted_at IS NULL")

	// --- 动态构建查询条件 ---
	// 对于可选条件，先判断 DTO 中的字段是否为 nil / 空。
	if params.AuthorID != nil {
		dbQuery = dbQuery.Where("author_id = ?", *params.AuthorID)
	}
	if len(params.Directions) > 0 {
		dbQuery = dbQuery.Where("id IN (?)", r.directionScope(ctx, params.Directions))
	}
	if len(params.Tags) > 0 {
		dbQuery = dbQuery.Where("id IN (?)", r.tagScope(ctx, params.Tags))
	}
	if len(params.Types) > 0 {
		dbQuery = dbQuery.Where("type IN ?", params.Types)
	}
	if len(params.Origins) > 0 {
		dbQuery = dbQuery.Where("origin IN ?", params.Origins)
	}
	if len(params.Statuses) > 0 {
		dbQuery = dbQuery.Where("status IN ?", params.Statuses)
	}
	if params.Title != nil {
		// 子串匹配是否大小写敏感取决于列的 collation，这里保持原样
		dbQuery = dbQuery.Where("title LIKE ?", "%"+*params.Title+"%")
	}
	if params.AuthorName != nil {
		dbQuery = dbQuery.Where("author_name LIKE ?", "%"+*params.AuthorName+"%")
	}
	if params.StartTime != nil {
		dbQuery = dbQuery.Where("updated_at >= ?", *params.StartTime)
	}
	if params.EndTime != nil {
		dbQuery = dbQuery.Where("updated_at <= ?", *params.EndTime)
	}

	return r.pageAndCount(dbQuery, "updated_at DESC", params.Offset, params.Limit)
}

// FindAll 无筛选条件的兜底查询。
func (r *postQueryRepository) FindAll(ctx context.Context, offset, limit int) ([]*entities.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Post{}).Where("deleted_at IS NULL")
	return r.pageAndCount(query, "updated_at DESC", offset, limit)
}
