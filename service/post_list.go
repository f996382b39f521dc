package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/publication_service/models/dto"
	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
	"github.com/Xushengqwer/publication_service/models/vo"
	"github.com/Xushengqwer/publication_service/repo/mysql"
)

// 列表条件的特征位。分发表按 "提供了哪些维度" 的位组合选择最特化的查询。
const (
	featTypes uint8 = 1 << iota
	featTags
	featDirections
)

// PostListService 负责各类稿件列表的条件分发。
// - 对外列表未显式给状态时固定只看已发布稿件。
// - 默认排序是修改时间降序；作者主页族例外，按发布时间降序。
type PostListService interface {
	// ListLatestPosts 对外的按方向浏览列表（方向必填，可叠加媒介类型与标签）。
	ListLatestPosts(ctx context.Context, req *dto.LatestPostsRequestDTO) (*vo.PostPageVO, error)

	// ListAuthorPosts 按作者浏览稿件（作者主页与后台通用）。
	ListAuthorPosts(ctx context.Context, req *dto.AuthorPostsRequestDTO) (*vo.PostPageVO, error)

	// ListPosts 后台全局筛选列表，所有维度可选。
	ListPosts(ctx context.Context, req *dto.ListPostsRequestDTO) (*vo.PostPageVO, error)
}

type postListService struct {
	queryRepo mysql.PostQueryRepository
	logger    *core.ZapLogger
}

// NewPostListService 是 postListService 的构造函数。
func NewPostListService(queryRepo mysql.PostQueryRepository, logger *core.ZapLogger) PostListService {
	return &postListService{
		queryRepo: queryRepo,
		logger:    logger,
	}
}

// publishedOnly 对外列表固定注入的状态集合。
var publishedOnly = []enums.PostStatus{enums.StatusPublished}

// ListLatestPosts 实现对外按方向浏览。
func (s *postListService) ListLatestPosts(ctx context.Context, req *dto.LatestPostsRequestDTO) (*vo.PostPageVO, error) {
	offset, limit := req.GetOffset(), req.GetLimit()

	var features uint8
	if len(req.Types) > 0 {
		features |= featTypes
	}
	if len(req.Tags) > 0 {
		features |= featTags
	}

	switch features {
	case featTypes | featTags:
		found, total, err := s.queryRepo.FindByDirectionsAndTypesAndTags(ctx, req.Directions, req.Types, req.Tags, publishedOnly, offset, limit)
		return s.toPage(found, total, err)
	case featTypes:
		found, total, err := s.queryRepo.FindByDirectionsAndTypes(ctx, req.Directions, req.Types, publishedOnly, offset, limit)
		return s.toPage(found, total, err)
	case featTags:
		found, total, err := s.queryRepo.FindByDirectionsAndTags(ctx, req.Directions, req.Tags, publishedOnly, offset, limit)
		return s.toPage(found, total, err)
	default:
		found, total, err := s.queryRepo.FindByDirections(ctx, req.Directions, publishedOnly, offset, limit)
		return s.toPage(found, total, err)
	}
}

// ListAuthorPosts 实现按作者浏览。
func (s *postListService) ListAuthorPosts(ctx context.Context, req *dto.AuthorPostsRequestDTO) (*vo.PostPageVO, error) {
	offset, limit := req.GetOffset(), req.GetLimit()

	// 未显式给状态时按对外语境处理，只看已发布
	statuses := req.Statuses
	if len(statuses) == 0 {
		statuses = publishedOnly
	}

	var features uint8
	if len(req.Types) > 0 {
		features |= featTypes
	}
	if len(req.Directions) > 0 {
		features |= featDirections
	}

	switch features {
	case featTypes | featDirections:
		found, total, err := s.queryRepo.FindByAuthorAndTypesAndDirections(ctx, req.AuthorID, req.Types, req.Directions, statuses, offset, limit)
		return s.toPage(found, total, err)
	case featTypes:
		found, total, err := s.queryRepo.FindByAuthorAndTypes(ctx, req.AuthorID, req.Types, statuses, offset, limit)
		return s.toPage(found, total, err)
	case featDirections:
		found, total, err := s.queryRepo.FindByAuthorAndDirections(ctx, req.AuthorID, req.Directions, statuses, offset, limit)
		return s.toPage(found, total, err)
	default:
		found, total, err := s.queryRepo.FindByAuthor(ctx, req.AuthorID, statuses, offset, limit)
		return s.toPage(found, total, err)
	}
}

// ListPosts 实现后台全局筛选。
func (s *postListService) ListPosts(ctx context.Context, req *dto.ListPostsRequestDTO) (*vo.PostPageVO, error) {
	offset, limit := req.GetOffset(), req.GetLimit()

	// 任何维度都没提供时走兜底全量查询
	if !hasAnyFilter(req) {
		found, total, err := s.queryRepo.FindAll(ctx, offset, limit)
		return s.toPage(found, total, err)
	}

	startTime, endTime, err := resolveDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	query := &dto.ListQueryDTO{
		Directions: req.Directions,
		Types:      req.Types,
		Origins:    req.Origins,
		Statuses:   req.Statuses,
		Title:      req.Title,
		AuthorName: req.AuthorName,
		AuthorID:   req.AuthorID,
		StartTime:  startTime,
		EndTime:    endTime,
		Offset:     offset,
		Limit:      limit,
	}
	found, total, err := s.queryRepo.FindFiltered(ctx, query)
	return s.toPage(found, total, err)
}

// hasAnyFilter 判断请求是否携带了任意筛选维度。
func hasAnyFilter(req *dto.ListPostsRequestDTO) bool {
	return len(req.Directions) > 0 ||
		len(req.Types) > 0 ||
		len(req.Origins) > 0 ||
		len(req.Statuses) > 0 ||
		req.Title != nil ||
		req.AuthorName != nil ||
		req.StartDate != nil ||
		req.EndDate != nil ||
		req.AuthorID != nil
}

// resolveDateRange 把含两端的自然日解析为时间闭区间。
// - 起点缺省取纪元日零点，终点缺省取当天最后一刻。
// - 两端都缺省时不启用时间条件。
func resolveDateRange(startDate, endDate *string) (*time.Time, *time.Time, error) {
	if startDate == nil && endDate == nil {
		return nil, nil, nil
	}

	start := time.Unix(0, 0).UTC()
	if startDate != nil {
		parsed, err := time.Parse("2006-01-02", *startDate)
		if err != nil {
			return nil, nil, fmt.Errorf("起始日期格式无效 (%s): %w", *startDate, err)
		}
		start = parsed
	}

	now := time.Now()
	end := endOfDay(now)
	if endDate != nil {
		parsed, err := time.Parse("2006-01-02", *endDate)
		if err != nil {
			return nil, nil, fmt.Errorf("结束日期格式无效 (%s): %w", *endDate, err)
		}
		end = endOfDay(parsed)
	}

	return &start, &end, nil
}

// endOfDay 返回所在自然日的最后一刻。
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// toPage 把查询结果装配为分页 VO，统一记录查询错误。
func (s *postListService) toPage(posts []*entities.Post, total int64, err error) (*vo.PostPageVO, error) {
	if err != nil {
		s.logger.Error("稿件列表查询失败", zap.Error(err))
		return nil, err
	}
	return &vo.PostPageVO{
		Posts: vo.MapPostsToResponseVOs(posts),
		Total: total,
	}, nil
}
