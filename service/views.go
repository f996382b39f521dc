package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/publication_service/dependencies"
	"github.com/Xushengqwer/publication_service/models/vo"
	"github.com/Xushengqwer/publication_service/repo/mysql"
)

// ErrInvalidPostURL 稿件页 URL 不符合 /posts/{id} 形式。
var ErrInvalidPostURL = errors.New("views: 无效的稿件页 URL")

// ViewCountService 负责浏览量的读取与对账。
// - 对外展示的浏览量恒等于 人工增补数(fake_views) + 统计系统真实数。
// - 对账是全量覆盖：统计系统给出的数字直接写入 views 列，不做累加。
type ViewCountService interface {
	// GetDisplayedViews 按稿件页 URL（形如 /posts/{id}）返回展示用浏览量。
	// - 纯读取，不产生任何写入。
	GetDisplayedViews(ctx context.Context, pageURL string) (*vo.ViewsResponse, error)

	// Reconcile 全量对账：拉取统计系统的整表计数并覆盖写回数据库。
	Reconcile(ctx context.Context) error
}

type viewCountService struct {
	postRepo  mysql.PostRepository
	batchRepo mysql.PostBatchRepository
	analytics dependencies.AnalyticsClient
	logger    *core.ZapLogger
}

// NewViewCountService 是 viewCountService 的构造函数。
func NewViewCountService(
	postRepo mysql.PostRepository,
	batchRepo mysql.PostBatchRepository,
	analytics dependencies.AnalyticsClient,
	logger *core.ZapLogger,
) ViewCountService {
	return &viewCountService{
		postRepo:  postRepo,
		batchRepo: batchRepo,
		analytics: analytics,
		logger:    logger,
	}
}

// parsePostIDFromURL 从 /posts/{id} 形式的路径中解析稿件ID。
// 末尾多余的斜杠可以容忍，其余形式一律拒绝。
func parsePostIDFromURL(pageURL string) (uint64, error) {
	trimmed := strings.TrimSuffix(pageURL, "/")
	idx := strings.LastIndex(trimmed, "/posts/")
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPostURL, pageURL)
	}
	idPart := trimmed[idx+len("/posts/"):]
	if idPart == "" || strings.Contains(idPart, "/") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPostURL, pageURL)
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: ID 不是有效数字: %q", ErrInvalidPostURL, idPart)
	}
	return id, nil
}

// GetDisplayedViews 实现展示浏览量读取。
func (s *viewCountService) GetDisplayedViews(ctx context.Context, pageURL string) (*vo.ViewsResponse, error) {
	postID, err := parsePostIDFromURL(pageURL)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	realViews, err := s.analytics.ViewsForURL(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("查询统计系统浏览量失败 (postID: %d): %w", postID, err)
	}

	return &vo.ViewsResponse{
		PostID: postID,
		Views:  post.FakeViews + realViews,
	}, nil
}

// Reconcile 实现全量对账。
func (s *viewCountService) Reconcile(ctx context.Context) error {
	viewCounts, err := s.analytics.AllViews(ctx)
	if err != nil {
		return fmt.Errorf("拉取统计系统整表计数失败: %w", err)
	}
	if len(viewCounts) == 0 {
		s.logger.Info("统计系统没有返回任何计数，本轮对账跳过")
		return nil
	}

	if err := s.batchRepo.BatchOverwriteViews(ctx, viewCounts); err != nil {
		return fmt.Errorf("批量覆盖浏览量失败: %w", err)
	}

	s.logger.Info("浏览量对账完成", zap.Int("postCount", len(viewCounts)))
	return nil
}
