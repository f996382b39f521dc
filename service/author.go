package service

import (
	"context"
	"fmt"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/models/dto"
	"github.com/Xushengqwer/publication_service/models/enums"
	"github.com/Xushengqwer/publication_service/mq/producer"
	"github.com/Xushengqwer/publication_service/myErrors"
	"github.com/Xushengqwer/publication_service/repo/mysql"
)

// AuthorService 维护稿件与作者的归属关系及作者侧的稿件计数。
type AuthorService interface {
	// ReassignPost 把稿件改挂到另一位作者名下。
	// - 原作者计数 -1（下限 0），新作者计数 +1，归属变更，三者在同一事务内完成。
	// - 新归属与当前归属相同时是 no-op：计数不动、不发审计事件。
	// - 稿件或目标作者不存在时返回 commonerrors.ErrRepoNotFound。
	ReassignPost(ctx context.Context, principal *Principal, req *dto.SetAuthorRequest) error
}

type authorService struct {
	db         *gorm.DB
	postRepo   mysql.PostRepository
	authorRepo mysql.AuthorRepository
	auditSvc   producer.AuditProducer
	logger     *core.ZapLogger
}

// NewAuthorService 是 authorService 的构造函数。
func NewAuthorService(
	db *gorm.DB,
	postRepo mysql.PostRepository,
	authorRepo mysql.AuthorRepository,
	auditSvc producer.AuditProducer,
	logger *core.ZapLogger,
) AuthorService {
	return &authorService{
		db:         db,
		postRepo:   postRepo,
		authorRepo: authorRepo,
		auditSvc:   auditSvc,
		logger:     logger,
	}
}

// ReassignPost 实现稿件归属变更。
func (s *authorService) ReassignPost(ctx context.Context, principal *Principal, req *dto.SetAuthorRequest) error {
	// 归属变更是运营操作，只对持有全局修改权限的角色开放
	if !principal.Permissions.Has(enums.PermUpdatePost) {
		return myErrors.ErrForbidden
	}

	// 1. 加载稿件与目标作者（任一不存在即拒绝）
	post, err := s.postRepo.GetPostByID(ctx, req.PostID)
	if err != nil {
		return err
	}
	newAuthor, err := s.authorRepo.GetAuthorByUserID(ctx, req.NewUserID)
	if err != nil {
		return fmt.Errorf("查询目标作者失败 (userID: %d): %w", req.NewUserID, err)
	}

	// 2. 归属未变化时什么都不做
	if post.AuthorID == newAuthor.ID {
		s.logger.Info("稿件归属未变化，跳过",
			zap.Uint64("postID", post.ID),
			zap.Uint64("authorID", newAuthor.ID),
		)
		return nil
	}

	oldAuthorID := post.AuthorID

	// 3. 计数对与归属变更在同一事务内完成
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.authorRepo.DecrementPublishedPosts(ctx, tx, oldAuthorID); err != nil {
			return fmt.Errorf("原作者计数递减失败 (authorID: %d): %w", oldAuthorID, err)
		}
		if err := s.authorRepo.IncrementPublishedPosts(ctx, tx, newAuthor.ID); err != nil {
			return fmt.Errorf("新作者计数递增失败 (authorID: %d): %w", newAuthor.ID, err)
		}
		return s.postRepo.UpdateFields(ctx, tx, post.ID, map[string]interface{}{
			"author_id":   newAuthor.ID,
			"author_name": newAuthor.DisplayName,
		})
	})
	if err != nil {
		s.logger.Error("稿件归属变更事务失败",
			zap.Error(err),
			zap.Uint64("postID", post.ID),
			zap.Uint64("oldAuthorID", oldAuthorID),
			zap.Uint64("newAuthorID", newAuthor.ID),
		)
		return err
	}

	// 4. 发出审计事件（后台发送，失败只记日志）
	go func(title string, postID uint64, actor string) {
		if sendErr := s.auditSvc.SendAuditLog(context.Background(), title, changeUpdated, postID, actor); sendErr != nil {
			s.logger.Error("发送审计事件失败", zap.Error(sendErr), zap.Uint64("postID", postID))
		}
	}(post.Title, post.ID, principal.DisplayName)

	return nil
}
