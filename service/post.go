package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/dependencies"
	"github.com/Xushengqwer/publication_service/models/dto"
	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
	"github.com/Xushengqwer/publication_service/models/vo"
	"github.com/Xushengqwer/publication_service/mq/producer"
	"github.com/Xushengqwer/publication_service/myErrors"
	"github.com/Xushengqwer/publication_service/repo/mysql"
)

// cosObjectKeyPrefixPreviewImages 预览图在 COS 中的对象键前缀。
const cosObjectKeyPrefixPreviewImages = "publications/previews/"

// PostService 定义了稿件生命周期的核心业务逻辑接口。
// - 所有变更操作都先过授权判定；成功的变更恰好发出一条审计事件。
// - 审计发送在事务提交后的后台 goroutine 中进行，失败只记日志，不回滚业务变更。
type PostService interface {
	// SavePost 处理创建稿件的业务流程。
	// - 稿件总是以草稿状态创建。
	// - 请求者没有全局创建权限时，稿件被强制归属请求者本人（而不是直接拒绝）。
	//   这是沿用已久的产品行为，改动前需要产品侧确认。
	SavePost(ctx context.Context, principal *Principal, req *dto.SavePostRequest, previewImage *multipart.FileHeader) (*vo.PostDetailResponse, error)

	// UpdatePost 处理更新稿件的业务流程（含状态流转）。
	UpdatePost(ctx context.Context, principal *Principal, req *dto.UpdatePostRequest) (*vo.PostDetailResponse, error)

	// DeletePost 归档稿件（软删除：行保留，仅状态变更）。
	// - 返回 true 表示本次真正发生了归档；稿件已处于归档状态时返回 false 且不发审计事件。
	// - 稿件不存在时返回 commonerrors.ErrRepoNotFound。
	DeletePost(ctx context.Context, principal *Principal, postID uint64) (bool, error)

	// GetPostByID 获取单稿件详情。
	GetPostByID(ctx context.Context, postID uint64) (*vo.PostDetailResponse, error)

	// SetPublishedAt 显式设置发布时间（之后进入已发布状态时不再覆盖）。
	SetPublishedAt(ctx context.Context, principal *Principal, req *dto.SetPublishedAtRequest) error

	// SetFakeViews 运营设置人工增补浏览量，只写 fake_views 列。
	SetFakeViews(ctx context.Context, principal *Principal, req *dto.SetFakeViewsRequest) error

	// SetImportantImage 为稿件设置精选位配图。
	SetImportantImage(ctx context.Context, principal *Principal, req *dto.SetImportantImageRequest) error
}

// postService 是 PostService 接口的具体实现。
type postService struct {
	postRepo   mysql.PostRepository
	authorRepo mysql.AuthorRepository
	authSvc    AuthService
	cosClient  dependencies.COSClientInterface
	db         *gorm.DB // GORM 数据库实例，主要用于事务管理
	auditSvc   producer.AuditProducer
	logger     *core.ZapLogger
}

// NewPostService 是 postService 的构造函数，通过依赖注入初始化服务实例。
func NewPostService(
	db *gorm.DB,
	postRepo mysql.PostRepository,
	authorRepo mysql.AuthorRepository,
	authSvc AuthService,
	cosClient dependencies.COSClientInterface,
	auditSvc producer.AuditProducer,
	logger *core.ZapLogger,
) PostService {
	return &postService{
		postRepo:   postRepo,
		authorRepo: authorRepo,
		authSvc:    authSvc,
		cosClient:  cosClient,
		db:         db,
		auditSvc:   auditSvc,
		logger:     logger,
	}
}

// emitAudit 在后台发送审计事件。
// 审计失败绝不影响已提交的业务变更，错误只记日志。
func (s *postService) emitAudit(title, changeDescription string, postID uint64, actorName string) {
	go func() {
		bgCtx := context.Background() // 为后台 goroutine 创建新的上下文
		if err := s.auditSvc.SendAuditLog(bgCtx, title, changeDescription, postID, actorName); err != nil {
			s.logger.Error("发送审计事件失败",
				zap.Error(err),
				zap.Uint64("postID", postID),
				zap.String("change", changeDescription),
			)
		}
	}()
}

// ownerUserID 解析稿件归属作者对应的用户ID，授权判定使用。
func (s *postService) ownerUserID(ctx context.Context, post *entities.Post) (uint64, error) {
	author, err := s.authorRepo.GetAuthorByID(ctx, post.AuthorID)
	if err != nil {
		return 0, fmt.Errorf("解析稿件归属作者失败 (postID: %d, authorID: %d): %w", post.ID, post.AuthorID, err)
	}
	return author.UserID, nil
}

// generatePreviewObjectKey 创建预览图的唯一 COS 对象键。
func (s *postService) generatePreviewObjectKey(originalFilename string, userID uint64) string {
	datePrefix := time.Now().Format("20060102")
	extension := strings.ToLower(filepath.Ext(originalFilename))
	return fmt.Sprintf("%s%s/%d_%s%s",
		cosObjectKeyPrefixPreviewImages,
		datePrefix,
		userID,
		uuid.NewString(),
		extension,
	)
}

// uploadPreviewImage 上传预览图并返回公开访问 URL；未提供文件时返回空串。
func (s *postService) uploadPreviewImage(ctx context.Context, fileHeader *multipart.FileHeader, userID uint64) (string, string, error) {
	if fileHeader == nil {
		return "", "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.logger.Error("打开预览图文件失败", zap.String("filename", fileHeader.Filename), zap.Error(err))
		return "", "", fmt.Errorf("打开预览图文件 %s 失败: %w", fileHeader.Filename, err)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
		s.logger.Warn("未提供预览图的内容类型，使用默认值",
			zap.String("filename", fileHeader.Filename),
			zap.String("defaultContentType", contentType))
	}

	objectKey := s.generatePreviewObjectKey(fileHeader.Filename, userID)
	imageURL, err := s.cosClient.UploadFile(ctx, objectKey, file, fileHeader.Size, contentType)
	file.Close()
	if err != nil {
		s.logger.Error("上传预览图到 COS 失败",
			zap.String("filename", fileHeader.Filename),
			zap.String("objectKey", objectKey),
			zap.Error(err))
		return "", "", fmt.Errorf("上传预览图 %s 到 COS 失败: %w", fileHeader.Filename, err)
	}
	return imageURL, objectKey, nil
}

// SavePost 处理创建稿件的请求。
func (s *postService) SavePost(ctx context.Context, principal *Principal, req *dto.SavePostRequest, previewImage *multipart.FileHeader) (*vo.PostDetailResponse, error) {
	// 1. 主体必须至少持有 "本人创建" 权限
	if !principal.Permissions.Has(enums.PermSavePublication) &&
		!principal.Permissions.Has(enums.PermSaveOwnPublication) {
		return nil, myErrors.ErrForbidden
	}

	// 2. 解析稿件归属的作者
	//    没有全局创建权限时，无论请求里写的是谁，都强制归属请求者本人。
	//    这是沿用原有产品的行为：静默改写而不是拒绝。
	var author *entities.Author
	var err error
	if principal.Permissions.Has(enums.PermSavePublication) {
		author, err = s.authorRepo.GetAuthorByID(ctx, req.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("查询目标作者失败 (authorID: %d): %w", req.AuthorID, err)
		}
	} else {
		author, err = s.authorRepo.GetAuthorByUserID(ctx, principal.UserID)
		if err != nil {
			return nil, fmt.Errorf("查询请求者的作者档案失败 (userID: %d): %w", principal.UserID, err)
		}
		if author.ID != req.AuthorID {
			s.logger.Warn("请求者无全局创建权限，稿件归属已改写为请求者本人",
				zap.Uint64("requestedAuthorID", req.AuthorID),
				zap.Uint64("effectiveAuthorID", author.ID),
				zap.Uint64("userID", principal.UserID),
			)
		}
	}

	// 3. 上传预览图（可选）
	previewURL, objectKey, err := s.uploadPreviewImage(ctx, previewImage, principal.UserID)
	if err != nil {
		return nil, err
	}

	// 4. 在事务中创建稿件与关联
	var createdPost *entities.Post
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post := &entities.Post{
			Title:           req.Title,
			Content:         req.Content,
			PreviewImageURL: previewURL,
			Status:          enums.StatusDraft, // 创建即草稿
			Type:            req.Type,
			Origin:          req.Origin,
			AuthorID:        author.ID,
			AuthorName:      author.DisplayName,
		}
		if repoErr := s.postRepo.CreatePost(ctx, tx, post); repoErr != nil {
			return fmt.Errorf("创建稿件失败: %w", repoErr)
		}
		if len(req.DirectionIDs) > 0 {
			if repoErr := s.postRepo.ReplaceDirections(ctx, tx, post, req.DirectionIDs); repoErr != nil {
				return fmt.Errorf("写入稿件方向失败: %w", repoErr)
			}
		}
		if len(req.TagIDs) > 0 {
			if repoErr := s.postRepo.ReplaceTags(ctx, tx, post, req.TagIDs); repoErr != nil {
				return fmt.Errorf("写入稿件标签失败: %w", repoErr)
			}
		}
		createdPost = post
		return nil // 提交事务
	})

	if err != nil {
		s.logger.Error("创建稿件事务失败", zap.Error(err))
		// 数据库事务失败时清理已上传的预览图，避免 COS 孤立文件
		if objectKey != "" {
			if cleanupErr := s.cosClient.DeleteObject(context.Background(), objectKey); cleanupErr != nil {
				s.logger.Error("清理孤立的预览图失败", zap.String("objectKey", objectKey), zap.Error(cleanupErr))
			}
		}
		return nil, err
	}

	// --- 事务成功 ---

	// 5. 发出审计事件
	s.emitAudit(createdPost.Title, changeCreated, createdPost.ID, principal.DisplayName)

	return vo.MapPostToDetailVO(createdPost), nil
}

// UpdatePost 处理更新稿件的请求。
func (s *postService) UpdatePost(ctx context.Context, principal *Principal, req *dto.UpdatePostRequest) (*vo.PostDetailResponse, error) {
	// 1. 加载稿件（不存在时 ErrRepoNotFound 原样向上传递）
	post, err := s.postRepo.GetPostByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	// 2. 授权判定
	ownerID, err := s.ownerUserID(ctx, post)
	if err != nil {
		return nil, err
	}
	if err := s.authSvc.Authorize(principal, OpUpdate, ownerID); err != nil {
		return nil, err
	}

	// 3. 应用字段变更与状态迁移，得到审计描述
	post.Title = req.Title
	post.Content = req.Content
	post.Type = req.Type
	post.Origin = req.Origin
	changeDescription := ApplyStatusTransition(post, req.Status)

	// 4. 在事务中持久化
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"title":   post.Title,
			"content": post.Content,
			"type":    post.Type,
			"origin":  post.Origin,
			"status":  post.Status,
		}
		if post.PublishedAt != nil {
			fields["published_at"] = *post.PublishedAt
		}
		if repoErr := s.postRepo.UpdateFields(ctx, tx, post.ID, fields); repoErr != nil {
			return repoErr
		}
		if req.DirectionIDs != nil {
			if repoErr := s.postRepo.ReplaceDirections(ctx, tx, post, req.DirectionIDs); repoErr != nil {
				return fmt.Errorf("替换稿件方向失败: %w", repoErr)
			}
		}
		if req.TagIDs != nil {
			if repoErr := s.postRepo.ReplaceTags(ctx, tx, post, req.TagIDs); repoErr != nil {
				return fmt.Errorf("替换稿件标签失败: %w", repoErr)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("更新稿件事务失败", zap.Error(err), zap.Uint64("postID", req.PostID))
		return nil, err
	}

	// 5. 发出审计事件
	s.emitAudit(post.Title, changeDescription, post.ID, principal.DisplayName)

	return vo.MapPostToDetailVO(post), nil
}

// DeletePost 实现稿件归档。
func (s *postService) DeletePost(ctx context.Context, principal *Principal, postID uint64) (bool, error) {
	// 1. 加载稿件并保留归档前快照（审计事件需要归档前的标题）
	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		return false, err
	}
	titleSnapshot := post.Title

	// 2. 授权判定
	ownerID, err := s.ownerUserID(ctx, post)
	if err != nil {
		return false, err
	}
	if err := s.authSvc.Authorize(principal, OpDelete, ownerID); err != nil {
		return false, err
	}

	// 3. 已归档的稿件视为 no-op：不变更、不发事件
	if post.Status == enums.StatusArchived {
		s.logger.Info("稿件已处于归档状态，归档操作跳过", zap.Uint64("postID", postID))
		return false, nil
	}

	// 4. 在事务中置为归档状态
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.postRepo.UpdateFields(ctx, tx, postID, map[string]interface{}{
			"status": enums.StatusArchived,
		})
	})
	if err != nil {
		s.logger.Error("归档稿件事务失败", zap.Error(err), zap.Uint64("postID", postID))
		return false, err
	}

	// 5. 用归档前的标题快照发出审计事件
	s.emitAudit(titleSnapshot, changeArchived, postID, principal.DisplayName)
	return true, nil
}

// GetPostByID 获取单稿件详情。
func (s *postService) GetPostByID(ctx context.Context, postID uint64) (*vo.PostDetailResponse, error) {
	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return vo.MapPostToDetailVO(post), nil
}

// SetPublishedAt 实现显式设置发布时间。
func (s *postService) SetPublishedAt(ctx context.Context, principal *Principal, req *dto.SetPublishedAtRequest) error {
	return s.operatorUpdate(ctx, principal, req.PostID, map[string]interface{}{
		"published_at": req.PublishedAt,
	})
}

// SetFakeViews 实现人工增补浏览量设置。
func (s *postService) SetFakeViews(ctx context.Context, principal *Principal, req *dto.SetFakeViewsRequest) error {
	return s.operatorUpdate(ctx, principal, req.PostID, map[string]interface{}{
		"fake_views": req.FakeViews,
	})
}

// SetImportantImage 实现精选位配图设置。
func (s *postService) SetImportantImage(ctx context.Context, principal *Principal, req *dto.SetImportantImageRequest) error {
	return s.operatorUpdate(ctx, principal, req.PostID, map[string]interface{}{
		"important_image_url": req.ImageURL,
	})
}

// operatorUpdate 运营类单字段设置的公共路径。
// 这类设置只对持有全局修改权限的角色开放，不适用 "仅本人" 的降级。
func (s *postService) operatorUpdate(ctx context.Context, principal *Principal, postID uint64, fields map[string]interface{}) error {
	if !principal.Permissions.Has(enums.PermUpdatePost) {
		return myErrors.ErrForbidden
	}

	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.postRepo.UpdateFields(ctx, tx, postID, fields)
	})
	if err != nil {
		s.logger.Error("运营设置稿件字段失败", zap.Error(err), zap.Uint64("postID", postID), zap.Any("fields", fields))
		return err
	}

	s.emitAudit(post.Title, changeUpdated, postID, principal.DisplayName)
	return nil
}
