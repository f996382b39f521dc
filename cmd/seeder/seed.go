package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/Xushengqwer/go-common/core"
	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/models/dto"
	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
	"github.com/Xushengqwer/publication_service/repo/mysql"
	"github.com/Xushengqwer/publication_service/service"
)

// 固定的方向与标签词表，保证多次填充的关联维度稳定。
var seedDirections = []string{"心血管", "神经内科", "肿瘤", "内分泌", "儿科", "康复医学"}
var seedTags = []string{"指南解读", "病例分析", "前沿研究", "用药安全", "患者教育", "康复随访"}

var seedRoles = []string{"ADMIN", "EDITOR", "DOCTOR", "AUTHOR"}

// seedCatalog 填充方向、标签与用户/作者档案，返回可用的作者ID集合与一个管理员用户ID。
func seedCatalog(ctx context.Context, db *gorm.DB, logger *core.ZapLogger, numAuthors int) (authorIDs []uint64, adminUserID uint64, err error) {
	userRepo := mysql.NewUserRepository(db, logger)
	authorRepo := mysql.NewAuthorRepository(db, logger)

	for _, name := range seedDirections {
		direction := &entities.Direction{Name: name}
		if err := db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(direction).Error; err != nil {
			return nil, 0, fmt.Errorf("填充方向失败 (%s): %w", name, err)
		}
	}
	for _, name := range seedTags {
		tag := &entities.Tag{Name: name}
		if err := db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(tag).Error; err != nil {
			return nil, 0, fmt.Errorf("填充标签失败 (%s): %w", name, err)
		}
	}
	logger.Info("方向与标签填充完成", zap.Int("directions", len(seedDirections)), zap.Int("tags", len(seedTags)))

	// 第一个用户固定为管理员，其余角色随机
	for i := 0; i < numAuthors; i++ {
		role := seedRoles[gofakeit.Number(0, len(seedRoles)-1)]
		if i == 0 {
			role = "ADMIN"
		}
		user := &entities.User{
			Email:     gofakeit.Email(),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			RoleName:  role,
		}
		if err := userRepo.CreateUser(ctx, db, user); err != nil {
			return nil, 0, fmt.Errorf("填充用户失败: %w", err)
		}
		if i == 0 {
			adminUserID = user.ID
		}

		author := &entities.Author{
			UserID:      user.ID,
			DisplayName: user.DisplayName(),
		}
		if err := authorRepo.CreateAuthor(ctx, db, author); err != nil {
			return nil, 0, fmt.Errorf("填充作者档案失败: %w", err)
		}
		authorIDs = append(authorIDs, author.ID)
	}
	logger.Info("用户与作者档案填充完成", zap.Int("count", numAuthors))
	return authorIDs, adminUserID, nil
}

// Seed 通过服务层填充测试稿件，并把一部分稿件推进到各个工作流状态。
func Seed(
	ctx context.Context,
	db *gorm.DB,
	authSvc service.AuthService,
	postSvc service.PostService,
	logger *core.ZapLogger,
	numPosts int,
) {
	logger.Info("开始填充测试数据 (通过服务层)...", zap.Int("数量", numPosts))

	authorIDs, adminUserID, err := seedCatalog(ctx, db, logger, 10)
	if err != nil {
		logger.Error("基础数据填充失败，稿件填充中止", zap.Error(err))
		return
	}

	principal, err := authSvc.LoadPrincipal(ctx, adminUserID)
	if err != nil {
		logger.Error("装配管理员主体失败，稿件填充中止", zap.Error(err))
		return
	}

	// 方向和标签ID从 1 开始连续（FirstOrCreate 按词表顺序创建）
	directionCount := uint64(len(seedDirections))
	tagCount := uint64(len(seedTags))

	// 推进状态的候选目标；创建总是草稿，通过更新走正常流转
	targetStatuses := []enums.PostStatus{
		enums.StatusDraft,
		enums.StatusModerationFirstSign,
		enums.StatusNeedsEditing,
		enums.StatusPlanned,
		enums.StatusPublished,
		enums.StatusPublished, // 偏向已发布，让对外列表有内容
		enums.StatusArchived,
	}

	var wg sync.WaitGroup
	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for i := 0; i < numPosts; i++ {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(itemIndex int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			createReq := &dto.SavePostRequest{
				Title:    gofakeit.Sentence(gofakeit.Number(5, 12)),
				Content:  gofakeit.Paragraph(3, 5, 20, "\n\n"),
				AuthorID: authorIDs[gofakeit.Number(0, len(authorIDs)-1)],
				Type:     enums.PostType(gofakeit.Number(0, 3)),
				Origin:   enums.PostOrigin(gofakeit.Number(0, 3)),
				DirectionIDs: []uint64{
					uint64(gofakeit.Number(1, int(directionCount))),
				},
				TagIDs: []uint64{
					uint64(gofakeit.Number(1, int(tagCount))),
				},
			}

			resp, err := postSvc.SavePost(ctx, principal, createReq, nil)
			if err != nil {
				logger.Error(fmt.Sprintf("创建稿件 %d/%d 失败", itemIndex+1, numPosts),
					zap.Error(err),
					zap.String("title", createReq.Title))
				return
			}

			// 随机推进到目标状态，覆盖完整的工作流分布
			target := targetStatuses[gofakeit.Number(0, len(targetStatuses)-1)]
			if target != enums.StatusDraft {
				updateReq := &dto.UpdatePostRequest{
					PostID:       resp.ID,
					Title:        resp.Title,
					Content:      createReq.Content,
					Status:       target,
					Type:         createReq.Type,
					Origin:       createReq.Origin,
					DirectionIDs: createReq.DirectionIDs,
					TagIDs:       createReq.TagIDs,
				}
				if _, err := postSvc.UpdatePost(ctx, principal, updateReq); err != nil {
					logger.Error("推进稿件状态失败",
						zap.Error(err),
						zap.Uint64("post_id", resp.ID),
						zap.Int("target_status", int(target)))
					return
				}
			}

			logger.Info(fmt.Sprintf("成功创建稿件 %d/%d", itemIndex+1, numPosts),
				zap.Uint64("post_id", resp.ID),
				zap.Int("status", int(target)),
				zap.String("title", resp.Title))
		}(i)
	}

	wg.Wait()
	logger.Info("测试数据填充完毕 (通过服务层)。")
}
