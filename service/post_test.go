package service

import (
	"context"
	"testing"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/publication_service/models/dto"
	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
	"github.com/Xushengqwer/publication_service/myErrors"
	"github.com/Xushengqwer/publication_service/repo/mysql"
)

func TestSavePost_OwnOnlyAuthorIsForcedToRequester(t *testing.T) {
	logger := newTestLogger(t)
	db := newTestDB(t)
	postRepo := mysql.NewPostRepository(db, logger)
	authorRepo := mysql.NewAuthorRepository(db, logger)
	authSvc := NewAuthService(mysql.NewUserRepository(db, logger), logger)
	audit := &fakeAuditProducer{}
	svc := NewPostService(db, postRepo, authorRepo, authSvc, nil, audit, logger)

	doctor := mustCreateUser(t, db, "DOCTOR")
	doctorAuthor := mustCreateAuthor(t, db, doctor.ID, 0)
	other := mustCreateUser(t, db, "AUTHOR")
	otherAuthor := mustCreateAuthor(t, db, other.ID, 0)

	principal := testPrincipal(doctor.ID, "DOCTOR")
	req := &dto.SavePostRequest{
		Title:    "慢性肾病饮食管理",
		Content:  "正文",
		AuthorID: otherAuthor.ID, // 试图署名为别人
	}

	detail, err := svc.SavePost(context.Background(), principal, req, nil)
	require.NoError(t, err)

	// 归属被静默改写为请求者本人，而不是拒绝
	var saved entities.Post
	require.NoError(t, db.First(&saved, detail.ID).Error)
	assert.Equal(t, doctorAuthor.ID, saved.AuthorID)
	assert.Equal(t, enums.StatusDraft, saved.Status, "创建的稿件总是草稿")

	// 恰好一条审计事件
	assert.Eventually(t, func() bool {
		return len(audit.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)
	events := audit.snapshot()
	assert.Equal(t, "已创建稿件", events[0].ChangeDescription)
	assert.Equal(t, detail.ID, events[0].PostID)
}

func TestSavePost_GlobalPermissionKeepsRequestedAuthor(t *testing.T) {
	logger := newTestLogger(t)
	db := newTestDB(t)
	postRepo := mysql.NewPostRepository(db, logger)
	authorRepo := mysql.NewAuthorRepository(db, logger)
	authSvc := NewAuthService(mysql.NewUserRepository(db, logger), logger)
	audit := &fakeAuditProducer{}
	svc := NewPostService(db, postRepo, authorRepo, authSvc, nil, audit, logger)

	editor := mustCreateUser(t, db, "EDITOR")
	mustCreateAuthor(t, db, editor.ID, 0)
	doctor := mustCreateUser(t, db, "DOCTOR")
	doctorAuthor := mustCreateAuthor(t, db, doctor.ID, 0)

	principal := testPrincipal(editor.ID, "EDITOR")
	detail, err := svc.SavePost(context.Background(), principal, &dto.SavePostRequest{
		Title:    "由编辑代建的稿件",
		Content:  "正文",
		AuthorID: doctorAuthor.ID,
	}, nil)
	require.NoError(t, err)

	var saved entities.Post
	require.NoError(t, db.First(&saved, detail.ID).Error)
	assert.Equal(t, doctorAuthor.ID, saved.AuthorID, "持有全局创建权限时按请求归属")
}

func TestUpdatePost_PublishSetsPublishedAtOnce(t *testing.T) {
	logger := newTestLogger(t)
	db := newTestDB(t)
	postRepo := mysql.NewPostRepository(db, logger)
	authorRepo := mysql.NewAuthorRepository(db, logger)
	authSvc := NewAuthService(mysql.NewUserRepository(db, logger), logger)
	audit := &fakeAuditProducer{}
	svc := NewPostService(db, postRepo, authorRepo, authSvc, nil, audit, logger)

	editor := mustCreateUser(t, db, "EDITOR")
	author := mustCreateAuthor(t, db, editor.ID, 0)
	post := mustCreatePost(t, db, author.ID, enums.StatusPlanned)

	principal := testPrincipal(editor.ID, "EDITOR")
	update := &dto.UpdatePostRequest{
		PostID:  post.ID,
		Title:   post.Title,
		Content: post.Content,
		Status:  enums.StatusPublished,
	}
	_, err := svc.UpdatePost(context.Background(), principal, update)
	require.NoError(t, err)

	var published entities.Post
	require.NoError(t, db.First(&published, post.ID).Error)
	require.NotNil(t, published.PublishedAt)
	firstPublishedAt := *published.PublishedAt

	// 退回再发布，发布时间不变
	update.Status = enums.StatusNeedsEditing
	_, err = svc.UpdatePost(context.Background(), principal, update)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	update.Status = enums.StatusPublished
	_, err = svc.UpdatePost(context.Background(), principal, update)
	require.NoError(t, err)

	var republished entities.Post
	require.NoError(t, db.First(&republished, post.ID).Error)
	require.NotNil(t, republished.PublishedAt)
	assert.WithinDuration(t, firstPublishedAt, *republished.PublishedAt, time.Second)
}

func TestDeletePost_ArchivesAndSnapshotsTitle(t *testing.T) {
	logger := newTestLogger(t)
	db := newTestDB(t)
	postRepo := mysql.NewPostRepository(db, logger)
	authorRepo := mysql.NewAuthorRepository(db, logger)
	authSvc := NewAuthService(mysql.NewUserRepository(db, logger), logger)
	audit := &fakeAuditProducer{}
	svc := NewPostService(db, postRepo, authorRepo, authSvc, nil, audit, logger)

	editor := mustCreateUser(t, db, "EDITOR")
	author := mustCreateAuthor(t, db, editor.ID, 0)
	post := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	principal := testPrincipal(editor.ID, "EDITOR")

	archived, err := svc.DeletePost(context.Background(), principal, post.ID)
	require.NoError(t, err)
	assert.True(t, archived)

	// 行仍然存在，状态变为归档
	var remaining entities.Post
	require.NoError(t, db.First(&remaining, post.ID).Error)
	assert.Equal(t, enums.StatusArchived, remaining.Status)

	assert.Eventually(t, func() bool {
		return len(audit.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)
	events := audit.snapshot()
	assert.Equal(t, "已归档稿件", events[0].ChangeDescription)
	assert.Equal(t, post.Title, events[0].Title, "审计事件应携带归档前的标题快照")
}

func TestDeletePost_AlreadyArchivedIsNoOp(t *testing.T) {
	logger := newTestLogger(t)
	db := newTestDB(t)
	postRepo := mysql.NewPostRepository(db, logger)
	authorRepo := mysql.NewAuthorRepository(db, logger)
	authSvc := NewAuthService(mysql.NewUserRepository(db, logger), logger)
	audit := &fakeAuditProducer{}
	svc := NewPostService(db, postRepo, authorRepo, authSvc, nil, audit, logger)

	editor := mustCreateUser(t, db, "EDITOR")
	author := mustCreateAuthor(t, db, editor.ID, 0)
	post := mustCreatePost(t, db, author.ID, enums.StatusArchived)
	principal := testPrincipal(editor.ID, "EDITOR")

	archived, err := svc.DeletePost(context.Background(), principal, post.ID)
	require.NoError(t, err)
	assert.False(t, archived, "已归档的稿件重复归档应返回 false")

	// 不发审计事件
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, audit.snapshot())
}

func TestDeletePost_ForbiddenEmitsNoAudit(t *testing.T) {
	logger := newTestLogger(t)
	db := newTestDB(t)
	postRepo := mysql.NewPostRepository(db, logger)
	authorRepo := mysql.NewAuthorRepository(db, logger)
	authSvc := NewAuthService(mysql.NewUserRepository(db, logger), logger)
	audit := &fakeAuditProducer{}
	svc := NewPostService(db, postRepo, authorRepo, authSvc, nil, audit, logger)

	owner := mustCreateUser(t, db, "DOCTOR")
	ownerAuthor := mustCreateAuthor(t, db, owner.ID, 0)
	post := mustCreatePost(t, db, ownerAuthor.ID, enums.StatusPublished)

	stranger := mustCreateUser(t, db, "DOCTOR")
	mustCreateAuthor(t, db, stranger.ID, 0)

	archived, err := svc.DeletePost(context.Background(), testPrincipal(stranger.ID, "DOCTOR"), post.ID)
	assert.ErrorIs(t, err, myErrors.ErrForbidden)
	assert.False(t, archived)

	// 状态未变，也没有审计事件
	var unchanged entities.Post
	require.NoError(t, db.First(&unchanged, post.ID).Error)
	assert.Equal(t, enums.StatusPublished, unchanged.Status)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, audit.snapshot())
}

func TestDeletePost_MissingPostIsNotFound(t *testing.T) {
	logger := newTestLogger(t)
	db := newTestDB(t)
	postRepo := mysql.NewPostRepository(db, logger)
	authorRepo := mysql.NewAuthorRepository(db, logger)
	authSvc := NewAuthService(mysql.NewUserRepository(db, logger), logger)
	svc := NewPostService(db, postRepo, authorRepo, authSvc, nil, &fakeAuditProducer{}, logger)

	editor := mustCreateUser(t, db, "EDITOR")
	_, err := svc.DeletePost(context.Background(), testPrincipal(editor.ID, "EDITOR"), 424242)
	assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)
}

func TestSetFakeViews_RequiresGlobalUpdatePermission(t *testing.T) {
	logger := newTestLogger(t)
	db := newTestDB(t)
	postRepo := mysql.NewPostRepository(db, logger)
	authorRepo := mysql.NewAuthorRepository(db, logger)
	authSvc := NewAuthService(mysql.NewUserRepository(db, logger), logger)
	audit := &fakeAuditProducer{}
	svc := NewPostService(db, postRepo, authorRepo, authSvc, nil, audit, logger)

	doctor := mustCreateUser(t, db, "DOCTOR")
	doctorAuthor := mustCreateAuthor(t, db, doctor.ID, 0)
	post := mustCreatePost(t, db, doctorAuthor.ID, enums.StatusPublished)

	// 医生即使是稿件作者也不能做运营设置
	err := svc.SetFakeViews(context.Background(), testPrincipal(doctor.ID, "DOCTOR"), &dto.SetFakeViewsRequest{
		PostID:    post.ID,
		FakeViews: 100,
	})
	assert.ErrorIs(t, err, myErrors.ErrForbidden)

	editor := mustCreateUser(t, db, "EDITOR")
	err = svc.SetFakeViews(context.Background(), testPrincipal(editor.ID, "EDITOR"), &dto.SetFakeViewsRequest{
		PostID:    post.ID,
		FakeViews: 100,
	})
	require.NoError(t, err)

	var updated entities.Post
	require.NoError(t, db.First(&updated, post.ID).Error)
	assert.Equal(t, int64(100), updated.FakeViews)
	assert.Eventually(t, func() bool {
		return len(audit.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)
}
