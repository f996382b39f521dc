package service

import (
	"context"
	"testing"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/models/dto"
	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
	"github.com/Xushengqwer/publication_service/myErrors"
	"github.com/Xushengqwer/publication_service/repo/mysql"
)

func authorFixture(t *testing.T) (AuthorService, *gorm.DB, *fakeAuditProducer) {
	t.Helper()
	logger := newTestLogger(t)
	db := newTestDB(t)
	audit := &fakeAuditProducer{}
	svc := NewAuthorService(db, mysql.NewPostRepository(db, logger), mysql.NewAuthorRepository(db, logger), audit, logger)
	return svc, db, audit
}

func publishedCount(t *testing.T, db *gorm.DB, authorID uint64) int64 {
	t.Helper()
	var author entities.Author
	require.NoError(t, db.First(&author, authorID).Error)
	return author.PublishedPosts
}

func TestReassignPost_MovesCounterPairAtomically(t *testing.T) {
	svc, db, audit := authorFixture(t)

	oldUser := mustCreateUser(t, db, "DOCTOR")
	oldAuthor := mustCreateAuthor(t, db, oldUser.ID, 3)
	newUser := mustCreateUser(t, db, "DOCTOR")
	newAuthor := mustCreateAuthor(t, db, newUser.ID, 1)
	post := mustCreatePost(t, db, oldAuthor.ID, enums.StatusPublished)

	err := svc.ReassignPost(context.Background(), testPrincipal(1, "EDITOR"), &dto.SetAuthorRequest{
		PostID:    post.ID,
		NewUserID: newUser.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), publishedCount(t, db, oldAuthor.ID))
	assert.Equal(t, int64(2), publishedCount(t, db, newAuthor.ID))

	var moved entities.Post
	require.NoError(t, db.First(&moved, post.ID).Error)
	assert.Equal(t, newAuthor.ID, moved.AuthorID)
	assert.Equal(t, newAuthor.DisplayName, moved.AuthorName)

	assert.Eventually(t, func() bool {
		return len(audit.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestReassignPost_CounterNeverGoesNegative(t *testing.T) {
	svc, db, _ := authorFixture(t)

	oldUser := mustCreateUser(t, db, "DOCTOR")
	oldAuthor := mustCreateAuthor(t, db, oldUser.ID, 0) // 计数已经是 0
	newUser := mustCreateUser(t, db, "DOCTOR")
	newAuthor := mustCreateAuthor(t, db, newUser.ID, 0)
	post := mustCreatePost(t, db, oldAuthor.ID, enums.StatusPublished)

	err := svc.ReassignPost(context.Background(), testPrincipal(1, "EDITOR"), &dto.SetAuthorRequest{
		PostID:    post.ID,
		NewUserID: newUser.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), publishedCount(t, db, oldAuthor.ID), "计数下限是 0，不出现负数")
	assert.Equal(t, int64(1), publishedCount(t, db, newAuthor.ID))
}

func TestReassignPost_SameAuthorIsNoOp(t *testing.T) {
	svc, db, audit := authorFixture(t)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 5)
	post := mustCreatePost(t, db, author.ID, enums.StatusPublished)

	err := svc.ReassignPost(context.Background(), testPrincipal(1, "EDITOR"), &dto.SetAuthorRequest{
		PostID:    post.ID,
		NewUserID: user.ID,
	})
	require.NoError(t, err)

	// 计数不动，也不发审计事件
	assert.Equal(t, int64(5), publishedCount(t, db, author.ID))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, audit.snapshot())
}

func TestReassignPost_UnknownTargets(t *testing.T) {
	svc, db, _ := authorFixture(t)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 0)
	post := mustCreatePost(t, db, author.ID, enums.StatusPublished)

	// 目标作者不存在
	err := svc.ReassignPost(context.Background(), testPrincipal(1, "EDITOR"), &dto.SetAuthorRequest{
		PostID:    post.ID,
		NewUserID: 999999,
	})
	assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)

	// 稿件不存在
	err = svc.ReassignPost(context.Background(), testPrincipal(1, "EDITOR"), &dto.SetAuthorRequest{
		PostID:    999999,
		NewUserID: user.ID,
	})
	assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)
}

func TestReassignPost_RequiresGlobalUpdatePermission(t *testing.T) {
	svc, db, _ := authorFixture(t)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 0)
	post := mustCreatePost(t, db, author.ID, enums.StatusPublished)

	err := svc.ReassignPost(context.Background(), testPrincipal(user.ID, "DOCTOR"), &dto.SetAuthorRequest{
		PostID:    post.ID,
		NewUserID: user.ID,
	})
	assert.ErrorIs(t, err, myErrors.ErrForbidden)
}
