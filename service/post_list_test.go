package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/models/dto"
	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
	"github.com/Xushengqwer/publication_service/models/vo"
	"github.com/Xushengqwer/publication_service/repo/mysql"
)

func postListFixture(t *testing.T) (PostListService, *gorm.DB) {
	t.Helper()
	logger := newTestLogger(t)
	db := newTestDB(t)
	return NewPostListService(mysql.NewPostQueryRepository(db, logger), logger), db
}

// attachDirections 把稿件挂到给定方向上。
func attachDirections(t *testing.T, db *gorm.DB, post *entities.Post, directions ...*entities.Direction) {
	t.Helper()
	for _, d := range directions {
		require.NoError(t, db.Model(post).Association("Directions").Append(d))
	}
}

func attachTags(t *testing.T, db *gorm.DB, post *entities.Post, tags ...*entities.Tag) {
	t.Helper()
	for _, tag := range tags {
		require.NoError(t, db.Model(post).Association("Tags").Append(tag))
	}
}

func mustCreateDirection(t *testing.T, db *gorm.DB, name string) *entities.Direction {
	t.Helper()
	d := &entities.Direction{Name: name}
	require.NoError(t, db.Create(d).Error)
	return d
}

func mustCreateTag(t *testing.T, db *gorm.DB, name string) *entities.Tag {
	t.Helper()
	tag := &entities.Tag{Name: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func pageIDs(page *vo.PostPageVO) []uint64 {
	ids := make([]uint64, 0, len(page.Posts))
	for _, p := range page.Posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestListLatestPosts_OnlyPublishedVisible(t *testing.T) {
	svc, db := postListFixture(t)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 2)
	cardiology := mustCreateDirection(t, db, "心血管")

	published := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	draft := mustCreatePost(t, db, author.ID, enums.StatusDraft)
	archived := mustCreatePost(t, db, author.ID, enums.StatusArchived)
	attachDirections(t, db, published, cardiology)
	attachDirections(t, db, draft, cardiology)
	attachDirections(t, db, archived, cardiology)

	page, err := svc.ListLatestPosts(context.Background(), &dto.LatestPostsRequestDTO{
		Directions: []uint64{cardiology.ID},
		Page:       1,
		PageSize:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, []uint64{published.ID}, pageIDs(page))
}

func TestListLatestPosts_MostSpecificQueryWins(t *testing.T) {
	svc, db := postListFixture(t)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 3)
	cardiology := mustCreateDirection(t, db, "心血管")
	hypertension := mustCreateTag(t, db, "高血压")

	match := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	require.NoError(t, db.Model(match).Update("type", enums.TypeVideo).Error)
	attachDirections(t, db, match, cardiology)
	attachTags(t, db, match, hypertension)

	// 方向和标签都对，但媒介类型不对
	wrongType := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	attachDirections(t, db, wrongType, cardiology)
	attachTags(t, db, wrongType, hypertension)

	// 方向和类型都对，但没有标签
	noTag := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	require.NoError(t, db.Model(noTag).Update("type", enums.TypeVideo).Error)
	attachDirections(t, db, noTag, cardiology)

	page, err := svc.ListLatestPosts(context.Background(), &dto.LatestPostsRequestDTO{
		Directions: []uint64{cardiology.ID},
		Types:      []enums.PostType{enums.TypeVideo},
		Tags:       []uint64{hypertension.ID},
		Page:       1,
		PageSize:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{match.ID}, pageIDs(page))
}

func TestListAuthorPosts_DefaultsToPublished(t *testing.T) {
	svc, db := postListFixture(t)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 1)
	published := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	draft := mustCreatePost(t, db, author.ID, enums.StatusDraft)

	// 未显式给状态：对外语境，只看已发布
	page, err := svc.ListAuthorPosts(context.Background(), &dto.AuthorPostsRequestDTO{
		AuthorID: author.ID,
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{published.ID}, pageIDs(page))

	// 显式给状态：后台语境，照给定集合查
	page, err = svc.ListAuthorPosts(context.Background(), &dto.AuthorPostsRequestDTO{
		AuthorID: author.ID,
		Statuses: []enums.PostStatus{enums.StatusDraft},
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{draft.ID}, pageIDs(page))
}

func TestListAuthorPosts_ScopedToAuthor(t *testing.T) {
	svc, db := postListFixture(t)

	firstUser := mustCreateUser(t, db, "DOCTOR")
	firstAuthor := mustCreateAuthor(t, db, firstUser.ID, 1)
	otherUser := mustCreateUser(t, db, "DOCTOR")
	otherAuthor := mustCreateAuthor(t, db, otherUser.ID, 1)

	mine := mustCreatePost(t, db, firstAuthor.ID, enums.StatusPublished)
	mustCreatePost(t, db, otherAuthor.ID, enums.StatusPublished)

	page, err := svc.ListAuthorPosts(context.Background(), &dto.AuthorPostsRequestDTO{
		AuthorID: firstAuthor.ID,
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{mine.ID}, pageIDs(page))
}

func TestListPosts_NoFilterReturnsEverything(t *testing.T) {
	svc, db := postListFixture(t)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 0)
	mustCreatePost(t, db, author.ID, enums.StatusDraft)
	mustCreatePost(t, db, author.ID, enums.StatusPublished)
	mustCreatePost(t, db, author.ID, enums.StatusArchived)

	page, err := svc.ListPosts(context.Background(), &dto.ListPostsRequestDTO{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total, "后台兜底查询不限状态")
}

func TestListPosts_TitleSubstringAndStatus(t *testing.T) {
	svc, db := postListFixture(t)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 0)

	match := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	require.NoError(t, db.Model(match).Update("title", "糖尿病饮食指南").Error)
	other := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	require.NoError(t, db.Model(other).Update("title", "高血压用药须知").Error)
	draft := mustCreatePost(t, db, author.ID, enums.StatusDraft)
	require.NoError(t, db.Model(draft).Update("title", "糖尿病运动建议").Error)

	title := "糖尿病"
	page, err := svc.ListPosts(context.Background(), &dto.ListPostsRequestDTO{
		Title:    &title,
		Statuses: []enums.PostStatus{enums.StatusPublished},
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{match.ID}, pageIDs(page))
}

func TestListPosts_AuthorScope(t *testing.T) {
	svc, db := postListFixture(t)

	firstUser := mustCreateUser(t, db, "DOCTOR")
	firstAuthor := mustCreateAuthor(t, db, firstUser.ID, 0)
	otherUser := mustCreateUser(t, db, "DOCTOR")
	otherAuthor := mustCreateAuthor(t, db, otherUser.ID, 0)

	mine := mustCreatePost(t, db, firstAuthor.ID, enums.StatusDraft)
	mustCreatePost(t, db, otherAuthor.ID, enums.StatusDraft)

	page, err := svc.ListPosts(context.Background(), &dto.ListPostsRequestDTO{
		AuthorID: &firstAuthor.ID,
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{mine.ID}, pageIDs(page))
}

func TestListPosts_EndDateExcludesLaterUpdates(t *testing.T) {
	svc, db := postListFixture(t)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 0)
	mustCreatePost(t, db, author.ID, enums.StatusPublished)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	page, err := svc.ListPosts(context.Background(), &dto.ListPostsRequestDTO{
		EndDate:  &yesterday,
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total, "今天更新的稿件不落在截止昨天的区间里")

	// 只给起点时终点取当天最后一刻，今天的更新应当命中
	epoch := "1970-01-01"
	page, err = svc.ListPosts(context.Background(), &dto.ListPostsRequestDTO{
		StartDate: &epoch,
		Page:      1,
		PageSize:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestResolveDateRange(t *testing.T) {
	t.Run("两端都缺省时不启用时间条件", func(t *testing.T) {
		start, end, err := resolveDateRange(nil, nil)
		require.NoError(t, err)
		assert.Nil(t, start)
		assert.Nil(t, end)
	})

	t.Run("起点缺省取纪元日", func(t *testing.T) {
		endDate := "2026-03-15"
		start, end, err := resolveDateRange(nil, &endDate)
		require.NoError(t, err)
		assert.True(t, start.Equal(time.Unix(0, 0).UTC()))
		assert.Equal(t, 2026, end.Year())
		assert.Equal(t, 23, end.Hour())
		assert.Equal(t, 59, end.Minute())
	})

	t.Run("终点缺省取当天最后一刻", func(t *testing.T) {
		startDate := "2026-01-01"
		_, end, err := resolveDateRange(&startDate, nil)
		require.NoError(t, err)
		now := time.Now()
		assert.Equal(t, now.Day(), end.Day())
		assert.Equal(t, 23, end.Hour())
	})

	t.Run("日期格式非法时报错", func(t *testing.T) {
		bad := "15/03/2026"
		_, _, err := resolveDateRange(&bad, nil)
		assert.Error(t, err)
	})
}
