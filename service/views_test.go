package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/config"
	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
	"github.com/Xushengqwer/publication_service/repo/mysql"
)

func viewsFixture(t *testing.T, analytics *fakeAnalytics) (ViewCountService, *gorm.DB) {
	t.Helper()
	logger := newTestLogger(t)
	db := newTestDB(t)
	batchRepo := mysql.NewPostBatchRepository(db, logger, config.ViewSyncConfig{BatchSize: 2, ConcurrencyLevel: 2})
	svc := NewViewCountService(mysql.NewPostRepository(db, logger), batchRepo, analytics, logger)
	return svc, db
}

func TestParsePostIDFromURL(t *testing.T) {
	valid := []struct {
		url  string
		want uint64
	}{
		{"/posts/42", 42},
		{"/posts/42/", 42},
		{"https://example.com/posts/7", 7},
	}
	for _, tc := range valid {
		t.Run(tc.url, func(t *testing.T) {
			id, err := parsePostIDFromURL(tc.url)
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}

	invalid := []string{
		"",
		"/posts/",
		"/posts/abc",
		"/posts/42/comments",
		"/articles/42",
	}
	for _, url := range invalid {
		t.Run("拒绝_"+url, func(t *testing.T) {
			_, err := parsePostIDFromURL(url)
			assert.ErrorIs(t, err, ErrInvalidPostURL)
		})
	}
}

func TestGetDisplayedViews_SumsFakeAndRealViews(t *testing.T) {
	analytics := &fakeAnalytics{perURL: map[string]int64{}}
	svc, db := viewsFixture(t, analytics)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 1)
	post := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	require.NoError(t, db.Model(post).Update("fake_views", 150).Error)

	pageURL := "/posts/" + strconv.FormatUint(post.ID, 10)
	analytics.perURL[pageURL] = 10

	resp, err := svc.GetDisplayedViews(context.Background(), pageURL)
	require.NoError(t, err)
	assert.Equal(t, post.ID, resp.PostID)
	assert.Equal(t, int64(160), resp.Views, "展示浏览量 = 人工增补数 + 真实数")
}

func TestGetDisplayedViews_Errors(t *testing.T) {
	t.Run("URL 非法", func(t *testing.T) {
		svc, _ := viewsFixture(t, &fakeAnalytics{})
		_, err := svc.GetDisplayedViews(context.Background(), "/articles/5")
		assert.ErrorIs(t, err, ErrInvalidPostURL)
	})

	t.Run("稿件不存在", func(t *testing.T) {
		svc, _ := viewsFixture(t, &fakeAnalytics{})
		_, err := svc.GetDisplayedViews(context.Background(), "/posts/999999")
		assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)
	})

	t.Run("统计系统不可用", func(t *testing.T) {
		analytics := &fakeAnalytics{err: errors.New("连接超时")}
		svc, db := viewsFixture(t, analytics)
		user := mustCreateUser(t, db, "DOCTOR")
		author := mustCreateAuthor(t, db, user.ID, 0)
		post := mustCreatePost(t, db, author.ID, enums.StatusPublished)

		_, err := svc.GetDisplayedViews(context.Background(), "/posts/"+strconv.FormatUint(post.ID, 10))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidPostURL, "统计系统故障不能伪装成 URL 错误")
	})
}

func TestReconcile_OverwritesViews(t *testing.T) {
	analytics := &fakeAnalytics{all: map[uint64]int64{}}
	svc, db := viewsFixture(t, analytics)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 3)
	first := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	second := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	third := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	require.NoError(t, db.Model(first).Update("views", 100).Error)

	analytics.all[first.ID] = 5
	analytics.all[second.ID] = 9

	require.NoError(t, svc.Reconcile(context.Background()))

	assert.Equal(t, int64(5), loadViews(t, db, first.ID), "对账是覆盖写入，不做累加")
	assert.Equal(t, int64(9), loadViews(t, db, second.ID))
	assert.Equal(t, int64(0), loadViews(t, db, third.ID), "快照之外的稿件保持原值")
}

func TestReconcile_EmptySnapshotIsSkipped(t *testing.T) {
	analytics := &fakeAnalytics{all: map[uint64]int64{}}
	svc, db := viewsFixture(t, analytics)

	user := mustCreateUser(t, db, "DOCTOR")
	author := mustCreateAuthor(t, db, user.ID, 0)
	post := mustCreatePost(t, db, author.ID, enums.StatusPublished)
	require.NoError(t, db.Model(post).Update("views", 77).Error)

	require.NoError(t, svc.Reconcile(context.Background()))
	assert.Equal(t, int64(77), loadViews(t, db, post.ID))
}

func TestReconcile_AnalyticsFailurePropagates(t *testing.T) {
	svc, _ := viewsFixture(t, &fakeAnalytics{err: errors.New("连接超时")})
	assert.Error(t, svc.Reconcile(context.Background()))
}

func loadViews(t *testing.T, db *gorm.DB, postID uint64) int64 {
	t.Helper()
	var post entities.Post
	require.NoError(t, db.First(&post, postID).Error)
	return post.Views
}
