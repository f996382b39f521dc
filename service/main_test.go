package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	commonConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
)

// newTestLogger 构造测试用的 logger，失败直接终止测试。
func newTestLogger(t *testing.T) *core.ZapLogger {
	t.Helper()
	logger, err := core.NewZapLogger(commonConfig.ZapConfig{})
	require.NoError(t, err)
	return logger
}

// newTestDB 打开独立的内存数据库并完成迁移。
// 每个测试用唯一的 DSN，避免用例间的数据串扰。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.Post{},
		&entities.Direction{},
		&entities.Tag{},
		&entities.Author{},
		&entities.User{},
	))
	return db
}

// mustCreateUser 写入一个用户并返回实体。
func mustCreateUser(t *testing.T, db *gorm.DB, role string) *entities.User {
	t.Helper()
	user := &entities.User{
		Email:     fmt.Sprintf("%s_%d@example.com", role, time.Now().UnixNano()),
		FirstName: "三",
		LastName:  "张",
		RoleName:  role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// mustCreateAuthor 为用户写入作者档案。
func mustCreateAuthor(t *testing.T, db *gorm.DB, userID uint64, published int64) *entities.Author {
	t.Helper()
	author := &entities.Author{
		UserID:         userID,
		DisplayName:    "张 三",
		PublishedPosts: published,
	}
	require.NoError(t, db.Create(author).Error)
	return author
}

// mustCreatePost 写入一篇稿件。
func mustCreatePost(t *testing.T, db *gorm.DB, authorID uint64, status enums.PostStatus) *entities.Post {
	t.Helper()
	post := &entities.Post{
		Title:      "高血压患者的运动处方",
		Content:    "测试正文",
		Status:     status,
		AuthorID:   authorID,
		AuthorName: "张 三",
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// testPrincipal 按角色目录装配测试主体。
func testPrincipal(userID uint64, role string) *Principal {
	return &Principal{
		UserID:      userID,
		DisplayName: "张 三",
		RoleName:    role,
		Permissions: PermissionsForRole(role),
	}
}

// auditRecord 捕获到的一条审计事件。
type auditRecord struct {
	Title             string
	ChangeDescription string
	PostID            uint64
	ActorName         string
}

// fakeAuditProducer 在内存中捕获审计事件，供测试断言事件数量与内容。
type fakeAuditProducer struct {
	mu     sync.Mutex
	events []auditRecord
}

func (f *fakeAuditProducer) SendAuditLog(_ context.Context, title, changeDescription string, postID uint64, actorName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, auditRecord{
		Title:             title,
		ChangeDescription: changeDescription,
		PostID:            postID,
		ActorName:         actorName,
	})
	return nil
}

func (f *fakeAuditProducer) Close() error { return nil }

func (f *fakeAuditProducer) snapshot() []auditRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]auditRecord, len(f.events))
	copy(out, f.events)
	return out
}

// fakeAnalytics 返回固定计数的统计系统替身。
type fakeAnalytics struct {
	perURL map[string]int64
	all    map[uint64]int64
	err    error
}

func (f *fakeAnalytics) ViewsForURL(_ context.Context, pageURL string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.perURL[pageURL], nil
}

func (f *fakeAnalytics) AllViews(_ context.Context) (map[uint64]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.all, nil
}
