package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	commonConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/config"
)

// newMockDB 用 sqlmock 搭一个可以断言 SQL 的 GORM 连接。
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormMysql.New(gormMysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func newRepoTestLogger(t *testing.T) *core.ZapLogger {
	t.Helper()
	logger, err := core.NewZapLogger(commonConfig.ZapConfig{})
	require.NoError(t, err)
	return logger
}

// 单条 UPDATE 内通过 CASE WHEN 把每个稿件改写到各自的计数。
var caseWhenUpdate = "UPDATE `posts` SET .*CASE id WHEN \\? THEN \\? END.*WHERE id IN"

func TestBatchOverwriteViews_SingleBatchUsesCaseWhen(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostBatchRepository(db, newRepoTestLogger(t), config.ViewSyncConfig{BatchSize: 10, ConcurrencyLevel: 1})

	mock.ExpectBegin()
	mock.ExpectExec(caseWhenUpdate).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.BatchOverwriteViews(context.Background(), map[uint64]int64{42: 5})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchOverwriteViews_SplitsIntoBatches(t *testing.T) {
	db, mock := newMockDB(t)
	// BatchSize=1 强制三条计数拆成三个批次，各自一条 UPDATE
	repo := NewPostBatchRepository(db, newRepoTestLogger(t), config.ViewSyncConfig{BatchSize: 1, ConcurrencyLevel: 1})

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectExec(caseWhenUpdate).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	err := repo.BatchOverwriteViews(context.Background(), map[uint64]int64{1: 10, 2: 20, 3: 30})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchOverwriteViews_EmptySnapshotIssuesNoSQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostBatchRepository(db, newRepoTestLogger(t), config.ViewSyncConfig{BatchSize: 10, ConcurrencyLevel: 1})

	require.NoError(t, repo.BatchOverwriteViews(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchOverwriteViews_FailedBatchSurfaces(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostBatchRepository(db, newRepoTestLogger(t), config.ViewSyncConfig{BatchSize: 10, ConcurrencyLevel: 1})

	mock.ExpectBegin()
	mock.ExpectExec(caseWhenUpdate).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.BatchOverwriteViews(context.Background(), map[uint64]int64{42: 5})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
