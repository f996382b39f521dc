package service

import (
	"context"
	"testing"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/publication_service/models/enums"
	"github.com/Xushengqwer/publication_service/myErrors"
	"github.com/Xushengqwer/publication_service/repo/mysql"
)

func TestAuthorize_PermissionPairs(t *testing.T) {
	logger := newTestLogger(t)
	db := newTestDB(t)
	authSvc := NewAuthService(mysql.NewUserRepository(db, logger), logger)

	const owner uint64 = 11
	const stranger uint64 = 22

	cases := []struct {
		name    string
		role    string
		userID  uint64
		op      Operation
		target  uint64
		allowed bool
	}{
		{"编辑可改任意稿件", "EDITOR", stranger, OpUpdate, owner, true},
		{"编辑可归档任意稿件", "EDITOR", stranger, OpDelete, owner, true},
		{"医生可改本人稿件", "DOCTOR", owner, OpUpdate, owner, true},
		{"医生不可改他人稿件", "DOCTOR", stranger, OpUpdate, owner, false},
		{"医生可归档本人稿件", "DOCTOR", owner, OpDelete, owner, true},
		{"医生不可归档他人稿件", "DOCTOR", stranger, OpDelete, owner, false},
		{"作者不可改他人稿件", "AUTHOR", stranger, OpUpdate, owner, false},
		{"未知角色一律拒绝", "GUEST", owner, OpUpdate, owner, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			principal := testPrincipal(tc.userID, tc.role)
			err := authSvc.Authorize(principal, tc.op, tc.target)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, myErrors.ErrForbidden)
			}
		})
	}
}

func TestCanSetImportance(t *testing.T) {
	logger := newTestLogger(t)
	db := newTestDB(t)
	authSvc := NewAuthService(mysql.NewUserRepository(db, logger), logger)

	assert.NoError(t, authSvc.CanSetImportance(testPrincipal(1, "ADMIN")))
	assert.NoError(t, authSvc.CanSetImportance(testPrincipal(1, "EDITOR")))
	assert.ErrorIs(t, authSvc.CanSetImportance(testPrincipal(1, "DOCTOR")), myErrors.ErrForbidden)
	assert.ErrorIs(t, authSvc.CanSetImportance(testPrincipal(1, "AUTHOR")), myErrors.ErrForbidden)
}

func TestLoadPrincipal(t *testing.T) {
	logger := newTestLogger(t)
	db := newTestDB(t)
	authSvc := NewAuthService(mysql.NewUserRepository(db, logger), logger)

	user := mustCreateUser(t, db, "DOCTOR")

	principal, err := authSvc.LoadPrincipal(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, "DOCTOR", principal.RoleName)
	assert.Equal(t, "张 三", principal.DisplayName, "署名应为姓在前名在后")
	assert.True(t, principal.Permissions.Has(enums.PermSaveOwnPublication))
	assert.False(t, principal.Permissions.Has(enums.PermSavePublication))

	_, err = authSvc.LoadPrincipal(context.Background(), 99999)
	assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)
}

func TestPermissionsForRole_UnknownRoleIsEmpty(t *testing.T) {
	set := PermissionsForRole("INTERN")
	for _, p := range []enums.Permission{
		enums.PermSavePublication, enums.PermSaveOwnPublication,
		enums.PermUpdatePost, enums.PermUpdateOwnPost,
		enums.PermDeletePost, enums.PermDeleteOwnPost,
		enums.PermSetImportance,
	} {
		assert.False(t, set.Has(p))
	}
}
