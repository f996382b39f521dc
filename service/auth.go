package service

import (
	"context"
	"fmt"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/publication_service/models/enums"
	"github.com/Xushengqwer/publication_service/myErrors"
	"github.com/Xushengqwer/publication_service/repo/mysql"
)

// Principal 当前请求的已认证主体。
// - 凭证校验在网关完成，这里只承载身份与权限集合。
type Principal struct {
	UserID      uint64
	Email       string
	DisplayName string
	RoleName    string
	Permissions enums.PermissionSet
}

// Operation 受权限保护的变更操作。
type Operation int

const (
	OpSave Operation = iota
	OpUpdate
	OpDelete
)

// permissionPair 每个变更操作对应的 "任意 / 仅本人" 权限对。
type permissionPair struct {
	any enums.Permission
	own enums.Permission
}

// operationPermissions 操作到权限对的固定映射表。
// 授权规则是对封闭枚举的显式谓词，不做任何表达式解析。
var operationPermissions = map[Operation]permissionPair{
	OpSave:   {any: enums.PermSavePublication, own: enums.PermSaveOwnPublication},
	OpUpdate: {any: enums.PermUpdatePost, own: enums.PermUpdateOwnPost},
	OpDelete: {any: enums.PermDeletePost, own: enums.PermDeleteOwnPost},
}

// rolePermissions 角色到权限集合的固定目录。
// 目录不支持运行期配置；未知角色得到空集合。
var rolePermissions = map[string]enums.PermissionSet{
	"ADMIN": enums.NewPermissionSet(
		enums.PermSavePublication, enums.PermSaveOwnPublication,
		enums.PermUpdatePost, enums.PermUpdateOwnPost,
		enums.PermDeletePost, enums.PermDeleteOwnPost,
		enums.PermSetImportance,
	),
	"EDITOR": enums.NewPermissionSet(
		enums.PermSavePublication, enums.PermSaveOwnPublication,
		enums.PermUpdatePost, enums.PermUpdateOwnPost,
		enums.PermDeletePost, enums.PermDeleteOwnPost,
		enums.PermSetImportance,
	),
	"DOCTOR": enums.NewPermissionSet(
		enums.PermSaveOwnPublication, enums.PermUpdateOwnPost, enums.PermDeleteOwnPost,
	),
	"AUTHOR": enums.NewPermissionSet(
		enums.PermSaveOwnPublication, enums.PermUpdateOwnPost, enums.PermDeleteOwnPost,
	),
}

// PermissionsForRole 返回角色的权限集合；未知角色得到空集合。
func PermissionsForRole(roleName string) enums.PermissionSet {
	if set, ok := rolePermissions[roleName]; ok {
		return set
	}
	return enums.PermissionSet{}
}

// AuthService 负责主体装配与授权判定。
type AuthService interface {
	// LoadPrincipal 按用户ID装配主体（角色从用户行读取，权限查固定目录）。
	LoadPrincipal(ctx context.Context, userID uint64) (*Principal, error)

	// Authorize 判定主体能否对目标作者的稿件执行操作。
	// - 允许条件: 持有 "任意" 权限，或持有 "仅本人" 权限且目标作者就是主体本人。
	// - 不满足时返回 myErrors.ErrForbidden，不产生任何副作用。
	Authorize(principal *Principal, op Operation, targetAuthorUserID uint64) error

	// CanSetImportance 判定主体能否维护重要位排序。
	CanSetImportance(principal *Principal) error
}

type authService struct {
	userRepo mysql.UserRepository
	logger   *core.ZapLogger
}

// NewAuthService 是 authService 的构造函数。
func NewAuthService(userRepo mysql.UserRepository, logger *core.ZapLogger) AuthService {
	return &authService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// LoadPrincipal 实现主体装配。
func (s *authService) LoadPrincipal(ctx context.Context, userID uint64) (*Principal, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("装配主体失败 (userID: %d): %w", userID, err)
	}
	return &Principal{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName(),
		RoleName:    user.RoleName,
		Permissions: PermissionsForRole(user.RoleName),
	}, nil
}

// Authorize 实现授权判定。
func (s *authService) Authorize(principal *Principal, op Operation, targetAuthorUserID uint64) error {
	pair, ok := operationPermissions[op]
	if !ok {
		s.logger.Error("未知的受保护操作", zap.Int("op", int(op)))
		return myErrors.ErrForbidden
	}

	if principal.Permissions.Has(pair.any) {
		return nil
	}
	if principal.Permissions.Has(pair.own) && principal.UserID == targetAuthorUserID {
		return nil
	}

	s.logger.Warn("授权被拒绝",
		zap.Uint64("userID", principal.UserID),
		zap.String("role", principal.RoleName),
		zap.Int("op", int(op)),
		zap.Uint64("targetAuthorUserID", targetAuthorUserID),
	)
	return myErrors.ErrForbidden
}

// CanSetImportance 实现重要位维护权限判定。
func (s *authService) CanSetImportance(principal *Principal) error {
	if principal.Permissions.Has(enums.PermSetImportance) {
		return nil
	}
	s.logger.Warn("授权被拒绝：缺少重要位维护权限",
		zap.Uint64("userID", principal.UserID),
		zap.String("role", principal.RoleName),
	)
	return myErrors.ErrForbidden
}
