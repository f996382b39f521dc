package mysql

import (
	"context"
	"errors"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/publication_service/models/entities"
)

// UserRepository 身份行的只读访问。
// 凭证校验在网关完成，本服务只按 ID 取角色与署名信息。
type UserRepository interface {
	// GetUserByID 根据主键获取用户，未找到时返回 commonerrors.ErrRepoNotFound。
	GetUserByID(ctx context.Context, id uint64) (*entities.User, error)

	// CreateUser 新建用户行（种子数据用）。
	CreateUser(ctx context.Context, db *gorm.DB, user *entities.User) error
}

type userRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewUserRepository 是 userRepository 的构造函数。
func NewUserRepository(db *gorm.DB, logger *core.ZapLogger) UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) GetUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("根据 ID 获取用户未找到", zap.Uint64("userID", id))
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据 ID 获取用户数据库查询失败", zap.Error(err), zap.Uint64("userID", id))
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, db *gorm.DB, user *entities.User) error {
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		r.logger.Error("创建用户失败", zap.Error(err), zap.String("email", user.Email))
		return err
	}
	return nil
}
