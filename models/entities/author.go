package entities

import "github.com/Xushengqwer/go-common/models/entities"

// Author 作者档案
// - 与用户一一对应（UserID 唯一），稿件通过 AuthorID 归属作者
type Author struct {
	entities.BaseModel

	// 关联的用户ID，一个用户至多对应一个作者档案
	UserID uint64 `gorm:"not null;uniqueIndex"`

	// 展示名，冗余自用户表，作者迁移时同步到 posts.author_name
	DisplayName string `gorm:"type:varchar(100);not null;default:''"`

	// 当前归属该作者的稿件数
	// - 不变式: 等于 posts 表中 author_id 指向本行的行数
	// - 只允许作者迁移事务增量维护，禁止扫表重算，禁止出现负数
	PublishedPosts int64 `gorm:"default:0"`
}

// User 已认证主体的身份行
// - 凭证校验在网关完成，本服务只消费身份信息
type User struct {
	entities.BaseModel

	Email     string `gorm:"type:varchar(255);not null;uniqueIndex"`
	FirstName string `gorm:"type:varchar(50);not null;default:''"`
	LastName  string `gorm:"type:varchar(50);not null;default:''"`

	// 角色名，对应 service 层固定的角色-权限目录
	RoleName string `gorm:"type:varchar(50);not null;default:''"`
}

// DisplayName 审计日志里的操作者署名，姓在前名在后。
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	return u.LastName + " " + u.FirstName
}
