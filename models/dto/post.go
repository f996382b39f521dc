package dto

import (
	"time"

	"github.com/Xushengqwer/publication_service/models/enums"
)

// SavePostRequest 定义了创建稿件的请求数据结构
// - 添加了 binding 标签用于输入验证
// - 预览图文件走 multipart/form-data，不在本结构体中
type SavePostRequest struct {
	Title        string           `json:"title" form:"title" binding:"required,max=255"`          // 标题，必填，最大255字符
	Content      string           `json:"content" form:"content" binding:"required"`              // 正文，必填
	AuthorID     uint64           `json:"author_id" form:"author_id" binding:"required"`          // 期望归属的作者ID，必填；无全局创建权限时会被强制改写为请求者本人
	Type         enums.PostType   `json:"type" form:"type" binding:"min=0"`                       // 媒介类型
	Origin       enums.PostOrigin `json:"origin" form:"origin" binding:"min=0"`                   // 内容来源
	DirectionIDs []uint64         `json:"direction_ids" form:"direction_ids" binding:"omitempty"` // 方向ID集合，可选
	TagIDs       []uint64         `json:"tag_ids" form:"tag_ids" binding:"omitempty"`             // 标签ID集合，可选
}

// UpdatePostRequest 定义了更新稿件的请求数据结构
// - 状态字段驱动审核流转，同状态更新视为普通编辑
type UpdatePostRequest struct {
	PostID       uint64           `json:"post_id" binding:"omitempty"` // 以路径参数为准，请求体中可省略
	Title        string           `json:"title" binding:"required,max=255"`
	Content      string           `json:"content" binding:"required"`
	Status       enums.PostStatus `json:"status" binding:"min=0,max=6" swaggertype:"integer"` // 目标状态
	Type         enums.PostType   `json:"type" binding:"min=0"`
	Origin       enums.PostOrigin `json:"origin" binding:"min=0"`
	DirectionIDs []uint64         `json:"direction_ids" binding:"omitempty"`
	TagIDs       []uint64         `json:"tag_ids" binding:"omitempty"`
}

// SetImportantOrderRequest 定义了重要位全量重排的请求数据结构
// - PostIDs 的顺序即精选区展示顺序（1 基）
// - 空列表视为无效输入，整个请求不产生任何变更
type SetImportantOrderRequest struct {
	PostIDs []uint64 `json:"post_ids"`
}

// SetAuthorRequest 作者迁移请求
type SetAuthorRequest struct {
	PostID    uint64 `json:"post_id" binding:"required"`
	NewUserID uint64 `json:"new_user_id" binding:"required"` // 新作者对应的用户ID
}

// SetPublishedAtRequest 显式设置发布时间
type SetPublishedAtRequest struct {
	PostID      uint64    `json:"post_id" binding:"required"`
	PublishedAt time.Time `json:"published_at" binding:"required"`
}

// SetFakeViewsRequest 运营人工增补浏览量
// - 只写 fake_views 列，展示时与真实浏览量相加
type SetFakeViewsRequest struct {
	PostID    uint64 `json:"post_id" binding:"required"`
	FakeViews int64  `json:"fake_views" binding:"gte=0"`
}

// SetImportantImageRequest 为稿件设置精选位配图
type SetImportantImageRequest struct {
	PostID   uint64 `json:"post_id" binding:"required"`
	ImageURL string `json:"image_url" binding:"required,url"`
}
