package dto

import (
	"time"

	"github.com/Xushengqwer/publication_service/models/enums"
)

// LatestPostsRequestDTO 定义了对外列表页（按方向浏览）的API请求参数。
// - 用于控制器层接收和验证来自客户端的HTTP请求。
// - 对外列表只展示已发布稿件，状态条件由服务层固定注入。
type LatestPostsRequestDTO struct {
	// Directions 方向ID集合，至少提供一个。
	// - 从URL查询参数 "directions" 获取（可重复出现）。
	Directions []uint64 `form:"directions" binding:"required,min=1"`

	// Types 媒介类型集合，可选；缺省表示不限媒介类型。
	Types []enums.PostType `form:"types" binding:"omitempty"`

	// Tags 标签ID集合，可选；缺省表示不限标签。
	Tags []uint64 `form:"tags" binding:"omitempty"`

	// Page 页码，从 1 开始。
	Page int `form:"page" binding:"required,gte=1"`

	// PageSize 每页数量，1 到 100。
	PageSize int `form:"pageSize" binding:"required,gte=1,lte=100"`
}

// GetOffset 计算分页偏移量。
// - (page - 1) * pageSize
func (dto *LatestPostsRequestDTO) GetOffset() int {
	if dto.Page <= 0 {
		return 0
	}
	return (dto.Page - 1) * dto.PageSize
}

// GetLimit 获取每页数量。
func (dto *LatestPostsRequestDTO) GetLimit() int {
	return dto.PageSize
}

// ListPostsRequestDTO 定义了后台全局筛选列表的API请求参数。
// - 所有维度均可选，缺省即该维度不过滤。
// - 日期为含两端的自然日；缺省时起点取纪元日、终点取当天。
type ListPostsRequestDTO struct {
	Directions []uint64           `form:"directions" binding:"omitempty"`
	Types      []enums.PostType   `form:"types" binding:"omitempty"`
	Origins    []enums.PostOrigin `form:"origins" binding:"omitempty"`

	// Statuses 状态集合；后台可显式传多个状态，缺省表示不限状态。
	Statuses []enums.PostStatus `form:"statuses" binding:"omitempty"`

	// Title 标题子串过滤，大小写敏感。
	Title *string `form:"title" binding:"omitempty,max=255"`

	// AuthorName 作者展示名子串过滤，大小写敏感。
	AuthorName *string `form:"authorName" binding:"omitempty,max=100"`

	// StartDate / EndDate 修改时间的日期范围，格式 2006-01-02。
	StartDate *string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`

	// AuthorID 作者作用域，可选；提供时整个筛选限定在该作者的稿件内。
	AuthorID *uint64 `form:"authorId" binding:"omitempty"`

	Page     int `form:"page" binding:"required,gte=1"`
	PageSize int `form:"pageSize" binding:"required,gte=1,lte=100"`
}

func (dto *ListPostsRequestDTO) GetOffset() int {
	if dto.Page <= 0 {
		return 0
	}
	return (dto.Page - 1) * dto.PageSize
}

func (dto *ListPostsRequestDTO) GetLimit() int {
	return dto.PageSize
}

// AuthorPostsRequestDTO 定义了按作者浏览稿件的API请求参数。
// - 可叠加媒介类型 / 方向 / 状态维度，服务层按提供的维度选择最合适的查询。
type AuthorPostsRequestDTO struct {
	AuthorID   uint64             `form:"authorId" binding:"required"`
	Types      []enums.PostType   `form:"types" binding:"omitempty"`
	Directions []uint64           `form:"directions" binding:"omitempty"`
	Statuses   []enums.PostStatus `form:"statuses" binding:"omitempty"`
	Page       int                `form:"page" binding:"required,gte=1"`
	PageSize   int                `form:"pageSize" binding:"required,gte=1,lte=100"`
}

func (dto *AuthorPostsRequestDTO) GetOffset() int {
	if dto.Page <= 0 {
		return 0
	}
	return (dto.Page - 1) * dto.PageSize
}

func (dto *AuthorPostsRequestDTO) GetLimit() int {
	return dto.PageSize
}

// ListQueryDTO 封装了列表查询的结构化条件。
// - 用于在 Service 层和 Repo 层之间传递查询条件。
// - 可选维度用 nil / 空切片表达 "该维度不过滤"；日期边界由服务层解析后填入。
type ListQueryDTO struct {
	Directions []uint64           `json:"directions"`
	Types      []enums.PostType   `json:"types"`
	Tags       []uint64           `json:"tags"`
	Origins    []enums.PostOrigin `json:"origins"`
	Statuses   []enums.PostStatus `json:"statuses"`

	Title      *string `json:"title"`
	AuthorName *string `json:"authorName"`

	// AuthorID 作者作用域；非 nil 时使用按作者的查询族。
	AuthorID *uint64 `json:"authorID"`

	// StartTime / EndTime 修改时间的闭区间边界（已展开为当日零点 / 当日最后一刻）。
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
