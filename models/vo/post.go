package vo

import (
	"time"

	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
)

// PostResponse 定义了稿件基础信息的响应数据结构
type PostResponse struct {
	ID                uint64           `json:"id"`                  // 稿件ID
	Title             string           `json:"title"`               // 标题
	Status            enums.PostStatus `json:"status"`              // 状态，0=草稿 ... 5=已发布 6=已归档
	Type              enums.PostType   `json:"type"`                // 媒介类型
	Origin            enums.PostOrigin `json:"origin"`              // 内容来源
	AuthorID          uint64           `json:"author_id"`           // 作者ID
	AuthorName        string           `json:"author_name"`         // 作者展示名
	PreviewImageURL   string           `json:"preview_image_url"`   // 预览图
	ImportantImageURL string           `json:"important_image_url"` // 精选位配图
	Important         bool             `json:"important"`           // 是否在精选区
	ImportanceOrder   uint             `json:"importance_order"`    // 精选区排序，1 基
	Views             int64            `json:"views"`               // 展示浏览量 = 真实 + 人工增补
	PublishedAt       *time.Time       `json:"published_at"`        // 发布时间，未发布为 null
	CreatedAt         time.Time        `json:"created_at"`          // 创建时间
	UpdatedAt         time.Time        `json:"updated_at"`          // 更新时间
}

// PostDetailResponse 单稿件详情响应，比列表多出正文与标签维度
type PostDetailResponse struct {
	PostResponse
	Content    string   `json:"content"`
	Directions []uint64 `json:"directions"` // 方向ID集合
	Tags       []uint64 `json:"tags"`       // 标签ID集合
}

// PostPageVO 定义了分页列表的响应结构。
// - 包含当前页的稿件列表和总记录数。
type PostPageVO struct {
	Posts []*PostResponse `json:"posts"` // 当前页的稿件列表
	Total int64           `json:"total"` // 符合条件的总记录数
}

// ViewsResponse 稿件展示浏览量响应
type ViewsResponse struct {
	PostID uint64 `json:"post_id"`
	Views  int64  `json:"views"` // 真实浏览量 + 人工增补
}

// MapPostToResponseVO 将单个稿件实体转换为响应VO。
// 展示浏览量在这里合成，真实与人工增补两列对外不拆分。
func MapPostToResponseVO(post *entities.Post) *PostResponse {
	if post == nil {
		return nil
	}
	return &PostResponse{
		ID:                post.ID,
		Title:             post.Title,
		Status:            post.Status,
		Type:              post.Type,
		Origin:            post.Origin,
		AuthorID:          post.AuthorID,
		AuthorName:        post.AuthorName,
		PreviewImageURL:   post.PreviewImageURL,
		ImportantImageURL: post.ImportantImageURL,
		Important:         post.Important,
		ImportanceOrder:   post.ImportanceOrder,
		Views:             post.Views + post.FakeViews,
		PublishedAt:       post.PublishedAt,
		CreatedAt:         post.CreatedAt,
		UpdatedAt:         post.UpdatedAt,
	}
}

// MapPostsToResponseVOs 将稿件实体列表转换为响应VO列表。
func MapPostsToResponseVOs(posts []*entities.Post) []*PostResponse {
	if len(posts) == 0 {
		return []*PostResponse{} // 返回空切片而不是nil，便于前端处理
	}

	responses := make([]*PostResponse, 0, len(posts))
	for _, post := range posts {
		if post == nil {
			continue
		}
		responses = append(responses, MapPostToResponseVO(post))
	}
	return responses
}

// MapPostToDetailVO 将稿件实体（含预加载的方向与标签）转换为详情VO。
func MapPostToDetailVO(post *entities.Post) *PostDetailResponse {
	if post == nil {
		return nil
	}
	detail := &PostDetailResponse{
		PostResponse: *MapPostToResponseVO(post),
		Content:      post.Content,
		Directions:   make([]uint64, 0, len(post.Directions)),
		Tags:         make([]uint64, 0, len(post.Tags)),
	}
	for _, d := range post.Directions {
		detail.Directions = append(detail.Directions, d.ID)
	}
	for _, t := range post.Tags {
		detail.Tags = append(detail.Tags, t.ID)
	}
	return detail
}
