package vo

// --- 用于成功响应且包含具体 Data 的包装器 ---

// PostResponseWrapper 对应 response.APIResponse[vo.PostResponse]
type PostResponseWrapper struct {
	Code    int          `json:"code" example:"0"`
	Message string       `json:"message,omitempty" example:"success"`
	Data    PostResponse `json:"data"` // 使用具体的 vo.PostResponse
}

// PostDetailResponseWrapper 对应 response.APIResponse[vo.PostDetailResponse]
type PostDetailResponseWrapper struct {
	Code    int                `json:"code" example:"0"`
	Message string             `json:"message,omitempty" example:"success"`
	Data    PostDetailResponse `json:"data"`
}

// PostPageResponseWrapper 对应 response.APIResponse[vo.PostPageVO]
// 用于所有分页列表接口的成功响应。
type PostPageResponseWrapper struct {
	Code    int        `json:"code" example:"0"`                    // 响应码，0 表示成功
	Message string     `json:"message,omitempty" example:"success"` // 响应消息
	Data    PostPageVO `json:"data"`                                // 实际的分页数据
}

// ViewsResponseWrapper 对应 response.APIResponse[vo.ViewsResponse]
type ViewsResponseWrapper struct {
	Code    int           `json:"code" example:"0"`
	Message string        `json:"message,omitempty" example:"success"`
	Data    ViewsResponse `json:"data"`
}

// --- 用于错误响应 或 简单成功响应（只有 Code 和 Message） ---

// BaseResponseWrapper 代表一个只包含 Code 和 Message 的响应。
// 适用于错误情况（RespondError 返回时 Data 为 nil 且 omitempty）
// 或某些成功操作可能也只返回 Code 和 Message。
type BaseResponseWrapper struct {
	Code    int    `json:"code" example:"0"`          // 成功时为 0, 错误时为具体错误码
	Message string `json:"message" example:"success"` // 成功或错误消息
}
