package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/constants"
	"github.com/Xushengqwer/go-common/response" // 通用响应包
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/publication_service/models/dto"
	"github.com/Xushengqwer/publication_service/myErrors"
	"github.com/Xushengqwer/publication_service/service"
)

// PostController 对外（读多写少）接口的控制器。
type PostController struct {
	postListService   service.PostListService
	postService       service.PostService
	importanceService service.ImportanceService
	viewCountService  service.ViewCountService
}

// NewPostController 构造函数，用于创建 PostController 实例
func NewPostController(
	postListService service.PostListService,
	postService service.PostService,
	importanceService service.ImportanceService,
	viewCountService service.ViewCountService,
) *PostController {
	return &PostController{
		postListService:   postListService,
		postService:       postService,
		importanceService: importanceService,
		viewCountService:  viewCountService,
	}
}

// principalFromContext 从网关透传的用户ID装配请求主体。
// - 网关以字符串形式写入 UserIDKey，这里解析为数字ID后查库装配。
func principalFromContext(c *gin.Context, authSvc service.AuthService) (*service.Principal, bool) {
	userIDValue, exists := c.Get(string(constants.UserIDKey))
	if !exists {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "无法获取用户信息 (Context Key Not Found)")
		return nil, false
	}
	userIDStr, ok := userIDValue.(string)
	if !ok || userIDStr == "" {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "无法获取有效的用户 ID (Invalid UserID in Context)")
		return nil, false
	}
	userID, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "用户 ID 格式无效")
		return nil, false
	}

	principal, err := authSvc.LoadPrincipal(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "装配请求主体失败")
		return nil, false
	}
	return principal, true
}

// respondServiceError 把服务层错误统一映射为 HTTP 响应。
// - 权限不足 -> 403；目标不存在 -> 404；校验类错误 -> 400；其余 -> 500。
func respondServiceError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, myErrors.ErrForbidden):
		response.RespondError(c, http.StatusForbidden, response.ErrCodeClientUnauthorized, "无权执行该操作")
	case errors.Is(err, commonerrors.ErrRepoNotFound):
		response.RespondError(c, http.StatusNotFound, response.ErrCodeClientInvalidInput, msg+": 目标不存在")
	case errors.Is(err, service.ErrEmptyImportanceSequence):
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, msg+": "+err.Error())
	default:
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, msg+": "+err.Error())
	}
}

// ListLatestPosts 获取对外的按方向浏览列表 (分页)
// @Summary      获取最新稿件列表 (公开)
// @Description  按方向浏览已发布稿件，可叠加媒介类型与标签筛选，按修改时间倒序分页返回。
// @Tags         posts (稿件)
// @Accept       json
// @Produce      json
// @Param        directions query []uint64 true "方向ID集合 (可重复出现)" collectionFormat(multi)
// @Param        types query []int false "媒介类型集合 (0:图文, 1:视频, 2:音频, 3:译文)" collectionFormat(multi)
// @Param        tags query []uint64 false "标签ID集合" collectionFormat(multi)
// @Param        page query int true "页码 (从1开始)" format(int32) minimum(1) default(1)
// @Param        pageSize query int true "每页数量" format(int32) minimum(1) maximum(100) default(10)
// @Success      200 {object} vo.PostPageResponseWrapper "成功响应，包含稿件列表和总记录数"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求参数"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/publication/posts/latest [get]
func (ctrl *PostController) ListLatestPosts(c *gin.Context) {
	var reqDTO dto.LatestPostsRequestDTO
	if err := c.ShouldBindQuery(&reqDTO); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	pageVO, err := ctrl.postListService.ListLatestPosts(c.Request.Context(), &reqDTO)
	if err != nil {
		respondServiceError(c, err, "获取稿件列表失败")
		return
	}
	response.RespondSuccess(c, pageVO, "稿件列表获取成功")
}

// ListAuthorPosts 获取指定作者的稿件列表 (分页)
// @Summary      获取作者的稿件列表 (公开)
// @Description  检索特定作者的已发布稿件，可叠加媒介类型与方向筛选，按发布时间倒序分页返回。
// @Tags         posts (稿件)
// @Accept       json
// @Produce      json
// @Param        authorId query uint64 true "作者 ID" Format(uint64)
// @Param        types query []int false "媒介类型集合" collectionFormat(multi)
// @Param        directions query []uint64 false "方向ID集合" collectionFormat(multi)
// @Param        page query int true "页码 (从1开始)" format(int32) minimum(1)
// @Param        pageSize query int true "每页数量" format(int32) minimum(1) maximum(100)
// @Success      200 {object} vo.PostPageResponseWrapper "稿件检索成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的输入参数"
// @Failure      500 {object} vo.BaseResponseWrapper "检索稿件时发生内部服务器错误"
// @Router       /api/v1/publication/posts/by-author [get]
func (ctrl *PostController) ListAuthorPosts(c *gin.Context) {
	var reqDTO dto.AuthorPostsRequestDTO
	if err := c.ShouldBindQuery(&reqDTO); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	// 对外语境不允许查看非公开状态
	reqDTO.Statuses = nil

	pageVO, err := ctrl.postListService.ListAuthorPosts(c.Request.Context(), &reqDTO)
	if err != nil {
		respondServiceError(c, err, "检索作者稿件失败")
		return
	}
	response.RespondSuccess(c, pageVO, "作者稿件检索成功")
}

// GetPostDetail 获取稿件详情
// @Summary      获取稿件详情 (公开)
// @Description  通过稿件 ID 获取完整详情（含正文、方向与标签）。
// @Tags         posts (稿件)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "稿件 ID" Format(uint64)
// @Success      200 {object} vo.PostDetailResponseWrapper "稿件详情获取成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的稿件 ID 格式"
// @Failure      404 {object} vo.BaseResponseWrapper "稿件不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/publication/posts/{id} [get]
func (ctrl *PostController) GetPostDetail(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的稿件 ID 格式")
		return
	}

	detailVO, err := ctrl.postService.GetPostByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "获取稿件详情失败")
		return
	}
	response.RespondSuccess(c, detailVO, "稿件详情获取成功")
}

// GetFeaturedPosts 获取重要位稿件列表
// @Summary      获取重要位稿件 (公开)
// @Description  返回当前首页重要位的稿件集合，按运营设定的顺序排列。
// @Tags         posts (稿件)
// @Accept       json
// @Produce      json
// @Success      200 {object} vo.PostPageResponseWrapper "重要位稿件获取成功"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/publication/posts/featured [get]
func (ctrl *PostController) GetFeaturedPosts(c *gin.Context) {
	posts, err := ctrl.importanceService.GetFeaturedPosts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "获取重要位稿件失败")
		return
	}
	response.RespondSuccess(c, posts, "重要位稿件获取成功")
}

// GetDisplayedViews 获取稿件展示浏览量
// @Summary      获取稿件浏览量 (公开)
// @Description  按稿件页 URL 返回展示用浏览量（统计系统真实数与人工增补数之和）。
// @Tags         posts (稿件)
// @Accept       json
// @Produce      json
// @Param        url query string true "稿件页 URL，形如 /posts/{id}"
// @Success      200 {object} vo.ViewsResponseWrapper "浏览量获取成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的 URL"
// @Failure      404 {object} vo.BaseResponseWrapper "稿件不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/publication/posts/views [get]
func (ctrl *PostController) GetDisplayedViews(c *gin.Context) {
	pageURL := c.Query("url")
	if pageURL == "" {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "缺少 url 参数")
		return
	}

	viewsVO, err := ctrl.viewCountService.GetDisplayedViews(c.Request.Context(), pageURL)
	if err != nil {
		// URL 解析失败归为客户端错误，其余交给统一映射
		if errors.Is(err, service.ErrInvalidPostURL) {
			response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "获取稿件浏览量失败: "+err.Error())
			return
		}
		respondServiceError(c, err, "获取稿件浏览量失败")
		return
	}
	response.RespondSuccess(c, viewsVO, "稿件浏览量获取成功")
}

// RegisterRoutes 注册对外路由。
func (ctrl *PostController) RegisterRoutes(group *gin.RouterGroup) {
	posts := group.Group("/posts")
	{
		posts.GET("/latest", ctrl.ListLatestPosts)      // GET /api/v1/publication/posts/latest
		posts.GET("/by-author", ctrl.ListAuthorPosts)   // GET /api/v1/publication/posts/by-author
		posts.GET("/featured", ctrl.GetFeaturedPosts)   // GET /api/v1/publication/posts/featured
		posts.GET("/views", ctrl.GetDisplayedViews)     // GET /api/v1/publication/posts/views
		posts.GET("/:id", ctrl.GetPostDetail)           // GET /api/v1/publication/posts/:id
	}
}
