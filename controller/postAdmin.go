package controller

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/publication_service/models/dto"
	"github.com/Xushengqwer/publication_service/service"
)

// PostAdminController 后台（编辑部与运营）接口的控制器。
// 所有写操作都先装配请求主体，授权判定在服务层完成。
type PostAdminController struct {
	authService       service.AuthService
	postService       service.PostService
	postListService   service.PostListService
	authorService     service.AuthorService
	importanceService service.ImportanceService
}

// NewPostAdminController 构造函数，注入服务层依赖
func NewPostAdminController(
	authService service.AuthService,
	postService service.PostService,
	postListService service.PostListService,
	authorService service.AuthorService,
	importanceService service.ImportanceService,
) *PostAdminController {
	return &PostAdminController{
		authService:       authService,
		postService:       postService,
		postListService:   postListService,
		authorService:     authorService,
		importanceService: importanceService,
	}
}

// SavePost 处理创建稿件的 HTTP 请求，可附带预览图。
// @Summary      创建新稿件
// @Description  使用独立表单字段创建稿件（总是草稿状态），可同时上传预览图。请求体为 multipart/form-data。
// @Tags         admin (后台)
// @Accept       multipart/form-data
// @Produce      json
// @Param        title formData string true "稿件标题" maxLength(255)
// @Param        content formData string false "稿件正文"
// @Param        author_id formData uint64 true "归属作者 ID"
// @Param        type formData int true "媒介类型 (0:图文, 1:视频, 2:音频, 3:译文)" Enums(0,1,2,3)
// @Param        origin formData int true "稿源 (0:自有, 1:专家, 2:转载, 3:合作方)" Enums(0,1,2,3)
// @Param        direction_ids formData []uint64 false "方向ID集合" collectionFormat(multi)
// @Param        tag_ids formData []uint64 false "标签ID集合" collectionFormat(multi)
// @Param        preview_image formData file false "预览图文件 (可选)"
// @Success      200 {object} vo.PostDetailResponseWrapper "稿件创建成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载或文件处理错误"
// @Failure      403 {object} vo.BaseResponseWrapper "无权创建稿件"
// @Failure      500 {object} vo.BaseResponseWrapper "创建稿件时发生内部服务器错误"
// @Router       /api/v1/publication/admin/posts [post]
func (ctrl *PostAdminController) SavePost(c *gin.Context) {
	principal, ok := principalFromContext(c, ctrl.authService)
	if !ok {
		return
	}

	// 表单解析要在访问字段或文件之前完成，超出内存上限的部分落临时文件
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "解析表单数据失败: "+err.Error())
		return
	}

	var req dto.SavePostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	// 预览图可选，字段名固定为 preview_image
	var previewImage *multipart.FileHeader
	if form := c.Request.MultipartForm; form != nil {
		if files := form.File["preview_image"]; len(files) > 0 {
			previewImage = files[0]
		}
	}

	detailVO, err := ctrl.postService.SavePost(c.Request.Context(), principal, &req, previewImage)
	if err != nil {
		respondServiceError(c, err, "创建稿件失败")
		return
	}
	response.RespondSuccess(c, detailVO, "稿件创建成功")
}

// UpdatePost 处理更新稿件的 HTTP 请求（含状态流转）。
// @Summary      更新稿件
// @Description  更新稿件内容与元数据；状态字段按流转规则处理，首次进入已发布状态时自动落发布时间。
// @Tags         admin (后台)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "稿件 ID" Format(uint64)
// @Param        request body dto.UpdatePostRequest true "更新稿件请求体"
// @Success      200 {object} vo.PostDetailResponseWrapper "稿件更新成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载"
// @Failure      403 {object} vo.BaseResponseWrapper "无权修改该稿件"
// @Failure      404 {object} vo.BaseResponseWrapper "稿件不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "更新稿件时发生内部服务器错误"
// @Router       /api/v1/publication/admin/posts/{id} [put]
func (ctrl *PostAdminController) UpdatePost(c *gin.Context) {
	principal, ok := principalFromContext(c, ctrl.authService)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的稿件 ID 格式")
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}
	req.PostID = id // 路径参数优先于请求体

	detailVO, err := ctrl.postService.UpdatePost(c.Request.Context(), principal, &req)
	if err != nil {
		respondServiceError(c, err, "更新稿件失败")
		return
	}
	response.RespondSuccess(c, detailVO, "稿件更新成功")
}

// DeletePost 处理归档稿件的 HTTP 请求。
// @Summary      归档稿件
// @Description  软删除：稿件行保留，状态置为已归档。已归档的稿件重复归档是 no-op。
// @Tags         admin (后台)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "稿件 ID" Format(uint64)
// @Success      200 {object} vo.BaseResponseWrapper "稿件归档成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的稿件 ID 格式"
// @Failure      403 {object} vo.BaseResponseWrapper "无权归档该稿件"
// @Failure      404 {object} vo.BaseResponseWrapper "稿件不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "归档稿件时发生内部服务器错误"
// @Router       /api/v1/publication/admin/posts/{id} [delete]
func (ctrl *PostAdminController) DeletePost(c *gin.Context) {
	principal, ok := principalFromContext(c, ctrl.authService)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的稿件 ID 格式")
		return
	}

	archived, err := ctrl.postService.DeletePost(c.Request.Context(), principal, id)
	if err != nil {
		respondServiceError(c, err, "归档稿件失败")
		return
	}
	if !archived {
		response.RespondSuccess[any](c, nil, "稿件已处于归档状态")
		return
	}
	response.RespondSuccess[any](c, nil, "稿件归档成功")
}

// ListPosts 处理后台全局筛选列表的 HTTP 请求。
// @Summary      后台稿件列表
// @Description  按方向/类型/稿源/状态/标题/作者名/修改日期范围筛选，所有维度可选；可加作者作用域。
// @Tags         admin (后台)
// @Accept       json
// @Produce      json
// @Param        directions query []uint64 false "方向ID集合" collectionFormat(multi)
// @Param        types query []int false "媒介类型集合" collectionFormat(multi)
// @Param        origins query []int false "稿源集合" collectionFormat(multi)
// @Param        statuses query []int false "状态集合" collectionFormat(multi)
// @Param        title query string false "标题子串 (大小写敏感)" maxLength(255)
// @Param        authorName query string false "作者展示名子串 (大小写敏感)" maxLength(100)
// @Param        startDate query string false "起始日期 (含当日)" format(date)
// @Param        endDate query string false "结束日期 (含当日)" format(date)
// @Param        authorId query uint64 false "作者作用域" Format(uint64)
// @Param        page query int true "页码 (从1开始)" format(int32) minimum(1)
// @Param        pageSize query int true "每页数量" format(int32) minimum(1) maximum(100)
// @Success      200 {object} vo.PostPageResponseWrapper "稿件列表获取成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的查询参数"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/publication/admin/posts [get]
func (ctrl *PostAdminController) ListPosts(c *gin.Context) {
	var reqDTO dto.ListPostsRequestDTO
	if err := c.ShouldBindQuery(&reqDTO); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	pageVO, err := ctrl.postListService.ListPosts(c.Request.Context(), &reqDTO)
	if err != nil {
		respondServiceError(c, err, "获取稿件列表失败")
		return
	}
	response.RespondSuccess(c, pageVO, "稿件列表获取成功")
}

// SetImportantOrder 处理重建重要位排序的 HTTP 请求。
// @Summary      重建重要位排序
// @Description  用给定的稿件ID序列整体重建首页重要位；不在序列里的旧重要稿件被整体降级。空序列被拒绝。
// @Tags         admin (后台)
// @Accept       json
// @Produce      json
// @Param        request body dto.SetImportantOrderRequest true "重要位序列"
// @Success      200 {object} vo.BaseResponseWrapper "重要位排序已更新"
// @Failure      400 {object} vo.BaseResponseWrapper "序列为空或格式无效"
// @Failure      403 {object} vo.BaseResponseWrapper "无权维护重要位"
// @Failure      404 {object} vo.BaseResponseWrapper "序列包含不存在的稿件"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/publication/admin/posts/importance [put]
func (ctrl *PostAdminController) SetImportantOrder(c *gin.Context) {
	principal, ok := principalFromContext(c, ctrl.authService)
	if !ok {
		return
	}

	var req dto.SetImportantOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	if err := ctrl.importanceService.SetImportantOrder(c.Request.Context(), principal, &req); err != nil {
		respondServiceError(c, err, "重建重要位排序失败")
		return
	}
	response.RespondSuccess[any](c, nil, "重要位排序已更新")
}

// ListFeaturedCandidates 处理重要位候选列表的 HTTP 请求。
// @Summary      重要位候选稿件列表
// @Description  分页返回可入选重要位的已发布稿件，已带精选配图的排前面。
// @Tags         admin (后台)
// @Accept       json
// @Produce      json
// @Param        page query int false "页码 (从1开始)" format(int32) minimum(1) default(1)
// @Param        pageSize query int false "每页数量" format(int32) minimum(1) maximum(100) default(10)
// @Success      200 {object} vo.PostPageResponseWrapper "候选稿件获取成功"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/publication/admin/posts/featured-candidates [get]
func (ctrl *PostAdminController) ListFeaturedCandidates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	pageVO, err := ctrl.importanceService.ListFeaturedCandidates(c.Request.Context(), page, pageSize)
	if err != nil {
		respondServiceError(c, err, "获取候选稿件失败")
		return
	}
	response.RespondSuccess(c, pageVO, "候选稿件获取成功")
}

// ReassignAuthor 处理稿件归属变更的 HTTP 请求。
// @Summary      变更稿件归属作者
// @Description  把稿件改挂到另一位作者名下，作者双方的稿件计数同事务内联动。归属未变化时是 no-op。
// @Tags         admin (后台)
// @Accept       json
// @Produce      json
// @Param        request body dto.SetAuthorRequest true "归属变更请求体"
// @Success      200 {object} vo.BaseResponseWrapper "稿件归属已更新"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载"
// @Failure      403 {object} vo.BaseResponseWrapper "无权变更归属"
// @Failure      404 {object} vo.BaseResponseWrapper "稿件或目标作者不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/publication/admin/posts/author [put]
func (ctrl *PostAdminController) ReassignAuthor(c *gin.Context) {
	principal, ok := principalFromContext(c, ctrl.authService)
	if !ok {
		return
	}

	var req dto.SetAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	if err := ctrl.authorService.ReassignPost(c.Request.Context(), principal, &req); err != nil {
		respondServiceError(c, err, "变更稿件归属失败")
		return
	}
	response.RespondSuccess[any](c, nil, "稿件归属已更新")
}

// SetPublishedAt 处理显式设置发布时间的 HTTP 请求。
// @Summary      设置发布时间
// @Description  显式设置稿件的发布时间；之后首次进入已发布状态时不再自动覆盖。
// @Tags         admin (后台)
// @Accept       json
// @Produce      json
// @Param        request body dto.SetPublishedAtRequest true "发布时间请求体"
// @Success      200 {object} vo.BaseResponseWrapper "发布时间已设置"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载"
// @Failure      403 {object} vo.BaseResponseWrapper "无权执行该操作"
// @Failure      404 {object} vo.BaseResponseWrapper "稿件不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/publication/admin/posts/published-at [put]
func (ctrl *PostAdminController) SetPublishedAt(c *gin.Context) {
	principal, ok := principalFromContext(c, ctrl.authService)
	if !ok {
		return
	}

	var req dto.SetPublishedAtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	if err := ctrl.postService.SetPublishedAt(c.Request.Context(), principal, &req); err != nil {
		respondServiceError(c, err, "设置发布时间失败")
		return
	}
	response.RespondSuccess[any](c, nil, "发布时间已设置")
}

// SetFakeViews 处理设置人工增补浏览量的 HTTP 请求。
// @Summary      设置人工增补浏览量
// @Description  运营设置稿件的人工增补浏览量，对外展示值是真实数与增补数之和。
// @Tags         admin (后台)
// @Accept       json
// @Produce      json
// @Param        request body dto.SetFakeViewsRequest true "增补浏览量请求体"
// @Success      200 {object} vo.BaseResponseWrapper "增补浏览量已设置"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载"
// @Failure      403 {object} vo.BaseResponseWrapper "无权执行该操作"
// @Failure      404 {object} vo.BaseResponseWrapper "稿件不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/publication/admin/posts/fake-views [put]
func (ctrl *PostAdminController) SetFakeViews(c *gin.Context) {
	principal, ok := principalFromContext(c, ctrl.authService)
	if !ok {
		return
	}

	var req dto.SetFakeViewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	if err := ctrl.postService.SetFakeViews(c.Request.Context(), principal, &req); err != nil {
		respondServiceError(c, err, "设置增补浏览量失败")
		return
	}
	response.RespondSuccess[any](c, nil, "增补浏览量已设置")
}

// SetImportantImage 处理设置精选位配图的 HTTP 请求。
// @Summary      设置精选位配图
// @Description  为稿件设置在首页重要位展示时使用的配图 URL。
// @Tags         admin (后台)
// @Accept       json
// @Produce      json
// @Param        request body dto.SetImportantImageRequest true "配图请求体"
// @Success      200 {object} vo.BaseResponseWrapper "精选位配图已设置"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载"
// @Failure      403 {object} vo.BaseResponseWrapper "无权执行该操作"
// @Failure      404 {object} vo.BaseResponseWrapper "稿件不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/publication/admin/posts/important-image [put]
func (ctrl *PostAdminController) SetImportantImage(c *gin.Context) {
	principal, ok := principalFromContext(c, ctrl.authService)
	if !ok {
		return
	}

	var req dto.SetImportantImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	if err := ctrl.postService.SetImportantImage(c.Request.Context(), principal, &req); err != nil {
		respondServiceError(c, err, "设置精选位配图失败")
		return
	}
	response.RespondSuccess[any](c, nil, "精选位配图已设置")
}

// RegisterRoutes 注册后台路由。
func (ctrl *PostAdminController) RegisterRoutes(group *gin.RouterGroup) {
	admin := group.Group("/admin/posts")
	{
		admin.POST("", ctrl.SavePost)                                     // POST /api/v1/publication/admin/posts
		admin.GET("", ctrl.ListPosts)                                     // GET /api/v1/publication/admin/posts
		admin.PUT("/importance", ctrl.SetImportantOrder)                  // PUT /api/v1/publication/admin/posts/importance
		admin.GET("/featured-candidates", ctrl.ListFeaturedCandidates)    // GET /api/v1/publication/admin/posts/featured-candidates
		admin.PUT("/author", ctrl.ReassignAuthor)                         // PUT /api/v1/publication/admin/posts/author
		admin.PUT("/published-at", ctrl.SetPublishedAt)                   // PUT /api/v1/publication/admin/posts/published-at
		admin.PUT("/fake-views", ctrl.SetFakeViews)                       // PUT /api/v1/publication/admin/posts/fake-views
		admin.PUT("/important-image", ctrl.SetImportantImage)             // PUT /api/v1/publication/admin/posts/important-image
		admin.PUT("/:id", ctrl.UpdatePost)                                // PUT /api/v1/publication/admin/posts/:id
		admin.DELETE("/:id", ctrl.DeletePost)                             // DELETE /api/v1/publication/admin/posts/:id
	}
}
