package controller

import (
	"net/http"
	"strconv"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/confession_service/models/dto"
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/service"
)

// AdminToolsController 管理员只读查询
type AdminToolsController struct {
	tools service.AdminToolsService
}

func NewAdminToolsController(tools service.AdminToolsService) *AdminToolsController {
	return &AdminToolsController{tools: tools}
}

// SearchUsers 搜索用户
// @Summary      搜索用户
// @Description  纯数字按用户 ID 精确匹配，@ 开头按用户名，否则在用户名和姓名中查找。
// @Tags         admin-tools (管理员-查询)
// @Produce      json
// @Param        q query string true "关键字"
// @Param        limit query int false "数量上限" default(20)
// @Success      200 {object} vo.BaseResponseWrapper "用户列表"
// @Failure      400 {object} vo.BaseResponseWrapper "关键字为空"
// @Router       /api/v1/confession/admin/search/users [get]
func (ctrl *AdminToolsController) SearchUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	users, err := ctrl.tools.SearchUsers(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[[]*vo.UserSummary](c, users)
}

// SearchContent 搜索帖子和评论
// @Summary      搜索内容
// @Tags         admin-tools (管理员-查询)
// @Produce      json
// @Param        q query string true "关键字"
// @Param        type query string false "all / posts / comments" default(all)
// @Param        date_from query string false "起始日期 YYYY-MM-DD"
// @Param        date_to query string false "结束日期 YYYY-MM-DD，含当天"
// @Param        user_id query int false "只看某个用户"
// @Param        limit query int false "数量上限" default(20)
// @Success      200 {object} vo.BaseResponseWrapper "搜索结果，最新的在前"
// @Failure      400 {object} vo.BaseResponseWrapper "参数无效"
// @Router       /api/v1/confession/admin/search/content [get]
func (ctrl *AdminToolsController) SearchContent(c *gin.Context) {
	var req dto.ContentSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}
	results, err := ctrl.tools.SearchContent(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[[]*vo.ContentSearchResult](c, results)
}

// GetUserDetail 用户详情
// @Summary      用户详情
// @Tags         admin-tools (管理员-查询)
// @Produce      json
// @Param        id path int true "用户 ID"
// @Success      200 {object} vo.UserDetailWrapper "资料、统计和最近的内容"
// @Failure      404 {object} vo.BaseResponseWrapper "用户不存在"
// @Router       /api/v1/confession/admin/users/{id} [get]
func (ctrl *AdminToolsController) GetUserDetail(c *gin.Context) {
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	detail, err := ctrl.tools.GetUserDetail(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, detail)
}

// UserPosts 用户投稿分页
// @Summary      用户投稿
// @Tags         admin-tools (管理员-查询)
// @Produce      json
// @Param        id path int true "用户 ID"
// @Param        page query int false "页码" default(1)
// @Success      200 {object} vo.UserPostsPageWrapper "每页 5 条"
// @Router       /api/v1/confession/admin/users/{id}/posts [get]
func (ctrl *AdminToolsController) UserPosts(c *gin.Context) {
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	result, err := ctrl.tools.UserPosts(c.Request.Context(), userID, page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, result)
}

// UserComments 用户评论分页
// @Summary      用户评论
// @Tags         admin-tools (管理员-查询)
// @Produce      json
// @Param        id path int true "用户 ID"
// @Param        page query int false "页码" default(1)
// @Success      200 {object} vo.UserCommentsPageWrapper "每页 5 条"
// @Router       /api/v1/confession/admin/users/{id}/comments [get]
func (ctrl *AdminToolsController) UserComments(c *gin.Context) {
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	result, err := ctrl.tools.UserComments(c.Request.Context(), userID, page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, result)
}

// UserAnalytics 用户活跃度分析
// @Summary      用户活跃度
// @Tags         admin-tools (管理员-查询)
// @Produce      json
// @Param        id path int true "用户 ID"
// @Success      200 {object} vo.UserActivityAnalyticsWrapper "最受欢迎的内容、分类统计、近 7 天投稿和互动"
// @Router       /api/v1/confession/admin/users/{id}/analytics [get]
func (ctrl *AdminToolsController) UserAnalytics(c *gin.Context) {
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	result, err := ctrl.tools.UserActivityAnalytics(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, result)
}

func (ctrl *AdminToolsController) RegisterRoutes(group *gin.RouterGroup) {
	admin := group.Group("/admin")
	{
		admin.GET("/search/users", ctrl.SearchUsers)
		admin.GET("/search/content", ctrl.SearchContent)
		admin.GET("/users/:id", ctrl.GetUserDetail)
		admin.GET("/users/:id/posts", ctrl.UserPosts)
		admin.GET("/users/:id/comments", ctrl.UserComments)
		admin.GET("/users/:id/analytics", ctrl.UserAnalytics)
	}
}
