package controller

import (
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/confession_service/models/dto"
	"github.com/Xushengqwer/confession_service/service"
)

// DeletionController 管理员删除、替换内容和清除举报
type DeletionController struct {
	deletion service.DeletionService
}

func NewDeletionController(deletion service.DeletionService) *DeletionController {
	return &DeletionController{deletion: deletion}
}

// DeletePost 删除帖子及其全部评论、反应和举报
// @Summary      删除帖子
// @Description  单个事务内级联删除。频道消息在提交后尽力删除。
// @Tags         admin-deletion (管理员-删除)
// @Produce      json
// @Param        id path int true "帖子 ID"
// @Param        admin_id query int true "操作的管理员"
// @Success      200 {object} vo.DeletionStatsWrapper "删除统计"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Failure      409 {object} vo.BaseResponseWrapper "已被其他管理员删除"
// @Failure      500 {object} vo.BaseResponseWrapper "事务已回滚"
// @Router       /api/v1/confession/admin/posts/{id} [delete]
func (ctrl *DeletionController) DeletePost(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := bindActor(c)
	if !ok {
		return
	}
	stats, err := ctrl.deletion.DeletePost(c.Request.Context(), postID, adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, stats, "🗑️ Post deleted.")
}

// DeleteComment 删除评论及其直接回复
// @Summary      删除评论
// @Tags         admin-deletion (管理员-删除)
// @Produce      json
// @Param        id path int true "评论 ID"
// @Param        admin_id query int true "操作的管理员"
// @Success      200 {object} vo.DeletionStatsWrapper "删除统计"
// @Failure      404 {object} vo.BaseResponseWrapper "评论不存在"
// @Router       /api/v1/confession/admin/comments/{id} [delete]
func (ctrl *DeletionController) DeleteComment(c *gin.Context) {
	commentID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := bindActor(c)
	if !ok {
		return
	}
	stats, err := ctrl.deletion.DeleteComment(c.Request.Context(), commentID, adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, stats, "🗑️ Comment deleted.")
}

// ReplaceComment 用占位文本替换评论
// @Summary      替换评论内容
// @Tags         admin-deletion (管理员-删除)
// @Accept       json
// @Produce      json
// @Param        id path int true "评论 ID"
// @Param        request body dto.ReplaceCommentRequest true "替换文本，可为空"
// @Success      200 {object} vo.ReplacementStatsWrapper "替换统计"
// @Failure      404 {object} vo.BaseResponseWrapper "评论不存在"
// @Router       /api/v1/confession/admin/comments/{id}/replace [post]
func (ctrl *DeletionController) ReplaceComment(c *gin.Context) {
	commentID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.ReplaceCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	stats, err := ctrl.deletion.ReplaceCommentWithMessage(c.Request.Context(), commentID, req.AdminID, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, stats, "✏️ Comment replaced.")
}

// ClearReports 清除某个对象上的全部举报
// @Summary      清除举报
// @Tags         admin-deletion (管理员-删除)
// @Accept       json
// @Produce      json
// @Param        request body dto.ClearReportsRequest true "目标对象"
// @Success      200 {object} vo.BaseResponseWrapper "清除数量"
// @Failure      400 {object} vo.BaseResponseWrapper "目标类型无效"
// @Router       /api/v1/confession/admin/reports [delete]
func (ctrl *DeletionController) ClearReports(c *gin.Context) {
	var req dto.ClearReportsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := ctrl.deletion.ClearReports(c.Request.Context(), req.TargetType, req.TargetID, req.AdminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, result)
}

// PostDeletionPreview 删除前预览帖子
// @Summary      帖子删除预览
// @Tags         admin-deletion (管理员-删除)
// @Produce      json
// @Param        id path int true "帖子 ID"
// @Success      200 {object} vo.BaseResponseWrapper "预览信息"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Router       /api/v1/confession/admin/posts/{id}/deletion-preview [get]
func (ctrl *DeletionController) PostDeletionPreview(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	preview, err := ctrl.deletion.GetPostDeletionPreview(c.Request.Context(), postID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, preview)
}

// CommentDeletionPreview 删除前预览评论
// @Summary      评论删除预览
// @Tags         admin-deletion (管理员-删除)
// @Produce      json
// @Param        id path int true "评论 ID"
// @Success      200 {object} vo.BaseResponseWrapper "预览信息"
// @Failure      404 {object} vo.BaseResponseWrapper "评论不存在"
// @Router       /api/v1/confession/admin/comments/{id}/deletion-preview [get]
func (ctrl *DeletionController) CommentDeletionPreview(c *gin.Context) {
	commentID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	preview, err := ctrl.deletion.GetCommentDeletionPreview(c.Request.Context(), commentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, preview)
}

func (ctrl *DeletionController) RegisterRoutes(group *gin.RouterGroup) {
	admin := group.Group("/admin")
	{
		admin.DELETE("/posts/:id", ctrl.DeletePost)
		admin.GET("/posts/:id/deletion-preview", ctrl.PostDeletionPreview)
		admin.DELETE("/comments/:id", ctrl.DeleteComment)
		admin.POST("/comments/:id/replace", ctrl.ReplaceComment)
		admin.GET("/comments/:id/deletion-preview", ctrl.CommentDeletionPreview)
		admin.DELETE("/reports", ctrl.ClearReports)
	}
}
