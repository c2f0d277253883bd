package controller

import (
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/confession_service/models/dto"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/service"
)

// ModerationController 管理员审核接口
type ModerationController struct {
	moderation service.ModerationService
}

func NewModerationController(moderation service.ModerationService) *ModerationController {
	return &ModerationController{moderation: moderation}
}

// Approve 通过投稿
// @Summary      通过投稿
// @Description  分配发布编号并发布到频道。
// @Description  已被其他管理员处理时仍返回 200，outcome 为 already_approved / already_rejected，handled_by 为先处理的管理员；
// @Description  条件更新未生效而投稿仍为 pending 等并发冲突返回 409。
// @Tags         admin-moderation (管理员-审核)
// @Accept       json
// @Produce      json
// @Param        id path int true "投稿 ID"
// @Param        request body dto.AdminActor true "操作的管理员"
// @Success      200 {object} vo.ModerationResultWrapper "审核结果"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求"
// @Failure      404 {object} vo.BaseResponseWrapper "投稿不存在"
// @Failure      409 {object} vo.BaseResponseWrapper "并发冲突或已被处理"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/confession/admin/posts/{id}/approve [post]
func (ctrl *ModerationController) Approve(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := bindActor(c)
	if !ok {
		return
	}
	result, err := ctrl.moderation.Approve(c.Request.Context(), postID, adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, result, result.Message)
}

// Reject 以预设原因拒绝投稿
// @Summary      拒绝投稿
// @Description  reason 为预设编码；为 custom 时 custom_text 必填，去掉首尾空白后不超过 500 个字符。
// @Description  已被其他管理员处理时返回 200 及 already_* outcome，并发冲突返回 409。
// @Tags         admin-moderation (管理员-审核)
// @Accept       json
// @Produce      json
// @Param        id path int true "投稿 ID"
// @Param        request body dto.RejectPostRequest true "拒绝原因"
// @Success      200 {object} vo.ModerationResultWrapper "审核结果"
// @Failure      400 {object} vo.BaseResponseWrapper "原因无效"
// @Failure      404 {object} vo.BaseResponseWrapper "投稿不存在"
// @Failure      409 {object} vo.BaseResponseWrapper "并发冲突或已被处理"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/confession/admin/posts/{id}/reject [post]
func (ctrl *ModerationController) Reject(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.RejectPostRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := ctrl.moderation.Reject(c.Request.Context(), postID, req.AdminID, req.Reason, req.CustomText)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, result, result.Message)
}

// StartCustomRejection 进入自定义原因输入
// @Summary      开始自定义拒绝
// @Tags         admin-moderation (管理员-审核)
// @Accept       json
// @Produce      json
// @Param        id path int true "投稿 ID"
// @Param        request body dto.AdminActor true "操作的管理员"
// @Success      200 {object} vo.BaseResponseWrapper "已进入输入状态"
// @Failure      409 {object} vo.BaseResponseWrapper "投稿已被处理"
// @Router       /api/v1/confession/admin/posts/{id}/reject/custom [post]
func (ctrl *ModerationController) StartCustomRejection(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := bindActor(c)
	if !ok {
		return
	}
	prompt, err := ctrl.moderation.StartCustomRejection(c.Request.Context(), adminID, postID, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, prompt, prompt.Message)
}

// SubmitCustomRejection 提交自定义拒绝原因
// @Summary      提交自定义拒绝原因
// @Description  校验失败时草稿保留，可以直接重新提交。
// @Tags         admin-moderation (管理员-审核)
// @Accept       json
// @Produce      json
// @Param        request body dto.SubmitCustomRejectionRequest true "原因文本"
// @Success      200 {object} vo.ModerationResultWrapper "审核结果"
// @Failure      400 {object} vo.BaseResponseWrapper "原因为空、过长或没有进行中的草稿"
// @Router       /api/v1/confession/admin/rejections/submit [post]
func (ctrl *ModerationController) SubmitCustomRejection(c *gin.Context) {
	var req dto.SubmitCustomRejectionRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := ctrl.moderation.SubmitCustomRejection(c.Request.Context(), req.AdminID, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, result, result.Message)
}

// CancelRejection 取消拒绝流程
// @Summary      取消拒绝
// @Description  不产生任何持久化副作用，返回原投稿 ID 用于恢复审核界面。
// @Tags         admin-moderation (管理员-审核)
// @Accept       json
// @Produce      json
// @Param        request body dto.AdminActor true "操作的管理员"
// @Success      200 {object} vo.BaseResponseWrapper "已取消"
// @Router       /api/v1/confession/admin/rejections/cancel [post]
func (ctrl *ModerationController) CancelRejection(c *gin.Context) {
	adminID, ok := bindActor(c)
	if !ok {
		return
	}
	result, err := ctrl.moderation.CancelRejection(c.Request.Context(), adminID, 0)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, result, result.Message)
}

// Flag 标记投稿
// @Summary      标记投稿
// @Tags         admin-moderation (管理员-审核)
// @Accept       json
// @Produce      json
// @Param        id path int true "投稿 ID"
// @Param        request body dto.AdminActor true "操作的管理员"
// @Success      200 {object} vo.BaseResponseWrapper "已标记"
// @Failure      404 {object} vo.BaseResponseWrapper "投稿不存在"
// @Router       /api/v1/confession/admin/posts/{id}/flag [post]
func (ctrl *ModerationController) Flag(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := bindActor(c)
	if !ok {
		return
	}
	if err := ctrl.moderation.Flag(c.Request.Context(), postID, adminID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[any](c, nil, "🚩 Post flagged for review.")
}

// BulkApprove 批量通过
// @Summary      批量通过投稿
// @Tags         admin-moderation (管理员-审核)
// @Accept       json
// @Produce      json
// @Param        request body dto.BulkApproveRequest true "投稿 ID 列表"
// @Success      200 {object} vo.BulkApproveResultWrapper "汇总结果"
// @Failure      400 {object} vo.BaseResponseWrapper "数量超出上限"
// @Router       /api/v1/confession/admin/posts/bulk-approve [post]
func (ctrl *ModerationController) BulkApprove(c *gin.Context) {
	var req dto.BulkApproveRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := ctrl.moderation.BulkApprove(c.Request.Context(), req.PostIDs, req.AdminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, result, result.Message)
}

// RejectionReasons 预设拒绝原因
// @Summary      拒绝原因列表
// @Tags         admin-moderation (管理员-审核)
// @Produce      json
// @Success      200 {object} vo.BaseResponseWrapper "原因列表"
// @Router       /api/v1/confession/admin/rejection-reasons [get]
func (ctrl *ModerationController) RejectionReasons(c *gin.Context) {
	response.RespondSuccess[[]enums.RejectionReasonOption](c, ctrl.moderation.RejectionReasons())
}

// BlockUser 封禁用户
// @Summary      封禁用户
// @Tags         admin-moderation (管理员-审核)
// @Accept       json
// @Produce      json
// @Param        id path int true "用户 ID"
// @Param        request body dto.AdminActor true "操作的管理员"
// @Success      200 {object} vo.BaseResponseWrapper "已封禁"
// @Router       /api/v1/confession/admin/users/{id}/block [put]
func (ctrl *ModerationController) BlockUser(c *gin.Context) {
	ctrl.setBlocked(c, true)
}

// UnblockUser 解除封禁
// @Summary      解除封禁
// @Tags         admin-moderation (管理员-审核)
// @Accept       json
// @Produce      json
// @Param        id path int true "用户 ID"
// @Param        request body dto.AdminActor true "操作的管理员"
// @Success      200 {object} vo.BaseResponseWrapper "已解除"
// @Router       /api/v1/confession/admin/users/{id}/block [delete]
func (ctrl *ModerationController) UnblockUser(c *gin.Context) {
	ctrl.setBlocked(c, false)
}

func (ctrl *ModerationController) setBlocked(c *gin.Context, blocked bool) {
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	adminID, ok := bindActor(c)
	if !ok {
		return
	}
	var err error
	msg := "🚫 User blocked."
	if blocked {
		err = ctrl.moderation.BlockUser(c.Request.Context(), userID, adminID)
	} else {
		err = ctrl.moderation.UnblockUser(c.Request.Context(), userID, adminID)
		msg = "✅ User unblocked."
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[any](c, nil, msg)
}

// RegisterRoutes 注册审核相关路由
func (ctrl *ModerationController) RegisterRoutes(group *gin.RouterGroup) {
	admin := group.Group("/admin")
	{
		admin.POST("/posts/:id/approve", ctrl.Approve)
		admin.POST("/posts/:id/reject", ctrl.Reject)
		admin.POST("/posts/:id/reject/custom", ctrl.StartCustomRejection)
		admin.POST("/posts/:id/flag", ctrl.Flag)
		admin.POST("/posts/bulk-approve", ctrl.BulkApprove)
		admin.POST("/rejections/submit", ctrl.SubmitCustomRejection)
		admin.POST("/rejections/cancel", ctrl.CancelRejection)
		admin.GET("/rejection-reasons", ctrl.RejectionReasons)
		admin.PUT("/users/:id/block", ctrl.BlockUser)
		admin.DELETE("/users/:id/block", ctrl.UnblockUser)
	}
}
