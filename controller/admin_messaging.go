package controller

import (
	"strconv"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/confession_service/models/dto"
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/service"
)

// AdminMessagingController 用户私信与管理员匿名回复
type AdminMessagingController struct {
	messages service.AdminMessagingService
}

func NewAdminMessagingController(messages service.AdminMessagingService) *AdminMessagingController {
	return &AdminMessagingController{messages: messages}
}

// SubmitMessage 用户给管理员发私信
// @Summary      提交私信
// @Description  保存后转发给全部管理员；没有管理员收到时记录仍然保留，forwarded 为 0。
// @Tags         messages (私信)
// @Accept       json
// @Produce      json
// @Param        request body dto.SubmitUserMessageRequest true "私信内容"
// @Success      200 {object} vo.UserMessageReceiptWrapper "已保存"
// @Failure      400 {object} vo.BaseResponseWrapper "内容为空或过长"
// @Router       /api/v1/confession/messages [post]
func (ctrl *AdminMessagingController) SubmitMessage(c *gin.Context) {
	var req dto.SubmitUserMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	receipt, err := ctrl.messages.SubmitUserMessage(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, receipt, receipt.Message)
}

// ListPending 未处理的私信
// @Summary      未处理私信
// @Tags         admin-messages (管理员-私信)
// @Produce      json
// @Param        limit query int false "数量上限" default(50)
// @Success      200 {object} vo.BaseResponseWrapper "私信列表，最早的在前"
// @Router       /api/v1/confession/admin/messages/pending [get]
func (ctrl *AdminMessagingController) ListPending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := ctrl.messages.ListPending(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[[]*vo.AdminMessageVO](c, list)
}

// GetMessage 单条私信
// @Summary      查看私信
// @Tags         admin-messages (管理员-私信)
// @Produce      json
// @Param        id path int true "私信 ID"
// @Success      200 {object} vo.BaseResponseWrapper "私信及处理状态"
// @Failure      404 {object} vo.BaseResponseWrapper "私信不存在"
// @Router       /api/v1/confession/admin/messages/{id} [get]
func (ctrl *AdminMessagingController) GetMessage(c *gin.Context) {
	messageID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	msg, err := ctrl.messages.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, msg)
}

// Reply 匿名回复用户
// @Summary      回复私信
// @Description  每条私信只能回复一次。已被回复、标记已读或忽略时返回 409，message 说明处理人。
// @Description  回复已保存但投递给用户失败时仍返回 200，notify.delivered 为 false。
// @Tags         admin-messages (管理员-私信)
// @Accept       json
// @Produce      json
// @Param        id path int true "私信 ID"
// @Param        request body dto.AdminReplyRequest true "回复内容"
// @Success      200 {object} vo.AdminReplyResultWrapper "回复结果"
// @Failure      400 {object} vo.BaseResponseWrapper "回复为空或过长"
// @Failure      404 {object} vo.BaseResponseWrapper "私信不存在"
// @Failure      409 {object} vo.BaseResponseWrapper "已被处理"
// @Router       /api/v1/confession/admin/messages/{id}/reply [post]
func (ctrl *AdminMessagingController) Reply(c *gin.Context) {
	messageID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.AdminReplyRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := ctrl.messages.ReplyToUser(c.Request.Context(), messageID, req.AdminID, req.Reply)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, result, result.Message)
}

// MarkRead 标记已读
// @Summary      标记私信已读
// @Tags         admin-messages (管理员-私信)
// @Accept       json
// @Produce      json
// @Param        id path int true "私信 ID"
// @Param        request body dto.AdminActor true "操作的管理员"
// @Success      200 {object} vo.BaseResponseWrapper "已标记"
// @Failure      404 {object} vo.BaseResponseWrapper "私信不存在"
// @Failure      409 {object} vo.BaseResponseWrapper "已被处理"
// @Router       /api/v1/confession/admin/messages/{id}/read [post]
func (ctrl *AdminMessagingController) MarkRead(c *gin.Context) {
	messageID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := bindActor(c)
	if !ok {
		return
	}
	if err := ctrl.messages.MarkRead(c.Request.Context(), messageID, adminID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[any](c, nil, "message marked as read")
}

// IgnoreUser 忽略用户的全部未处理私信
// @Summary      忽略用户私信
// @Tags         admin-messages (管理员-私信)
// @Accept       json
// @Produce      json
// @Param        id path int true "用户 ID"
// @Param        request body dto.AdminActor true "操作的管理员"
// @Success      200 {object} vo.BaseResponseWrapper "data 为忽略的条数"
// @Router       /api/v1/confession/admin/users/{id}/ignore-messages [post]
func (ctrl *AdminMessagingController) IgnoreUser(c *gin.Context) {
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	adminID, ok := bindActor(c)
	if !ok {
		return
	}
	n, err := ctrl.messages.IgnoreUser(c.Request.Context(), userID, adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, n)
}

// History 用户最近的私信
// @Summary      私信历史
// @Tags         admin-messages (管理员-私信)
// @Produce      json
// @Param        id path int true "用户 ID"
// @Param        limit query int false "数量上限" default(10)
// @Success      200 {object} vo.BaseResponseWrapper "私信列表，最新的在前"
// @Router       /api/v1/confession/admin/users/{id}/messages [get]
func (ctrl *AdminMessagingController) History(c *gin.Context) {
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	list, err := ctrl.messages.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[[]*vo.AdminMessageVO](c, list)
}

func (ctrl *AdminMessagingController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/messages", ctrl.SubmitMessage)
	admin := group.Group("/admin")
	{
		admin.GET("/messages/pending", ctrl.ListPending)
		admin.GET("/messages/:id", ctrl.GetMessage)
		admin.POST("/messages/:id/reply", ctrl.Reply)
		admin.POST("/messages/:id/read", ctrl.MarkRead)
		admin.POST("/users/:id/ignore-messages", ctrl.IgnoreUser)
		admin.GET("/users/:id/messages", ctrl.History)
	}
}
