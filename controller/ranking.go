package controller

import (
	"strconv"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/confession_service/models/dto"
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/service"
)

// RankingController 积分与等级接口
type RankingController struct {
	ranking service.RankingService
}

func NewRankingController(ranking service.RankingService) *RankingController {
	return &RankingController{ranking: ranking}
}

// AwardPoints 记一笔积分
// @Summary      记录积分
// @Description  积分按活动类型计算；achievement_earned 使用 points 字段。相同 idempotency_key 只记一次。
// @Tags         ranking (积分)
// @Accept       json
// @Produce      json
// @Param        request body dto.AwardPointsRequest true "积分请求"
// @Success      200 {object} vo.AwardResultWrapper "记账结果"
// @Failure      400 {object} vo.BaseResponseWrapper "活动类型未知"
// @Router       /api/v1/confession/ranking/award [post]
func (ctrl *RankingController) AwardPoints(c *gin.Context) {
	var req dto.AwardPointsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := ctrl.ranking.AwardPoints(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, result)
}

// GetUserRank 用户等级快照
// @Summary      用户等级
// @Tags         ranking (积分)
// @Produce      json
// @Param        id path int true "用户 ID"
// @Success      200 {object} vo.RankSnapshotWrapper "等级快照"
// @Failure      404 {object} vo.BaseResponseWrapper "用户没有积分记录"
// @Router       /api/v1/confession/ranking/users/{id} [get]
func (ctrl *RankingController) GetUserRank(c *gin.Context) {
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	snapshot, err := ctrl.ranking.GetUserRank(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, snapshot)
}

// GetUserAchievements 已获得的成就
// @Summary      用户成就
// @Tags         ranking (积分)
// @Produce      json
// @Param        id path int true "用户 ID"
// @Param        limit query int false "数量上限" default(50)
// @Success      200 {object} vo.BaseResponseWrapper "成就列表"
// @Router       /api/v1/confession/ranking/users/{id}/achievements [get]
func (ctrl *RankingController) GetUserAchievements(c *gin.Context) {
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := ctrl.ranking.GetUserAchievements(c.Request.Context(), userID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[[]*vo.AchievementVO](c, list)
}

// CheckAchievements 检查并发放新成就
// @Summary      检查成就
// @Tags         ranking (积分)
// @Produce      json
// @Param        id path int true "用户 ID"
// @Success      200 {object} vo.BaseResponseWrapper "本次新获得的成就"
// @Router       /api/v1/confession/ranking/users/{id}/achievements/check [post]
func (ctrl *RankingController) CheckAchievements(c *gin.Context) {
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	earned, err := ctrl.ranking.CheckAndAwardAchievements(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if earned == nil {
		earned = []*vo.AchievementVO{}
	}
	response.RespondSuccess(c, earned)
}

func (ctrl *RankingController) RegisterRoutes(group *gin.RouterGroup) {
	ranking := group.Group("/ranking")
	{
		ranking.POST("/award", ctrl.AwardPoints)
		ranking.GET("/users/:id", ctrl.GetUserRank)
		ranking.GET("/users/:id/achievements", ctrl.GetUserAchievements)
		ranking.POST("/users/:id/achievements/check", ctrl.CheckAchievements)
	}
}
