package dto

import "github.com/Xushengqwer/confession_service/models/enums"

// AwardPointsRequest 记一笔积分
type AwardPointsRequest struct {
	UserID        int64              `json:"user_id" binding:"required"`
	Activity      enums.ActivityType `json:"activity" binding:"required"`
	ReferenceID   *uint64            `json:"reference_id"`
	ReferenceType string             `json:"reference_type"`
	Description   string             `json:"description"`
	// IdempotencyKey 相同 key 的请求只会记账一次
	IdempotencyKey string `json:"idempotency_key"`
	// Points 仅对 achievement_earned 生效，其他活动按积分表计算
	Points *int `json:"points,omitempty"`
}
