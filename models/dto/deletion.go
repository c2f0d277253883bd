package dto

import "github.com/Xushengqwer/confession_service/models/enums"

// ReplaceCommentRequest 用占位文本替换评论
// - Text 为空时使用默认占位文本
type ReplaceCommentRequest struct {
	AdminID int64  `json:"admin_id" binding:"required"`
	Text    string `json:"text"`
}

// ClearReportsRequest 清除某个对象上的全部举报
// - AdminID 可不填，此时按系统操作记录
type ClearReportsRequest struct {
	TargetType enums.TargetType `json:"target_type" binding:"required,oneof=post comment"`
	TargetID   uint64           `json:"target_id" binding:"required"`
	AdminID    *int64           `json:"admin_id"`
}
