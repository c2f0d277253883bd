package dto

import "github.com/Xushengqwer/confession_service/models/enums"

// AdminActor 发起操作的管理员
type AdminActor struct {
	AdminID int64 `json:"admin_id" binding:"required"`
}

// RejectPostRequest 拒绝投稿请求
// - Reason 为预设编码；为 custom 时必须提供 CustomText
type RejectPostRequest struct {
	AdminID    int64                 `json:"admin_id" binding:"required"`
	Reason     enums.RejectionReason `json:"reason" binding:"required"`
	CustomText string                `json:"custom_text"`
}

// SubmitCustomRejectionRequest 管理员提交自定义拒绝原因
type SubmitCustomRejectionRequest struct {
	AdminID int64  `json:"admin_id" binding:"required"`
	Text    string `json:"text"`
}

// BulkApproveRequest 批量通过
type BulkApproveRequest struct {
	AdminID int64    `json:"admin_id" binding:"required"`
	PostIDs []uint64 `json:"post_ids" binding:"required,min=1"`
}
