package dto

// SubmitUserMessageRequest 用户发给管理员的私信
type SubmitUserMessageRequest struct {
	UserID  int64  `json:"user_id" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// AdminReplyRequest 管理员回复私信
type AdminReplyRequest struct {
	AdminID int64  `json:"admin_id" binding:"required"`
	Reply   string `json:"reply" binding:"required"`
}
