package enums

// ApprovalStatus 投稿的审核状态。离开 pending 之后不再变化。
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// TargetType 反应、举报、审计日志指向的对象类型
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
	TargetUser    TargetType = "user"
)

// Valid 只有帖子和评论可以被反应/举报
func (t TargetType) Valid() bool {
	return t == TargetPost || t == TargetComment
}
