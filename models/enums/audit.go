package enums

// AuditAction 审计日志中的动作类型
type AuditAction string

const (
	ActionApprovePost    AuditAction = "APPROVE_POST"
	ActionRejectPost     AuditAction = "REJECT_POST"
	ActionBlockUser      AuditAction = "BLOCK_USER"
	ActionUnblockUser    AuditAction = "UNBLOCK_USER"
	ActionDeletePost     AuditAction = "DELETE_POST"
	ActionDeleteComment  AuditAction = "DELETE_COMMENT"
	ActionReplaceComment AuditAction = "REPLACE_COMMENT"
	ActionClearReports   AuditAction = "CLEAR_REPORTS"
)
