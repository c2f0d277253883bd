package vo

import "github.com/Xushengqwer/confession_service/models/enums"

// ModerationOutcome 一次审核操作的结果类型
type ModerationOutcome string

const (
	OutcomeApplied         ModerationOutcome = "applied"          // 本次操作完成了状态迁移
	OutcomeAlreadyApproved ModerationOutcome = "already_approved" // 已被其他管理员通过
	OutcomeAlreadyRejected ModerationOutcome = "already_rejected" // 已被其他管理员拒绝
)

// PublishStatus 发布到频道的结果
type PublishStatus string

const (
	PublishPosted      PublishStatus = "posted"
	PublishFailed      PublishStatus = "failed"
	PublishUnreachable PublishStatus = "unreachable" // 频道不可达，仅在本地记为通过
)

// PublishResult 频道发布结果，失败不会回滚审核状态
type PublishResult struct {
	Status    PublishStatus `json:"status"`
	MessageID *int64        `json:"message_id,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

// NotifyResult 通知投稿人的结果: Delivered 或 Failed(reason)
type NotifyResult struct {
	Delivered bool   `json:"delivered"`
	Reason    string `json:"reason,omitempty"`
}

func NotifyDelivered() NotifyResult { return NotifyResult{Delivered: true} }

func NotifyFailed(reason string) NotifyResult { return NotifyResult{Reason: reason} }

// ModerationResult 通过/拒绝的返回结果
type ModerationResult struct {
	PostID  uint64               `json:"post_id"`
	Outcome ModerationOutcome    `json:"outcome"`
	Status  enums.ApprovalStatus `json:"status"`
	// HandledBy 完成迁移的管理员；Outcome 为 already_* 时是先一步处理的那位
	HandledBy       *int64         `json:"handled_by,omitempty"`
	PostNumber      *int64         `json:"post_number,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	Channel         *PublishResult `json:"channel,omitempty"`
	Notify          *NotifyResult  `json:"notify,omitempty"`
	// LedgerDispatched 积分事件是否已成功投递
	LedgerDispatched bool `json:"ledger_dispatched"`
	// Message 面向管理员的一句话结果
	Message string `json:"message"`
}

// Applied 本次调用是否真正改变了状态
func (r *ModerationResult) Applied() bool {
	return r.Outcome == OutcomeApplied
}

// BulkApproveResult 批量通过的汇总
type BulkApproveResult struct {
	Applied        int                 `json:"applied"`
	AlreadyHandled int                 `json:"already_handled"`
	Failed         int                 `json:"failed"`
	Results        []*ModerationResult `json:"results"`
	Errors         map[uint64]string   `json:"errors,omitempty"`
	Message        string              `json:"message"`
}

// CustomRejectionPrompt 进入自定义原因输入后返回给管理员的提示
type CustomRejectionPrompt struct {
	PostID    uint64 `json:"post_id"`
	MaxLength int    `json:"max_length"`
	Message   string `json:"message"`
}

// RejectionCancelled 取消拒绝流程，PostID 用于恢复原来的审核界面
type RejectionCancelled struct {
	PostID  uint64 `json:"post_id"`
	Message string `json:"message"`
}
