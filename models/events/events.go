package events

import (
	"time"

	"github.com/Xushengqwer/confession_service/models/enums"
)

// ModerationEvent 投稿审核结果事件，积分账本据此给投稿人加减分。
type ModerationEvent struct {
	EventID    string                `json:"event_id"`
	Timestamp  time.Time             `json:"timestamp"`
	PostID     uint64                `json:"post_id"`
	UserID     int64                 `json:"user_id"` // 投稿人
	AdminID    int64                 `json:"admin_id"`
	Status     enums.ApprovalStatus  `json:"status"`
	PostNumber int64                 `json:"post_number,omitempty"`
	Reason     string                `json:"reason,omitempty"`
	ReasonCode enums.RejectionReason `json:"reason_code,omitempty"` // 自定义原因为 custom
}

// ContentDeletedEvent 管理员删除帖子或评论后发出
type ContentDeletedEvent struct {
	EventID    string           `json:"event_id"`
	Timestamp  time.Time        `json:"timestamp"`
	TargetType enums.TargetType `json:"target_type"`
	TargetID   uint64           `json:"target_id"`
	AdminID    int64            `json:"admin_id"`
	Stats      map[string]int64 `json:"stats"`
}
