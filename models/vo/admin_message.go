package vo

import "time"

// AdminMessageVO 用户私信及其处理状态
type AdminMessageVO struct {
	MessageID        uint64     `json:"message_id"`
	UserID           int64      `json:"user_id"`
	UserMessage      string     `json:"user_message"`
	Timestamp        time.Time  `json:"timestamp"`
	Replied          bool       `json:"replied"`
	AdminReply       string     `json:"admin_reply,omitempty"`
	RepliedByAdminID *int64     `json:"replied_by_admin_id,omitempty"`
	ReplyTimestamp   *time.Time `json:"reply_timestamp,omitempty"`
}

// UserMessageReceipt 用户私信已保存，Forwarded 为成功转发到的管理员数
type UserMessageReceipt struct {
	MessageID uint64 `json:"message_id"`
	Forwarded int    `json:"forwarded"`
	Message   string `json:"message"`
}

// AdminReplyResult 回复已保存；Notify 为发给用户的结果，OthersNotified 为收到“已处理”通知的其他管理员数
type AdminReplyResult struct {
	MessageID      uint64       `json:"message_id"`
	UserID         int64        `json:"user_id"`
	Notify         NotifyResult `json:"notify"`
	OthersNotified int          `json:"others_notified"`
	Message        string       `json:"message"`
}

// ReplyPrompt 进入回复输入状态后给管理员的提示
type ReplyPrompt struct {
	MessageID uint64 `json:"message_id"`
	Message   string `json:"message"`
}
