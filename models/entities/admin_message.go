package entities

import "time"

// AdminMessage 用户发给管理员的私信。
// Replied 为 true 表示已处理：回复、标记已读或忽略该用户都会置位，RepliedByAdminID 记录处理人。
type AdminMessage struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement"`
	UserID           int64      `gorm:"not null;index"`
	UserMessage      string     `gorm:"type:text;not null"`
	Replied          bool       `gorm:"not null;default:false;index"`
	AdminReply       *string    `gorm:"type:text"`
	RepliedByAdminID *int64     `gorm:"index"`
	ReplyTimestamp   *time.Time `gorm:"column:reply_timestamp"`
	CreatedAt        time.Time  `gorm:"index"`
}
