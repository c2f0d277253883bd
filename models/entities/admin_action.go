package entities

import (
	"strings"
	"time"

	"github.com/Xushengqwer/confession_service/models/enums"
)

// AdminAction 管理员操作审计日志，只追加，不修改不删除。
type AdminAction struct {
	ID         uint64            `gorm:"primaryKey;autoIncrement"`
	AdminID    int64             `gorm:"not null;index"`
	ActionType enums.AuditAction `gorm:"type:varchar(32);not null;index"`
	TargetType enums.TargetType  `gorm:"type:varchar(16);not null"`
	TargetID   uint64            `gorm:"not null"`
	Details    string            `gorm:"type:text"` // JSON
	CreatedAt  time.Time
}

// User 平台用户，只保存审核和管理员查询需要的字段
type User struct {
	UserID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Username  string `gorm:"type:varchar(64);not null;default:'';index"`
	FirstName string `gorm:"type:varchar(64);not null;default:''"`
	LastName  string `gorm:"type:varchar(64);not null;default:''"`
	Blocked   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName 姓名优先，其次 @username，都没有时为 Anonymous User
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	switch {
	case name != "":
		return name
	case u.Username != "":
		return "@" + u.Username
	}
	return "Anonymous User"
}

// PostSequence 命名序列。发布编号在审核事务内自增，保证严格递增且不重复。
type PostSequence struct {
	Name  string `gorm:"primaryKey;type:varchar(32)"`
	Value int64  `gorm:"not null;default:0"`
}
