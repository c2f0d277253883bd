package entities

import (
	"time"

	"github.com/Xushengqwer/confession_service/models/enums"
)

// Post 投稿（confession）实体
// - 使用场景: 用户提交后进入待审核，管理员通过后发布到频道并获得发布编号
// - 表名: posts
type Post struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	// 投稿人的用户 ID（聊天平台的用户 ID）
	// - 不对外展示，仅用于通知投稿人、积分结算和封禁判断
	UserID int64 `gorm:"not null;index"`

	// 投稿正文
	Content string `gorm:"type:text;not null"`

	// 分类，逗号分隔，例如 "Love, Campus Life"
	// - 发布到频道时转换为 #Love #CampusLife 形式的话题标签
	Category string `gorm:"type:varchar(255);not null;default:''"`

	// 审核状态: pending / approved / rejected
	// - 只允许从 pending 迁移一次，迁移通过条件更新 (WHERE status = 'pending') 保证
	Status enums.ApprovalStatus `gorm:"type:varchar(16);not null;default:'pending';index"`

	// 是否被标记，与审核状态正交
	Flagged bool `gorm:"not null;default:false"`

	// 发布编号，审核通过时由序列分配，对外展示为 "Confess # N"
	// - 唯一；未通过的帖子为 NULL
	PostNumber *int64 `gorm:"uniqueIndex"`

	// 频道消息 ID，发布失败或频道不可达时为 NULL
	ChannelMessageID *int64

	ApprovedBy *int64
	ApprovedAt *time.Time

	// 拒绝相关字段，只在 status = rejected 时有值
	RejectionReason    *string `gorm:"type:varchar(600)"`
	RejectedByAdmin    *int64
	RejectionTimestamp *time.Time

	// 媒体投稿：平台侧的文件 ID，不在本服务存储文件本身
	MediaType    string `gorm:"type:varchar(16);not null;default:''"` // photo / video / animation
	MediaFileID  string `gorm:"type:varchar(255);not null;default:''"`
	MediaCaption string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasMedia 是否为媒体投稿
func (p *Post) HasMedia() bool {
	return p.MediaType != "" && p.MediaFileID != ""
}

// HandledBy 返回已处理该投稿的管理员，pending 时为 nil
func (p *Post) HandledBy() *int64 {
	switch p.Status {
	case enums.StatusApproved:
		return p.ApprovedBy
	case enums.StatusRejected:
		return p.RejectedByAdmin
	}
	return nil
}

// Comment 评论。ParentCommentID 为空表示顶层评论，否则为回复。
// 回复不能再被回复，删除/替换只向下级联一层。
type Comment struct {
	ID              uint64  `gorm:"primaryKey;autoIncrement"`
	PostID          uint64  `gorm:"not null;index"`
	UserID          int64   `gorm:"not null;index"`
	ParentCommentID *uint64 `gorm:"index"`
	Content         string  `gorm:"type:text;not null"`
	Flagged         bool    `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Reaction 点赞/点踩等反应记录，每人对同一对象只有一条
type Reaction struct {
	ID           uint64           `gorm:"primaryKey;autoIncrement"`
	UserID       int64            `gorm:"not null;uniqueIndex:idx_reaction_user_target,priority:1"`
	TargetType   enums.TargetType `gorm:"type:varchar(16);not null;uniqueIndex:idx_reaction_user_target,priority:2;index:idx_reaction_target,priority:1"`
	TargetID     uint64           `gorm:"not null;uniqueIndex:idx_reaction_user_target,priority:3;index:idx_reaction_target,priority:2"`
	ReactionType string           `gorm:"type:varchar(16);not null"` // like / dislike
	CreatedAt    time.Time
}

// Report 用户举报
type Report struct {
	ID         uint64           `gorm:"primaryKey;autoIncrement"`
	UserID     int64            `gorm:"not null"` // 举报人
	TargetType enums.TargetType `gorm:"type:varchar(16);not null;index:idx_report_target,priority:1"`
	TargetID   uint64           `gorm:"not null;index:idx_report_target,priority:2"`
	Reason     string           `gorm:"type:varchar(255);not null;default:''"`
	CreatedAt  time.Time
}
