package vo

import "time"

// DeletionStats 级联删除的统计
type DeletionStats struct {
	CommentsDeleted  int64 `json:"comments_deleted"`
	RepliesDeleted   int64 `json:"replies_deleted"`
	ReactionsDeleted int64 `json:"reactions_deleted"`
	ReportsDeleted   int64 `json:"reports_deleted"`
}

// ToMap 用于审计日志和删除事件
func (s DeletionStats) ToMap() map[string]int64 {
	return map[string]int64{
		"comments_deleted":  s.CommentsDeleted,
		"replies_deleted":   s.RepliesDeleted,
		"reactions_deleted": s.ReactionsDeleted,
		"reports_deleted":   s.ReportsDeleted,
	}
}

// ReplacementStats 替换评论的统计
type ReplacementStats struct {
	CommentsReplaced int64 `json:"comments_replaced"`
	RepliesReplaced  int64 `json:"replies_replaced"`
	ReportsCleared   int64 `json:"reports_cleared"`
}

func (s ReplacementStats) ToMap() map[string]int64 {
	return map[string]int64{
		"comments_replaced": s.CommentsReplaced,
		"replies_replaced":  s.RepliesReplaced,
		"reports_cleared":   s.ReportsCleared,
	}
}

// ClearReportsResult 清除举报的结果
type ClearReportsResult struct {
	Cleared int64 `json:"cleared"`
}

// PostDeletionPreview 删除确认前展示给管理员的帖子信息
type PostDeletionPreview struct {
	ID               uint64    `json:"id"`
	ContentPreview   string    `json:"content_preview"`
	Category         string    `json:"category"`
	Status           string    `json:"status"`
	PostNumber       *int64    `json:"post_number,omitempty"`
	ChannelMessageID *int64    `json:"channel_message_id,omitempty"`
	CommentCount     int64     `json:"comment_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// CommentDeletionPreview 删除确认前展示给管理员的评论信息
type CommentDeletionPreview struct {
	ID              uint64    `json:"id"`
	PostID          uint64    `json:"post_id"`
	ContentPreview  string    `json:"content_preview"`
	ParentCommentID *uint64   `json:"parent_comment_id,omitempty"`
	ReplyCount      int64     `json:"reply_count"`
	CreatedAt       time.Time `json:"created_at"`
}
