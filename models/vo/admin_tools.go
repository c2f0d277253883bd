package vo

import (
	"time"

	"github.com/Xushengqwer/confession_service/models/enums"
)

// UserSummary 用户搜索结果
type UserSummary struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"display_name"`
	Blocked     bool      `json:"blocked"`
	JoinDate    time.Time `json:"join_date"`
}

// UserContentStats 投稿数按状态拆分，like 为收到的数量
type UserContentStats struct {
	TotalPosts           int64 `json:"total_posts"`
	ApprovedPosts        int64 `json:"approved_posts"`
	RejectedPosts        int64 `json:"rejected_posts"`
	PendingPosts         int64 `json:"pending_posts"`
	TotalComments        int64 `json:"total_comments"`
	PostLikesReceived    int64 `json:"post_likes_received"`
	CommentLikesReceived int64 `json:"comment_likes_received"`
}

// PostBrief 列表里的投稿，正文已截断
type PostBrief struct {
	PostID       uint64               `json:"post_id"`
	PostNumber   *int64               `json:"post_number,omitempty"`
	Content      string               `json:"content"`
	Category     string               `json:"category,omitempty"`
	Status       enums.ApprovalStatus `json:"status"`
	Flagged      bool                 `json:"flagged"`
	CommentCount int64                `json:"comment_count"`
	CreatedAt    time.Time            `json:"created_at"`
}

type CommentBrief struct {
	CommentID uint64    `json:"comment_id"`
	PostID    uint64    `json:"post_id"`
	IsReply   bool      `json:"is_reply"`
	Content   string    `json:"content"`
	Flagged   bool      `json:"flagged"`
	CreatedAt time.Time `json:"created_at"`
}

// UserDetail 管理员查看的用户资料：基本信息、统计和最近的内容
type UserDetail struct {
	User           UserSummary      `json:"user"`
	Stats          UserContentStats `json:"stats"`
	RecentPosts    []*PostBrief     `json:"recent_posts"`
	RecentComments []*CommentBrief  `json:"recent_comments"`
}

// Page 分页信息，Page 从 1 开始
type Page struct {
	Page        int   `json:"page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

type UserPostsPage struct {
	Pagination Page         `json:"pagination"`
	Posts      []*PostBrief `json:"posts"`
}

type UserCommentsPage struct {
	Pagination Page            `json:"pagination"`
	Comments   []*CommentBrief `json:"comments"`
}

// ContentSearchResult 帖子和评论混合的搜索结果。评论的 PostID 为所属帖子。
type ContentSearchResult struct {
	Type      enums.TargetType     `json:"type"`
	ID        uint64               `json:"id"`
	PostID    uint64               `json:"post_id"`
	UserID    int64                `json:"user_id"`
	Content   string               `json:"content"`
	Category  string               `json:"category,omitempty"`
	Status    enums.ApprovalStatus `json:"status,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// MostLikedContent 收到 like 最多的一条内容
type MostLikedContent struct {
	ID      uint64 `json:"id"`
	Content string `json:"content"`
	Likes   int64  `json:"likes"`
}

type CategoryStat struct {
	Category string `json:"category"`
	Posts    int64  `json:"posts"`
	Approved int64  `json:"approved"`
}

// DailyCount Date 为 2006-01-02
type DailyCount struct {
	Date  string `json:"date"`
	Posts int64  `json:"posts"`
}

// EngagementStats 只统计已通过的投稿
type EngagementStats struct {
	ApprovedPosts   int64   `json:"approved_posts"`
	AvgLikesPerPost float64 `json:"avg_likes_per_post"`
	MaxLikes        int64   `json:"max_likes"`
	LikedPosts      int64   `json:"liked_posts"`
}

// UserActivityAnalytics 用户的活跃度分析
type UserActivityAnalytics struct {
	UserID           int64             `json:"user_id"`
	MostLikedPost    *MostLikedContent `json:"most_liked_post,omitempty"`
	MostLikedComment *MostLikedContent `json:"most_liked_comment,omitempty"`
	Categories       []*CategoryStat   `json:"categories"`
	PostsLast7Days   []*DailyCount     `json:"posts_last_7_days"`
	Engagement       EngagementStats   `json:"engagement"`
}
