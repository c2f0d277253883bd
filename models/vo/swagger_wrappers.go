package vo

// --- 用于成功响应且包含具体 Data 的包装器，仅供 swag 生成文档 ---

// ModerationResultWrapper 对应 response.APIResponse[vo.ModerationResult]
type ModerationResultWrapper struct {
	Code    int              `json:"code" example:"0"`
	Message string           `json:"message,omitempty" example:"success"`
	Data    ModerationResult `json:"data"`
}

// BulkApproveResultWrapper 对应 response.APIResponse[vo.BulkApproveResult]
type BulkApproveResultWrapper struct {
	Code    int               `json:"code" example:"0"`
	Message string            `json:"message,omitempty" example:"success"`
	Data    BulkApproveResult `json:"data"`
}

// DeletionStatsWrapper 对应 response.APIResponse[vo.DeletionStats]
type DeletionStatsWrapper struct {
	Code    int           `json:"code" example:"0"`
	Message string        `json:"message,omitempty" example:"success"`
	Data    DeletionStats `json:"data"`
}

// ReplacementStatsWrapper 对应 response.APIResponse[vo.ReplacementStats]
type ReplacementStatsWrapper struct {
	Code    int              `json:"code" example:"0"`
	Message string           `json:"message,omitempty" example:"success"`
	Data    ReplacementStats `json:"data"`
}

// RankSnapshotWrapper 对应 response.APIResponse[vo.RankSnapshot]
type RankSnapshotWrapper struct {
	Code    int          `json:"code" example:"0"`
	Message string       `json:"message,omitempty" example:"success"`
	Data    RankSnapshot `json:"data"`
}

// AwardResultWrapper 对应 response.APIResponse[vo.AwardResult]
type AwardResultWrapper struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message,omitempty" example:"success"`
	Data    AwardResult `json:"data"`
}

// BaseResponseWrapper 只包含 Code 和 Message 的响应，错误时 Data 为空
type BaseResponseWrapper struct {
	Code    int    `json:"code" example:"0"`
	Message string `json:"message" example:"success"`
}

// AdminReplyResultWrapper 对应 response.APIResponse[vo.AdminReplyResult]
type AdminReplyResultWrapper struct {
	Code    int              `json:"code" example:"0"`
	Message string           `json:"message,omitempty" example:"success"`
	Data    AdminReplyResult `json:"data"`
}

// UserMessageReceiptWrapper 对应 response.APIResponse[vo.UserMessageReceipt]
type UserMessageReceiptWrapper struct {
	Code    int                `json:"code" example:"0"`
	Message string             `json:"message,omitempty" example:"success"`
	Data    UserMessageReceipt `json:"data"`
}

// UserDetailWrapper 对应 response.APIResponse[vo.UserDetail]
type UserDetailWrapper struct {
	Code    int        `json:"code" example:"0"`
	Message string     `json:"message,omitempty" example:"success"`
	Data    UserDetail `json:"data"`
}

// UserActivityAnalyticsWrapper 对应 response.APIResponse[vo.UserActivityAnalytics]
type UserActivityAnalyticsWrapper struct {
	Code    int                   `json:"code" example:"0"`
	Message string                `json:"message,omitempty" example:"success"`
	Data    UserActivityAnalytics `json:"data"`
}

// UserPostsPageWrapper 对应 response.APIResponse[vo.UserPostsPage]
type UserPostsPageWrapper struct {
	Code    int           `json:"code" example:"0"`
	Message string        `json:"message,omitempty" example:"success"`
	Data    UserPostsPage `json:"data"`
}

// UserCommentsPageWrapper 对应 response.APIResponse[vo.UserCommentsPage]
type UserCommentsPageWrapper struct {
	Code    int              `json:"code" example:"0"`
	Message string           `json:"message,omitempty" example:"success"`
	Data    UserCommentsPage `json:"data"`
}
