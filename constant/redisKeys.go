package constant

// Redis Key 相关常量
const (
	// RejectionDraftPrefix 管理员自定义拒绝原因草稿的 Key 前缀。
	// 管理员点击“自定义原因”后写入，提交或取消后删除，带 TTL 防止残留。
	// 示例 Key: "confession:rejection_draft:10001" (其中 10001 是管理员 ID)
	// Redis 类型: String (JSON)
	// 示例值: "{\"post_id\":42,\"started_at\":\"2025-06-01T10:00:00Z\"}"
	RejectionDraftPrefix = "confession:rejection_draft:"

	// RankSnapshotPrefix 用户等级快照缓存的 Key 前缀。
	// 积分变动后会被主动删除。
	// 示例 Key: "confession:rank:123456"
	// Redis 类型: String (JSON)
	RankSnapshotPrefix = "confession:rank:"

	// ReplyDraftPrefix 管理员正在回复的用户私信。点击“快速回复”后写入，管理员的下一条文本即为回复内容。
	// 示例 Key: "confession:reply_draft:10001"
	// Redis 类型: String (JSON)
	ReplyDraftPrefix = "confession:reply_draft:"
)
