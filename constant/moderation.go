package constant

// 内容被管理员替换后显示的占位文本
const (
	RemovedCommentText = "[This comment has been removed by moderators]"
	RemovedReplyText   = "[This reply has been removed by moderators]"
)

const (
	// SystemAdminID 没有具体管理员时（例如自动清理举报）写入审计日志的管理员 ID
	SystemAdminID int64 = 0

	// DefaultCustomReasonMaxLength 自定义拒绝原因的默认长度上限
	DefaultCustomReasonMaxLength = 500

	// DefaultMessageMaxLength 用户私信和管理员回复的默认长度上限
	DefaultMessageMaxLength = 2000

	// MessageHistoryLimit 私信历史默认返回条数
	MessageHistoryLimit = 10

	// AdminPageSize 管理员分页查看用户投稿和评论时每页条数
	AdminPageSize = 5

	// AdminRecentLimit 用户详情里最近投稿和评论的条数
	AdminRecentLimit = 10

	// PostNumberSequence 帖子发布编号使用的序列名
	PostNumberSequence = "post_number"

	// ContentPreviewLength 审计日志中内容摘要的长度
	ContentPreviewLength = 100
)

// 定时任务默认的 cron 表达式（分钟级精度）
const (
	WeeklyResetCronSpec  = "0 0 * * 1"
	MonthlyResetCronSpec = "0 0 1 * *"
	ReconcileCronSpec    = "0 3 * * *"
)
