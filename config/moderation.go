package config

// ModerationConfig 审核流程相关配置
type ModerationConfig struct {
	// CustomReasonMaxLength 自定义拒绝原因的最大字符数，默认 500
	CustomReasonMaxLength int `mapstructure:"customReasonMaxLength" json:"customReasonMaxLength" yaml:"customReasonMaxLength"`
	// RejectionDraftTTL 管理员输入自定义原因的等待时间（秒），超时后草稿自动失效
	RejectionDraftTTL int `mapstructure:"rejectionDraftTTL" json:"rejectionDraftTTL" yaml:"rejectionDraftTTL"`
	// BulkApproveLimit 批量通过单次最多处理的帖子数量
	BulkApproveLimit int `mapstructure:"bulkApproveLimit" json:"bulkApproveLimit" yaml:"bulkApproveLimit"`
	// MessageMaxLength 用户私信和管理员回复的最大字符数，默认 2000
	MessageMaxLength int `mapstructure:"messageMaxLength" json:"messageMaxLength" yaml:"messageMaxLength"`
}
