package config

// RankingConfig 积分与等级配置
type RankingConfig struct {
	// PointValues 覆盖默认积分表，key 为活动类型，例如 confession_approved: 15
	PointValues map[string]int `mapstructure:"pointValues" json:"pointValues" yaml:"pointValues"`
	// QualityCommentThreshold 超过该长度的评论按 quality_comment 计分，默认 100
	QualityCommentThreshold int `mapstructure:"qualityCommentThreshold" json:"qualityCommentThreshold" yaml:"qualityCommentThreshold"`
	// ViralLikeThreshold 帖子点赞数达到该值时发放一次性奖励，默认 100
	ViralLikeThreshold int64 `mapstructure:"viralLikeThreshold" json:"viralLikeThreshold" yaml:"viralLikeThreshold"`
	// RankCacheTTL 等级快照缓存时间（秒），0 表示不缓存
	RankCacheTTL int `mapstructure:"rankCacheTTL" json:"rankCacheTTL" yaml:"rankCacheTTL"`
	// Timezone 计算连续天数时使用的时区，默认 UTC
	Timezone string `mapstructure:"timezone" json:"timezone" yaml:"timezone"`
	// AwardAdminContribution 审核通过时是否给管理员发放社区贡献积分
	AwardAdminContribution bool `mapstructure:"awardAdminContribution" json:"awardAdminContribution" yaml:"awardAdminContribution"`
}
