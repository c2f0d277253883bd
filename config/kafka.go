package config

type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers" json:"brokers" yaml:"brokers"`
	Topics          Topics   `mapstructure:"topics" json:"topics" yaml:"topics"`
	ConsumerGroupID string   `mapstructure:"consumer_group_id" json:"consumer_group_id" yaml:"consumer_group_id"`
}

type Topics struct {
	ConfessionApproved string `mapstructure:"confessionApproved" json:"confessionApproved" yaml:"confessionApproved"` // 投稿审核通过
	ConfessionRejected string `mapstructure:"confessionRejected" json:"confessionRejected" yaml:"confessionRejected"` // 投稿审核拒绝
	ContentDeleted     string `mapstructure:"contentDeleted" json:"contentDeleted" yaml:"contentDeleted"`             // 帖子/评论被管理员删除
}
