package config

import "github.com/Xushengqwer/go-common/config"

// ConfessionConfig 服务的根配置，日志、追踪、HTTP 部分沿用共享库的结构
type ConfessionConfig struct {
	ZapConfig        config.ZapConfig     `mapstructure:"zapConfig" json:"zapConfig" yaml:"zapConfig"`
	GormLogConfig    config.GormLogConfig `mapstructure:"gormLogConfig" json:"gormLogConfig" yaml:"gormLogConfig"`
	ServerConfig     config.ServerConfig  `mapstructure:"serverConfig" json:"serverConfig" yaml:"serverConfig"`
	TracerConfig     config.TracerConfig  `mapstructure:"tracerConfig" json:"tracerConfig" yaml:"tracerConfig"`
	DatabaseConfig   DatabaseConfig       `mapstructure:"databaseConfig" json:"databaseConfig" yaml:"databaseConfig"`
	RedisConfig      RedisConfig          `mapstructure:"redisConfig" json:"redisConfig" yaml:"redisConfig"`
	KafkaConfig      KafkaConfig          `mapstructure:"kafkaConfig" json:"kafkaConfig" yaml:"kafkaConfig"`
	TelegramConfig   TelegramConfig       `mapstructure:"telegramConfig" json:"telegramConfig" yaml:"telegramConfig"`
	ModerationConfig ModerationConfig     `mapstructure:"moderationConfig" json:"moderationConfig" yaml:"moderationConfig"`
	RankingConfig    RankingConfig        `mapstructure:"rankingConfig" json:"rankingConfig" yaml:"rankingConfig"`
	TaskConfig       TaskConfig           `mapstructure:"taskConfig" json:"taskConfig" yaml:"taskConfig"`
}
