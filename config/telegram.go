package config

// TelegramConfig 机器人消息通道配置
type TelegramConfig struct {
	Token       string  `mapstructure:"token" json:"-" yaml:"token"`
	APIEndpoint string  `mapstructure:"apiEndpoint" json:"apiEndpoint" yaml:"apiEndpoint"` // 为空时使用官方地址
	ChannelID   int64   `mapstructure:"channelID" json:"channelID" yaml:"channelID"`       // 发布频道
	BotUsername string  `mapstructure:"botUsername" json:"botUsername" yaml:"botUsername"` // 用于生成评论深链接
	AdminIDs    []int64 `mapstructure:"adminIDs" json:"adminIDs" yaml:"adminIDs"`
	Timeout     int     `mapstructure:"timeout" json:"timeout" yaml:"timeout"` // HTTP 超时（秒）
	// PollUpdates 为 true 时启动长轮询，处理管理员的内联按钮回调
	PollUpdates bool `mapstructure:"pollUpdates" json:"pollUpdates" yaml:"pollUpdates"`
}

// IsAdmin 判断用户是否在管理员名单中
func (c TelegramConfig) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
