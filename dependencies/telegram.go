package dependencies

import (
	"github.com/Xushengqwer/go-common/core"

	appConfig "github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/messaging"
)

// InitMessenger 未配置 token 时返回 NopMessenger，所有发送都按不可达处理。
// 第二个返回值在配置了 token 时是可用于长轮询的 Telegram 适配器。
func InitMessenger(cfg appConfig.TelegramConfig, logger *core.ZapLogger) (messaging.Messenger, *messaging.TelegramMessenger, error) {
	if cfg.Token == "" {
		logger.Warn("未配置 Telegram token，消息通道不可用")
		return messaging.NopMessenger{}, nil, nil
	}
	tg, err := messaging.NewTelegramMessenger(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return tg, tg, nil
}
