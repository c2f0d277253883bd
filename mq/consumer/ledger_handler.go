package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/core"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/models/events"
	"github.com/Xushengqwer/confession_service/myErrors"
	"github.com/Xushengqwer/confession_service/service"
)

// LedgerHandler 把审核事件交给积分账本
type LedgerHandler struct {
	logger  *core.ZapLogger
	reactor service.ModerationEventHandler
}

func NewLedgerHandler(logger *core.ZapLogger, reactor service.ModerationEventHandler) *LedgerHandler {
	return &LedgerHandler{logger: logger, reactor: reactor}
}

func (h *LedgerHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.ModerationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Error("LedgerHandler: 反序列化 Kafka 消息失败", zap.Error(err), zap.ByteString("value", msg.Value))
		return nil // 不重试无法解析的消息
	}
	if event.EventID == "" || event.UserID == 0 {
		h.logger.Warn("LedgerHandler: 事件缺少 event_id 或 user_id，跳过",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset))
		return nil
	}

	h.logger.Debug("LedgerHandler: 收到审核事件",
		zap.String("event_id", event.EventID),
		zap.Uint64("post_id", event.PostID),
		zap.String("status", string(event.Status)))

	if err := service.DispatchModerationEvent(ctx, h.reactor, &event); err != nil {
		if errors.Is(err, myErrors.ErrValidation) {
			h.logger.Warn("LedgerHandler: 事件内容无效，跳过", zap.String("event_id", event.EventID), zap.Error(err))
			return nil
		}
		return fmt.Errorf("LedgerHandler: 处理事件 %s 失败: %w", event.EventID, err)
	}
	return nil
}
