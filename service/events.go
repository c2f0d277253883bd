package service

import (
	"context"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/events"
)

// EventPublisher 审核与删除事件的出口。
// Kafka 生产者和进程内直连实现都满足该接口。
type EventPublisher interface {
	PublishModerationEvent(ctx context.Context, event *events.ModerationEvent) error
	PublishContentDeleted(ctx context.Context, event *events.ContentDeletedEvent) error
}

// ModerationEventHandler 消费审核事件的一方（积分账本）
type ModerationEventHandler interface {
	OnApproved(ctx context.Context, event *events.ModerationEvent) error
	OnRejected(ctx context.Context, event *events.ModerationEvent) error
}

// DispatchModerationEvent 按状态把事件分发给 handler，其他状态忽略
func DispatchModerationEvent(ctx context.Context, handler ModerationEventHandler, event *events.ModerationEvent) error {
	switch event.Status {
	case enums.StatusApproved:
		return handler.OnApproved(ctx, event)
	case enums.StatusRejected:
		return handler.OnRejected(ctx, event)
	}
	return nil
}

// InProcessPublisher 未配置 Kafka 时使用，在当前 goroutine 内同步投递
type InProcessPublisher struct {
	handler ModerationEventHandler
	logger  *core.ZapLogger
}

// NewInProcessPublisher 构造进程内发布器
func NewInProcessPublisher(handler ModerationEventHandler, logger *core.ZapLogger) *InProcessPublisher {
	return &InProcessPublisher{handler: handler, logger: logger}
}

func (p *InProcessPublisher) PublishModerationEvent(ctx context.Context, event *events.ModerationEvent) error {
	return DispatchModerationEvent(ctx, p.handler, event)
}

func (p *InProcessPublisher) PublishContentDeleted(_ context.Context, event *events.ContentDeletedEvent) error {
	p.logger.Debug("内容删除事件（进程内，无订阅方）",
		zap.String("targetType", string(event.TargetType)),
		zap.Uint64("targetID", event.TargetID))
	return nil
}

func newModerationEvent(postID uint64, userID, adminID int64, status enums.ApprovalStatus) *events.ModerationEvent {
	return &events.ModerationEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		PostID:    postID,
		UserID:    userID,
		AdminID:   adminID,
		Status:    status,
	}
}

func newContentDeletedEvent(targetType enums.TargetType, targetID uint64, adminID int64, stats map[string]int64) *events.ContentDeletedEvent {
	return &events.ContentDeletedEvent{
		EventID:    uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		TargetType: targetType,
		TargetID:   targetID,
		AdminID:    adminID,
		Stats:      stats,
	}
}
