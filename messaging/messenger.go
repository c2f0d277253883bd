// Package messaging 聊天平台消息通道：发布到频道、通知投稿人、编辑管理员消息。
// 业务层只依赖 Messenger 接口，平台细节留在适配器里。
package messaging

import (
	"context"
	"errors"
)

// ErrChatUnreachable 目标会话不可达（频道未配置、机器人被移出、用户屏蔽了机器人等）。
// 与普通发送失败区分开，审核结果里分别展示为 "unreachable" 和 "failed"。
var ErrChatUnreachable = errors.New("messaging: chat unreachable")

// 媒体类型
const (
	MediaPhoto     = "photo"
	MediaVideo     = "video"
	MediaAnimation = "animation"
)

// Button 内联按钮，URL 与 Data 二选一
type Button struct {
	Text string
	URL  string
	Data string
}

// Media 平台侧已存在的文件
type Media struct {
	Type   string
	FileID string
}

// OutgoingMessage 一条待发送的消息。Media 不为空时 Text 作为说明文字发送。
type OutgoingMessage struct {
	ChatID  int64
	Text    string
	Buttons [][]Button
	Media   *Media
}

// MessageRef 已发送消息的定位信息
type MessageRef struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// Messenger 消息通道
type Messenger interface {
	Send(ctx context.Context, msg OutgoingMessage) (MessageRef, error)

	// Edit 替换消息文本；buttons 为 nil 时移除内联键盘
	Edit(ctx context.Context, ref MessageRef, text string, buttons [][]Button) error

	Delete(ctx context.Context, ref MessageRef) error
}

// NopMessenger 未配置机器人时使用，所有会话都视为不可达
type NopMessenger struct{}

func (NopMessenger) Send(context.Context, OutgoingMessage) (MessageRef, error) {
	return MessageRef{}, ErrChatUnreachable
}

func (NopMessenger) Edit(context.Context, MessageRef, string, [][]Button) error {
	return ErrChatUnreachable
}

func (NopMessenger) Delete(context.Context, MessageRef) error {
	return ErrChatUnreachable
}
