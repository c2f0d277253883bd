package messaging

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/core"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/config"
)

// TelegramMessenger 基于 Bot API 的 Messenger 实现
type TelegramMessenger struct {
	bot    *tgbotapi.BotAPI
	logger *core.ZapLogger
}

// NewTelegramMessenger 创建机器人客户端，HTTP 调用经过 otelhttp 埋点。
// 构造时会调用一次 getMe 校验 token。
func NewTelegramMessenger(cfg config.TelegramConfig, logger *core.ZapLogger) (*TelegramMessenger, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("初始化 Telegram 机器人失败: %w", err)
	}
	logger.Info("Telegram 机器人已连接", zap.String("username", bot.Self.UserName))
	return &TelegramMessenger{bot: bot, logger: logger}, nil
}

// Bot 暴露底层客户端，供回调轮询使用
func (m *TelegramMessenger) Bot() *tgbotapi.BotAPI {
	return m.bot
}

func (m *TelegramMessenger) Send(ctx context.Context, msg OutgoingMessage) (MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return MessageRef{}, err
	}

	var markup interface{}
	if len(msg.Buttons) > 0 {
		markup = toKeyboard(msg.Buttons)
	}

	var chattable tgbotapi.Chattable
	switch {
	case msg.Media != nil && msg.Media.Type == MediaPhoto:
		c := tgbotapi.NewPhoto(msg.ChatID, tgbotapi.FileID(msg.Media.FileID))
		c.Caption = msg.Text
		c.ReplyMarkup = markup
		chattable = c
	case msg.Media != nil && msg.Media.Type == MediaVideo:
		c := tgbotapi.NewVideo(msg.ChatID, tgbotapi.FileID(msg.Media.FileID))
		c.Caption = msg.Text
		c.ReplyMarkup = markup
		chattable = c
	case msg.Media != nil && msg.Media.Type == MediaAnimation:
		c := tgbotapi.NewAnimation(msg.ChatID, tgbotapi.FileID(msg.Media.FileID))
		c.Caption = msg.Text
		c.ReplyMarkup = markup
		chattable = c
	default:
		c := tgbotapi.NewMessage(msg.ChatID, msg.Text)
		c.ReplyMarkup = markup
		chattable = c
	}

	sent, err := m.bot.Send(chattable)
	if err != nil {
		return MessageRef{}, mapTelegramError(err)
	}
	return MessageRef{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

func (m *TelegramMessenger) Edit(ctx context.Context, ref MessageRef, text string, buttons [][]Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var edit tgbotapi.EditMessageTextConfig
	if len(buttons) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(ref.ChatID, ref.MessageID, text, toKeyboard(buttons))
	} else {
		edit = tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	}
	if _, err := m.bot.Request(edit); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "message is not modified") {
			return nil
		}
		return mapTelegramError(err)
	}
	return nil
}

func (m *TelegramMessenger) Delete(ctx context.Context, ref MessageRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.bot.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
		return mapTelegramError(err)
	}
	return nil
}

func toKeyboard(rows [][]Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

// mapTelegramError 把“会话不存在/被屏蔽”归为 ErrChatUnreachable，其他错误原样返回
func mapTelegramError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Message)
		if apiErr.Code == http.StatusForbidden ||
			strings.Contains(msg, "chat not found") ||
			strings.Contains(msg, "forbidden") ||
			strings.Contains(msg, "bot was blocked") ||
			strings.Contains(msg, "not enough rights") {
			return fmt.Errorf("%w: %s", ErrChatUnreachable, apiErr.Message)
		}
	}
	return err
}
