package bot

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Xushengqwer/go-common/core"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/messaging"
)

// Poller 通过 getUpdates 长轮询接收按钮回调、私聊文本和命令
type Poller struct {
	bot     *tgbotapi.BotAPI
	handler *AdminHandler
	logger  *core.ZapLogger
	timeout int
	wg      sync.WaitGroup
}

// NewPoller 长轮询等待时间必须短于 HTTP 客户端的超时
func NewPoller(bot *tgbotapi.BotAPI, handler *AdminHandler, logger *core.ZapLogger) *Poller {
	timeout := 60
	if hc, ok := bot.Client.(*http.Client); ok && hc.Timeout > 0 {
		timeout = min(timeout, max(int(hc.Timeout/time.Second)-5, 1))
	}
	return &Poller{bot: bot, handler: handler, logger: logger, timeout: timeout}
}

// Start 启动接收循环，ctx 取消后停止。每个更新在单独的 goroutine 中处理。
func (p *Poller) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updates := p.bot.GetUpdatesChan(u)
	p.logger.Info("开始接收 Telegram 更新", zap.String("bot", p.bot.Self.UserName))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ctx.Done():
				p.bot.StopReceivingUpdates()
				p.logger.Info("停止接收 Telegram 更新")
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				p.wg.Add(1)
				go func(update tgbotapi.Update) {
					defer p.wg.Done()
					p.handleUpdate(ctx, update)
				}(update)
			}
		}
	}()
}

// Wait 等待循环和所有处理中的更新结束
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("处理 Telegram 更新时发生 panic", zap.Any("panic", r), zap.Int("updateID", update.UpdateID))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		var origin messaging.MessageRef
		if cq.Message != nil {
			origin = messaging.MessageRef{ChatID: cq.Message.Chat.ID, MessageID: cq.Message.MessageID}
		}
		answer := p.handler.HandleCallback(ctx, cq.From.ID, cq.Data, origin)
		if _, err := p.bot.Request(tgbotapi.NewCallback(cq.ID, answer)); err != nil {
			p.logger.Warn("应答回调失败", zap.String("callbackID", cq.ID), zap.Error(err))
		}

	case update.Message != nil && update.Message.From != nil:
		msg := update.Message
		if !msg.Chat.IsPrivate() || msg.Text == "" {
			return
		}
		if msg.IsCommand() {
			p.handler.HandleCommand(ctx, msg.From.ID, msg.Chat.ID, msg.Command(), msg.CommandArguments())
			return
		}
		p.handler.HandleText(ctx, msg.From.ID, msg.Chat.ID, msg.Text)
	}
}
