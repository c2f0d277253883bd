package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/myErrors"
	"github.com/Xushengqwer/confession_service/service"
)

// AdminHandler 把管理员的按钮和文本回复转换成审核、删除和私信操作，结果写回原消息
type AdminHandler struct {
	moderation service.ModerationService
	deletion   service.DeletionService
	messages   service.AdminMessagingService
	messenger  messaging.Messenger
	telegram   config.TelegramConfig
	logger     *core.ZapLogger
}

// NewAdminHandler messages 为 nil 时不处理私信相关的按钮和命令
func NewAdminHandler(
	moderation service.ModerationService,
	deletion service.DeletionService,
	messages service.AdminMessagingService,
	messenger messaging.Messenger,
	telegram config.TelegramConfig,
	logger *core.ZapLogger,
) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		deletion:   deletion,
		messages:   messages,
		messenger:  messenger,
		telegram:   telegram,
		logger:     logger,
	}
}

// HandleCallback 处理一次按钮点击，返回给按钮的简短应答
func (h *AdminHandler) HandleCallback(ctx context.Context, adminID int64, data string, origin messaging.MessageRef) string {
	if !h.telegram.IsAdmin(adminID) {
		h.logger.Warn("非管理员触发了管理按钮", zap.Int64("userID", adminID), zap.String("data", data))
		return "❗ Not authorized."
	}
	action, err := ParseCallback(data)
	if err != nil {
		h.logger.Warn("无法解析回调数据", zap.String("data", data), zap.Error(err))
		return "❗ Unknown action."
	}

	if action.Kind == ActionMessageHistory {
		return h.sendHistory(ctx, action.TargetID, origin.ChatID)
	}

	text, buttons, err := h.dispatch(ctx, adminID, action, origin)
	if err != nil {
		text = "❗ " + myErrors.UserMessage(err)
		buttons = nil
		if myErrors.Classify(err) == myErrors.KindSystem {
			h.logger.Error("管理操作失败", zap.String("action", string(action.Kind)), zap.Int64("adminID", adminID), zap.Error(err))
		}
	}
	h.editOrigin(ctx, origin, text, buttons)
	return firstLine(text)
}

func (h *AdminHandler) dispatch(ctx context.Context, adminID int64, action *CallbackAction, origin messaging.MessageRef) (string, [][]messaging.Button, error) {
	switch action.Kind {
	case ActionApprove:
		res, err := h.moderation.Approve(ctx, action.PostID, adminID)
		if err != nil {
			return "", nil, err
		}
		return res.Message, nil, nil

	case ActionReject:
		post, err := h.moderation.GetPost(ctx, action.PostID)
		if err != nil {
			return "", nil, err
		}
		if post.Status != enums.StatusPending {
			return service.AlreadyHandledMessage(post), nil, nil
		}
		return rejectionMenuText(action.PostID), RejectionMenu(action.PostID), nil

	case ActionRejectReason:
		res, err := h.moderation.Reject(ctx, action.PostID, adminID, action.Reason, "")
		if err != nil {
			return "", nil, err
		}
		return res.Message, nil, nil

	case ActionRejectCustom:
		prompt, err := h.moderation.StartCustomRejection(ctx, adminID, action.PostID, &origin)
		if err != nil {
			return "", nil, err
		}
		return prompt.Message, CustomReasonKeyboard(action.PostID), nil

	case ActionRejectCancel:
		cancelled, err := h.moderation.CancelRejection(ctx, adminID, action.PostID)
		if err != nil {
			return "", nil, err
		}
		post, err := h.moderation.GetPost(ctx, cancelled.PostID)
		if err != nil {
			return "", nil, err
		}
		if post.Status != enums.StatusPending {
			return service.AlreadyHandledMessage(post), nil, nil
		}
		return ReviewCardText(post), ReviewKeyboard(post.ID, post.UserID), nil

	case ActionFlag:
		if err := h.moderation.Flag(ctx, action.PostID, adminID); err != nil {
			return "", nil, err
		}
		return "🚩 Submission flagged for review.", nil, nil

	case ActionDeletePost:
		stats, err := h.deletion.DeletePost(ctx, action.PostID, adminID)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("🗑️ Post #%d deleted.\n\nComments: %d\nReactions: %d\nReports: %d",
			action.PostID, stats.CommentsDeleted+stats.RepliesDeleted, stats.ReactionsDeleted, stats.ReportsDeleted), nil, nil

	case ActionDeleteComment:
		stats, err := h.deletion.DeleteComment(ctx, uint64(action.TargetID), adminID)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("🗑️ Comment #%d deleted.\n\nReplies: %d\nReactions: %d\nReports: %d",
			action.TargetID, stats.RepliesDeleted, stats.ReactionsDeleted, stats.ReportsDeleted), nil, nil

	case ActionBlock:
		if err := h.moderation.BlockUser(ctx, action.TargetID, adminID); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("⛔ User %d blocked.", action.TargetID), nil, nil

	case ActionUnblock:
		if err := h.moderation.UnblockUser(ctx, action.TargetID, adminID); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("✅ User %d unblocked.", action.TargetID), nil, nil
	}

	if h.messages == nil {
		return "", nil, myErrors.Validation("Unknown action.")
	}
	switch action.Kind {
	case ActionMessageReply:
		prompt, err := h.messages.StartReply(ctx, adminID, action.MessageID, &origin)
		if err != nil {
			return "", nil, err
		}
		return prompt.Message, replyCancelKeyboard(action.MessageID), nil

	case ActionMessageReplyCancel:
		if _, err := h.messages.CancelReply(ctx, adminID); err != nil {
			return "", nil, err
		}
		msg, err := h.messages.GetMessage(ctx, action.MessageID)
		if err != nil {
			return "", nil, err
		}
		if msg.Replied {
			return fmt.Sprintf("✅ Message #%d was already handled.", msg.MessageID), nil, nil
		}
		return fmt.Sprintf("🚫 Reply cancelled.\n\nMessage #%d from user %d:\n%s", msg.MessageID, msg.UserID, msg.UserMessage),
			service.AdminMessageKeyboard(msg.MessageID, msg.UserID), nil

	case ActionMessageRead:
		if err := h.messages.MarkRead(ctx, action.MessageID, adminID); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("✅ Message #%d marked as read.", action.MessageID), nil, nil

	case ActionMessageIgnore:
		n, err := h.messages.IgnoreUser(ctx, action.TargetID, adminID)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("🔇 Ignored %d pending message(s) from user %d.", n, action.TargetID), nil, nil
	}
	return "", nil, myErrors.Validation("Unknown action.")
}

// sendHistory 历史单独发一条消息，不覆盖原来的私信卡片
func (h *AdminHandler) sendHistory(ctx context.Context, userID int64, chatID int64) string {
	if h.messages == nil {
		return "❗ Unknown action."
	}
	msgs, err := h.messages.History(ctx, userID, 0)
	if err != nil {
		h.logger.Error("查询私信历史失败", zap.Int64("userID", userID), zap.Error(err))
		return "❗ " + myErrors.UserMessage(err)
	}
	h.reply(ctx, chatID, service.HistoryText(userID, msgs))
	return "📋 History sent."
}

// HandleText 管理员有未完成的自定义拒绝时，把这条文本当作拒绝原因；
// 否则有未完成的私信回复时，把它当作回复内容。自定义拒绝优先。
// 两种草稿都没有时返回 false，由调用方按普通消息处理。
func (h *AdminHandler) HandleText(ctx context.Context, adminID int64, chatID int64, text string) bool {
	if !h.telegram.IsAdmin(adminID) {
		return false
	}
	if h.handleRejectionText(ctx, adminID, chatID, text) {
		return true
	}
	return h.handleReplyText(ctx, adminID, chatID, text)
}

func (h *AdminHandler) handleRejectionText(ctx context.Context, adminID int64, chatID int64, text string) bool {
	draft, err := h.moderation.PendingCustomRejection(ctx, adminID)
	if err != nil {
		if !errors.Is(err, myErrors.ErrCacheMiss) {
			h.logger.Error("读取拒绝草稿失败", zap.Int64("adminID", adminID), zap.Error(err))
		}
		return false
	}

	res, err := h.moderation.SubmitCustomRejection(ctx, adminID, text)
	if err != nil {
		reply := "❗ " + myErrors.UserMessage(err)
		// 校验失败时草稿仍在，提示管理员重新输入
		if myErrors.Classify(err) == myErrors.KindValidation {
			reply += "\n\nPlease type the reason again or press Cancel."
		}
		h.reply(ctx, chatID, reply)
		return true
	}

	h.reply(ctx, chatID, res.Message)
	if draft.MessageID != 0 {
		h.editOrigin(ctx, messaging.MessageRef{ChatID: draft.ChatID, MessageID: draft.MessageID}, res.Message, nil)
	}
	return true
}

func (h *AdminHandler) handleReplyText(ctx context.Context, adminID int64, chatID int64, text string) bool {
	if h.messages == nil {
		return false
	}
	draft, err := h.messages.PendingReply(ctx, adminID)
	if err != nil {
		if !errors.Is(err, myErrors.ErrCacheMiss) {
			h.logger.Error("读取回复草稿失败", zap.Int64("adminID", adminID), zap.Error(err))
		}
		return false
	}

	res, err := h.messages.SubmitReplyDraft(ctx, adminID, text)
	if err != nil {
		reply := "❗ " + myErrors.UserMessage(err)
		if myErrors.Classify(err) == myErrors.KindValidation {
			reply += "\n\nPlease type the reply again or press Cancel."
		}
		h.reply(ctx, chatID, reply)
		return true
	}

	h.reply(ctx, chatID, res.Message)
	if draft.PromptID != 0 {
		h.editOrigin(ctx, messaging.MessageRef{ChatID: draft.ChatID, MessageID: draft.PromptID}, res.Message, nil)
	}
	return true
}

// HandleCommand 处理私聊命令，返回 false 表示不认识的命令。
//   - /contact <text> 任何用户都可以给管理员发匿名私信
//   - /reply <message_id> <text> 仅管理员
func (h *AdminHandler) HandleCommand(ctx context.Context, userID int64, chatID int64, command, args string) bool {
	if h.messages == nil {
		return false
	}
	switch command {
	case "contact":
		if strings.TrimSpace(args) == "" {
			h.reply(ctx, chatID, "📝 Usage: /contact <your message>\n\nYour message will be forwarded to the administrators.")
			return true
		}
		receipt, err := h.messages.SubmitUserMessage(ctx, userID, args)
		if err != nil {
			h.replyError(ctx, chatID, "提交私信失败", err)
			return true
		}
		h.reply(ctx, chatID, receipt.Message)
		return true

	case "reply":
		if !h.telegram.IsAdmin(userID) {
			return false
		}
		idPart, body, _ := strings.Cut(strings.TrimSpace(args), " ")
		id, err := strconv.ParseUint(idPart, 10, 64)
		if err != nil || id == 0 || strings.TrimSpace(body) == "" {
			h.reply(ctx, chatID, "📝 Usage: /reply <message_id> <your response>")
			return true
		}
		res, err := h.messages.ReplyToUser(ctx, id, userID, body)
		if err != nil {
			h.replyError(ctx, chatID, "回复私信失败", err)
			return true
		}
		h.reply(ctx, chatID, res.Message)
		return true
	}
	return false
}

func (h *AdminHandler) replyError(ctx context.Context, chatID int64, logMsg string, err error) {
	if myErrors.Classify(err) == myErrors.KindSystem {
		h.logger.Error(logMsg, zap.Int64("chatID", chatID), zap.Error(err))
	}
	h.reply(ctx, chatID, "❗ "+myErrors.UserMessage(err))
}

func (h *AdminHandler) editOrigin(ctx context.Context, origin messaging.MessageRef, text string, buttons [][]messaging.Button) {
	if origin.MessageID == 0 || text == "" {
		return
	}
	if err := h.messenger.Edit(ctx, origin, text, buttons); err != nil {
		h.logger.Warn("更新管理员消息失败", zap.Int64("chatID", origin.ChatID), zap.Int("messageID", origin.MessageID), zap.Error(err))
	}
}

func (h *AdminHandler) reply(ctx context.Context, chatID int64, text string) {
	if _, err := h.messenger.Send(ctx, messaging.OutgoingMessage{ChatID: chatID, Text: text}); err != nil {
		h.logger.Warn("回复管理员失败", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
