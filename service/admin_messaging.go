package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/constant"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/myErrors"
	"github.com/Xushengqwer/confession_service/repo/redis"
	"github.com/Xushengqwer/confession_service/repo/store"
)

// AdminMessagingService 用户与管理员之间的匿名私信。
// 一条私信只能被回复一次，多个管理员同时回复时通过条件更新 (WHERE replied = false) 决出唯一的胜者。
type AdminMessagingService interface {
	// SubmitUserMessage 保存私信并转发给全部管理员，没有管理员收到时仍保留记录
	SubmitUserMessage(ctx context.Context, userID int64, text string) (*vo.UserMessageReceipt, error)

	// ReplyToUser 匿名回复用户并通知其他管理员。
	// - 已被处理时返回 myErrors.ErrAlreadyTransitioned，说明文字区分“自己已回复”和“其他管理员已回复”
	ReplyToUser(ctx context.Context, messageID uint64, adminID int64, reply string) (*vo.AdminReplyResult, error)

	// MarkRead 标记为已处理，不给用户发消息
	MarkRead(ctx context.Context, messageID uint64, adminID int64) error

	// IgnoreUser 把该用户所有未处理的私信标记为已处理，返回条数
	IgnoreUser(ctx context.Context, userID int64, adminID int64) (int64, error)

	GetMessage(ctx context.Context, messageID uint64) (*vo.AdminMessageVO, error)
	ListPending(ctx context.Context, limit int) ([]*vo.AdminMessageVO, error)

	// History 用户最近的私信，limit <= 0 时取 10 条
	History(ctx context.Context, userID int64, limit int) ([]*vo.AdminMessageVO, error)

	// StartReply 进入回复输入状态，管理员的下一条文本作为回复内容
	StartReply(ctx context.Context, adminID int64, messageID uint64, prompt *messaging.MessageRef) (*vo.ReplyPrompt, error)

	// PendingReply 未开始回复时返回 myErrors.ErrCacheMiss
	PendingReply(ctx context.Context, adminID int64) (*redis.ReplyDraft, error)

	// SubmitReplyDraft 用草稿中的私信 ID 完成回复。校验失败时草稿保留。
	SubmitReplyDraft(ctx context.Context, adminID int64, text string) (*vo.AdminReplyResult, error)

	// CancelReply 放弃回复，没有草稿时返回 0
	CancelReply(ctx context.Context, adminID int64) (uint64, error)
}

type adminMessagingService struct {
	repo      store.AdminMessageRepository
	drafts    redis.ReplyDraftRepository
	messenger messaging.Messenger
	telegram  config.TelegramConfig
	maxLength int
	now       func() time.Time
	logger    *core.ZapLogger
}

// NewAdminMessagingService 构造私信服务
func NewAdminMessagingService(
	repo store.AdminMessageRepository,
	drafts redis.ReplyDraftRepository,
	messenger messaging.Messenger,
	telegram config.TelegramConfig,
	moderation config.ModerationConfig,
	logger *core.ZapLogger,
) AdminMessagingService {
	maxLength := moderation.MessageMaxLength
	if maxLength <= 0 {
		maxLength = constant.DefaultMessageMaxLength
	}
	return &adminMessagingService{
		repo:      repo,
		drafts:    drafts,
		messenger: messenger,
		telegram:  telegram,
		maxLength: maxLength,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *adminMessagingService) SubmitUserMessage(ctx context.Context, userID int64, text string) (*vo.UserMessageReceipt, error) {
	body, err := s.validateText(text, "Message")
	if err != nil {
		return nil, err
	}
	msg := &entities.AdminMessage{UserID: userID, UserMessage: body, CreatedAt: s.now()}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("保存用户(ID: %d)私信失败: %w", userID, err)
	}

	receipt := &vo.UserMessageReceipt{MessageID: msg.ID}
	if len(s.telegram.AdminIDs) == 0 {
		s.logger.Warn("没有配置管理员，私信只保存不转发", zap.Uint64("messageID", msg.ID))
	}
	for _, adminID := range s.telegram.AdminIDs {
		_, err := s.messenger.Send(ctx, messaging.OutgoingMessage{
			ChatID:  adminID,
			Text:    newMessageAdminText(msg),
			Buttons: AdminMessageKeyboard(msg.ID, msg.UserID),
		})
		if err != nil {
			s.logger.Warn("转发私信给管理员失败", zap.Uint64("messageID", msg.ID), zap.Int64("adminID", adminID), zap.Error(err))
			continue
		}
		receipt.Forwarded++
	}
	s.logger.Info("收到用户私信", zap.Uint64("messageID", msg.ID), zap.Int64("userID", userID), zap.Int("forwarded", receipt.Forwarded))

	receipt.Message = "✅ Your message has been sent to the administrators. You will receive an anonymous reply here."
	return receipt, nil
}

func (s *adminMessagingService) ReplyToUser(ctx context.Context, messageID uint64, adminID int64, reply string) (*vo.AdminReplyResult, error) {
	body, err := s.validateText(reply, "Reply")
	if err != nil {
		return nil, err
	}
	msg, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.Replied {
		return nil, alreadyRepliedError(msg, adminID, false)
	}

	applied, err := s.repo.ClaimReply(ctx, messageID, adminID, body, s.now())
	if err != nil {
		s.logger.Error("保存私信回复失败", zap.Uint64("messageID", messageID), zap.Int64("adminID", adminID), zap.Error(err))
		return nil, fmt.Errorf("保存私信(ID: %d)回复失败: %w", messageID, err)
	}
	if !applied {
		// 读取之后被其他管理员抢先处理
		latest, err := s.repo.GetByID(ctx, messageID)
		if err != nil {
			return nil, err
		}
		return nil, alreadyRepliedError(latest, adminID, true)
	}
	s.logger.Info("私信已回复", zap.Uint64("messageID", messageID), zap.Int64("adminID", adminID))

	result := &vo.AdminReplyResult{MessageID: messageID, UserID: msg.UserID}
	if _, err := s.messenger.Send(ctx, messaging.OutgoingMessage{ChatID: msg.UserID, Text: adminReplyUserText(body)}); err != nil {
		s.logger.Warn("发送回复给用户失败", zap.Uint64("messageID", messageID), zap.Int64("userID", msg.UserID), zap.Error(err))
		result.Notify = vo.NotifyFailed(err.Error())
		result.Message = fmt.Sprintf("⚠️ Reply to message #%d saved, but it could not be delivered to the user.", messageID)
	} else {
		result.Notify = vo.NotifyDelivered()
		result.Message = fmt.Sprintf("✅ Reply to message #%d sent.", messageID)
	}
	result.OthersNotified = s.notifyOtherAdmins(ctx, msg, adminID)
	return result, nil
}

// alreadyRepliedError raced 为 true 表示读取时仍未处理，条件更新时才发现被抢先
func alreadyRepliedError(msg *entities.AdminMessage, adminID int64, raced bool) error {
	var by int64
	if msg.RepliedByAdminID != nil {
		by = *msg.RepliedByAdminID
	}
	switch {
	case by == adminID:
		return myErrors.AlreadyTransitioned("You have already replied to this message.")
	case raced:
		return myErrors.AlreadyTransitioned(fmt.Sprintf("Another admin (ID: %d) replied to this message while you were typing.", by))
	default:
		return myErrors.AlreadyTransitioned(fmt.Sprintf("This message has already been replied to by another admin (ID: %d).", by))
	}
}

func (s *adminMessagingService) notifyOtherAdmins(ctx context.Context, msg *entities.AdminMessage, replyingAdminID int64) int {
	text := fmt.Sprintf("✅ Message #%d has been replied to\n\nFrom User: %d\nReplied by: Admin %d\nStatus: Resolved\n\n"+
		"This message is now marked as handled.", msg.ID, msg.UserID, replyingAdminID)
	notified := 0
	for _, adminID := range s.telegram.AdminIDs {
		if adminID == replyingAdminID {
			continue
		}
		_, err := s.messenger.Send(ctx, messaging.OutgoingMessage{
			ChatID:  adminID,
			Text:    text,
			Buttons: [][]messaging.Button{{{Text: "📋 View History", Data: fmt.Sprintf("admin_history_%d", msg.UserID)}}},
		})
		if err != nil {
			s.logger.Warn("通知其他管理员失败", zap.Uint64("messageID", msg.ID), zap.Int64("adminID", adminID), zap.Error(err))
			continue
		}
		notified++
	}
	return notified
}

func (s *adminMessagingService) MarkRead(ctx context.Context, messageID uint64, adminID int64) error {
	applied, err := s.repo.MarkRead(ctx, messageID, adminID, s.now())
	if err != nil {
		return fmt.Errorf("标记私信(ID: %d)已读失败: %w", messageID, err)
	}
	if applied {
		return nil
	}
	// 区分不存在和已处理
	if _, err := s.repo.GetByID(ctx, messageID); err != nil {
		return err
	}
	return myErrors.AlreadyTransitioned(fmt.Sprintf("Message #%d was already handled.", messageID))
}

func (s *adminMessagingService) IgnoreUser(ctx context.Context, userID int64, adminID int64) (int64, error) {
	n, err := s.repo.IgnoreUser(ctx, userID, adminID, s.now())
	if err != nil {
		return 0, fmt.Errorf("忽略用户(ID: %d)私信失败: %w", userID, err)
	}
	s.logger.Info("已忽略用户的未处理私信", zap.Int64("userID", userID), zap.Int64("adminID", adminID), zap.Int64("count", n))
	return n, nil
}

func (s *adminMessagingService) GetMessage(ctx context.Context, messageID uint64) (*vo.AdminMessageVO, error) {
	msg, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return toAdminMessageVO(msg), nil
}

func (s *adminMessagingService) ListPending(ctx context.Context, limit int) ([]*vo.AdminMessageVO, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	msgs, err := s.repo.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("查询未处理私信失败: %w", err)
	}
	return toAdminMessageVOs(msgs), nil
}

func (s *adminMessagingService) History(ctx context.Context, userID int64, limit int) ([]*vo.AdminMessageVO, error) {
	if limit <= 0 {
		limit = constant.MessageHistoryLimit
	}
	msgs, err := s.repo.History(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询用户(ID: %d)私信历史失败: %w", userID, err)
	}
	return toAdminMessageVOs(msgs), nil
}

func (s *adminMessagingService) StartReply(ctx context.Context, adminID int64, messageID uint64, prompt *messaging.MessageRef) (*vo.ReplyPrompt, error) {
	msg, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.Replied {
		return nil, alreadyRepliedError(msg, adminID, false)
	}
	draft := &redis.ReplyDraft{AdminID: adminID, MessageID: messageID, StartedAt: s.now()}
	if prompt != nil {
		draft.ChatID = prompt.ChatID
		draft.PromptID = prompt.MessageID
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return &vo.ReplyPrompt{
		MessageID: messageID,
		Message: fmt.Sprintf("💬 Replying to message #%d\n\n%s\n\nType your reply now. It will be sent anonymously.",
			messageID, truncateRunes(msg.UserMessage, 300)),
	}, nil
}

func (s *adminMessagingService) PendingReply(ctx context.Context, adminID int64) (*redis.ReplyDraft, error) {
	return s.drafts.Get(ctx, adminID)
}

func (s *adminMessagingService) SubmitReplyDraft(ctx context.Context, adminID int64, text string) (*vo.AdminReplyResult, error) {
	draft, err := s.drafts.Get(ctx, adminID)
	if err != nil {
		if errors.Is(err, myErrors.ErrCacheMiss) {
			return nil, myErrors.Validation("No reply in progress.")
		}
		return nil, err
	}
	if _, err := s.validateText(text, "Reply"); err != nil {
		return nil, err
	}
	// 先取走草稿，回复失败（例如被抢先）也不再等待输入
	if _, err := s.drafts.Take(ctx, adminID); err != nil && !errors.Is(err, myErrors.ErrCacheMiss) {
		s.logger.Warn("删除回复草稿失败", zap.Int64("adminID", adminID), zap.Error(err))
	}
	return s.ReplyToUser(ctx, draft.MessageID, adminID, text)
}

func (s *adminMessagingService) CancelReply(ctx context.Context, adminID int64) (uint64, error) {
	draft, err := s.drafts.Take(ctx, adminID)
	if err != nil {
		if errors.Is(err, myErrors.ErrCacheMiss) {
			return 0, nil
		}
		return 0, err
	}
	return draft.MessageID, nil
}

func (s *adminMessagingService) validateText(text, field string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", myErrors.Validation(field + " cannot be empty.")
	}
	if n := utf8.RuneCountInString(trimmed); n > s.maxLength {
		return "", myErrors.Validation(fmt.Sprintf("%s is too long (%d characters). Maximum is %d.", field, n, s.maxLength))
	}
	return trimmed, nil
}

// AdminMessageKeyboard 转发给管理员的私信下方的按钮
func AdminMessageKeyboard(messageID uint64, userID int64) [][]messaging.Button {
	return [][]messaging.Button{
		{
			{Text: "💬 Quick Reply", Data: fmt.Sprintf("admin_reply_%d", messageID)},
			{Text: "📋 View History", Data: fmt.Sprintf("admin_history_%d", userID)},
		},
		{
			{Text: "✅ Mark as Read", Data: fmt.Sprintf("admin_read_%d", messageID)},
			{Text: "🔇 Ignore User", Data: fmt.Sprintf("admin_ignore_%d", userID)},
		},
	}
}

func newMessageAdminText(msg *entities.AdminMessage) string {
	return fmt.Sprintf("📨 New User Message\n\nMessage ID: #%d\nFrom User: %d\nTimestamp: %s\n\nMessage:\n%s\n\n"+
		"Reply with the buttons below or /reply %d <your response>",
		msg.ID, msg.UserID, msg.CreatedAt.Format("2006-01-02 15:04:05"), msg.UserMessage, msg.ID)
}

func adminReplyUserText(reply string) string {
	return "📧 Admin Reply\n\n" + reply + "\n\nThis is an anonymous reply from the administration team.\n" +
		"If you need to respond, use /contact again."
}

// HistoryText 私信历史的纯文本展示
func HistoryText(userID int64, msgs []*vo.AdminMessageVO) string {
	if len(msgs) == 0 {
		return fmt.Sprintf("📋 No messages from user %d.", userID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Message history for user %d\n", userID)
	for _, m := range msgs {
		status := "⏳ Pending"
		if m.Replied {
			status = "✅ Handled"
		}
		fmt.Fprintf(&b, "\n#%d · %s · %s\n%s\n", m.MessageID, m.Timestamp.Format("2006-01-02 15:04"), status,
			truncateRunes(m.UserMessage, 200))
		if m.AdminReply != "" {
			fmt.Fprintf(&b, "↪️ %s\n", truncateRunes(m.AdminReply, 200))
		}
	}
	return b.String()
}

func toAdminMessageVO(m *entities.AdminMessage) *vo.AdminMessageVO {
	out := &vo.AdminMessageVO{
		MessageID:        m.ID,
		UserID:           m.UserID,
		UserMessage:      m.UserMessage,
		Timestamp:        m.CreatedAt,
		Replied:          m.Replied,
		RepliedByAdminID: m.RepliedByAdminID,
		ReplyTimestamp:   m.ReplyTimestamp,
	}
	if m.AdminReply != nil {
		out.AdminReply = *m.AdminReply
	}
	return out
}

func toAdminMessageVOs(msgs []*entities.AdminMessage) []*vo.AdminMessageVO {
	out := make([]*vo.AdminMessageVO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toAdminMessageVO(m))
	}
	return out
}
