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
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/constant"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/events"
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/myErrors"
	"github.com/Xushengqwer/confession_service/repo/redis"
	"github.com/Xushengqwer/confession_service/repo/store"
)

// errNotPending 事务内发现投稿已离开 pending，用于触发回滚
var errNotPending = errors.New("post is no longer pending")

// ModerationService 投稿审核状态机。
// 投稿只能从 pending 迁移一次；迁移由条件更新保证，输掉竞争的一方得到 already_* 结果而不是错误。
type ModerationService interface {
	// Approve 通过投稿：分配发布编号、发布到频道、通知投稿人、发出积分事件。
	// 频道和通知失败不影响审核结果，分别记录在 Channel / Notify 中。
	Approve(ctx context.Context, postID uint64, adminID int64) (*vo.ModerationResult, error)

	// Reject 以预设原因拒绝；reason 为 custom 时使用 customText
	Reject(ctx context.Context, postID uint64, adminID int64, reason enums.RejectionReason, customText string) (*vo.ModerationResult, error)

	// StartCustomRejection 进入自定义原因输入，origin 为发起操作的管理员消息（可为 nil）
	StartCustomRejection(ctx context.Context, adminID int64, postID uint64, origin *messaging.MessageRef) (*vo.CustomRejectionPrompt, error)

	// PendingCustomRejection 管理员当前的自定义原因草稿，没有时返回 myErrors.ErrCacheMiss
	PendingCustomRejection(ctx context.Context, adminID int64) (*redis.RejectionDraft, error)

	// SubmitCustomRejection 提交自定义原因。校验失败时保留草稿，管理员可以重新输入。
	SubmitCustomRejection(ctx context.Context, adminID int64, text string) (*vo.ModerationResult, error)

	// CancelRejection 放弃拒绝流程，不产生任何持久化副作用。
	// postID 为 0 时取草稿中的帖子。
	CancelRejection(ctx context.Context, adminID int64, postID uint64) (*vo.RejectionCancelled, error)

	Flag(ctx context.Context, postID uint64, adminID int64) error
	BlockUser(ctx context.Context, userID int64, adminID int64) error
	UnblockUser(ctx context.Context, userID int64, adminID int64) error
	IsBlocked(ctx context.Context, userID int64) (bool, error)

	// BulkApprove 逐个通过并汇总结果，单个失败不影响其他
	BulkApprove(ctx context.Context, postIDs []uint64, adminID int64) (*vo.BulkApproveResult, error)

	RejectionReasons() []enums.RejectionReasonOption

	GetPost(ctx context.Context, postID uint64) (*entities.Post, error)
}

type moderationService struct {
	gw         store.Gateway
	postRepo   store.PostRepository
	comment    store.CommentRepository
	seqRepo    store.SequenceRepository
	userRepo   store.UserRepository
	auditRepo  store.AuditRepository
	drafts     redis.RejectionDraftRepository
	messenger  messaging.Messenger
	publisher  EventPublisher
	telegram   config.TelegramConfig
	moderation config.ModerationConfig
	logger     *core.ZapLogger
}

// NewModerationService 构造审核服务
func NewModerationService(
	gw store.Gateway,
	postRepo store.PostRepository,
	commentRepo store.CommentRepository,
	seqRepo store.SequenceRepository,
	userRepo store.UserRepository,
	auditRepo store.AuditRepository,
	drafts redis.RejectionDraftRepository,
	messenger messaging.Messenger,
	publisher EventPublisher,
	telegram config.TelegramConfig,
	moderation config.ModerationConfig,
	logger *core.ZapLogger,
) ModerationService {
	if moderation.CustomReasonMaxLength <= 0 {
		moderation.CustomReasonMaxLength = constant.DefaultCustomReasonMaxLength
	}
	if moderation.BulkApproveLimit <= 0 {
		moderation.BulkApproveLimit = 50
	}
	return &moderationService{
		gw:         gw,
		postRepo:   postRepo,
		comment:    commentRepo,
		seqRepo:    seqRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		drafts:     drafts,
		messenger:  messenger,
		publisher:  publisher,
		telegram:   telegram,
		moderation: moderation,
		logger:     logger,
	}
}

func (s *moderationService) Approve(ctx context.Context, postID uint64, adminID int64) (*vo.ModerationResult, error) {
	now := time.Now()
	var post *entities.Post
	var postNumber int64

	err := s.gw.Transaction(ctx, func(tx *gorm.DB) error {
		p, err := s.postRepo.GetPostByID(ctx, tx, postID)
		if err != nil {
			return err
		}
		if p.Status != enums.StatusPending {
			return errNotPending
		}
		post = p

		// 编号和状态迁移在同一事务里：迁移失败时编号随回滚一起撤销
		postNumber, err = s.seqRepo.Next(ctx, tx, constant.PostNumberSequence, func(tx *gorm.DB) (int64, error) {
			return s.postRepo.MaxPostNumber(ctx, tx)
		})
		if err != nil {
			return fmt.Errorf("分配发布编号失败: %w", err)
		}
		applied, err := s.postRepo.ClaimApproval(ctx, tx, postID, adminID, postNumber, now)
		if err != nil {
			return err
		}
		if !applied {
			return errNotPending
		}
		return nil
	})
	if errors.Is(err, errNotPending) {
		return s.alreadyHandled(ctx, postID)
	}
	if err != nil {
		s.logger.Error("审核通过投稿失败", zap.Uint64("postID", postID), zap.Int64("adminID", adminID), zap.Error(err))
		return nil, fmt.Errorf("审核通过投稿(ID: %d)失败: %w", postID, err)
	}

	post.Status = enums.StatusApproved
	post.PostNumber = &postNumber
	post.ApprovedBy = &adminID
	post.ApprovedAt = &now
	s.logger.Info("投稿已通过", zap.Uint64("postID", postID), zap.Int64("adminID", adminID), zap.Int64("postNumber", postNumber))

	result := &vo.ModerationResult{
		PostID:     postID,
		Outcome:    vo.OutcomeApplied,
		Status:     enums.StatusApproved,
		HandledBy:  &adminID,
		PostNumber: &postNumber,
	}

	// 以下副作用都是尽力而为，状态已经提交
	result.Channel = s.publishToChannel(ctx, post, postNumber)
	s.audit(ctx, adminID, enums.ActionApprovePost, enums.TargetPost, postID, map[string]interface{}{
		"post_number": postNumber,
		"channel":     result.Channel.Status,
	})

	event := newModerationEvent(postID, post.UserID, adminID, enums.StatusApproved)
	event.PostNumber = postNumber
	result.LedgerDispatched = s.dispatch(ctx, event)

	notify := s.notifySubmitter(ctx, post.UserID, approvalUserMessage(postNumber))
	result.Notify = &notify
	result.Message = approvalAdminMessage(postNumber, result.Channel)
	return result, nil
}

func (s *moderationService) Reject(ctx context.Context, postID uint64, adminID int64, reason enums.RejectionReason, customText string) (*vo.ModerationResult, error) {
	var reasonText string
	if reason == enums.ReasonCustom {
		text, err := s.validateCustomReason(customText)
		if err != nil {
			return nil, err
		}
		reasonText = text
	} else {
		label, ok := reason.Label()
		if !ok {
			return nil, myErrors.Validation(fmt.Sprintf("Unknown rejection reason %q.", reason))
		}
		reasonText = label
	}
	return s.reject(ctx, postID, adminID, reason, reasonText)
}

func (s *moderationService) reject(ctx context.Context, postID uint64, adminID int64, code enums.RejectionReason, reason string) (*vo.ModerationResult, error) {
	post, err := s.postRepo.GetPostByID(ctx, nil, postID)
	if err != nil {
		return nil, err
	}
	if post.Status != enums.StatusPending {
		return s.alreadyHandled(ctx, postID)
	}

	applied, err := s.postRepo.ClaimRejection(ctx, nil, postID, adminID, reason, time.Now())
	if err != nil {
		s.logger.Error("拒绝投稿失败", zap.Uint64("postID", postID), zap.Int64("adminID", adminID), zap.Error(err))
		return nil, fmt.Errorf("拒绝投稿(ID: %d)失败: %w", postID, err)
	}
	if !applied {
		return s.alreadyHandled(ctx, postID)
	}
	s.logger.Info("投稿已拒绝", zap.Uint64("postID", postID), zap.Int64("adminID", adminID), zap.String("reason", reason))

	result := &vo.ModerationResult{
		PostID:          postID,
		Outcome:         vo.OutcomeApplied,
		Status:          enums.StatusRejected,
		HandledBy:       &adminID,
		RejectionReason: reason,
	}
	s.audit(ctx, adminID, enums.ActionRejectPost, enums.TargetPost, postID, map[string]interface{}{"reason": reason})

	event := newModerationEvent(postID, post.UserID, adminID, enums.StatusRejected)
	event.Reason = reason
	event.ReasonCode = code
	result.LedgerDispatched = s.dispatch(ctx, event)

	notify := s.notifySubmitter(ctx, post.UserID, rejectionUserMessage(reason))
	result.Notify = &notify
	result.Message = rejectionAdminMessage(reason, notify)
	return result, nil
}

// validateCustomReason 去掉首尾空白后不能为空，且不超过长度上限（按字符计）
func (s *moderationService) validateCustomReason(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", myErrors.Validation("Rejection reason cannot be empty. Please type a reason.")
	}
	if n := utf8.RuneCountInString(trimmed); n > s.moderation.CustomReasonMaxLength {
		return "", myErrors.Validation(fmt.Sprintf("Rejection reason is too long (%d/%d characters). Please shorten it.",
			n, s.moderation.CustomReasonMaxLength))
	}
	return trimmed, nil
}

func (s *moderationService) StartCustomRejection(ctx context.Context, adminID int64, postID uint64, origin *messaging.MessageRef) (*vo.CustomRejectionPrompt, error) {
	post, err := s.postRepo.GetPostByID(ctx, nil, postID)
	if err != nil {
		return nil, err
	}
	if post.Status != enums.StatusPending {
		return nil, myErrors.AlreadyTransitioned(AlreadyHandledMessage(post))
	}

	draft := &redis.RejectionDraft{AdminID: adminID, PostID: postID, StartedAt: time.Now().UTC()}
	if origin != nil {
		draft.ChatID = origin.ChatID
		draft.MessageID = origin.MessageID
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return &vo.CustomRejectionPrompt{
		PostID:    postID,
		MaxLength: s.moderation.CustomReasonMaxLength,
		Message: fmt.Sprintf("✏️ Custom Rejection Reason\n\nPlease type your custom rejection reason for post #%d.\n\n"+
			"Maximum %d characters.", postID, s.moderation.CustomReasonMaxLength),
	}, nil
}

func (s *moderationService) PendingCustomRejection(ctx context.Context, adminID int64) (*redis.RejectionDraft, error) {
	return s.drafts.Get(ctx, adminID)
}

func (s *moderationService) SubmitCustomRejection(ctx context.Context, adminID int64, text string) (*vo.ModerationResult, error) {
	draft, err := s.drafts.Get(ctx, adminID)
	if err != nil {
		if errors.Is(err, myErrors.ErrCacheMiss) {
			return nil, myErrors.Validation("No custom rejection in progress. It may have expired; please start again.")
		}
		return nil, err
	}

	reason, err := s.validateCustomReason(text)
	if err != nil {
		return nil, err
	}

	result, err := s.reject(ctx, draft.PostID, adminID, enums.ReasonCustom, reason)
	if err != nil && !errors.Is(err, myErrors.ErrNotFound) {
		// 系统错误保留草稿，管理员可以直接重试
		return nil, err
	}
	if clearErr := s.drafts.Clear(ctx, adminID); clearErr != nil {
		s.logger.Warn("清除拒绝草稿失败", zap.Int64("adminID", adminID), zap.Error(clearErr))
	}
	return result, err
}

func (s *moderationService) CancelRejection(ctx context.Context, adminID int64, postID uint64) (*vo.RejectionCancelled, error) {
	draft, err := s.drafts.Take(ctx, adminID)
	if err != nil && !errors.Is(err, myErrors.ErrCacheMiss) {
		s.logger.Warn("读取拒绝草稿失败", zap.Int64("adminID", adminID), zap.Error(err))
	}
	if postID == 0 && draft != nil {
		postID = draft.PostID
	}
	if postID == 0 {
		return nil, myErrors.Validation("Nothing to cancel.")
	}
	return &vo.RejectionCancelled{PostID: postID, Message: "Rejection cancelled."}, nil
}

func (s *moderationService) Flag(ctx context.Context, postID uint64, adminID int64) error {
	if err := s.postRepo.SetFlagged(ctx, postID); err != nil {
		if !errors.Is(err, myErrors.ErrNotFound) {
			s.logger.Error("标记投稿失败", zap.Uint64("postID", postID), zap.Error(err))
		}
		return err
	}
	// 只改标记位，不写审计、不发事件
	s.logger.Info("投稿已标记", zap.Uint64("postID", postID), zap.Int64("adminID", adminID))
	return nil
}

func (s *moderationService) BlockUser(ctx context.Context, userID int64, adminID int64) error {
	return s.setBlocked(ctx, userID, adminID, true)
}

func (s *moderationService) UnblockUser(ctx context.Context, userID int64, adminID int64) error {
	return s.setBlocked(ctx, userID, adminID, false)
}

func (s *moderationService) setBlocked(ctx context.Context, userID int64, adminID int64, blocked bool) error {
	if err := s.userRepo.SetBlocked(ctx, userID, blocked); err != nil {
		s.logger.Error("更新用户封禁状态失败", zap.Int64("userID", userID), zap.Bool("blocked", blocked), zap.Error(err))
		return fmt.Errorf("更新用户(ID: %d)封禁状态失败: %w", userID, err)
	}
	action := enums.ActionUnblockUser
	if blocked {
		action = enums.ActionBlockUser
	}
	s.audit(ctx, adminID, action, enums.TargetUser, uint64(userID), nil)
	return nil
}

func (s *moderationService) IsBlocked(ctx context.Context, userID int64) (bool, error) {
	return s.userRepo.IsBlocked(ctx, userID)
}

func (s *moderationService) BulkApprove(ctx context.Context, postIDs []uint64, adminID int64) (*vo.BulkApproveResult, error) {
	if len(postIDs) > s.moderation.BulkApproveLimit {
		return nil, myErrors.Validation(fmt.Sprintf("At most %d posts can be approved at once.", s.moderation.BulkApproveLimit))
	}

	out := &vo.BulkApproveResult{}
	seen := make(map[uint64]bool, len(postIDs))
	for _, id := range postIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		result, err := s.Approve(ctx, id, adminID)
		if err != nil {
			out.Failed++
			if out.Errors == nil {
				out.Errors = make(map[uint64]string)
			}
			out.Errors[id] = myErrors.UserMessage(err)
			continue
		}
		if result.Applied() {
			out.Applied++
		} else {
			out.AlreadyHandled++
		}
		out.Results = append(out.Results, result)
	}
	out.Message = fmt.Sprintf("Approved %d, already handled %d, failed %d.", out.Applied, out.AlreadyHandled, out.Failed)
	return out, nil
}

func (s *moderationService) RejectionReasons() []enums.RejectionReasonOption {
	return enums.RejectionReasonOptions()
}

func (s *moderationService) GetPost(ctx context.Context, postID uint64) (*entities.Post, error) {
	return s.postRepo.GetPostByID(ctx, nil, postID)
}

// alreadyHandled 读取最新状态，构造 already_* 结果
func (s *moderationService) alreadyHandled(ctx context.Context, postID uint64) (*vo.ModerationResult, error) {
	post, err := s.postRepo.GetPostByID(ctx, nil, postID)
	if err != nil {
		return nil, err
	}
	result := &vo.ModerationResult{
		PostID:     postID,
		Status:     post.Status,
		HandledBy:  post.HandledBy(),
		PostNumber: post.PostNumber,
		Message:    AlreadyHandledMessage(post),
	}
	switch post.Status {
	case enums.StatusApproved:
		result.Outcome = vo.OutcomeAlreadyApproved
	case enums.StatusRejected:
		result.Outcome = vo.OutcomeAlreadyRejected
		if post.RejectionReason != nil {
			result.RejectionReason = *post.RejectionReason
		}
	default:
		// 仍是 pending 说明条件更新因其他原因未生效
		return nil, myErrors.Conflict("The post changed while being processed. Please retry.")
	}
	s.logger.Info("投稿已被其他管理员处理",
		zap.Uint64("postID", postID),
		zap.String("status", string(post.Status)),
		zap.Int64p("handledBy", post.HandledBy()))
	return result, nil
}

func (s *moderationService) publishToChannel(ctx context.Context, post *entities.Post, postNumber int64) *vo.PublishResult {
	if s.telegram.ChannelID == 0 {
		return &vo.PublishResult{Status: vo.PublishUnreachable, Reason: "channel not configured"}
	}

	commentCount, err := s.comment.CountByPost(ctx, post.ID)
	if err != nil {
		s.logger.Warn("统计评论数失败，按 0 展示", zap.Uint64("postID", post.ID), zap.Error(err))
	}
	msg := messaging.OutgoingMessage{
		ChatID:  s.telegram.ChannelID,
		Text:    FormatChannelPost(postNumber, post),
		Buttons: ChannelButtons(s.telegram.BotUsername, post.ID, commentCount),
	}
	if post.HasMedia() {
		msg.Media = &messaging.Media{Type: post.MediaType, FileID: post.MediaFileID}
	}

	ref, err := s.messenger.Send(ctx, msg)
	if err != nil {
		if errors.Is(err, messaging.ErrChatUnreachable) {
			s.logger.Warn("频道不可达，投稿仅在本地记为通过", zap.Uint64("postID", post.ID), zap.Error(err))
			return &vo.PublishResult{Status: vo.PublishUnreachable, Reason: err.Error()}
		}
		s.logger.Error("发布到频道失败", zap.Uint64("postID", post.ID), zap.Error(err))
		return &vo.PublishResult{Status: vo.PublishFailed, Reason: err.Error()}
	}

	messageID := int64(ref.MessageID)
	if err := s.postRepo.SetChannelMessageID(ctx, post.ID, messageID); err != nil {
		s.logger.Error("记录频道消息 ID 失败", zap.Uint64("postID", post.ID), zap.Int64("messageID", messageID), zap.Error(err))
	}
	return &vo.PublishResult{Status: vo.PublishPosted, MessageID: &messageID}
}

func (s *moderationService) notifySubmitter(ctx context.Context, userID int64, text string) vo.NotifyResult {
	if _, err := s.messenger.Send(ctx, messaging.OutgoingMessage{ChatID: userID, Text: text}); err != nil {
		s.logger.Warn("通知投稿人失败", zap.Int64("userID", userID), zap.Error(err))
		return vo.NotifyFailed(err.Error())
	}
	return vo.NotifyDelivered()
}

func (s *moderationService) dispatch(ctx context.Context, event *events.ModerationEvent) bool {
	if err := s.publisher.PublishModerationEvent(ctx, event); err != nil {
		s.logger.Error("发送审核事件失败，积分未结算",
			zap.String("eventID", event.EventID),
			zap.Uint64("postID", event.PostID),
			zap.String("status", string(event.Status)),
			zap.Error(err))
		return false
	}
	return true
}

// audit 审核类操作的审计在提交后写入，失败只记日志
func (s *moderationService) audit(ctx context.Context, adminID int64, action enums.AuditAction, targetType enums.TargetType, targetID uint64, details map[string]interface{}) {
	if err := s.auditRepo.Append(ctx, nil, adminID, action, targetType, targetID, details); err != nil {
		s.logger.Warn("写入审计日志失败",
			zap.Int64("adminID", adminID),
			zap.String("action", string(action)),
			zap.Uint64("targetID", targetID),
			zap.Error(err))
	}
}
