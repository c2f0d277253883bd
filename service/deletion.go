package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/constant"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/myErrors"
	"github.com/Xushengqwer/confession_service/repo/store"
)

// DeletionService 管理员删除与替换内容。
// 每个操作在单个事务内完成，子记录先于父记录删除；审计写在保存点里，失败不影响删除本身。
type DeletionService interface {
	// DeletePost 删除帖子及其评论、反应、举报。提交后尽力删除频道消息。
	DeletePost(ctx context.Context, postID uint64, adminID int64) (*vo.DeletionStats, error)

	// DeleteComment 删除评论及其直接回复，以及它们的反应和举报
	DeleteComment(ctx context.Context, commentID uint64, adminID int64) (*vo.DeletionStats, error)

	// ReplaceCommentWithMessage 用占位文本替换评论及其回复并清除举报，text 为空时使用默认文本
	ReplaceCommentWithMessage(ctx context.Context, commentID uint64, adminID int64, text string) (*vo.ReplacementStats, error)

	// ClearReports 清除某个对象上的全部举报，adminID 为 nil 时按系统操作记录
	ClearReports(ctx context.Context, targetType enums.TargetType, targetID uint64, adminID *int64) (*vo.ClearReportsResult, error)

	GetPostDeletionPreview(ctx context.Context, postID uint64) (*vo.PostDeletionPreview, error)
	GetCommentDeletionPreview(ctx context.Context, commentID uint64) (*vo.CommentDeletionPreview, error)
}

type deletionService struct {
	gw           store.Gateway
	postRepo     store.PostRepository
	commentRepo  store.CommentRepository
	reactionRepo store.ReactionRepository
	reportRepo   store.ReportRepository
	auditRepo    store.AuditRepository
	messenger    messaging.Messenger
	publisher    EventPublisher
	telegram     config.TelegramConfig
	logger       *core.ZapLogger
}

// NewDeletionService 构造删除服务
func NewDeletionService(
	gw store.Gateway,
	postRepo store.PostRepository,
	commentRepo store.CommentRepository,
	reactionRepo store.ReactionRepository,
	reportRepo store.ReportRepository,
	auditRepo store.AuditRepository,
	messenger messaging.Messenger,
	publisher EventPublisher,
	telegram config.TelegramConfig,
	logger *core.ZapLogger,
) DeletionService {
	return &deletionService{
		gw:           gw,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		reactionRepo: reactionRepo,
		reportRepo:   reportRepo,
		auditRepo:    auditRepo,
		messenger:    messenger,
		publisher:    publisher,
		telegram:     telegram,
		logger:       logger,
	}
}

func (s *deletionService) DeletePost(ctx context.Context, postID uint64, adminID int64) (*vo.DeletionStats, error) {
	stats := &vo.DeletionStats{}
	var post *entities.Post

	err := s.gw.Transaction(ctx, func(tx *gorm.DB) error {
		p, err := s.postRepo.GetPostByID(ctx, tx, postID)
		if err != nil {
			return err
		}
		post = p

		commentIDs, err := s.commentRepo.ListIDsByPost(ctx, tx, postID)
		if err != nil {
			return err
		}
		n, err := s.reactionRepo.DeleteForTargets(ctx, tx, enums.TargetComment, commentIDs)
		if err != nil {
			return err
		}
		stats.ReactionsDeleted += n
		if n, err = s.reportRepo.DeleteForTargets(ctx, tx, enums.TargetComment, commentIDs); err != nil {
			return err
		}
		stats.ReportsDeleted += n
		if stats.CommentsDeleted, err = s.commentRepo.DeleteByIDs(ctx, tx, commentIDs); err != nil {
			return err
		}

		postIDs := []uint64{postID}
		if n, err = s.reportRepo.DeleteForTargets(ctx, tx, enums.TargetPost, postIDs); err != nil {
			return err
		}
		stats.ReportsDeleted += n
		if n, err = s.reactionRepo.DeleteForTargets(ctx, tx, enums.TargetPost, postIDs); err != nil {
			return err
		}
		stats.ReactionsDeleted += n

		deleted, err := s.postRepo.DeletePost(ctx, tx, postID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return myErrors.Conflict(fmt.Sprintf("Post #%d was deleted concurrently by another admin.", postID))
		}

		details := map[string]interface{}{
			"content_preview": truncateRunes(p.Content, constant.ContentPreviewLength),
			"stats":           stats.ToMap(),
		}
		if p.PostNumber != nil {
			details["post_number"] = *p.PostNumber
		}
		s.auditInSavepoint(ctx, tx, adminID, enums.ActionDeletePost, enums.TargetPost, postID, details)
		return nil
	})
	if err != nil {
		return nil, s.failed("删除帖子", postID, adminID, err)
	}
	s.logger.Info("帖子已删除",
		zap.Uint64("postID", postID),
		zap.Int64("adminID", adminID),
		zap.Int64("comments", stats.CommentsDeleted),
		zap.Int64("reactions", stats.ReactionsDeleted),
		zap.Int64("reports", stats.ReportsDeleted))

	if post.ChannelMessageID != nil && s.telegram.ChannelID != 0 {
		ref := messaging.MessageRef{ChatID: s.telegram.ChannelID, MessageID: int(*post.ChannelMessageID)}
		if err := s.messenger.Delete(ctx, ref); err != nil {
			s.logger.Warn("删除频道消息失败", zap.Uint64("postID", postID), zap.Int64("messageID", *post.ChannelMessageID), zap.Error(err))
		}
	}
	s.emitDeleted(ctx, enums.TargetPost, postID, adminID, stats.ToMap())
	return stats, nil
}

func (s *deletionService) DeleteComment(ctx context.Context, commentID uint64, adminID int64) (*vo.DeletionStats, error) {
	stats := &vo.DeletionStats{}

	err := s.gw.Transaction(ctx, func(tx *gorm.DB) error {
		comment, err := s.commentRepo.GetCommentByID(ctx, tx, commentID)
		if err != nil {
			return err
		}
		replyIDs, err := s.commentRepo.ListReplyIDs(ctx, tx, commentID)
		if err != nil {
			return err
		}
		all := append([]uint64{commentID}, replyIDs...)

		if stats.ReactionsDeleted, err = s.reactionRepo.DeleteForTargets(ctx, tx, enums.TargetComment, all); err != nil {
			return err
		}
		if stats.ReportsDeleted, err = s.reportRepo.DeleteForTargets(ctx, tx, enums.TargetComment, all); err != nil {
			return err
		}
		if stats.RepliesDeleted, err = s.commentRepo.DeleteByIDs(ctx, tx, replyIDs); err != nil {
			return err
		}
		if stats.CommentsDeleted, err = s.commentRepo.DeleteByIDs(ctx, tx, []uint64{commentID}); err != nil {
			return err
		}
		if stats.CommentsDeleted == 0 {
			return myErrors.Conflict(fmt.Sprintf("Comment #%d was deleted concurrently by another admin.", commentID))
		}

		s.auditInSavepoint(ctx, tx, adminID, enums.ActionDeleteComment, enums.TargetComment, commentID, map[string]interface{}{
			"post_id":         comment.PostID,
			"content_preview": truncateRunes(comment.Content, constant.ContentPreviewLength),
			"stats":           stats.ToMap(),
		})
		return nil
	})
	if err != nil {
		return nil, s.failed("删除评论", commentID, adminID, err)
	}
	s.logger.Info("评论已删除",
		zap.Uint64("commentID", commentID),
		zap.Int64("adminID", adminID),
		zap.Int64("replies", stats.RepliesDeleted),
		zap.Int64("reports", stats.ReportsDeleted))
	s.emitDeleted(ctx, enums.TargetComment, commentID, adminID, stats.ToMap())
	return stats, nil
}

func (s *deletionService) ReplaceCommentWithMessage(ctx context.Context, commentID uint64, adminID int64, text string) (*vo.ReplacementStats, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = constant.RemovedCommentText
	}
	stats := &vo.ReplacementStats{}

	err := s.gw.Transaction(ctx, func(tx *gorm.DB) error {
		comment, err := s.commentRepo.GetCommentByID(ctx, tx, commentID)
		if err != nil {
			return err
		}
		replyIDs, err := s.commentRepo.ListReplyIDs(ctx, tx, commentID)
		if err != nil {
			return err
		}

		if stats.CommentsReplaced, err = s.commentRepo.ReplaceContent(ctx, tx, []uint64{commentID}, text); err != nil {
			return err
		}
		if stats.CommentsReplaced == 0 {
			return myErrors.Conflict(fmt.Sprintf("Comment #%d was deleted concurrently by another admin.", commentID))
		}
		if stats.RepliesReplaced, err = s.commentRepo.ReplaceContent(ctx, tx, replyIDs, constant.RemovedReplyText); err != nil {
			return err
		}
		all := append([]uint64{commentID}, replyIDs...)
		if stats.ReportsCleared, err = s.reportRepo.DeleteForTargets(ctx, tx, enums.TargetComment, all); err != nil {
			return err
		}

		s.auditInSavepoint(ctx, tx, adminID, enums.ActionReplaceComment, enums.TargetComment, commentID, map[string]interface{}{
			"post_id":          comment.PostID,
			"original_preview": truncateRunes(comment.Content, constant.ContentPreviewLength),
			"replacement":      text,
			"stats":            stats.ToMap(),
		})
		return nil
	})
	if err != nil {
		return nil, s.failed("替换评论", commentID, adminID, err)
	}
	s.logger.Info("评论已替换",
		zap.Uint64("commentID", commentID),
		zap.Int64("adminID", adminID),
		zap.Int64("replies", stats.RepliesReplaced),
		zap.Int64("reportsCleared", stats.ReportsCleared))
	return stats, nil
}

func (s *deletionService) ClearReports(ctx context.Context, targetType enums.TargetType, targetID uint64, adminID *int64) (*vo.ClearReportsResult, error) {
	if !targetType.Valid() {
		return nil, myErrors.Validation(fmt.Sprintf("Invalid target type %q.", targetType))
	}
	actor := constant.SystemAdminID
	if adminID != nil {
		actor = *adminID
	}

	result := &vo.ClearReportsResult{}
	err := s.gw.Transaction(ctx, func(tx *gorm.DB) error {
		n, err := s.reportRepo.DeleteForTargets(ctx, tx, targetType, []uint64{targetID})
		if err != nil {
			return err
		}
		result.Cleared = n
		s.auditInSavepoint(ctx, tx, actor, enums.ActionClearReports, targetType, targetID, map[string]interface{}{
			"reports_cleared": n,
		})
		return nil
	})
	if err != nil {
		return nil, s.failed("清除举报", targetID, actor, err)
	}
	s.logger.Info("举报已清除",
		zap.String("targetType", string(targetType)),
		zap.Uint64("targetID", targetID),
		zap.Int64("adminID", actor),
		zap.Int64("cleared", result.Cleared))
	return result, nil
}

func (s *deletionService) GetPostDeletionPreview(ctx context.Context, postID uint64) (*vo.PostDeletionPreview, error) {
	post, err := s.postRepo.GetPostByID(ctx, nil, postID)
	if err != nil {
		return nil, err
	}
	count, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("统计帖子(ID: %d)评论数失败: %w", postID, err)
	}
	return &vo.PostDeletionPreview{
		ID:               post.ID,
		ContentPreview:   truncateRunes(post.Content, constant.ContentPreviewLength),
		Category:         post.Category,
		Status:           string(post.Status),
		PostNumber:       post.PostNumber,
		ChannelMessageID: post.ChannelMessageID,
		CommentCount:     count,
		CreatedAt:        post.CreatedAt,
	}, nil
}

func (s *deletionService) GetCommentDeletionPreview(ctx context.Context, commentID uint64) (*vo.CommentDeletionPreview, error) {
	comment, err := s.commentRepo.GetCommentByID(ctx, nil, commentID)
	if err != nil {
		return nil, err
	}
	replies, err := s.commentRepo.CountReplies(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("统计评论(ID: %d)回复数失败: %w", commentID, err)
	}
	return &vo.CommentDeletionPreview{
		ID:              comment.ID,
		PostID:          comment.PostID,
		ContentPreview:  truncateRunes(comment.Content, constant.ContentPreviewLength),
		ParentCommentID: comment.ParentCommentID,
		ReplyCount:      replies,
		CreatedAt:       comment.CreatedAt,
	}, nil
}

// auditInSavepoint 审计失败只回滚到保存点，删除照常提交
func (s *deletionService) auditInSavepoint(ctx context.Context, tx *gorm.DB, adminID int64, action enums.AuditAction, targetType enums.TargetType, targetID uint64, details map[string]interface{}) {
	err := store.WithSavepoint(tx, "audit_log", func(sp *gorm.DB) error {
		return s.auditRepo.Append(ctx, sp, adminID, action, targetType, targetID, details)
	})
	if err != nil {
		s.logger.Warn("写入审计日志失败，删除继续",
			zap.String("action", string(action)),
			zap.Uint64("targetID", targetID),
			zap.Error(err))
	}
}

func (s *deletionService) emitDeleted(ctx context.Context, targetType enums.TargetType, targetID uint64, adminID int64, stats map[string]int64) {
	if err := s.publisher.PublishContentDeleted(ctx, newContentDeletedEvent(targetType, targetID, adminID, stats)); err != nil {
		s.logger.Warn("发送删除事件失败", zap.String("targetType", string(targetType)), zap.Uint64("targetID", targetID), zap.Error(err))
	}
}

// failed 记录失败分类并包装错误；分类只影响展示给管理员的提示
func (s *deletionService) failed(op string, targetID uint64, adminID int64, err error) error {
	kind := myErrors.Classify(err)
	fields := []zap.Field{
		zap.String("op", op),
		zap.Uint64("targetID", targetID),
		zap.Int64("adminID", adminID),
		zap.String("kind", string(kind)),
		zap.Error(err),
	}
	if kind == myErrors.KindNotFound || kind == myErrors.KindConflict {
		s.logger.Warn(op+"未执行", fields...)
	} else {
		s.logger.Error(op+"失败，事务已回滚", fields...)
	}
	return fmt.Errorf("%s(ID: %d)失败: %w", op, targetID, err)
}
