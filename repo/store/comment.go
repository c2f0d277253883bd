package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/myErrors"
)

// CommentRepository 评论的持久化操作
type CommentRepository interface {
	CreateComment(ctx context.Context, db *gorm.DB, comment *entities.Comment) error

	// GetCommentByID 未找到返回 myErrors.ErrNotFound
	GetCommentByID(ctx context.Context, db *gorm.DB, id uint64) (*entities.Comment, error)

	// ListIDsByPost 帖子下全部评论（含回复）的 ID
	ListIDsByPost(ctx context.Context, db *gorm.DB, postID uint64) ([]uint64, error)

	// ListReplyIDs 直接回复某条评论的评论 ID
	ListReplyIDs(ctx context.Context, db *gorm.DB, commentID uint64) ([]uint64, error)

	// DeleteByIDs 批量删除，返回删除行数
	DeleteByIDs(ctx context.Context, db *gorm.DB, ids []uint64) (int64, error)

	// ReplaceContent 把评论正文替换为占位文本并标记
	ReplaceContent(ctx context.Context, db *gorm.DB, ids []uint64, text string) (int64, error)

	CountByPost(ctx context.Context, postID uint64) (int64, error)
	CountReplies(ctx context.Context, commentID uint64) (int64, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

type commentRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewCommentRepository 构造 CommentRepository
func NewCommentRepository(db *gorm.DB, logger *core.ZapLogger) CommentRepository {
	return &commentRepository{db: db, logger: logger}
}

func (r *commentRepository) CreateComment(ctx context.Context, db *gorm.DB, comment *entities.Comment) error {
	return conn(ctx, r.db, db).Create(comment).Error
}

func (r *commentRepository) GetCommentByID(ctx context.Context, db *gorm.DB, id uint64) (*entities.Comment, error) {
	var comment entities.Comment
	err := conn(ctx, r.db, db).Where("id = ?", id).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, myErrors.NotFound(fmt.Sprintf("Comment #%d not found.", id))
		}
		r.logger.Error("查询评论失败", zap.Uint64("commentID", id), zap.Error(err))
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListIDsByPost(ctx context.Context, db *gorm.DB, postID uint64) ([]uint64, error) {
	var ids []uint64
	err := conn(ctx, r.db, db).Model(&entities.Comment{}).
		Where("post_id = ?", postID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) ListReplyIDs(ctx context.Context, db *gorm.DB, commentID uint64) ([]uint64, error) {
	var ids []uint64
	err := conn(ctx, r.db, db).Model(&entities.Comment{}).
		Where("parent_comment_id = ?", commentID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, db *gorm.DB, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db, db).Where("id IN ?", ids).Delete(&entities.Comment{})
	return result.RowsAffected, result.Error
}

func (r *commentRepository) ReplaceContent(ctx context.Context, db *gorm.DB, ids []uint64, text string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db, db).Model(&entities.Comment{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"content": text, "flagged": true})
	return result.RowsAffected, result.Error
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *commentRepository) CountReplies(ctx context.Context, commentID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Comment{}).Where("parent_comment_id = ?", commentID).Count(&count).Error
	return count, err
}

func (r *commentRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Comment{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
