package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/myErrors"
)

// PostRepository 投稿的持久化操作。
// 带 db 参数的方法在调用方的事务中执行，db 为 nil 时使用仓库自身的连接。
type PostRepository interface {
	// CreatePost 写入一条新的投稿（默认 pending）
	CreatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error

	// GetPostByID 按 ID 查询，未找到返回 myErrors.ErrNotFound
	GetPostByID(ctx context.Context, db *gorm.DB, id uint64) (*entities.Post, error)

	// LockPostByID 在事务内以 FOR UPDATE 读取投稿（sqlite 下退化为普通读取，写锁由数据库级锁保证）
	LockPostByID(ctx context.Context, db *gorm.DB, id uint64) (*entities.Post, error)

	// ClaimApproval 条件更新: 只有 status 仍为 pending 时才写入 approved 及发布编号。
	// - 返回 false 表示已被其他管理员处理
	ClaimApproval(ctx context.Context, db *gorm.DB, id uint64, adminID int64, postNumber int64, at time.Time) (bool, error)

	// ClaimRejection 条件更新: 只有 status 仍为 pending 时才写入 rejected 及原因
	ClaimRejection(ctx context.Context, db *gorm.DB, id uint64, adminID int64, reason string, at time.Time) (bool, error)

	// SetChannelMessageID 记录频道消息 ID，发布成功后调用
	SetChannelMessageID(ctx context.Context, id uint64, messageID int64) error

	// SetFlagged 标记投稿，重复标记不报错
	SetFlagged(ctx context.Context, id uint64) error

	// DeletePost 物理删除投稿本身，返回删除行数
	DeletePost(ctx context.Context, db *gorm.DB, id uint64) (int64, error)

	// MaxPostNumber 当前已分配的最大发布编号，没有时为 0
	MaxPostNumber(ctx context.Context, db *gorm.DB) (int64, error)

	// CountApprovedByUser 用户已通过的投稿数
	CountApprovedByUser(ctx context.Context, userID int64) (int64, error)

	// ListPending 按提交顺序列出待审核的投稿
	ListPending(ctx context.Context, limit int) ([]*entities.Post, error)
}

type postRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewPostRepository 构造 PostRepository
func NewPostRepository(db *gorm.DB, logger *core.ZapLogger) PostRepository {
	return &postRepository{db: db, logger: logger}
}

func (r *postRepository) CreatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error {
	if post.Status == "" {
		post.Status = enums.StatusPending
	}
	return conn(ctx, r.db, db).Create(post).Error
}

func (r *postRepository) GetPostByID(ctx context.Context, db *gorm.DB, id uint64) (*entities.Post, error) {
	var post entities.Post
	err := conn(ctx, r.db, db).Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, myErrors.NotFound(fmt.Sprintf("Post #%d not found.", id))
		}
		r.logger.Error("查询投稿失败", zap.Uint64("postID", id), zap.Error(err))
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) LockPostByID(ctx context.Context, db *gorm.DB, id uint64) (*entities.Post, error) {
	var post entities.Post
	err := conn(ctx, r.db, db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, myErrors.NotFound(fmt.Sprintf("Post #%d not found.", id))
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ClaimApproval(ctx context.Context, db *gorm.DB, id uint64, adminID int64, postNumber int64, at time.Time) (bool, error) {
	return UpdateIf(conn(ctx, r.db, db), &entities.Post{}, id,
		Guard{"status": enums.StatusPending},
		map[string]interface{}{
			"status":      enums.StatusApproved,
			"approved_by": adminID,
			"approved_at": at,
			"post_number": postNumber,
		})
}

func (r *postRepository) ClaimRejection(ctx context.Context, db *gorm.DB, id uint64, adminID int64, reason string, at time.Time) (bool, error) {
	return UpdateIf(conn(ctx, r.db, db), &entities.Post{}, id,
		Guard{"status": enums.StatusPending},
		map[string]interface{}{
			"status":              enums.StatusRejected,
			"rejection_reason":    reason,
			"rejected_by_admin":   adminID,
			"rejection_timestamp": at,
		})
}

func (r *postRepository) SetChannelMessageID(ctx context.Context, id uint64, messageID int64) error {
	return r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("id = ?", id).
		Update("channel_message_id", messageID).Error
}

func (r *postRepository) SetFlagged(ctx context.Context, id uint64) error {
	// 先确认存在：MySQL 对值未变化的行 RowsAffected 为 0，不能用它判断是否存在
	if _, err := r.GetPostByID(ctx, nil, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("id = ?", id).
		Update("flagged", true).Error
}

func (r *postRepository) DeletePost(ctx context.Context, db *gorm.DB, id uint64) (int64, error) {
	result := conn(ctx, r.db, db).Where("id = ?", id).Delete(&entities.Post{})
	return result.RowsAffected, result.Error
}

func (r *postRepository) MaxPostNumber(ctx context.Context, db *gorm.DB) (int64, error) {
	var max *int64
	err := conn(ctx, r.db, db).Model(&entities.Post{}).
		Select("MAX(post_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *postRepository) CountApprovedByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("user_id = ? AND status = ?", userID, enums.StatusApproved).
		Count(&count).Error
	return count, err
}

func (r *postRepository) ListPending(ctx context.Context, limit int) ([]*entities.Post, error) {
	var posts []*entities.Post
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.StatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
