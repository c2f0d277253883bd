package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/myErrors"
)

// AdminMessageRepository 用户私信的持久化操作
type AdminMessageRepository interface {
	Create(ctx context.Context, msg *entities.AdminMessage) error

	// GetByID 未找到返回 myErrors.ErrNotFound
	GetByID(ctx context.Context, id uint64) (*entities.AdminMessage, error)

	// ListPending 未处理的私信，最早的在前
	ListPending(ctx context.Context, limit int) ([]*entities.AdminMessage, error)

	// ClaimReply 条件更新: 只有 replied 仍为 false 时才写入回复。
	// - 返回 false 表示已被处理（其他管理员回复、标记已读或忽略）
	ClaimReply(ctx context.Context, id uint64, adminID int64, reply string, at time.Time) (bool, error)

	// MarkRead 标记为已处理，不写回复内容；已处理的返回 false
	MarkRead(ctx context.Context, id uint64, adminID int64, at time.Time) (bool, error)

	// IgnoreUser 把该用户所有未处理的私信标记为已处理，返回受影响行数
	IgnoreUser(ctx context.Context, userID int64, adminID int64, at time.Time) (int64, error)

	// History 用户最近的私信，最新的在前
	History(ctx context.Context, userID int64, limit int) ([]*entities.AdminMessage, error)
}

type adminMessageRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewAdminMessageRepository 构造 AdminMessageRepository
func NewAdminMessageRepository(db *gorm.DB, logger *core.ZapLogger) AdminMessageRepository {
	return &adminMessageRepository{db: db, logger: logger}
}

func (r *adminMessageRepository) Create(ctx context.Context, msg *entities.AdminMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		r.logger.Error("保存用户私信失败", zap.Int64("userID", msg.UserID), zap.Error(err))
		return err
	}
	return nil
}

func (r *adminMessageRepository) GetByID(ctx context.Context, id uint64) (*entities.AdminMessage, error) {
	var msg entities.AdminMessage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, myErrors.NotFound(fmt.Sprintf("Message #%d not found.", id))
		}
		return nil, err
	}
	return &msg, nil
}

func (r *adminMessageRepository) ListPending(ctx context.Context, limit int) ([]*entities.AdminMessage, error) {
	var msgs []*entities.AdminMessage
	err := r.db.WithContext(ctx).Where("replied = ?", false).
		Order("created_at ASC").Order("id ASC").Limit(limit).Find(&msgs).Error
	return msgs, err
}

func (r *adminMessageRepository) ClaimReply(ctx context.Context, id uint64, adminID int64, reply string, at time.Time) (bool, error) {
	return UpdateIf(r.db.WithContext(ctx), &entities.AdminMessage{}, id,
		Guard{"replied": false},
		map[string]interface{}{
			"replied":             true,
			"admin_reply":         reply,
			"replied_by_admin_id": adminID,
			"reply_timestamp":     at,
		})
}

func (r *adminMessageRepository) MarkRead(ctx context.Context, id uint64, adminID int64, at time.Time) (bool, error) {
	return UpdateIf(r.db.WithContext(ctx), &entities.AdminMessage{}, id,
		Guard{"replied": false},
		map[string]interface{}{
			"replied":             true,
			"replied_by_admin_id": adminID,
			"reply_timestamp":     at,
		})
}

func (r *adminMessageRepository) IgnoreUser(ctx context.Context, userID int64, adminID int64, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entities.AdminMessage{}).
		Where("user_id = ? AND replied = ?", userID, false).
		Updates(map[string]interface{}{
			"replied":             true,
			"replied_by_admin_id": adminID,
			"reply_timestamp":     at,
		})
	return result.RowsAffected, result.Error
}

func (r *adminMessageRepository) History(ctx context.Context, userID int64, limit int) ([]*entities.AdminMessage, error) {
	var msgs []*entities.AdminMessage
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").Limit(limit).Find(&msgs).Error
	return msgs, err
}
