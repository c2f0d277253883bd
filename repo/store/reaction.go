package store

import (
	"context"

	"github.com/Xushengqwer/go-common/core"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
)

// ReactionRepository 反应记录的持久化操作
type ReactionRepository interface {
	// AddReaction 同一用户对同一对象只保留一条，重复写入返回 false
	AddReaction(ctx context.Context, db *gorm.DB, reaction *entities.Reaction) (bool, error)

	// DeleteForTargets 删除指向一组对象的全部反应
	DeleteForTargets(ctx context.Context, db *gorm.DB, targetType enums.TargetType, ids []uint64) (int64, error)

	// CountForTargets 统计指向一组对象的反应数
	CountForTargets(ctx context.Context, targetType enums.TargetType, ids []uint64) (int64, error)

	// CountByType 某个对象收到的指定类型反应数，例如帖子的 like 数
	CountByType(ctx context.Context, targetType enums.TargetType, id uint64, reactionType string) (int64, error)

	// CountGivenByUser 用户给出的反应总数
	CountGivenByUser(ctx context.Context, userID int64) (int64, error)
}

type reactionRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewReactionRepository 构造 ReactionRepository
func NewReactionRepository(db *gorm.DB, logger *core.ZapLogger) ReactionRepository {
	return &reactionRepository{db: db, logger: logger}
}

func (r *reactionRepository) AddReaction(ctx context.Context, db *gorm.DB, reaction *entities.Reaction) (bool, error) {
	return InsertIgnore(conn(ctx, r.db, db), reaction, "user_id", "target_type", "target_id")
}

func (r *reactionRepository) DeleteForTargets(ctx context.Context, db *gorm.DB, targetType enums.TargetType, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db, db).
		Where("target_type = ? AND target_id IN ?", targetType, ids).
		Delete(&entities.Reaction{})
	return result.RowsAffected, result.Error
}

func (r *reactionRepository) CountForTargets(ctx context.Context, targetType enums.TargetType, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Reaction{}).
		Where("target_type = ? AND target_id IN ?", targetType, ids).
		Count(&count).Error
	return count, err
}

func (r *reactionRepository) CountByType(ctx context.Context, targetType enums.TargetType, id uint64, reactionType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Reaction{}).
		Where("target_type = ? AND target_id = ? AND reaction_type = ?", targetType, id, reactionType).
		Count(&count).Error
	return count, err
}

func (r *reactionRepository) CountGivenByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Reaction{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
