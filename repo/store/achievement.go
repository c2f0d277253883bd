package store

import (
	"context"

	"github.com/Xushengqwer/go-common/core"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/models/entities"
)

// AchievementRepository 用户成就
type AchievementRepository interface {
	// Has 用户是否已获得某个成就
	Has(ctx context.Context, db *gorm.DB, userID int64, achievementType string) (bool, error)

	// Insert 写入成就，(user_id, achievement_type) 冲突时返回 false
	Insert(ctx context.Context, db *gorm.DB, achievement *entities.UserAchievement) (bool, error)

	// ListByUser 按获得时间倒序
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.UserAchievement, error)

	// ListTypes 用户已获得的成就类型集合
	ListTypes(ctx context.Context, userID int64) (map[string]bool, error)

	CountByUser(ctx context.Context, db *gorm.DB, userID int64) (int64, error)
}

type achievementRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewAchievementRepository 构造 AchievementRepository
func NewAchievementRepository(db *gorm.DB, logger *core.ZapLogger) AchievementRepository {
	return &achievementRepository{db: db, logger: logger}
}

func (r *achievementRepository) Has(ctx context.Context, db *gorm.DB, userID int64, achievementType string) (bool, error) {
	var count int64
	err := conn(ctx, r.db, db).Model(&entities.UserAchievement{}).
		Where("user_id = ? AND achievement_type = ?", userID, achievementType).
		Count(&count).Error
	return count > 0, err
}

func (r *achievementRepository) Insert(ctx context.Context, db *gorm.DB, achievement *entities.UserAchievement) (bool, error) {
	return InsertIgnore(conn(ctx, r.db, db), achievement, "user_id", "achievement_type")
}

func (r *achievementRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.UserAchievement, error) {
	var list []*entities.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("achieved_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *achievementRepository) ListTypes(ctx context.Context, userID int64) (map[string]bool, error) {
	var types []string
	err := r.db.WithContext(ctx).Model(&entities.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_type", &types).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(types))
	for _, t := range types {
		out[t] = true
	}
	return out, nil
}

func (r *achievementRepository) CountByUser(ctx context.Context, db *gorm.DB, userID int64) (int64, error) {
	var count int64
	err := conn(ctx, r.db, db).Model(&entities.UserAchievement{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
