package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/myErrors"
)

// StreakUpdate 本次积分变动需要写入的连续天数
type StreakUpdate struct {
	ConsecutiveDays int
	At              time.Time
}

// UserDrift 汇总值与流水合计不一致的用户
type UserDrift struct {
	UserID      int64
	TotalPoints int
	LedgerSum   int
}

// DriftPage 一页对账扫描结果
type DriftPage struct {
	Drifted    []UserDrift
	Scanned    int
	LastUserID int64
}

// RankingRepository 积分流水、用户汇总和等级定义
type RankingRepository interface {
	// EnsureRanking 用户汇总行不存在时创建（默认最低等级），返回是否新建
	EnsureRanking(ctx context.Context, db *gorm.DB, userID int64) (bool, error)

	// LockRanking 在事务内锁定用户汇总行，同一用户的积分变动在这里串行化
	LockRanking(ctx context.Context, db *gorm.DB, userID int64) (*entities.UserRanking, error)

	// GetRanking 读取用户汇总，未找到返回 myErrors.ErrNotFound
	GetRanking(ctx context.Context, userID int64) (*entities.UserRanking, error)

	// InsertTransaction 追加积分流水。带幂等键且已存在时返回 false，不写入
	InsertTransaction(ctx context.Context, db *gorm.DB, txn *entities.PointTransaction) (bool, error)

	// ApplyDelta 用 SQL 表达式累加总分/周分/月分，streak 不为 nil 时同时写入连续天数
	ApplyDelta(ctx context.Context, db *gorm.DB, userID int64, delta int, streak *StreakUpdate) error

	// SetRanks 写入当前等级与历史最高等级
	SetRanks(ctx context.Context, db *gorm.DB, userID int64, currentRankID, highestRankID int) error

	// FindRankForPoints 返回积分所在的等级区间
	FindRankForPoints(ctx context.Context, db *gorm.DB, points int) (*entities.RankDefinition, error)

	// GetRankDefinition 按 ID 读取等级定义
	GetRankDefinition(ctx context.Context, rankID int) (*entities.RankDefinition, error)

	// SeedRankDefinitions 写入缺失的等级定义，已存在的不覆盖
	SeedRankDefinitions(ctx context.Context, defs []entities.RankDefinition) error

	// SetAchievementCount 刷新用户的成就数
	SetAchievementCount(ctx context.Context, db *gorm.DB, userID int64, count int64) error

	// ResetWeeklyPoints / ResetMonthlyPoints 周期积分清零，返回影响行数
	ResetWeeklyPoints(ctx context.Context) (int64, error)
	ResetMonthlyPoints(ctx context.Context) (int64, error)

	// ListTransactions 用户最近的积分流水
	ListTransactions(ctx context.Context, userID int64, limit int) ([]*entities.PointTransaction, error)

	// FindDrift 以 user_id 游标分页，找出汇总值与流水合计不一致的用户
	FindDrift(ctx context.Context, afterUserID int64, limit int) (*DriftPage, error)

	// SumTransactions 用户全部流水的合计
	SumTransactions(ctx context.Context, db *gorm.DB, userID int64) (int, error)

	// SetTotalPoints 直接覆盖总分，仅用于对账修复
	SetTotalPoints(ctx context.Context, db *gorm.DB, userID int64, total int) error
}

type rankingRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewRankingRepository 构造 RankingRepository
func NewRankingRepository(db *gorm.DB, logger *core.ZapLogger) RankingRepository {
	return &rankingRepository{db: db, logger: logger}
}

func (r *rankingRepository) EnsureRanking(ctx context.Context, db *gorm.DB, userID int64) (bool, error) {
	row := &entities.UserRanking{UserID: userID, CurrentRankID: 1, HighestRankAchieved: 1}
	return InsertIgnore(conn(ctx, r.db, db), row, "user_id")
}

func (r *rankingRepository) LockRanking(ctx context.Context, db *gorm.DB, userID int64) (*entities.UserRanking, error) {
	var ranking entities.UserRanking
	err := conn(ctx, r.db, db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Take(&ranking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, myErrors.NotFound(fmt.Sprintf("No ranking found for user %d.", userID))
		}
		return nil, err
	}
	return &ranking, nil
}

func (r *rankingRepository) GetRanking(ctx context.Context, userID int64) (*entities.UserRanking, error) {
	var ranking entities.UserRanking
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&ranking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, myErrors.NotFound(fmt.Sprintf("No ranking found for user %d.", userID))
		}
		return nil, err
	}
	return &ranking, nil
}

func (r *rankingRepository) InsertTransaction(ctx context.Context, db *gorm.DB, txn *entities.PointTransaction) (bool, error) {
	tx := conn(ctx, r.db, db)
	if txn.IdempotencyKey == nil {
		if err := tx.Create(txn).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	return InsertIgnore(tx, txn, "idempotency_key")
}

func (r *rankingRepository) ApplyDelta(ctx context.Context, db *gorm.DB, userID int64, delta int, streak *StreakUpdate) error {
	updates := map[string]interface{}{
		"total_points":   gorm.Expr("total_points + ?", delta),
		"weekly_points":  gorm.Expr("weekly_points + ?", delta),
		"monthly_points": gorm.Expr("monthly_points + ?", delta),
	}
	if streak != nil {
		updates["consecutive_days"] = streak.ConsecutiveDays
		updates["last_activity"] = streak.At
	}
	return conn(ctx, r.db, db).Model(&entities.UserRanking{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}

func (r *rankingRepository) SetRanks(ctx context.Context, db *gorm.DB, userID int64, currentRankID, highestRankID int) error {
	return conn(ctx, r.db, db).Model(&entities.UserRanking{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"current_rank_id":       currentRankID,
			"highest_rank_achieved": highestRankID,
		}).Error
}

func (r *rankingRepository) FindRankForPoints(ctx context.Context, db *gorm.DB, points int) (*entities.RankDefinition, error) {
	var def entities.RankDefinition
	err := conn(ctx, r.db, db).
		Where("min_points <= ? AND (max_points IS NULL OR max_points >= ?)", points, points).
		Order("min_points DESC").
		Take(&def).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 负分落在所有区间之下，归入最低等级
			err = conn(ctx, r.db, db).Order("min_points ASC").Take(&def).Error
			if err == nil {
				return &def, nil
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, myErrors.NotFound("No rank definitions configured.")
			}
		}
		return nil, err
	}
	return &def, nil
}

func (r *rankingRepository) GetRankDefinition(ctx context.Context, rankID int) (*entities.RankDefinition, error) {
	var def entities.RankDefinition
	err := r.db.WithContext(ctx).Where("rank_id = ?", rankID).Take(&def).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, myErrors.NotFound(fmt.Sprintf("Rank %d not defined.", rankID))
		}
		return nil, err
	}
	return &def, nil
}

func (r *rankingRepository) SeedRankDefinitions(ctx context.Context, defs []entities.RankDefinition) error {
	for i := range defs {
		if _, err := InsertIgnore(r.db.WithContext(ctx), &defs[i], "rank_id"); err != nil {
			return err
		}
	}
	return nil
}

func (r *rankingRepository) SetAchievementCount(ctx context.Context, db *gorm.DB, userID int64, count int64) error {
	return conn(ctx, r.db, db).Model(&entities.UserRanking{}).
		Where("user_id = ?", userID).
		Update("total_achievements", count).Error
}

func (r *rankingRepository) ResetWeeklyPoints(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entities.UserRanking{}).
		Where("weekly_points <> 0").
		Update("weekly_points", 0)
	return result.RowsAffected, result.Error
}

func (r *rankingRepository) ResetMonthlyPoints(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entities.UserRanking{}).
		Where("monthly_points <> 0").
		Update("monthly_points", 0)
	return result.RowsAffected, result.Error
}

func (r *rankingRepository) ListTransactions(ctx context.Context, userID int64, limit int) ([]*entities.PointTransaction, error) {
	var txns []*entities.PointTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}

func (r *rankingRepository) FindDrift(ctx context.Context, afterUserID int64, limit int) (*DriftPage, error) {
	var rankings []entities.UserRanking
	err := r.db.WithContext(ctx).
		Select("user_id", "total_points").
		Where("user_id > ?", afterUserID).
		Order("user_id ASC").
		Limit(limit).
		Find(&rankings).Error
	if err != nil {
		return nil, err
	}
	page := &DriftPage{Scanned: len(rankings), LastUserID: afterUserID}
	if len(rankings) == 0 {
		return page, nil
	}
	page.LastUserID = rankings[len(rankings)-1].UserID

	ids := make([]int64, 0, len(rankings))
	for _, rk := range rankings {
		ids = append(ids, rk.UserID)
	}
	var sums []struct {
		UserID int64
		Total  int
	}
	err = r.db.WithContext(ctx).Model(&entities.PointTransaction{}).
		Select("user_id, COALESCE(SUM(points_change), 0) AS total").
		Where("user_id IN ?", ids).
		Group("user_id").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	ledger := make(map[int64]int, len(sums))
	for _, sum := range sums {
		ledger[sum.UserID] = sum.Total
	}

	for _, rk := range rankings {
		if sum := ledger[rk.UserID]; sum != rk.TotalPoints {
			page.Drifted = append(page.Drifted, UserDrift{UserID: rk.UserID, TotalPoints: rk.TotalPoints, LedgerSum: sum})
		}
	}
	return page, nil
}

func (r *rankingRepository) SumTransactions(ctx context.Context, db *gorm.DB, userID int64) (int, error) {
	var total int
	err := conn(ctx, r.db, db).Model(&entities.PointTransaction{}).
		Select("COALESCE(SUM(points_change), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

func (r *rankingRepository) SetTotalPoints(ctx context.Context, db *gorm.DB, userID int64, total int) error {
	return conn(ctx, r.db, db).Model(&entities.UserRanking{}).
		Where("user_id = ?", userID).
		Update("total_points", total).Error
}
