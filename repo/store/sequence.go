package store

import (
	"context"

	"github.com/Xushengqwer/go-common/core"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/models/entities"
)

// SequenceRepository 命名序列，用于分配严格递增的发布编号
type SequenceRepository interface {
	// Next 在调用方事务中把序列加一并返回新值。
	// - 序列行不存在时先用 seed 的返回值初始化
	// - UPDATE 持有行锁直到事务结束，并发审核在这里排队；事务回滚则编号不被消耗
	Next(ctx context.Context, db *gorm.DB, name string, seed func(tx *gorm.DB) (int64, error)) (int64, error)
}

type sequenceRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewSequenceRepository 构造 SequenceRepository
func NewSequenceRepository(db *gorm.DB, logger *core.ZapLogger) SequenceRepository {
	return &sequenceRepository{db: db, logger: logger}
}

func (r *sequenceRepository) Next(ctx context.Context, db *gorm.DB, name string, seed func(tx *gorm.DB) (int64, error)) (int64, error) {
	tx := conn(ctx, r.db, db)

	affected, err := r.increment(tx, name)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		start, err := seed(tx)
		if err != nil {
			return 0, err
		}
		if _, err := InsertIgnore(tx, &entities.PostSequence{Name: name, Value: start}, "name"); err != nil {
			return 0, err
		}
		if _, err := r.increment(tx, name); err != nil {
			return 0, err
		}
	}

	var seq entities.PostSequence
	if err := tx.Where("name = ?", name).Take(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

func (r *sequenceRepository) increment(tx *gorm.DB, name string) (int64, error) {
	result := tx.Model(&entities.PostSequence{}).
		Where("name = ?", name).
		Update("value", gorm.Expr("value + 1"))
	return result.RowsAffected, result.Error
}
