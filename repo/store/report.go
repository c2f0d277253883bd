package store

import (
	"context"

	"github.com/Xushengqwer/go-common/core"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
)

// ReportRepository 举报记录的持久化操作
type ReportRepository interface {
	CreateReport(ctx context.Context, db *gorm.DB, report *entities.Report) error

	// DeleteForTargets 删除指向一组对象的全部举报
	DeleteForTargets(ctx context.Context, db *gorm.DB, targetType enums.TargetType, ids []uint64) (int64, error)

	// CountForTargets 统计指向一组对象的举报数
	CountForTargets(ctx context.Context, targetType enums.TargetType, ids []uint64) (int64, error)
}

type reportRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewReportRepository 构造 ReportRepository
func NewReportRepository(db *gorm.DB, logger *core.ZapLogger) ReportRepository {
	return &reportRepository{db: db, logger: logger}
}

func (r *reportRepository) CreateReport(ctx context.Context, db *gorm.DB, report *entities.Report) error {
	return conn(ctx, r.db, db).Create(report).Error
}

func (r *reportRepository) DeleteForTargets(ctx context.Context, db *gorm.DB, targetType enums.TargetType, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db, db).
		Where("target_type = ? AND target_id IN ?", targetType, ids).
		Delete(&entities.Report{})
	return result.RowsAffected, result.Error
}

func (r *reportRepository) CountForTargets(ctx context.Context, targetType enums.TargetType, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Report{}).
		Where("target_type = ? AND target_id IN ?", targetType, ids).
		Count(&count).Error
	return count, err
}
