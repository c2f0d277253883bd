package store

import (
	"context"
	"encoding/json"

	"github.com/Xushengqwer/go-common/core"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
)

// AuditRepository 管理员操作审计日志，只追加
type AuditRepository interface {
	// Append 写入一条审计记录，details 序列化为 JSON
	Append(ctx context.Context, db *gorm.DB, adminID int64, action enums.AuditAction, targetType enums.TargetType, targetID uint64, details map[string]interface{}) error

	// ListByTarget 按时间顺序返回某个对象上的审计记录
	ListByTarget(ctx context.Context, targetType enums.TargetType, targetID uint64) ([]*entities.AdminAction, error)
}

type auditRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewAuditRepository 构造 AuditRepository
func NewAuditRepository(db *gorm.DB, logger *core.ZapLogger) AuditRepository {
	return &auditRepository{db: db, logger: logger}
}

func (r *auditRepository) Append(ctx context.Context, db *gorm.DB, adminID int64, action enums.AuditAction, targetType enums.TargetType, targetID uint64, details map[string]interface{}) error {
	payload := "{}"
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		payload = string(raw)
	}
	entry := &entities.AdminAction{
		AdminID:    adminID,
		ActionType: action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    payload,
	}
	return conn(ctx, r.db, db).Create(entry).Error
}

func (r *auditRepository) ListByTarget(ctx context.Context, targetType enums.TargetType, targetID uint64) ([]*entities.AdminAction, error) {
	var actions []*entities.AdminAction
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("id ASC").
		Find(&actions).Error
	return actions, err
}
