package store

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway 存储网关：对上层只暴露事务边界和连接，方言差异由 GORM Dialector 吸收。
// mysql / postgres (serial 自增) 与 sqlite (rowid 自增) 在这里是可互换的实现。
type Gateway interface {
	// Conn 返回绑定了 ctx 的连接，用于事务外的读写
	Conn(ctx context.Context) *gorm.DB

	// Transaction 在一个事务中执行 fn，fn 返回错误或 panic 时整体回滚。
	// 在 fn 内部再次调用 tx.Transaction 会使用 SAVEPOINT，可用于“失败不影响主事务”的尽力写入。
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Dialect 返回当前方言名称: mysql / postgres / sqlite
	Dialect() string
}

type gormGateway struct {
	db *gorm.DB
}

// NewGateway 基于已初始化的 *gorm.DB 构建网关
func NewGateway(db *gorm.DB) Gateway {
	return &gormGateway{db: db}
}

func (g *gormGateway) Conn(ctx context.Context) *gorm.DB {
	return g.db.WithContext(ctx)
}

func (g *gormGateway) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func (g *gormGateway) Dialect() string {
	return g.db.Dialector.Name()
}

// Guard 条件更新的前置条件，key 为列名，value 为期望的当前值
type Guard map[string]interface{}

// UpdateIf 条件更新: UPDATE ... SET updates WHERE id = ? AND <guard>。
// 返回 applied 表示是否真的有行被更新；两个并发调用中只有一个能看到 applied = true。
// 注意 updates 必须至少改变一个列的值，MySQL 对未变化的行不计入 RowsAffected。
func UpdateIf(tx *gorm.DB, model interface{}, id interface{}, guard Guard, updates map[string]interface{}) (bool, error) {
	query := tx.Model(model).Where("id = ?", id)

	// 固定列顺序，保证生成的 SQL 稳定
	cols := make([]string, 0, len(guard))
	for col := range guard {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		query = query.Where(clause.Eq{Column: clause.Column{Name: col}, Value: guard[col]})
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// InsertIgnore 插入一行，违反唯一约束时静默跳过。
// postgres/sqlite 生成 ON CONFLICT DO NOTHING，mysql 生成 ON DUPLICATE KEY UPDATE 空操作。
func InsertIgnore(tx *gorm.DB, value interface{}, conflictColumns ...string) (bool, error) {
	onConflict := clause.OnConflict{DoNothing: true}
	for _, col := range conflictColumns {
		onConflict.Columns = append(onConflict.Columns, clause.Column{Name: col})
	}
	result := tx.Clauses(onConflict).Create(value)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Upsert 插入一行，冲突时只更新 updateColumns
func Upsert(tx *gorm.DB, value interface{}, conflictColumns []string, updateColumns []string) error {
	onConflict := clause.OnConflict{DoUpdates: clause.AssignmentColumns(updateColumns)}
	for _, col := range conflictColumns {
		onConflict.Columns = append(onConflict.Columns, clause.Column{Name: col})
	}
	return tx.Clauses(onConflict).Create(value).Error
}

// conn 有事务时使用事务，否则退回到普通连接
func conn(ctx context.Context, db *gorm.DB, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// WithSavepoint 在 SAVEPOINT 内执行 fn，fn 失败时只回滚到该保存点并返回错误，外层事务仍可提交。
// postgres 中任意语句失败都会使整个事务进入 aborted 状态，尽力写入（如审计日志）必须这样包裹。
func WithSavepoint(tx *gorm.DB, name string, fn func(tx *gorm.DB) error) error {
	if err := tx.SavePoint(name).Error; err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.RollbackTo(name).Error; rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return nil
}
