// Package storetest 为各层测试提供迁移好的临时 sqlite 数据库
package storetest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/repo/store"
)

// NewDB 在 t.TempDir() 下创建数据库并完成迁移和等级定义初始化。
// 连接池限制为 1，sqlite 的写锁是库级别的，多连接只会带来 "database is locked"。
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, "?_busy_timeout=5000&_foreign_keys=on", 1)
}

// NewConcurrentDB 多连接的 WAL 数据库，事务以 BEGIN IMMEDIATE 开始并在 busy_timeout 内排队等待写锁。
// 用于验证真正并发的事务之间不会丢失更新。
func NewConcurrentDB(t testing.TB, maxConns int) *gorm.DB {
	t.Helper()
	return open(t, "?_journal_mode=WAL&_busy_timeout=10000&_txlock=immediate&_foreign_keys=on", maxConns)
}

func open(t testing.TB, params string, maxConns int) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.sqlite") + params
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(maxConns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(store.AllModels()...))
	for _, def := range entities.DefaultRankDefinitions() {
		def := def
		require.NoError(t, db.Create(&def).Error)
	}
	return db
}
