package dependencies

import (
	"context"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	appConfig "github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/repo/store"
)

// openDialector 按驱动类型构造 GORM 方言
func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case appConfig.DriverMySQL, "":
		return mysql.Open(dsn), nil
	case appConfig.DriverPostgres:
		return postgres.Open(dsn), nil
	case appConfig.DriverSQLite:
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("不支持的数据库驱动 %q", driver)
}

// InitDatabase 连接主库（带重试），配置读写分离和连接池，完成迁移和等级定义初始化
func InitDatabase(cfg *appConfig.ConfessionConfig, logger *core.ZapLogger) (*gorm.DB, error) {
	dbCfg := cfg.DatabaseConfig
	if dbCfg.Write.DSN == "" {
		return nil, fmt.Errorf("主数据库 DSN (databaseConfig.write.dsn) 未配置")
	}
	writeDialector, err := openDialector(dbCfg.Driver, dbCfg.Write.DSN)
	if err != nil {
		return nil, err
	}
	gormConfig := &gorm.Config{Logger: core.NewGormLogger(logger, cfg.GormLogConfig)}

	maxRetries := dbCfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	retryInterval := 2 * time.Second

	var db *gorm.DB
	logger.Info("开始连接主数据库...", zap.String("driver", dbCfg.Driver))
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(writeDialector, gormConfig)
		if err == nil {
			err = ping(db)
			if err == nil {
				break
			}
		}
		logger.Warn("无法连接到主数据库，尝试重试", zap.Int("retry", i+1), zap.Int("maxRetries", maxRetries), zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("无法连接到主数据库: %w", err)
	}
	logger.Info("成功连接到主数据库")

	replicas := make([]gorm.Dialector, 0, len(dbCfg.Read))
	for i, replicaCfg := range dbCfg.Read {
		if replicaCfg.DSN == "" {
			logger.Warn("发现空的从库 DSN 配置，已跳过", zap.Int("index", i))
			continue
		}
		d, err := openDialector(dbCfg.Driver, replicaCfg.DSN)
		if err != nil {
			return nil, err
		}
		replicas = append(replicas, d)
	}
	if len(replicas) > 0 {
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Sources:  []gorm.Dialector{writeDialector},
			Replicas: replicas,
			Policy:   dbresolver.StrictRoundRobinPolicy(),
		})); err != nil {
			return nil, fmt.Errorf("配置 GORM 读写分离失败: %w", err)
		}
		logger.Info("已启用读写分离", zap.Int("从库数量", len(replicas)))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("无法获取数据库对象: %w", err)
	}
	maxIdle, maxOpen, maxLife := dbCfg.SharedMaxIdleConns, dbCfg.SharedMaxOpenConns, dbCfg.SharedConnMaxLifetime
	if dbCfg.Write.MaxIdleConns != nil {
		maxIdle = *dbCfg.Write.MaxIdleConns
	}
	if dbCfg.Write.MaxOpenConns != nil {
		maxOpen = *dbCfg.Write.MaxOpenConns
	}
	if dbCfg.Write.ConnMaxLifetime != nil {
		maxLife = *dbCfg.Write.ConnMaxLifetime
	}
	// sqlite 只有一把库级写锁
	if dbCfg.Driver == appConfig.DriverSQLite {
		maxOpen = 1
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(maxLife) * time.Second)
	logger.Info("配置数据库连接池",
		zap.Int("最大空闲连接数", maxIdle),
		zap.Int("最大打开连接数", maxOpen),
		zap.Int("连接最大生命周期(秒)", maxLife))

	logger.Info("开始执行数据库自动迁移...")
	if err := db.AutoMigrate(store.AllModels()...); err != nil {
		return nil, fmt.Errorf("数据库自动迁移失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.NewRankingRepository(db, logger).SeedRankDefinitions(ctx, entities.DefaultRankDefinitions()); err != nil {
		return nil, fmt.Errorf("初始化等级定义失败: %w", err)
	}
	logger.Info("数据库初始化完成")
	return db, nil
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
