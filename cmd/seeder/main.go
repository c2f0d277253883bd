package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/dependencies"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/repo/store"
	"github.com/Xushengqwer/confession_service/service"
)

func main() {
	var (
		configFile string
		numPosts   int
		numUsers   int
		adminID    int64
		seed       int64
	)
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "配置文件路径")
	flag.IntVar(&numPosts, "n", 50, "要生成的投稿数量")
	flag.IntVar(&numUsers, "users", 20, "参与的用户数量")
	flag.Int64Var(&adminID, "admin", 1, "执行审核的管理员 ID")
	flag.Int64Var(&seed, "seed", 0, "随机种子，0 表示使用当前时间")
	flag.Parse()

	if numPosts <= 0 || numUsers <= 0 {
		fmt.Println("错误: 投稿数量和用户数量必须大于 0")
		os.Exit(1)
	}
	absConfigFile, err := filepath.Abs(configFile)
	if err != nil {
		absConfigFile = configFile
	}

	var cfg appConfig.ConfessionConfig
	if err := core.LoadConfig(absConfigFile, &cfg); err != nil {
		fmt.Printf("加载配置失败 (%s): %v\n", absConfigFile, err)
		os.Exit(1)
	}
	logger, err := core.NewZapLogger(cfg.ZapConfig)
	if err != nil {
		fmt.Printf("初始化 ZapLogger 失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Logger().Sync() }()

	db, err := dependencies.InitDatabase(&cfg, logger)
	if err != nil {
		logger.Fatal("初始化数据库失败 (Seeder)", zap.Error(err))
	}
	rdb, err := dependencies.InitRedis(&cfg.RedisConfig, logger)
	if err != nil {
		logger.Fatal("初始化 Redis 失败 (Seeder)", zap.Error(err))
	}
	defer rdb.Close()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)

	// 填充数据不发任何聊天消息，审核事件在进程内直接记账
	env := newSeedEnv(db, rdb, messaging.NopMessenger{}, cfg, logger)
	seeder := &Seeder{
		faker:      faker,
		posts:      env.posts,
		comments:   env.comments,
		reactions:  env.reactions,
		reports:    env.reports,
		users:      env.users,
		moderation: env.moderation,
		ranking:    env.ranking,
		logger:     logger,
	}

	start := time.Now()
	stats, err := seeder.Run(context.Background(), Plan{Posts: numPosts, Users: numUsers, AdminID: adminID})
	if err != nil {
		logger.Fatal("数据填充失败", zap.Error(err))
	}
	logger.Info("数据填充完成",
		zap.Int64("seed", seed),
		zap.Int("posts", stats.Posts),
		zap.Int("approved", stats.Approved),
		zap.Int("rejected", stats.Rejected),
		zap.Int("comments", stats.Comments),
		zap.Int("reactions", stats.Reactions),
		zap.Int("reports", stats.Reports),
		zap.Duration("duration", time.Since(start)))
}

// seedEnv 与服务进程相同的仓库和服务装配
type seedEnv struct {
	posts      store.PostRepository
	comments   store.CommentRepository
	reactions  store.ReactionRepository
	reports    store.ReportRepository
	users      store.UserRepository
	moderation service.ModerationService
	ranking    service.RankingService
}
