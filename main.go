package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sharedCore "github.com/Xushengqwer/go-common/core"
	sharedTracing "github.com/Xushengqwer/go-common/core/tracing"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/bot"
	appConfig "github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/constant"
	"github.com/Xushengqwer/confession_service/controller"
	"github.com/Xushengqwer/confession_service/dependencies"
	_ "github.com/Xushengqwer/confession_service/docs"
	"github.com/Xushengqwer/confession_service/mq/consumer"
	"github.com/Xushengqwer/confession_service/mq/producer"
	redisrepo "github.com/Xushengqwer/confession_service/repo/redis"
	"github.com/Xushengqwer/confession_service/repo/store"
	"github.com/Xushengqwer/confession_service/router"
	"github.com/Xushengqwer/confession_service/service"
	"github.com/Xushengqwer/confession_service/tasks"
)

// @title           Confession Service API
// @version         1.0
// @description     匿名投稿机器人后台：审核、级联删除、积分与等级。

// @host      localhost:8086
// @schemes http https
func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "Path to configuration file")
	flag.Parse()

	// 1. 配置
	var cfg appConfig.ConfessionConfig
	if err := sharedCore.LoadConfig(configFile, &cfg); err != nil {
		log.Fatalf("FATAL: 加载配置失败 (%s): %v", configFile, err)
	}

	// 2. Logger
	logger, err := sharedCore.NewZapLogger(cfg.ZapConfig)
	if err != nil {
		log.Fatalf("FATAL: 初始化 ZapLogger 失败: %v", err)
	}
	defer func() {
		_ = logger.Logger().Sync()
	}()
	logger.Info("配置加载成功", zap.String("config", configFile), zap.String("dbDriver", cfg.DatabaseConfig.Driver))

	// 3. 链路追踪
	tracerShutdown, err := sharedTracing.InitTracerProvider(constant.ServiceName, constant.ServiceVersion, cfg.TracerConfig)
	if err != nil {
		logger.Fatal("初始化 TracerProvider 失败", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			logger.Error("关闭 TracerProvider 失败", zap.Error(err))
		}
	}()

	// 4. 基础依赖
	db, err := dependencies.InitDatabase(&cfg, logger)
	if err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	rdb, err := dependencies.InitRedis(&cfg.RedisConfig, logger)
	if err != nil {
		logger.Fatal("初始化 Redis 失败", zap.Error(err))
	}
	defer rdb.Close()
	messenger, telegram, err := dependencies.InitMessenger(cfg.TelegramConfig, logger)
	if err != nil {
		logger.Fatal("初始化 Telegram 失败", zap.Error(err))
	}

	// 5. 仓库层
	gw := store.NewGateway(db)
	postRepo := store.NewPostRepository(db, logger)
	commentRepo := store.NewCommentRepository(db, logger)
	reactionRepo := store.NewReactionRepository(db, logger)
	reportRepo := store.NewReportRepository(db, logger)
	auditRepo := store.NewAuditRepository(db, logger)
	rankingRepo := store.NewRankingRepository(db, logger)
	draftTTL := time.Duration(cfg.ModerationConfig.RejectionDraftTTL) * time.Second
	draftRepo := redisrepo.NewRejectionDraftRepository(rdb, draftTTL, logger)
	replyDraftRepo := redisrepo.NewReplyDraftRepository(rdb, draftTTL, logger)
	userRepo := store.NewUserRepository(db, logger)
	var rankCache redisrepo.RankCache
	if cfg.RankingConfig.RankCacheTTL > 0 {
		rankCache = redisrepo.NewRankCache(rdb, time.Duration(cfg.RankingConfig.RankCacheTTL)*time.Second, logger)
	}

	// 6. 服务层。积分账本通过 Kafka 或进程内发布器接收审核事件
	rankingService := service.NewRankingService(gw, rankingRepo, store.NewAchievementRepository(db, logger),
		postRepo, commentRepo, reactionRepo, rankCache, messenger, cfg.RankingConfig, logger)
	ledgerReactor := service.NewLedgerReactor(rankingService, cfg.RankingConfig, logger)

	var publisher service.EventPublisher
	var kafkaProducer *producer.KafkaProducer
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer = producer.NewKafkaProducer(cfg.KafkaConfig, logger)
		publisher = kafkaProducer
		logger.Info("Kafka 生产者已初始化", zap.Strings("brokers", cfg.KafkaConfig.Brokers))
	} else {
		publisher = service.NewInProcessPublisher(ledgerReactor, logger)
		logger.Warn("未配置 Kafka brokers，审核事件在进程内直接投递给积分账本")
	}

	moderationService := service.NewModerationService(gw, postRepo, commentRepo, store.NewSequenceRepository(db, logger),
		userRepo, auditRepo, draftRepo, messenger, publisher,
		cfg.TelegramConfig, cfg.ModerationConfig, logger)
	deletionService := service.NewDeletionService(gw, postRepo, commentRepo, reactionRepo, reportRepo, auditRepo,
		messenger, publisher, cfg.TelegramConfig, logger)
	messagingService := service.NewAdminMessagingService(store.NewAdminMessageRepository(db, logger), replyDraftRepo,
		messenger, cfg.TelegramConfig, cfg.ModerationConfig, logger)
	toolsService := service.NewAdminToolsService(userRepo, store.NewAdminQueryRepository(db, logger),
		postRepo, commentRepo, logger)

	// 7. Kafka 消费者
	var consumers []*consumer.Consumer
	var consumerWg sync.WaitGroup
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	if kafkaProducer != nil {
		groupID := cfg.KafkaConfig.ConsumerGroupID
		if groupID == "" {
			groupID = constant.ServiceName + "_group"
		}
		ledgerHandler := consumer.NewLedgerHandler(logger, ledgerReactor)
		for _, topic := range []string{cfg.KafkaConfig.Topics.ConfessionApproved, cfg.KafkaConfig.Topics.ConfessionRejected} {
			if topic == "" {
				continue
			}
			c, err := consumer.NewConsumer(&cfg.KafkaConfig, groupID, topic, ledgerHandler, logger)
			if err != nil {
				logger.Fatal("初始化 Kafka 消费者失败", zap.String("topic", topic), zap.Error(err))
			}
			consumers = append(consumers, c)
		}
		logger.Info(fmt.Sprintf("准备启动 %d 个 Kafka 消费者...", len(consumers)))
		for _, c := range consumers {
			consumerWg.Add(1)
			go func(cons *consumer.Consumer) {
				defer consumerWg.Done()
				cons.Start(consumerCtx)
			}(c)
		}
	}

	// 8. 管理员按钮回调
	var poller *bot.Poller
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	if telegram != nil && cfg.TelegramConfig.PollUpdates {
		adminHandler := bot.NewAdminHandler(moderationService, deletionService, messagingService, messenger, cfg.TelegramConfig, logger)
		poller = bot.NewPoller(telegram.Bot(), adminHandler, logger)
		poller.Start(pollerCtx)
	}

	// 9. 定时任务
	resetLoc := time.UTC
	if cfg.RankingConfig.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.RankingConfig.Timezone); err == nil {
			resetLoc = loc
		}
	}
	resetTask, err := tasks.NewPointsResetTask(rankingService, cfg.TaskConfig, resetLoc, logger)
	if err != nil {
		logger.Fatal("初始化积分清零任务失败", zap.Error(err))
	}
	reconcileTask, err := tasks.NewLedgerReconcileTask(rankingService, cfg.TaskConfig, logger)
	if err != nil {
		logger.Fatal("初始化积分对账任务失败", zap.Error(err))
	}

	// 10. HTTP
	ginRouter := router.SetupRouter(logger, &cfg,
		controller.NewModerationController(moderationService),
		controller.NewDeletionController(deletionService),
		controller.NewRankingController(rankingService),
		controller.NewAdminMessagingController(messagingService),
		controller.NewAdminToolsController(toolsService),
	)
	serverAddr := fmt.Sprintf("%s:%s", cfg.ServerConfig.ListenAddr, cfg.ServerConfig.Port)
	httpServer := &http.Server{Addr: serverAddr, Handler: ginRouter}
	go func() {
		logger.Info("HTTP 服务器开始监听", zap.String("address", serverAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
	}()

	// 11. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	logger.Info("收到关停信号，开始优雅退出...", zap.String("signal", receivedSignal.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭 HTTP 服务器失败", zap.Error(err))
	}

	pollerCancel()
	if poller != nil {
		poller.Wait()
	}

	consumerCancel()
	consumerWg.Wait()
	for _, c := range consumers {
		if err := c.Close(); err != nil {
			logger.Error("关闭 Kafka 消费者时出错", zap.Error(err))
		}
	}
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.Error("关闭 Kafka 生产者失败", zap.Error(err))
		}
	}

	for name, stopped := range map[string]context.Context{
		"积分清零": resetTask.Stop(),
		"积分对账": reconcileTask.Stop(),
	} {
		select {
		case <-stopped.Done():
			logger.Info(name + "任务已停止")
		case <-shutdownCtx.Done():
			logger.Error("等待定时任务停止超时", zap.String("task", name))
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("服务已成功关闭")
}
