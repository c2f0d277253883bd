package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/internal/testlog"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/messaging/mocks"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/events"
	"github.com/Xushengqwer/confession_service/repo/redis"
	"github.com/Xushengqwer/confession_service/repo/store"
	"github.com/Xushengqwer/confession_service/repo/store/storetest"
)

const testChannelID int64 = -1001234567890

// recordingPublisher 记录所有事件，forward 不为 nil 时继续投递
type recordingPublisher struct {
	mu         sync.Mutex
	moderation []*events.ModerationEvent
	deleted    []*events.ContentDeletedEvent
	forward    ModerationEventHandler
}

func (p *recordingPublisher) PublishModerationEvent(ctx context.Context, event *events.ModerationEvent) error {
	p.mu.Lock()
	p.moderation = append(p.moderation, event)
	p.mu.Unlock()
	if p.forward != nil {
		return DispatchModerationEvent(ctx, p.forward, event)
	}
	return nil
}

func (p *recordingPublisher) PublishContentDeleted(_ context.Context, event *events.ContentDeletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, event)
	return nil
}

func (p *recordingPublisher) moderationEvents() []*events.ModerationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*events.ModerationEvent(nil), p.moderation...)
}

type fixture struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	messenger *mocks.MockMessenger
	publisher *recordingPublisher

	posts     store.PostRepository
	comments  store.CommentRepository
	reactions store.ReactionRepository
	reports   store.ReportRepository
	audits    store.AuditRepository
	rankings  store.RankingRepository

	moderation ModerationService
	deletion   DeletionService
	ranking    *rankingService
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	telegram   config.TelegramConfig
	moderation config.ModerationConfig
	ranking    config.RankingConfig
	ledger     bool

	// concurrentDB 为 true 时使用多连接的 WAL 数据库
	concurrentDB bool
	wrapPosts    func(store.PostRepository) store.PostRepository
}

func withRanking(cfg config.RankingConfig) fixtureOption {
	return func(c *fixtureConfig) { c.ranking = cfg }
}

func withTelegram(cfg config.TelegramConfig) fixtureOption {
	return func(c *fixtureConfig) { c.telegram = cfg }
}

// withConcurrentDB 多个事务可以真正并行执行
func withConcurrentDB() fixtureOption {
	return func(c *fixtureConfig) { c.concurrentDB = true }
}

// withPostRepo 替换审核服务看到的 PostRepository，用于在读取和条件更新之间插入其他管理员的操作
func withPostRepo(wrap func(store.PostRepository) store.PostRepository) fixtureOption {
	return func(c *fixtureConfig) { c.wrapPosts = wrap }
}

// withLedger 让审核事件直接进入积分账本
func withLedger() fixtureOption {
	return func(c *fixtureConfig) { c.ledger = true }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := &fixtureConfig{
		telegram: config.TelegramConfig{ChannelID: testChannelID, BotUsername: "@confess_bot"},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := testlog.New(t)
	db := storetest.NewDB(t)
	if cfg.concurrentDB {
		db = storetest.NewConcurrentDB(t, 8)
	}
	gw := store.NewGateway(db)
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &fixture{
		db:        db,
		mr:        mr,
		messenger: &mocks.MockMessenger{},
		publisher: &recordingPublisher{},
		posts:     store.NewPostRepository(db, logger),
		comments:  store.NewCommentRepository(db, logger),
		reactions: store.NewReactionRepository(db, logger),
		reports:   store.NewReportRepository(db, logger),
		audits:    store.NewAuditRepository(db, logger),
		rankings:  store.NewRankingRepository(db, logger),
	}

	f.ranking = NewRankingService(gw, f.rankings, store.NewAchievementRepository(db, logger),
		f.posts, f.comments, f.reactions,
		redis.NewRankCache(rdb, time.Minute, logger),
		f.messenger, cfg.ranking, logger).(*rankingService)
	if cfg.ledger {
		f.publisher.forward = NewLedgerReactor(f.ranking, cfg.ranking, logger)
	}

	modPosts := f.posts
	if cfg.wrapPosts != nil {
		modPosts = cfg.wrapPosts(f.posts)
	}
	f.moderation = NewModerationService(gw, modPosts, f.comments, store.NewSequenceRepository(db, logger),
		store.NewUserRepository(db, logger), f.audits,
		redis.NewRejectionDraftRepository(rdb, time.Minute, logger),
		f.messenger, f.publisher, cfg.telegram, cfg.moderation, logger)
	f.deletion = NewDeletionService(gw, f.posts, f.comments, f.reactions, f.reports, f.audits,
		f.messenger, f.publisher, cfg.telegram, logger)
	return f
}

// acceptAllMessages 所有消息发送成功，频道消息 ID 固定为 555
func (f *fixture) acceptAllMessages() {
	f.messenger.On("Send", mock.Anything, mock.Anything).
		Return(messaging.MessageRef{ChatID: testChannelID, MessageID: 555}, nil).Maybe()
	f.messenger.On("Edit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.messenger.On("Delete", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (f *fixture) createPost(t *testing.T, post *entities.Post) *entities.Post {
	t.Helper()
	if post.Content == "" {
		post.Content = "I have a confession to make"
	}
	if post.Category == "" {
		post.Category = "Love, Campus Life"
	}
	if post.Status == "" {
		post.Status = enums.StatusPending
	}
	require.NoError(t, f.db.Create(post).Error)
	return post
}

func (f *fixture) createComment(t *testing.T, comment *entities.Comment) *entities.Comment {
	t.Helper()
	if comment.Content == "" {
		comment.Content = "me too"
	}
	require.NoError(t, f.db.Create(comment).Error)
	return comment
}

func (f *fixture) auditActions(t *testing.T, targetType enums.TargetType, targetID uint64) []*entities.AdminAction {
	t.Helper()
	actions, err := f.audits.ListByTarget(context.Background(), targetType, targetID)
	require.NoError(t, err)
	return actions
}

func int64Ptr(v int64) *int64 { return &v }
