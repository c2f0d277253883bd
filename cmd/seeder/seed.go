package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/brianvoe/gofakeit/v6"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appConfig "github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/repo/redis"
	"github.com/Xushengqwer/confession_service/repo/store"
	"github.com/Xushengqwer/confession_service/service"
)

var categories = []string{"Love", "Campus Life", "Friendship", "Family", "Academics", "Work", "Regrets", "Secrets"}

// 用户 ID 从这里开始编号，避开真实的聊天平台 ID 段
const fakeUserBase = int64(9_000_000_000)

func newSeedEnv(db *gorm.DB, rdb *goredis.Client, messenger messaging.Messenger, cfg appConfig.ConfessionConfig, logger *core.ZapLogger) *seedEnv {
	gw := store.NewGateway(db)
	env := &seedEnv{
		posts:     store.NewPostRepository(db, logger),
		comments:  store.NewCommentRepository(db, logger),
		reactions: store.NewReactionRepository(db, logger),
		reports:   store.NewReportRepository(db, logger),
		users:     store.NewUserRepository(db, logger),
	}
	env.ranking = service.NewRankingService(gw, store.NewRankingRepository(db, logger), store.NewAchievementRepository(db, logger),
		env.posts, env.comments, env.reactions, nil, messenger, cfg.RankingConfig, logger)
	publisher := service.NewInProcessPublisher(service.NewLedgerReactor(env.ranking, cfg.RankingConfig, logger), logger)
	env.moderation = service.NewModerationService(gw, env.posts, env.comments, store.NewSequenceRepository(db, logger),
		env.users, store.NewAuditRepository(db, logger),
		redis.NewRejectionDraftRepository(rdb, time.Minute, logger),
		messenger, publisher, cfg.TelegramConfig, cfg.ModerationConfig, logger)
	return env
}

// Plan 一次填充的规模
type Plan struct {
	Posts   int
	Users   int
	AdminID int64
}

// Stats 实际写入的数量
type Stats struct {
	Posts     int
	Approved  int
	Rejected  int
	Comments  int
	Reactions int
	Reports   int
}

// Seeder 通过服务层生成投稿、审核结果、评论和反应，积分随之入账
type Seeder struct {
	faker      *gofakeit.Faker
	posts      store.PostRepository
	comments   store.CommentRepository
	reactions  store.ReactionRepository
	reports    store.ReportRepository
	users      store.UserRepository
	moderation service.ModerationService
	ranking    service.RankingService
	logger     *core.ZapLogger
}

// Run 顺序执行，sqlite 下也不会出现锁等待
func (s *Seeder) Run(ctx context.Context, plan Plan) (*Stats, error) {
	stats := &Stats{}
	users := make([]int64, plan.Users)
	for i := range users {
		users[i] = fakeUserBase + int64(i) + 1
		// 约一半用户没有姓名，只有用户名
		profile := &entities.User{UserID: users[i], Username: strings.ToLower(s.faker.Username())}
		if s.faker.Bool() {
			profile.FirstName, profile.LastName = s.faker.FirstName(), s.faker.LastName()
		}
		if err := s.users.UpsertProfile(ctx, profile); err != nil {
			return stats, fmt.Errorf("写入用户资料失败: %w", err)
		}
	}
	reasons := enums.RejectionReasonOptions()

	for i := 0; i < plan.Posts; i++ {
		author := users[s.faker.IntRange(0, len(users)-1)]
		post := &entities.Post{
			UserID:   author,
			Content:  s.faker.Paragraph(1, s.faker.IntRange(1, 4), s.faker.IntRange(8, 20), " "),
			Category: s.categories(),
			Status:   enums.StatusPending,
		}
		if err := s.posts.CreatePost(ctx, nil, post); err != nil {
			return stats, fmt.Errorf("创建投稿失败: %w", err)
		}
		stats.Posts++
		if err := s.ranking.HandleConfessionSubmitted(ctx, author, post.ID); err != nil {
			s.logger.Warn("投稿积分记账失败", zap.Uint64("postID", post.ID), zap.Error(err))
		}

		// 约 70% 通过，20% 拒绝，其余保持待审核
		switch roll := s.faker.Float64Range(0, 1); {
		case roll < 0.7:
			if _, err := s.moderation.Approve(ctx, post.ID, plan.AdminID); err != nil {
				return stats, fmt.Errorf("审核通过投稿 %d 失败: %w", post.ID, err)
			}
			stats.Approved++
			if err := s.engage(ctx, post.ID, author, users, stats); err != nil {
				return stats, err
			}
		case roll < 0.9:
			reason := reasons[s.faker.IntRange(0, len(reasons)-2)].Code
			if _, err := s.moderation.Reject(ctx, post.ID, plan.AdminID, reason, ""); err != nil {
				return stats, fmt.Errorf("拒绝投稿 %d 失败: %w", post.ID, err)
			}
			stats.Rejected++
		}
	}
	return stats, nil
}

// engage 为已发布的投稿生成评论、回复、反应和少量举报
func (s *Seeder) engage(ctx context.Context, postID uint64, author int64, users []int64, stats *Stats) error {
	var commentIDs []uint64
	for n := s.faker.IntRange(0, 5); n > 0; n-- {
		comment := &entities.Comment{
			PostID:  postID,
			UserID:  users[s.faker.IntRange(0, len(users)-1)],
			Content: s.faker.Sentence(s.faker.IntRange(3, 40)),
		}
		if len(commentIDs) > 0 && s.faker.Bool() {
			parent := commentIDs[s.faker.IntRange(0, len(commentIDs)-1)]
			comment.ParentCommentID = &parent
		}
		if err := s.comments.CreateComment(ctx, nil, comment); err != nil {
			return fmt.Errorf("创建评论失败: %w", err)
		}
		commentIDs = append(commentIDs, comment.ID)
		stats.Comments++
		if err := s.ranking.HandleCommentPosted(ctx, comment.UserID, comment.ID, comment.Content); err != nil {
			s.logger.Warn("评论积分记账失败", zap.Uint64("commentID", comment.ID), zap.Error(err))
		}
	}

	for _, uid := range users {
		if uid == author || s.faker.Float64Range(0, 1) > 0.4 {
			continue
		}
		reactionType := "like"
		if s.faker.Float64Range(0, 1) < 0.15 {
			reactionType = "dislike"
		}
		added, err := s.reactions.AddReaction(ctx, nil, &entities.Reaction{
			UserID: uid, TargetType: enums.TargetPost, TargetID: postID, ReactionType: reactionType,
		})
		if err != nil {
			return fmt.Errorf("添加反应失败: %w", err)
		}
		if !added {
			continue
		}
		stats.Reactions++
		if err := s.ranking.HandleReactionGiven(ctx, uid, enums.TargetPost, postID); err != nil {
			s.logger.Warn("反应积分记账失败", zap.Int64("userID", uid), zap.Error(err))
		}
		if err := s.ranking.HandleReactionReceived(ctx, author, enums.TargetPost, postID, reactionType); err != nil {
			s.logger.Warn("点赞积分记账失败", zap.Uint64("postID", postID), zap.Error(err))
		}
	}

	if s.faker.Float64Range(0, 1) < 0.1 {
		if err := s.reports.CreateReport(ctx, nil, &entities.Report{
			UserID: users[0], TargetType: enums.TargetPost, TargetID: postID, Reason: s.faker.Sentence(4),
		}); err != nil {
			return fmt.Errorf("创建举报失败: %w", err)
		}
		stats.Reports++
	}
	return nil
}

func (s *Seeder) categories() string {
	n := s.faker.IntRange(1, 2)
	idx := make([]int, len(categories))
	for i := range idx {
		idx[i] = i
	}
	s.faker.ShuffleInts(idx)
	picked := make([]string, 0, n)
	for _, i := range idx[:n] {
		picked = append(picked, categories[i])
	}
	return strings.Join(picked, ", ")
}
