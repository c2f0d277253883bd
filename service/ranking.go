package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/dto"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/myErrors"
	"github.com/Xushengqwer/confession_service/repo/redis"
	"github.com/Xushengqwer/confession_service/repo/store"
)

// RankingService 积分账本与等级
type RankingService interface {
	// AwardPoints 记一笔积分并重新计算等级。
	// - 积分为 0 时直接返回成功，不写任何数据
	// - 带幂等键的重复请求返回 Applied = false
	AwardPoints(ctx context.Context, req *dto.AwardPointsRequest) (*vo.AwardResult, error)

	// GetUserRank 用户当前等级快照，用户没有任何积分记录时返回 myErrors.ErrNotFound
	GetUserRank(ctx context.Context, userID int64) (*vo.RankSnapshot, error)

	// CheckAndAwardAchievements 检查并发放新达成的成就，返回本次新获得的成就
	CheckAndAwardAchievements(ctx context.Context, userID int64) ([]*vo.AchievementVO, error)

	// GetUserAchievements 已获得的成就，最近的在前
	GetUserAchievements(ctx context.Context, userID int64, limit int) ([]*vo.AchievementVO, error)

	// AwardDailyLogin 每个自然日最多记一次
	AwardDailyLogin(ctx context.Context, userID int64) (*vo.AwardResult, error)

	HandleConfessionSubmitted(ctx context.Context, userID int64, postID uint64) error
	HandleCommentPosted(ctx context.Context, userID int64, commentID uint64, content string) error
	HandleReactionGiven(ctx context.Context, userID int64, targetType enums.TargetType, targetID uint64) error

	// HandleReactionReceived 内容作者收到点赞时加分；帖子点赞数达到阈值时额外发放一次性奖励
	HandleReactionReceived(ctx context.Context, ownerID int64, targetType enums.TargetType, targetID uint64, reactionType string) error

	// HandleSpamDetected / HandleInappropriateContent 内容违规扣分，按内容幂等
	HandleSpamDetected(ctx context.Context, userID int64, targetType enums.TargetType, targetID uint64) error
	HandleInappropriateContent(ctx context.Context, userID int64, targetType enums.TargetType, targetID uint64) error

	ResetWeeklyPoints(ctx context.Context) (int64, error)
	ResetMonthlyPoints(ctx context.Context) (int64, error)

	// Reconcile 用积分流水重新核对用户总分，修复不一致的记录
	Reconcile(ctx context.Context, batchSize, concurrency int) (*vo.ReconcileReport, error)
}

type rankingService struct {
	gw              store.Gateway
	rankingRepo     store.RankingRepository
	achievementRepo store.AchievementRepository
	postRepo        store.PostRepository
	commentRepo     store.CommentRepository
	reactionRepo    store.ReactionRepository
	rankCache       redis.RankCache // 可为 nil
	messenger       messaging.Messenger
	points          PointTable
	cfg             config.RankingConfig
	loc             *time.Location
	now             func() time.Time
	logger          *core.ZapLogger
}

// NewRankingService 构造积分服务。rankCache 为 nil 时不缓存快照。
func NewRankingService(
	gw store.Gateway,
	rankingRepo store.RankingRepository,
	achievementRepo store.AchievementRepository,
	postRepo store.PostRepository,
	commentRepo store.CommentRepository,
	reactionRepo store.ReactionRepository,
	rankCache redis.RankCache,
	messenger messaging.Messenger,
	cfg config.RankingConfig,
	logger *core.ZapLogger,
) RankingService {
	loc := time.UTC
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		} else {
			logger.Warn("无法加载时区，连续天数按 UTC 计算", zap.String("timezone", cfg.Timezone), zap.Error(err))
		}
	}
	if cfg.QualityCommentThreshold <= 0 {
		cfg.QualityCommentThreshold = 100
	}
	if cfg.ViralLikeThreshold <= 0 {
		cfg.ViralLikeThreshold = 100
	}
	return &rankingService{
		gw:              gw,
		rankingRepo:     rankingRepo,
		achievementRepo: achievementRepo,
		postRepo:        postRepo,
		commentRepo:     commentRepo,
		reactionRepo:    reactionRepo,
		rankCache:       rankCache,
		messenger:       messenger,
		points:          NewPointTable(cfg.PointValues),
		cfg:             cfg,
		loc:             loc,
		now:             time.Now,
		logger:          logger,
	}
}

func (s *rankingService) AwardPoints(ctx context.Context, req *dto.AwardPointsRequest) (*vo.AwardResult, error) {
	if req.UserID == 0 {
		return nil, myErrors.Validation("user_id is required.")
	}
	delta, known := s.points.Resolve(req.Activity, req.Points)
	if !known {
		return nil, myErrors.Validation(fmt.Sprintf("Unknown activity type %q.", req.Activity))
	}

	result := &vo.AwardResult{UserID: req.UserID, Activity: req.Activity, Delta: delta}
	if delta == 0 {
		return result, nil
	}

	now := s.now()
	var newRank *entities.RankDefinition
	err := s.gw.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.rankingRepo.EnsureRanking(ctx, tx, req.UserID); err != nil {
			return err
		}
		ranking, err := s.rankingRepo.LockRanking(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		result.PreviousRankID = ranking.CurrentRankID

		txn := &entities.PointTransaction{
			UserID:          req.UserID,
			PointsChange:    delta,
			TransactionType: string(req.Activity),
			ReferenceID:     req.ReferenceID,
			ReferenceType:   req.ReferenceType,
			Description:     req.Description,
		}
		if req.IdempotencyKey != "" {
			key := req.IdempotencyKey
			txn.IdempotencyKey = &key
		}
		inserted, err := s.rankingRepo.InsertTransaction(ctx, tx, txn)
		if err != nil {
			return err
		}
		if !inserted {
			// 重复投递：不改任何计数
			result.TotalPoints = ranking.TotalPoints
			result.CurrentRankID = ranking.CurrentRankID
			result.StreakDays = ranking.ConsecutiveDays
			return nil
		}

		var streak *store.StreakUpdate
		if req.Activity.CountsTowardStreak() {
			streak = &store.StreakUpdate{
				ConsecutiveDays: nextStreak(ranking.ConsecutiveDays, ranking.LastActivity, now, s.loc),
				At:              now,
			}
		}
		if err := s.rankingRepo.ApplyDelta(ctx, tx, req.UserID, delta, streak); err != nil {
			return err
		}

		updated, err := s.rankingRepo.LockRanking(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		newRank, err = s.rankingRepo.FindRankForPoints(ctx, tx, updated.TotalPoints)
		if err != nil {
			return err
		}
		highest := updated.HighestRankAchieved
		if newRank.RankID > highest {
			highest = newRank.RankID
		}
		if err := s.rankingRepo.SetRanks(ctx, tx, req.UserID, newRank.RankID, highest); err != nil {
			return err
		}

		result.Applied = true
		result.TotalPoints = updated.TotalPoints
		result.CurrentRankID = newRank.RankID
		result.StreakDays = updated.ConsecutiveDays
		return nil
	})
	if err != nil {
		s.logger.Error("记录积分失败",
			zap.Int64("userID", req.UserID),
			zap.String("activity", string(req.Activity)),
			zap.Int("delta", delta),
			zap.Error(err))
		return nil, fmt.Errorf("记录积分失败 (user: %d, activity: %s): %w", req.UserID, req.Activity, err)
	}

	if !result.Applied {
		s.logger.Info("重复的积分请求，已忽略",
			zap.Int64("userID", req.UserID),
			zap.String("idempotencyKey", req.IdempotencyKey))
		return result, nil
	}

	s.invalidateSnapshot(ctx, req.UserID)
	if result.RankedUp() && newRank != nil {
		s.notifyRankUp(ctx, req.UserID, newRank, result.TotalPoints)
	}
	s.logger.Debug("积分已记录",
		zap.Int64("userID", req.UserID),
		zap.String("activity", string(req.Activity)),
		zap.Int("delta", delta),
		zap.Int("total", result.TotalPoints))
	return result, nil
}

func (s *rankingService) GetUserRank(ctx context.Context, userID int64) (*vo.RankSnapshot, error) {
	if s.rankCache != nil {
		snapshot, err := s.rankCache.GetSnapshot(ctx, userID)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, myErrors.ErrCacheMiss) {
			s.logger.Warn("读取等级快照缓存失败，回源数据库", zap.Int64("userID", userID), zap.Error(err))
		}
	}

	ranking, err := s.rankingRepo.GetRanking(ctx, userID)
	if err != nil {
		return nil, err
	}
	def, err := s.rankingRepo.GetRankDefinition(ctx, ranking.CurrentRankID)
	if err != nil {
		return nil, err
	}

	snapshot := &vo.RankSnapshot{
		UserID:              userID,
		RankLevel:           def.RankID,
		RankName:            def.RankName,
		RankEmoji:           def.RankEmoji,
		TotalPoints:         ranking.TotalPoints,
		WeeklyPoints:        ranking.WeeklyPoints,
		MonthlyPoints:       ranking.MonthlyPoints,
		IsSpecialRank:       def.IsSpecial,
		StreakDays:          ranking.ConsecutiveDays,
		HighestRankAchieved: ranking.HighestRankAchieved,
		TotalAchievements:   ranking.TotalAchievements,
	}
	// NextRankPoints 是当前等级的上限；最高等级没有上限，取当前总分
	if def.MaxPoints != nil {
		snapshot.PointsToNext = max(0, *def.MaxPoints-ranking.TotalPoints)
		snapshot.NextRankPoints = *def.MaxPoints
	} else {
		snapshot.NextRankPoints = ranking.TotalPoints
	}
	if def.SpecialPerks != "" {
		if err := json.Unmarshal([]byte(def.SpecialPerks), &snapshot.SpecialPerks); err != nil {
			s.logger.Warn("等级特权配置不是合法 JSON", zap.Int("rankID", def.RankID), zap.Error(err))
		}
	}

	if s.rankCache != nil {
		if err := s.rankCache.SetSnapshot(ctx, snapshot); err != nil {
			s.logger.Warn("写入等级快照缓存失败", zap.Int64("userID", userID), zap.Error(err))
		}
	}
	return snapshot, nil
}

func (s *rankingService) ResetWeeklyPoints(ctx context.Context) (int64, error) {
	n, err := s.rankingRepo.ResetWeeklyPoints(ctx)
	if err != nil {
		return 0, fmt.Errorf("重置周积分失败: %w", err)
	}
	s.logger.Info("周积分已重置", zap.Int64("users", n))
	if n > 0 {
		s.invalidateAllSnapshots(ctx)
	}
	return n, nil
}

func (s *rankingService) ResetMonthlyPoints(ctx context.Context) (int64, error) {
	n, err := s.rankingRepo.ResetMonthlyPoints(ctx)
	if err != nil {
		return 0, fmt.Errorf("重置月积分失败: %w", err)
	}
	s.logger.Info("月积分已重置", zap.Int64("users", n))
	if n > 0 {
		s.invalidateAllSnapshots(ctx)
	}
	return n, nil
}

func (s *rankingService) invalidateSnapshot(ctx context.Context, userIDs ...int64) {
	if s.rankCache == nil {
		return
	}
	if err := s.rankCache.Invalidate(ctx, userIDs...); err != nil {
		s.logger.Warn("删除等级快照缓存失败", zap.Int64s("userIDs", userIDs), zap.Error(err))
	}
}

// invalidateAllSnapshots 删除失败只记日志，残留的快照最多在 TTL 内显示旧的周期积分
func (s *rankingService) invalidateAllSnapshots(ctx context.Context) {
	if s.rankCache == nil {
		return
	}
	n, err := s.rankCache.InvalidateAll(ctx)
	if err != nil {
		s.logger.Warn("清空等级快照缓存失败", zap.Int64("deleted", n), zap.Error(err))
		return
	}
	s.logger.Debug("等级快照缓存已清空", zap.Int64("deleted", n))
}

func (s *rankingService) notifyRankUp(ctx context.Context, userID int64, rank *entities.RankDefinition, total int) {
	text := fmt.Sprintf("🎉 Rank up! You are now %s %s with %d points.", rank.RankEmoji, rank.RankName, total)
	if rank.IsSpecial {
		text += "\n✨ This is a special rank with exclusive perks."
	}
	if _, err := s.messenger.Send(ctx, messaging.OutgoingMessage{ChatID: userID, Text: text}); err != nil {
		s.logger.Warn("发送升级通知失败", zap.Int64("userID", userID), zap.Error(err))
	}
}

// nextStreak 按自然日计算连续天数：同一天不变，隔天加一，中断后从 1 开始
func nextStreak(current int, last *time.Time, now time.Time, loc *time.Location) int {
	if last == nil || current <= 0 {
		return 1
	}
	switch days := calendarDaysBetween(last.In(loc), now.In(loc)); {
	case days == 0:
		return current
	case days == 1:
		return current + 1
	case days < 0:
		return current
	default:
		return 1
	}
}

// calendarDaysBetween 两个本地时间之间相差的自然日数
func calendarDaysBetween(from, to time.Time) int {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
