package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/vo"
)

// ActivityStats 判断成就时使用的用户活动统计
type ActivityStats struct {
	ApprovedConfessions int64
	Comments            int64
	ReactionsGiven      int64
	StreakDays          int
	TotalPoints         int
}

// AchievementDefinition 一个成就
type AchievementDefinition struct {
	Type        string
	Name        string
	Description string
	Points      int
	IsSpecial   bool
	Qualifies   func(ActivityStats) bool
}

// AchievementCatalogue 全部成就，按检查顺序排列
func AchievementCatalogue() []AchievementDefinition {
	return []AchievementDefinition{
		{
			Type: "first_confession", Name: "First Confession", Description: "Had your first confession approved",
			Points:    10,
			Qualifies: func(s ActivityStats) bool { return s.ApprovedConfessions >= 1 },
		},
		{
			Type: "prolific_confessor", Name: "Prolific Confessor", Description: "Had 10 confessions approved",
			Points:    50,
			Qualifies: func(s ActivityStats) bool { return s.ApprovedConfessions >= 10 },
		},
		{
			Type: "first_comment", Name: "First Comment", Description: "Posted your first comment",
			Points:    5,
			Qualifies: func(s ActivityStats) bool { return s.Comments >= 1 },
		},
		{
			Type: "active_commenter", Name: "Active Commenter", Description: "Posted 50 comments",
			Points:    25,
			Qualifies: func(s ActivityStats) bool { return s.Comments >= 50 },
		},
		{
			Type: "reaction_giver", Name: "Reaction Giver", Description: "Reacted to 100 posts or comments",
			Points:    15,
			Qualifies: func(s ActivityStats) bool { return s.ReactionsGiven >= 100 },
		},
		{
			Type: "week_streak", Name: "Week Warrior", Description: "Active 7 days in a row",
			Points:    30,
			Qualifies: func(s ActivityStats) bool { return s.StreakDays >= 7 },
		},
		{
			Type: "point_collector", Name: "Point Collector", Description: "Reached 1000 points",
			Points: 100, IsSpecial: true,
			Qualifies: func(s ActivityStats) bool { return s.TotalPoints >= 1000 },
		},
	}
}

func (s *rankingService) activityStats(ctx context.Context, userID int64) (ActivityStats, error) {
	var stats ActivityStats
	var err error
	if stats.ApprovedConfessions, err = s.postRepo.CountApprovedByUser(ctx, userID); err != nil {
		return stats, err
	}
	if stats.Comments, err = s.commentRepo.CountByUser(ctx, userID); err != nil {
		return stats, err
	}
	if stats.ReactionsGiven, err = s.reactionRepo.CountGivenByUser(ctx, userID); err != nil {
		return stats, err
	}
	ranking, err := s.rankingRepo.GetRanking(ctx, userID)
	if err == nil {
		stats.StreakDays = ranking.ConsecutiveDays
		stats.TotalPoints = ranking.TotalPoints
	}
	// 没有积分记录的用户按 0 处理
	return stats, nil
}

func (s *rankingService) CheckAndAwardAchievements(ctx context.Context, userID int64) ([]*vo.AchievementVO, error) {
	owned, err := s.achievementRepo.ListTypes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询用户(ID: %d)成就失败: %w", userID, err)
	}
	stats, err := s.activityStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("统计用户(ID: %d)活动失败: %w", userID, err)
	}

	var earned []*vo.AchievementVO
	for _, def := range AchievementCatalogue() {
		if owned[def.Type] || !def.Qualifies(stats) {
			continue
		}
		awarded, err := s.awardAchievement(ctx, userID, def)
		if err != nil {
			// 单个成就失败不影响其他成就
			s.logger.Error("发放成就失败", zap.Int64("userID", userID), zap.String("achievement", def.Type), zap.Error(err))
			continue
		}
		if awarded != nil {
			earned = append(earned, awarded)
		}
	}
	if len(earned) == 0 {
		return earned, nil
	}

	count, err := s.achievementRepo.CountByUser(ctx, nil, userID)
	if err == nil {
		err = s.rankingRepo.SetAchievementCount(ctx, nil, userID, count)
	}
	if err != nil {
		s.logger.Warn("刷新成就数量失败", zap.Int64("userID", userID), zap.Error(err))
	}
	s.invalidateSnapshot(ctx, userID)
	s.notifyAchievements(ctx, userID, earned)
	return earned, nil
}

// awardAchievement 在一个事务内写入成就、积分流水并累加总分。已拥有时返回 nil。
func (s *rankingService) awardAchievement(ctx context.Context, userID int64, def AchievementDefinition) (*vo.AchievementVO, error) {
	now := s.now()
	var awarded *vo.AchievementVO
	err := s.gw.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.rankingRepo.EnsureRanking(ctx, tx, userID); err != nil {
			return err
		}
		if _, err := s.rankingRepo.LockRanking(ctx, tx, userID); err != nil {
			return err
		}
		has, err := s.achievementRepo.Has(ctx, tx, userID, def.Type)
		if err != nil || has {
			return err
		}
		achievement := &entities.UserAchievement{
			UserID:                 userID,
			AchievementType:        def.Type,
			AchievementName:        def.Name,
			AchievementDescription: def.Description,
			PointsAwarded:          def.Points,
			IsSpecial:              def.IsSpecial,
			AchievedAt:             now,
		}
		inserted, err := s.achievementRepo.Insert(ctx, tx, achievement)
		if err != nil || !inserted {
			return err
		}

		if def.Points != 0 {
			key := fmt.Sprintf("achievement:%d:%s", userID, def.Type)
			txn := &entities.PointTransaction{
				UserID:          userID,
				PointsChange:    def.Points,
				TransactionType: string(enums.ActivityAchievementEarned),
				ReferenceType:   "achievement",
				Description:     "Achievement: " + def.Name,
				IdempotencyKey:  &key,
			}
			if _, err := s.rankingRepo.InsertTransaction(ctx, tx, txn); err != nil {
				return err
			}
			if err := s.rankingRepo.ApplyDelta(ctx, tx, userID, def.Points, nil); err != nil {
				return err
			}
			updated, err := s.rankingRepo.LockRanking(ctx, tx, userID)
			if err != nil {
				return err
			}
			rank, err := s.rankingRepo.FindRankForPoints(ctx, tx, updated.TotalPoints)
			if err != nil {
				return err
			}
			highest := max(updated.HighestRankAchieved, rank.RankID)
			if err := s.rankingRepo.SetRanks(ctx, tx, userID, rank.RankID, highest); err != nil {
				return err
			}
		}

		awarded = toAchievementVO(achievement)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if awarded != nil {
		s.logger.Info("用户获得成就", zap.Int64("userID", userID), zap.String("achievement", def.Type))
	}
	return awarded, nil
}

func (s *rankingService) GetUserAchievements(ctx context.Context, userID int64, limit int) ([]*vo.AchievementVO, error) {
	if limit <= 0 {
		limit = 50
	}
	list, err := s.achievementRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询用户(ID: %d)成就列表失败: %w", userID, err)
	}
	out := make([]*vo.AchievementVO, 0, len(list))
	for _, a := range list {
		out = append(out, toAchievementVO(a))
	}
	return out, nil
}

func (s *rankingService) notifyAchievements(ctx context.Context, userID int64, earned []*vo.AchievementVO) {
	lines := make([]string, 0, len(earned)+1)
	lines = append(lines, "🏅 New achievement unlocked!")
	for _, a := range earned {
		lines = append(lines, fmt.Sprintf("• %s (+%d points): %s", a.Name, a.Points, a.Description))
	}
	if _, err := s.messenger.Send(ctx, messaging.OutgoingMessage{ChatID: userID, Text: strings.Join(lines, "\n")}); err != nil {
		s.logger.Warn("发送成就通知失败", zap.Int64("userID", userID), zap.Error(err))
	}
}

func toAchievementVO(a *entities.UserAchievement) *vo.AchievementVO {
	return &vo.AchievementVO{
		Type:        a.AchievementType,
		Name:        a.AchievementName,
		Description: a.AchievementDescription,
		Points:      a.PointsAwarded,
		IsSpecial:   a.IsSpecial,
		AchievedAt:  a.AchievedAt,
	}
}
