package vo

import (
	"time"

	"github.com/Xushengqwer/confession_service/models/enums"
)

// RankSnapshot 用户等级快照
type RankSnapshot struct {
	UserID              int64                  `json:"user_id"`
	RankLevel           int                    `json:"rank_level"`
	RankName            string                 `json:"rank_name"`
	RankEmoji           string                 `json:"rank_emoji"`
	TotalPoints         int                    `json:"total_points"`
	WeeklyPoints        int                    `json:"weekly_points"`
	MonthlyPoints       int                    `json:"monthly_points"`
	PointsToNext        int                    `json:"points_to_next"`
	NextRankPoints      int                    `json:"next_rank_points"`
	IsSpecialRank       bool                   `json:"is_special_rank"`
	SpecialPerks        map[string]interface{} `json:"special_perks"`
	StreakDays          int                    `json:"streak_days"`
	HighestRankAchieved int                    `json:"highest_rank_achieved"`
	TotalAchievements   int                    `json:"total_achievements"`
}

// AwardResult 记账结果
// - Applied 为 false 时表示本次为零分或重复请求，没有写入流水
type AwardResult struct {
	UserID         int64              `json:"user_id"`
	Activity       enums.ActivityType `json:"activity"`
	Delta          int                `json:"delta"`
	Applied        bool               `json:"applied"`
	TotalPoints    int                `json:"total_points"`
	PreviousRankID int                `json:"previous_rank_id"`
	CurrentRankID  int                `json:"current_rank_id"`
	StreakDays     int                `json:"streak_days"`
}

// RankedUp 本次记账是否让用户升级
func (r *AwardResult) RankedUp() bool {
	return r.Applied && r.CurrentRankID > r.PreviousRankID
}

// AchievementVO 已获得的成就
type AchievementVO struct {
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	IsSpecial   bool      `json:"is_special"`
	AchievedAt  time.Time `json:"achieved_at"`
}

// ReconcileReport 对账任务的结果
type ReconcileReport struct {
	UsersChecked int `json:"users_checked"`
	UsersFixed   int `json:"users_fixed"`
}
