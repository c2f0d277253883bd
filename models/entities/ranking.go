package entities

import "time"

// PointTransaction 积分流水，只追加。
// - IdempotencyKey 用于消息重投或每日奖励去重，为空时不参与唯一约束
type PointTransaction struct {
	ID              uint64  `gorm:"primaryKey;autoIncrement"`
	UserID          int64   `gorm:"not null;index"`
	PointsChange    int     `gorm:"not null"`
	TransactionType string  `gorm:"type:varchar(32);not null;index"`
	ReferenceID     *uint64
	ReferenceType   string  `gorm:"type:varchar(32);not null;default:''"`
	Description     string  `gorm:"type:varchar(255);not null;default:''"`
	IdempotencyKey  *string `gorm:"type:varchar(128);uniqueIndex"`
	CreatedAt       time.Time
}

// UserRanking 用户积分汇总，由积分流水驱动更新
type UserRanking struct {
	UserID int64 `gorm:"primaryKey;autoIncrement:false"`

	TotalPoints   int `gorm:"not null;default:0"`
	WeeklyPoints  int `gorm:"not null;default:0"`
	MonthlyPoints int `gorm:"not null;default:0"`

	// 当前等级与历史最高等级（rank_definitions.rank_id）
	// - 历史最高等级只升不降
	CurrentRankID       int `gorm:"not null;default:1"`
	HighestRankAchieved int `gorm:"not null;default:1"`

	TotalAchievements int `gorm:"not null;default:0"`

	// 连续活跃天数以及最后一次计入连续天数的活动时间
	ConsecutiveDays int `gorm:"not null;default:0"`
	LastActivity    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RankDefinition 等级定义。MaxPoints 为空表示最高等级。
type RankDefinition struct {
	RankID       int    `gorm:"primaryKey;autoIncrement:false"`
	RankName     string `gorm:"type:varchar(64);not null"`
	RankEmoji    string `gorm:"type:varchar(16);not null"`
	MinPoints    int    `gorm:"not null"`
	MaxPoints    *int
	SpecialPerks string `gorm:"type:text"` // JSON
	IsSpecial    bool   `gorm:"not null;default:false"`
}

// UserAchievement 用户已获得的成就，同一成就每人只能获得一次
type UserAchievement struct {
	ID                     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID                 int64  `gorm:"not null;uniqueIndex:idx_user_achievement,priority:1"`
	AchievementType        string `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_achievement,priority:2"`
	AchievementName        string `gorm:"type:varchar(128);not null"`
	AchievementDescription string `gorm:"type:varchar(255);not null;default:''"`
	PointsAwarded          int    `gorm:"not null;default:0"`
	IsSpecial              bool   `gorm:"not null;default:false"`
	AchievedAt             time.Time
}

// DefaultRankDefinitions 初始等级表，启动迁移时写入（已存在则跳过）
func DefaultRankDefinitions() []RankDefinition {
	intPtr := func(v int) *int { return &v }
	return []RankDefinition{
		{RankID: 1, RankName: "Freshman", RankEmoji: "🥉", MinPoints: 0, MaxPoints: intPtr(99)},
		{RankID: 2, RankName: "Sophomore", RankEmoji: "🥈", MinPoints: 100, MaxPoints: intPtr(249)},
		{RankID: 3, RankName: "Junior", RankEmoji: "🥇", MinPoints: 250, MaxPoints: intPtr(499)},
		{RankID: 4, RankName: "Senior", RankEmoji: "🏆", MinPoints: 500, MaxPoints: intPtr(999)},
		{RankID: 5, RankName: "Graduate", RankEmoji: "🎓", MinPoints: 1000, MaxPoints: intPtr(2499)},
		{RankID: 6, RankName: "Master", RankEmoji: "👑", MinPoints: 2500, MaxPoints: intPtr(4999),
			SpecialPerks: `{"comment_badge":true}`, IsSpecial: true},
		{RankID: 7, RankName: "Legend", RankEmoji: "🌟", MinPoints: 5000,
			SpecialPerks: `{"comment_badge":true,"priority_review":true}`, IsSpecial: true},
	}
}
