package service

import "github.com/Xushengqwer/confession_service/models/enums"

// PointTable 活动类型到积分的映射
type PointTable map[enums.ActivityType]int

// DefaultPointTable 默认积分表。achievement_earned 不在表中，按成就自身的分值记账。
func DefaultPointTable() PointTable {
	return PointTable{
		enums.ActivityConfessionSubmitted:   2,
		enums.ActivityConfessionApproved:    10,
		enums.ActivityContentRejected:       -5,
		enums.ActivityCommentPosted:         2,
		enums.ActivityQualityComment:        5,
		enums.ActivityReactionGiven:         1,
		enums.ActivityConfessionLiked:       1,
		enums.ActivityCommentLiked:          1,
		enums.ActivitySpamDetected:          -10,
		enums.ActivityInappropriateContent:  -15,
		enums.ActivityDailyLogin:            1,
		enums.ActivityCommunityContribution: 3,
		enums.ActivityConfession100Likes:    50,
	}
}

// NewPointTable 在默认表上应用配置覆盖
func NewPointTable(overrides map[string]int) PointTable {
	table := DefaultPointTable()
	for activity, points := range overrides {
		table[enums.ActivityType(activity)] = points
	}
	return table
}

// Resolve 计算本次活动的积分变动。
// 返回 false 表示活动类型未知。
func (t PointTable) Resolve(activity enums.ActivityType, override *int) (int, bool) {
	if activity == enums.ActivityAchievementEarned {
		if override == nil {
			return 0, true
		}
		return *override, true
	}
	points, ok := t[activity]
	return points, ok
}
