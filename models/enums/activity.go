package enums

// ActivityType 积分流水的活动类型
type ActivityType string

const (
	ActivityConfessionSubmitted   ActivityType = "confession_submitted"
	ActivityConfessionApproved    ActivityType = "confession_approved"
	ActivityContentRejected       ActivityType = "content_rejected"
	ActivityCommentPosted         ActivityType = "comment_posted"
	ActivityQualityComment        ActivityType = "quality_comment"
	ActivityReactionGiven         ActivityType = "reaction_given"
	ActivityConfessionLiked       ActivityType = "confession_liked"
	ActivityCommentLiked          ActivityType = "comment_liked"
	ActivitySpamDetected          ActivityType = "spam_detected"
	ActivityInappropriateContent  ActivityType = "inappropriate_content"
	ActivityDailyLogin            ActivityType = "daily_login"
	ActivityAchievementEarned     ActivityType = "achievement_earned"
	ActivityCommunityContribution ActivityType = "community_contribution"
	ActivityConfession100Likes    ActivityType = "confession_100_likes"
)

// CountsTowardStreak 只有代表“每日参与”的活动会更新连续天数
func (a ActivityType) CountsTowardStreak() bool {
	switch a {
	case ActivityDailyLogin, ActivityConfessionApproved, ActivityCommentPosted:
		return true
	}
	return false
}
