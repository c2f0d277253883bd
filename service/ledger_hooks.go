package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/models/dto"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/vo"
)

// 业务事件到积分活动的映射。这些入口由投稿/评论/反应流程调用，失败只记日志。

func (s *rankingService) AwardDailyLogin(ctx context.Context, userID int64) (*vo.AwardResult, error) {
	day := s.now().In(s.loc).Format("2006-01-02")
	return s.AwardPoints(ctx, &dto.AwardPointsRequest{
		UserID:         userID,
		Activity:       enums.ActivityDailyLogin,
		Description:    "Daily activity bonus " + day,
		IdempotencyKey: fmt.Sprintf("daily_login:%d:%s", userID, day),
	})
}

func (s *rankingService) HandleConfessionSubmitted(ctx context.Context, userID int64, postID uint64) error {
	_, err := s.AwardPoints(ctx, &dto.AwardPointsRequest{
		UserID:         userID,
		Activity:       enums.ActivityConfessionSubmitted,
		ReferenceID:    &postID,
		ReferenceType:  string(enums.TargetPost),
		Description:    "Submitted a confession",
		IdempotencyKey: fmt.Sprintf("submitted:post:%d", postID),
	})
	return err
}

func (s *rankingService) HandleCommentPosted(ctx context.Context, userID int64, commentID uint64, content string) error {
	activity := enums.ActivityCommentPosted
	description := "Posted a comment"
	if utf8.RuneCountInString(content) > s.cfg.QualityCommentThreshold {
		activity = enums.ActivityQualityComment
		description = "Posted a quality comment"
	}
	_, err := s.AwardPoints(ctx, &dto.AwardPointsRequest{
		UserID:         userID,
		Activity:       activity,
		ReferenceID:    &commentID,
		ReferenceType:  string(enums.TargetComment),
		Description:    description,
		IdempotencyKey: fmt.Sprintf("comment:%d", commentID),
	})
	if err != nil {
		return err
	}
	if _, err := s.CheckAndAwardAchievements(ctx, userID); err != nil {
		s.logger.Warn("评论后检查成就失败", zap.Int64("userID", userID), zap.Error(err))
	}
	return nil
}

func (s *rankingService) HandleReactionGiven(ctx context.Context, userID int64, targetType enums.TargetType, targetID uint64) error {
	_, err := s.AwardPoints(ctx, &dto.AwardPointsRequest{
		UserID:         userID,
		Activity:       enums.ActivityReactionGiven,
		ReferenceID:    &targetID,
		ReferenceType:  string(targetType),
		Description:    "Reacted to content",
		IdempotencyKey: fmt.Sprintf("reaction:%d:%s:%d", userID, targetType, targetID),
	})
	return err
}

func (s *rankingService) HandleReactionReceived(ctx context.Context, ownerID int64, targetType enums.TargetType, targetID uint64, reactionType string) error {
	if reactionType != "like" {
		return nil
	}
	activity := enums.ActivityConfessionLiked
	if targetType == enums.TargetComment {
		activity = enums.ActivityCommentLiked
	}
	if _, err := s.AwardPoints(ctx, &dto.AwardPointsRequest{
		UserID:        ownerID,
		Activity:      activity,
		ReferenceID:   &targetID,
		ReferenceType: string(targetType),
		Description:   "Your content received a like",
	}); err != nil {
		return err
	}

	if targetType != enums.TargetPost {
		return nil
	}
	likes, err := s.reactionRepo.CountByType(ctx, enums.TargetPost, targetID, "like")
	if err != nil {
		return fmt.Errorf("统计帖子(ID: %d)点赞数失败: %w", targetID, err)
	}
	if likes < s.cfg.ViralLikeThreshold {
		return nil
	}
	// 幂等键保证每个帖子只奖励一次
	_, err = s.AwardPoints(ctx, &dto.AwardPointsRequest{
		UserID:         ownerID,
		Activity:       enums.ActivityConfession100Likes,
		ReferenceID:    &targetID,
		ReferenceType:  string(enums.TargetPost),
		Description:    fmt.Sprintf("Confession reached %d likes", s.cfg.ViralLikeThreshold),
		IdempotencyKey: fmt.Sprintf("viral:post:%d", targetID),
	})
	return err
}

// HandleSpamDetected 内容被判定为垃圾信息时扣分，同一内容只扣一次
func (s *rankingService) HandleSpamDetected(ctx context.Context, userID int64, targetType enums.TargetType, targetID uint64) error {
	return s.penalize(ctx, userID, enums.ActivitySpamDetected, targetType, targetID,
		"Spam detected in "+string(targetType))
}

// HandleInappropriateContent 内容被判定为不当内容时扣分，同一内容只扣一次
func (s *rankingService) HandleInappropriateContent(ctx context.Context, userID int64, targetType enums.TargetType, targetID uint64) error {
	return s.penalize(ctx, userID, enums.ActivityInappropriateContent, targetType, targetID,
		"Inappropriate content in "+string(targetType))
}

func (s *rankingService) penalize(ctx context.Context, userID int64, activity enums.ActivityType, targetType enums.TargetType, targetID uint64, description string) error {
	res, err := s.AwardPoints(ctx, &dto.AwardPointsRequest{
		UserID:         userID,
		Activity:       activity,
		ReferenceID:    &targetID,
		ReferenceType:  string(targetType),
		Description:    description,
		IdempotencyKey: fmt.Sprintf("%s:%s:%d", activity, targetType, targetID),
	})
	if err != nil {
		return err
	}
	if res.Applied {
		s.logger.Info("已扣除积分", zap.Int64("userID", userID), zap.String("activity", string(activity)),
			zap.Int("delta", res.Delta))
	}
	return nil
}
