package service

import (
	"context"
	"fmt"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/models/dto"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/events"
)

// LedgerReactor 把审核事件转换为积分变动。
// 幂等键取自事件 ID，消息重投不会重复记账。
type LedgerReactor struct {
	ranking RankingService
	cfg     config.RankingConfig
	logger  *core.ZapLogger
}

// NewLedgerReactor 构造 LedgerReactor
func NewLedgerReactor(ranking RankingService, cfg config.RankingConfig, logger *core.ZapLogger) *LedgerReactor {
	return &LedgerReactor{ranking: ranking, cfg: cfg, logger: logger}
}

// OnApproved 给投稿人加分，并处理每日奖励、成就和管理员贡献分。
// 只有投稿人的主记账失败会返回错误，附带的奖励失败只记日志。
func (r *LedgerReactor) OnApproved(ctx context.Context, event *events.ModerationEvent) error {
	postID := event.PostID
	_, err := r.ranking.AwardPoints(ctx, &dto.AwardPointsRequest{
		UserID:         event.UserID,
		Activity:       enums.ActivityConfessionApproved,
		ReferenceID:    &postID,
		ReferenceType:  string(enums.TargetPost),
		Description:    fmt.Sprintf("Confession #%d approved", event.PostNumber),
		IdempotencyKey: event.EventID,
	})
	if err != nil {
		return err
	}

	if _, err := r.ranking.AwardDailyLogin(ctx, event.UserID); err != nil {
		r.logger.Warn("发放每日奖励失败", zap.Int64("userID", event.UserID), zap.Error(err))
	}
	if _, err := r.ranking.CheckAndAwardAchievements(ctx, event.UserID); err != nil {
		r.logger.Warn("审核通过后检查成就失败", zap.Int64("userID", event.UserID), zap.Error(err))
	}

	if r.cfg.AwardAdminContribution && event.AdminID != 0 {
		if _, err := r.ranking.AwardPoints(ctx, &dto.AwardPointsRequest{
			UserID:         event.AdminID,
			Activity:       enums.ActivityCommunityContribution,
			ReferenceID:    &postID,
			ReferenceType:  string(enums.TargetPost),
			Description:    "Reviewed a confession",
			IdempotencyKey: event.EventID + ":admin",
		}); err != nil {
			r.logger.Warn("发放管理员贡献分失败", zap.Int64("adminID", event.AdminID), zap.Error(err))
		}
	}
	return nil
}

// OnRejected 给投稿人扣分。以垃圾信息或不当内容为由拒绝时再追加一笔违规扣分。
func (r *LedgerReactor) OnRejected(ctx context.Context, event *events.ModerationEvent) error {
	postID := event.PostID
	_, err := r.ranking.AwardPoints(ctx, &dto.AwardPointsRequest{
		UserID:         event.UserID,
		Activity:       enums.ActivityContentRejected,
		ReferenceID:    &postID,
		ReferenceType:  string(enums.TargetPost),
		Description:    truncateRunes("Confession rejected: "+event.Reason, 255),
		IdempotencyKey: event.EventID,
	})
	if err != nil {
		return err
	}

	switch event.ReasonCode {
	case enums.ReasonSpam:
		err = r.ranking.HandleSpamDetected(ctx, event.UserID, enums.TargetPost, postID)
	case enums.ReasonInappropriate, enums.ReasonOffensive:
		err = r.ranking.HandleInappropriateContent(ctx, event.UserID, enums.TargetPost, postID)
	}
	if err != nil {
		r.logger.Warn("违规扣分失败", zap.Int64("userID", event.UserID), zap.Uint64("postID", postID), zap.Error(err))
	}
	return nil
}
