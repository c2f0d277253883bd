package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/constant"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/dto"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/myErrors"
)

func intPtr(v int) *int { return &v }

func bonus(userID int64, points int, key string) *dto.AwardPointsRequest {
	return &dto.AwardPointsRequest{
		UserID:         userID,
		Activity:       enums.ActivityAchievementEarned,
		Points:         intPtr(points),
		IdempotencyKey: key,
	}
}

func (f *fixture) userRanking(t *testing.T, userID int64) *entities.UserRanking {
	t.Helper()
	r, err := f.rankings.GetRanking(context.Background(), userID)
	require.NoError(t, err)
	return r
}

func TestAwardPoints_ZeroDeltaWritesNothing(t *testing.T) {
	f := newFixture(t, withRanking(config.RankingConfig{PointValues: map[string]int{"reaction_given": 0}}))
	ctx := context.Background()

	require.NoError(t, f.ranking.HandleReactionGiven(ctx, 10, enums.TargetPost, 1))

	_, err := f.ranking.GetUserRank(ctx, 10)
	assert.ErrorIs(t, err, myErrors.ErrNotFound)
	assert.Zero(t, f.count(t, &entities.PointTransaction{}))
}

func TestAwardPoints_UnknownActivity(t *testing.T) {
	f := newFixture(t)
	_, err := f.ranking.AwardPoints(context.Background(), &dto.AwardPointsRequest{UserID: 1, Activity: "teleport"})
	assert.ErrorIs(t, err, myErrors.ErrValidation)
}

func TestAwardPoints_RankUpNotifiesAndHighestNeverDrops(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	ctx := context.Background()

	res, err := f.ranking.AwardPoints(ctx, bonus(20, 150, "b1"))
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.True(t, res.RankedUp())
	assert.Equal(t, 1, res.PreviousRankID)
	assert.Equal(t, 2, res.CurrentRankID)
	f.messenger.AssertCalled(t, "Send", mock.Anything, mock.MatchedBy(func(m messaging.OutgoingMessage) bool {
		return m.ChatID == 20 && strings.Contains(m.Text, "Sophomore")
	}))

	res, err = f.ranking.AwardPoints(ctx, bonus(20, -100, "b2"))
	require.NoError(t, err)
	assert.False(t, res.RankedUp())
	assert.Equal(t, 50, res.TotalPoints)
	assert.Equal(t, 1, res.CurrentRankID)

	r := f.userRanking(t, 20)
	assert.Equal(t, 1, r.CurrentRankID)
	assert.Equal(t, 2, r.HighestRankAchieved)
}

func TestAwardPoints_NegativeTotalFallsBackToLowestRank(t *testing.T) {
	f := newFixture(t)
	res, err := f.ranking.AwardPoints(context.Background(), &dto.AwardPointsRequest{UserID: 21, Activity: enums.ActivityInappropriateContent})
	require.NoError(t, err)
	assert.Equal(t, -15, res.TotalPoints)
	assert.Equal(t, 1, res.CurrentRankID)
}

func TestAwardPoints_IdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &dto.AwardPointsRequest{UserID: 30, Activity: enums.ActivityConfessionApproved, IdempotencyKey: "evt-1"}

	first, err := f.ranking.AwardPoints(ctx, req)
	require.NoError(t, err)
	assert.True(t, first.Applied)

	second, err := f.ranking.AwardPoints(ctx, req)
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.Equal(t, 10, second.TotalPoints)

	assert.Equal(t, int64(1), f.count(t, &entities.PointTransaction{}))
	r := f.userRanking(t, 30)
	assert.Equal(t, 10, r.TotalPoints)
	assert.Equal(t, 10, r.WeeklyPoints)
	assert.Equal(t, 10, r.MonthlyPoints)
}

func TestAwardPoints_Streak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	award := func(at time.Time) int {
		f.ranking.now = func() time.Time { return at }
		res, err := f.ranking.AwardPoints(ctx, &dto.AwardPointsRequest{UserID: 40, Activity: enums.ActivityDailyLogin})
		require.NoError(t, err)
		return res.StreakDays
	}

	assert.Equal(t, 1, award(day))
	assert.Equal(t, 1, award(day.Add(12*time.Hour)))
	assert.Equal(t, 2, award(day.Add(24*time.Hour)))
	assert.Equal(t, 3, award(day.Add(48*time.Hour)))
	assert.Equal(t, 1, award(day.Add(5*24*time.Hour)))

	// 非每日活动不影响连续天数
	f.ranking.now = func() time.Time { return day.Add(9 * 24 * time.Hour) }
	res, err := f.ranking.AwardPoints(ctx, &dto.AwardPointsRequest{UserID: 40, Activity: enums.ActivityReactionGiven})
	require.NoError(t, err)
	assert.Equal(t, 1, res.StreakDays)
}

func TestNextStreak(t *testing.T) {
	shanghai := time.FixedZone("UTC+8", 8*3600)
	last := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC) // 上海时间 23:00

	tests := []struct {
		name    string
		current int
		last    *time.Time
		now     time.Time
		loc     *time.Location
		want    int
	}{
		{"first activity", 0, nil, last, time.UTC, 1},
		{"zero streak with timestamp", 0, &last, last, time.UTC, 1},
		{"same day", 4, &last, last.Add(5 * time.Hour), time.UTC, 4},
		{"next day", 4, &last, last.Add(20 * time.Hour), time.UTC, 5},
		{"gap", 4, &last, last.Add(72 * time.Hour), time.UTC, 1},
		{"clock moved back", 4, &last, last.Add(-48 * time.Hour), time.UTC, 4},
		{"next day in local zone", 4, &last, last.Add(2 * time.Hour), shanghai, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextStreak(tt.current, tt.last, tt.now, tt.loc))
		})
	}
}

func TestGetUserRank_SnapshotAndCacheInvalidation(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	ctx := context.Background()

	_, err := f.ranking.AwardPoints(ctx, bonus(50, 240, "s1"))
	require.NoError(t, err)

	snap, err := f.ranking.GetUserRank(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.RankLevel)
	assert.Equal(t, "Sophomore", snap.RankName)
	assert.Equal(t, 240, snap.TotalPoints)
	assert.Equal(t, 9, snap.PointsToNext)
	assert.Equal(t, 249, snap.NextRankPoints)
	assert.False(t, snap.IsSpecialRank)

	key := constant.RankSnapshotPrefix + strconv.FormatInt(50, 10)
	assert.True(t, f.mr.Exists(key))

	_, err = f.ranking.AwardPoints(ctx, bonus(50, 2300, "s2"))
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(key))

	snap, err = f.ranking.GetUserRank(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, "Master", snap.RankName)
	assert.True(t, snap.IsSpecialRank)
	assert.Equal(t, true, snap.SpecialPerks["comment_badge"])
}

func TestCheckAndAwardAchievements(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	ctx := context.Background()
	f.createPost(t, &entities.Post{UserID: 60, Status: enums.StatusApproved, PostNumber: int64Ptr(1)})

	earned, err := f.ranking.CheckAndAwardAchievements(ctx, 60)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, "first_confession", earned[0].Type)
	assert.Equal(t, 10, earned[0].Points)

	again, err := f.ranking.CheckAndAwardAchievements(ctx, 60)
	require.NoError(t, err)
	assert.Empty(t, again)

	r := f.userRanking(t, 60)
	assert.Equal(t, 10, r.TotalPoints)
	assert.Equal(t, 1, r.TotalAchievements)

	list, err := f.ranking.GetUserAchievements(ctx, 60, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "First Confession", list[0].Name)
}

func TestLedgerReactor_ApproveAndReject(t *testing.T) {
	f := newFixture(t, withLedger())
	f.acceptAllMessages()
	ctx := context.Background()
	approved := f.createPost(t, &entities.Post{UserID: 70})
	rejected := f.createPost(t, &entities.Post{UserID: 71})

	res, err := f.moderation.Approve(ctx, approved.ID, 1)
	require.NoError(t, err)
	assert.True(t, res.LedgerDispatched)

	// 通过 10 + 每日奖励 1 + 首次投稿成就 10
	r := f.userRanking(t, 70)
	assert.Equal(t, 21, r.TotalPoints)
	assert.Equal(t, 1, r.ConsecutiveDays)

	// 拒绝 -5，以垃圾信息为由再扣 10
	_, err = f.moderation.Reject(ctx, rejected.ID, 1, enums.ReasonSpam, "")
	require.NoError(t, err)
	assert.Equal(t, -15, f.userRanking(t, 71).TotalPoints)

	// 事件重投不会重复记账
	evts := f.publisher.moderationEvents()
	require.Len(t, evts, 2)
	require.NoError(t, DispatchModerationEvent(ctx, f.publisher.forward, evts[0]))
	require.NoError(t, DispatchModerationEvent(ctx, f.publisher.forward, evts[1]))
	assert.Equal(t, 21, f.userRanking(t, 70).TotalPoints)
	assert.Equal(t, -15, f.userRanking(t, 71).TotalPoints)
}

func TestLedgerReactor_RejectWithoutPenaltyReason(t *testing.T) {
	f := newFixture(t, withLedger())
	f.acceptAllMessages()
	ctx := context.Background()
	low := f.createPost(t, &entities.Post{UserID: 72})
	offensive := f.createPost(t, &entities.Post{UserID: 73})

	_, err := f.moderation.Reject(ctx, low.ID, 1, enums.ReasonLowQuality, "")
	require.NoError(t, err)
	assert.Equal(t, -5, f.userRanking(t, 72).TotalPoints)

	_, err = f.moderation.Reject(ctx, offensive.ID, 1, enums.ReasonOffensive, "")
	require.NoError(t, err)
	assert.Equal(t, -20, f.userRanking(t, 73).TotalPoints)
}

func TestPenaltyHooks_OncePerContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ranking.HandleSpamDetected(ctx, 74, enums.TargetComment, 5))
	require.NoError(t, f.ranking.HandleSpamDetected(ctx, 74, enums.TargetComment, 5))
	assert.Equal(t, -10, f.userRanking(t, 74).TotalPoints)

	require.NoError(t, f.ranking.HandleInappropriateContent(ctx, 74, enums.TargetComment, 5))
	require.NoError(t, f.ranking.HandleInappropriateContent(ctx, 74, enums.TargetPost, 5))
	assert.Equal(t, -40, f.userRanking(t, 74).TotalPoints)

	var txs []entities.PointTransaction
	require.NoError(t, f.db.Where("user_id = ?", 74).Order("id").Find(&txs).Error)
	require.Len(t, txs, 3)
	assert.Equal(t, string(enums.ActivitySpamDetected), txs[0].TransactionType)
	assert.Equal(t, "Spam detected in comment", txs[0].Description)
	assert.Equal(t, "Inappropriate content in post", txs[2].Description)
}

func TestReconcile_FixesDriftedTotals(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	ctx := context.Background()
	for _, uid := range []int64{80, 81, 82} {
		_, err := f.ranking.AwardPoints(ctx, bonus(uid, 300, "r"+strconv.FormatInt(uid, 10)))
		require.NoError(t, err)
	}
	require.NoError(t, f.db.Model(&entities.UserRanking{}).Where("user_id = ?", 81).
		Updates(map[string]interface{}{"total_points": 5, "current_rank_id": 1}).Error)

	report, err := f.ranking.Reconcile(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, report.UsersChecked)
	assert.Equal(t, 1, report.UsersFixed)

	r := f.userRanking(t, 81)
	assert.Equal(t, 300, r.TotalPoints)
	assert.Equal(t, 3, r.CurrentRankID)

	report, err = f.ranking.Reconcile(ctx, 2, 2)
	require.NoError(t, err)
	assert.Zero(t, report.UsersFixed)
}

func TestHandleReactionReceived_ViralBonusOnce(t *testing.T) {
	f := newFixture(t, withRanking(config.RankingConfig{ViralLikeThreshold: 2}))
	ctx := context.Background()
	post := f.createPost(t, &entities.Post{UserID: 90, Status: enums.StatusApproved})
	f.react(t, 1, enums.TargetPost, post.ID)

	require.NoError(t, f.ranking.HandleReactionReceived(ctx, 90, enums.TargetPost, post.ID, "like"))
	assert.Equal(t, 1, f.userRanking(t, 90).TotalPoints)

	f.react(t, 2, enums.TargetPost, post.ID)
	require.NoError(t, f.ranking.HandleReactionReceived(ctx, 90, enums.TargetPost, post.ID, "like"))
	assert.Equal(t, 52, f.userRanking(t, 90).TotalPoints)

	f.react(t, 3, enums.TargetPost, post.ID)
	require.NoError(t, f.ranking.HandleReactionReceived(ctx, 90, enums.TargetPost, post.ID, "like"))
	assert.Equal(t, 53, f.userRanking(t, 90).TotalPoints)

	require.NoError(t, f.ranking.HandleReactionReceived(ctx, 90, enums.TargetPost, post.ID, "dislike"))
	assert.Equal(t, 53, f.userRanking(t, 90).TotalPoints)
}

func TestHandleCommentPosted_QualityThreshold(t *testing.T) {
	f := newFixture(t, withRanking(config.RankingConfig{QualityCommentThreshold: 10}))
	f.acceptAllMessages()
	ctx := context.Background()

	require.NoError(t, f.ranking.HandleCommentPosted(ctx, 95, 1, "short"))
	assert.Equal(t, 2, f.userRanking(t, 95).TotalPoints)

	require.NoError(t, f.ranking.HandleCommentPosted(ctx, 95, 2, "this one is long enough"))
	assert.Equal(t, 7, f.userRanking(t, 95).TotalPoints)

	// 同一条评论重复上报
	require.NoError(t, f.ranking.HandleCommentPosted(ctx, 95, 2, "this one is long enough"))
	assert.Equal(t, 7, f.userRanking(t, 95).TotalPoints)
}

func TestResetPeriodicPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ranking.AwardPoints(ctx, bonus(99, 40, "p"))
	require.NoError(t, err)

	// 先把快照写进缓存
	snap, err := f.ranking.GetUserRank(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, 40, snap.WeeklyPoints)
	require.True(t, f.mr.Exists(constant.RankSnapshotPrefix+"99"))

	n, err := f.ranking.ResetWeeklyPoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	r := f.userRanking(t, 99)
	assert.Zero(t, r.WeeklyPoints)
	assert.Equal(t, 40, r.MonthlyPoints)
	assert.False(t, f.mr.Exists(constant.RankSnapshotPrefix+"99"))

	snap, err = f.ranking.GetUserRank(ctx, 99)
	require.NoError(t, err)
	assert.Zero(t, snap.WeeklyPoints)
	assert.Equal(t, 40, snap.MonthlyPoints)

	_, err = f.ranking.ResetMonthlyPoints(ctx)
	require.NoError(t, err)
	r = f.userRanking(t, 99)
	assert.Zero(t, r.MonthlyPoints)
	assert.Equal(t, 40, r.TotalPoints)

	snap, err = f.ranking.GetUserRank(ctx, 99)
	require.NoError(t, err)
	assert.Zero(t, snap.MonthlyPoints)
}

func TestAwardPoints_ConcurrentWritersKeepLedgerConsistent(t *testing.T) {
	f := newFixture(t, withConcurrentDB())
	f.acceptAllMessages()
	ctx := context.Background()

	const (
		workers = 8
		awards  = 10
	)
	users := []int64{150, 151}
	var wg sync.WaitGroup
	errs := make(chan error, workers*awards)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < awards; i++ {
				uid := users[(w+i)%len(users)]
				_, err := f.ranking.AwardPoints(ctx, bonus(uid, w+1, fmt.Sprintf("c:%d:%d", w, i)))
				errs <- err
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	grand := 0
	for _, uid := range users {
		var ledger int
		require.NoError(t, f.db.Model(&entities.PointTransaction{}).
			Where("user_id = ?", uid).
			Select("COALESCE(SUM(points_change), 0)").Scan(&ledger).Error)
		r := f.userRanking(t, uid)
		assert.Equal(t, ledger, r.TotalPoints, "user %d", uid)
		assert.Equal(t, ledger, r.WeeklyPoints, "user %d", uid)
		grand += r.TotalPoints
	}
	// 每个 worker 记 awards 次 w+1 分
	assert.Equal(t, awards*workers*(workers+1)/2, grand)

	var count int64
	require.NoError(t, f.db.Model(&entities.PointTransaction{}).Count(&count).Error)
	assert.Equal(t, int64(workers*awards), count)
}

func TestGetUserRank_TopTierHasNoCeiling(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	ctx := context.Background()

	_, err := f.ranking.AwardPoints(ctx, bonus(160, 5200, "legend"))
	require.NoError(t, err)

	snap, err := f.ranking.GetUserRank(ctx, 160)
	require.NoError(t, err)
	assert.Equal(t, "Legend", snap.RankName)
	assert.True(t, snap.IsSpecialRank)
	assert.Zero(t, snap.PointsToNext)
	assert.Equal(t, 5200, snap.NextRankPoints)
	assert.Equal(t, true, snap.SpecialPerks["priority_review"])
}
