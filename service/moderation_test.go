package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/myErrors"
	"github.com/Xushengqwer/confession_service/repo/store"
)

func channelMessage() interface{} {
	return mock.MatchedBy(func(m messaging.OutgoingMessage) bool { return m.ChatID == testChannelID })
}

func TestApprove_AssignsNextNumberAndPublishes(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	ctx := context.Background()

	f.createPost(t, &entities.Post{UserID: 500, Status: enums.StatusApproved, PostNumber: int64Ptr(41)})
	post := f.createPost(t, &entities.Post{ID: 42, UserID: 501})

	result, err := f.moderation.Approve(ctx, post.ID, 9001)
	require.NoError(t, err)
	assert.True(t, result.Applied())
	assert.Equal(t, enums.StatusApproved, result.Status)
	require.NotNil(t, result.PostNumber)
	assert.Equal(t, int64(42), *result.PostNumber)
	assert.Equal(t, vo.PublishPosted, result.Channel.Status)
	assert.True(t, result.Notify.Delivered)
	assert.True(t, result.LedgerDispatched)
	assert.Equal(t, "✅ Approved and posted to channel as Post #42.", result.Message)

	stored, err := f.posts.GetPostByID(ctx, nil, post.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ChannelMessageID)
	assert.Equal(t, int64(555), *stored.ChannelMessageID)
	assert.Equal(t, int64(9001), *stored.ApprovedBy)
	assert.NotNil(t, stored.ApprovedAt)

	f.messenger.AssertCalled(t, "Send", mock.Anything, mock.MatchedBy(func(m messaging.OutgoingMessage) bool {
		return m.ChatID == testChannelID &&
			strings.HasPrefix(m.Text, "Confess # 42\n\n") &&
			strings.HasSuffix(m.Text, "#Love #CampusLife") &&
			len(m.Buttons) == 2
	}))

	evts := f.publisher.moderationEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, enums.StatusApproved, evts[0].Status)
	assert.Equal(t, int64(501), evts[0].UserID)
	assert.Equal(t, int64(42), evts[0].PostNumber)
	assert.NotEmpty(t, evts[0].EventID)

	actions := f.auditActions(t, enums.TargetPost, post.ID)
	require.Len(t, actions, 1)
	assert.Equal(t, enums.ActionApprovePost, actions[0].ActionType)
}

func TestApprove_SecondAdminSeesAlreadyApproved(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	ctx := context.Background()
	post := f.createPost(t, &entities.Post{ID: 42, UserID: 501})

	first, err := f.moderation.Approve(ctx, post.ID, 1)
	require.NoError(t, err)
	require.True(t, first.Applied())

	second, err := f.moderation.Approve(ctx, post.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, vo.OutcomeAlreadyApproved, second.Outcome)
	require.NotNil(t, second.HandledBy)
	assert.Equal(t, int64(1), *second.HandledBy)
	assert.Equal(t, *first.PostNumber, *second.PostNumber)
	assert.Nil(t, second.Channel)

	// 只有第一次产生事件和审计
	assert.Len(t, f.publisher.moderationEvents(), 1)
	assert.Len(t, f.auditActions(t, enums.TargetPost, post.ID), 1)
}

func TestReject_AlreadyRejectedPost(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	ctx := context.Background()
	post := f.createPost(t, &entities.Post{UserID: 7})

	first, err := f.moderation.Reject(ctx, post.ID, 3, enums.ReasonSpam, "")
	require.NoError(t, err)
	require.True(t, first.Applied())
	assert.Equal(t, "Spam or Duplicate", first.RejectionReason)

	again, err := f.moderation.Reject(ctx, post.ID, 4, enums.ReasonRules, "")
	require.NoError(t, err)
	assert.Equal(t, vo.OutcomeAlreadyRejected, again.Outcome)
	assert.Equal(t, int64(3), *again.HandledBy)
	assert.Equal(t, "Spam or Duplicate", again.RejectionReason)

	approve, err := f.moderation.Approve(ctx, post.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, vo.OutcomeAlreadyRejected, approve.Outcome)

	stored, err := f.posts.GetPostByID(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PostNumber)
	assert.Equal(t, int64(3), *stored.RejectedByAdmin)
	assert.NotNil(t, stored.RejectionTimestamp)
}

func TestApprove_ChannelUnreachableStillApproves(t *testing.T) {
	f := newFixture(t)
	f.messenger.On("Send", mock.Anything, channelMessage()).
		Return(messaging.MessageRef{}, messaging.ErrChatUnreachable).Once()
	f.acceptAllMessages()
	ctx := context.Background()
	post := f.createPost(t, &entities.Post{UserID: 11})

	result, err := f.moderation.Approve(ctx, post.ID, 1)
	require.NoError(t, err)
	assert.True(t, result.Applied())
	assert.Equal(t, vo.PublishUnreachable, result.Channel.Status)
	assert.Equal(t, "✅ Approved as Post #1. (Channel not accessible - post saved locally)", result.Message)

	stored, err := f.posts.GetPostByID(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.StatusApproved, stored.Status)
	assert.Nil(t, stored.ChannelMessageID)
}

func TestApprove_ChannelFailureAndNotifyFailure(t *testing.T) {
	f := newFixture(t)
	f.messenger.On("Send", mock.Anything, channelMessage()).
		Return(messaging.MessageRef{}, assert.AnError).Once()
	f.messenger.On("Send", mock.Anything, mock.Anything).
		Return(messaging.MessageRef{}, messaging.ErrChatUnreachable).Once()
	ctx := context.Background()
	post := f.createPost(t, &entities.Post{UserID: 12})

	result, err := f.moderation.Approve(ctx, post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, vo.PublishFailed, result.Channel.Status)
	assert.False(t, result.Notify.Delivered)
	assert.NotEmpty(t, result.Notify.Reason)
	assert.Contains(t, result.Message, "failed to post to channel")
}

func TestApprove_NoChannelConfigured(t *testing.T) {
	f := newFixture(t, withTelegram(config.TelegramConfig{}))
	f.acceptAllMessages()
	post := f.createPost(t, &entities.Post{UserID: 13})

	result, err := f.moderation.Approve(context.Background(), post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, vo.PublishUnreachable, result.Channel.Status)
	f.messenger.AssertNotCalled(t, "Send", mock.Anything, channelMessage())
}

func TestApprove_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.moderation.Approve(context.Background(), 999, 1)
	assert.ErrorIs(t, err, myErrors.ErrNotFound)
}

func TestApprove_ConcurrentAdminsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	post := f.createPost(t, &entities.Post{UserID: 20})

	const admins = 5
	results := make([]*vo.ModerationResult, admins)
	errs := make([]error, admins)
	var wg sync.WaitGroup
	for i := 0; i < admins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.moderation.Approve(context.Background(), post.ID, int64(100+i))
		}(i)
	}
	wg.Wait()

	applied := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].Applied() {
			applied++
		} else {
			assert.Equal(t, vo.OutcomeAlreadyApproved, results[i].Outcome)
		}
	}
	assert.Equal(t, 1, applied)
	assert.Len(t, f.publisher.moderationEvents(), 1)
}

func TestApprove_NumbersAreSequentialAcrossPosts(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()

	var ids []uint64
	for i := 0; i < 4; i++ {
		ids = append(ids, f.createPost(t, &entities.Post{UserID: int64(30 + i)}).ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			_, err := f.moderation.Approve(context.Background(), id, 1)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	var numbers []int64
	require.NoError(t, f.db.Model(&entities.Post{}).Order("post_number").Pluck("post_number", &numbers).Error)
	assert.Equal(t, []int64{1, 2, 3, 4}, numbers)
}

func TestReject_ReasonValidation(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	ctx := context.Background()
	post := f.createPost(t, &entities.Post{UserID: 40})

	_, err := f.moderation.Reject(ctx, post.ID, 1, enums.ReasonCustom, "   ")
	assert.ErrorIs(t, err, myErrors.ErrValidation)

	_, err = f.moderation.Reject(ctx, post.ID, 1, enums.ReasonCustom, strings.Repeat("字", 501))
	assert.ErrorIs(t, err, myErrors.ErrValidation)
	assert.Contains(t, myErrors.UserMessage(err), "501/500")

	_, err = f.moderation.Reject(ctx, post.ID, 1, enums.RejectionReason("bogus"), "")
	assert.ErrorIs(t, err, myErrors.ErrValidation)

	// 校验失败不改变状态
	stored, err := f.posts.GetPostByID(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.StatusPending, stored.Status)

	result, err := f.moderation.Reject(ctx, post.ID, 1, enums.ReasonCustom, "  "+strings.Repeat("字", 500)+"  ")
	require.NoError(t, err)
	assert.True(t, result.Applied())
	assert.Equal(t, strings.Repeat("字", 500), result.RejectionReason)
}

func TestCustomRejectionFlow(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	ctx := context.Background()
	post := f.createPost(t, &entities.Post{UserID: 50})

	prompt, err := f.moderation.StartCustomRejection(ctx, 77, post.ID, &messaging.MessageRef{ChatID: 77, MessageID: 3})
	require.NoError(t, err)
	assert.Equal(t, post.ID, prompt.PostID)
	assert.Equal(t, 500, prompt.MaxLength)

	// 空原因：报错但草稿仍在
	_, err = f.moderation.SubmitCustomRejection(ctx, 77, " \n ")
	assert.ErrorIs(t, err, myErrors.ErrValidation)
	draft, err := f.moderation.PendingCustomRejection(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, post.ID, draft.PostID)
	assert.Equal(t, 3, draft.MessageID)

	result, err := f.moderation.SubmitCustomRejection(ctx, 77, "Contains a phone number")
	require.NoError(t, err)
	assert.True(t, result.Applied())
	assert.Equal(t, "Contains a phone number", result.RejectionReason)

	_, err = f.moderation.PendingCustomRejection(ctx, 77)
	assert.ErrorIs(t, err, myErrors.ErrCacheMiss)

	_, err = f.moderation.SubmitCustomRejection(ctx, 77, "again")
	assert.ErrorIs(t, err, myErrors.ErrValidation)
}

func TestCancelRejection_HasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.createPost(t, &entities.Post{UserID: 60})

	_, err := f.moderation.StartCustomRejection(ctx, 88, post.ID, nil)
	require.NoError(t, err)

	cancelled, err := f.moderation.CancelRejection(ctx, 88, 0)
	require.NoError(t, err)
	assert.Equal(t, post.ID, cancelled.PostID)

	stored, err := f.posts.GetPostByID(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.StatusPending, stored.Status)
	assert.Empty(t, f.auditActions(t, enums.TargetPost, post.ID))
	assert.Empty(t, f.publisher.moderationEvents())
	f.messenger.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

	_, err = f.moderation.CancelRejection(ctx, 88, 0)
	assert.ErrorIs(t, err, myErrors.ErrValidation)
}

func TestStartCustomRejection_AlreadyHandled(t *testing.T) {
	f := newFixture(t)
	post := f.createPost(t, &entities.Post{UserID: 61, Status: enums.StatusApproved, ApprovedBy: int64Ptr(5), PostNumber: int64Ptr(9)})

	_, err := f.moderation.StartCustomRejection(context.Background(), 88, post.ID, nil)
	assert.ErrorIs(t, err, myErrors.ErrAlreadyTransitioned)
	assert.Contains(t, myErrors.UserMessage(err), "post #9")
}

func TestFlagAndBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.createPost(t, &entities.Post{UserID: 70})

	require.NoError(t, f.moderation.Flag(ctx, post.ID, 1))
	require.NoError(t, f.moderation.Flag(ctx, post.ID, 1))
	stored, err := f.posts.GetPostByID(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.True(t, stored.Flagged)
	assert.Equal(t, enums.StatusPending, stored.Status)
	assert.Empty(t, f.auditActions(t, enums.TargetPost, post.ID))
	assert.Empty(t, f.publisher.moderationEvents())
	assert.ErrorIs(t, f.moderation.Flag(ctx, 12345, 1), myErrors.ErrNotFound)

	blocked, err := f.moderation.IsBlocked(ctx, 70)
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, f.moderation.BlockUser(ctx, 70, 1))
	blocked, err = f.moderation.IsBlocked(ctx, 70)
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, f.moderation.UnblockUser(ctx, 70, 1))
	blocked, err = f.moderation.IsBlocked(ctx, 70)
	require.NoError(t, err)
	assert.False(t, blocked)

	actions := f.auditActions(t, enums.TargetUser, 70)
	require.Len(t, actions, 2)
	assert.Equal(t, enums.ActionBlockUser, actions[0].ActionType)
	assert.Equal(t, enums.ActionUnblockUser, actions[1].ActionType)
}

func TestBulkApprove(t *testing.T) {
	f := newFixture(t)
	f.acceptAllMessages()
	ctx := context.Background()
	a := f.createPost(t, &entities.Post{UserID: 80})
	b := f.createPost(t, &entities.Post{UserID: 81, Status: enums.StatusRejected, RejectedByAdmin: int64Ptr(2)})

	result, err := f.moderation.BulkApprove(ctx, []uint64{a.ID, b.ID, a.ID, 9999}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 1, result.AlreadyHandled)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Errors, uint64(9999))
}

// racingPostRepo 第一次读取投稿之后执行 race，模拟另一位管理员在读取和条件更新之间完成审核
type racingPostRepo struct {
	store.PostRepository
	once sync.Once
	race func()
}

func (r *racingPostRepo) GetPostByID(ctx context.Context, db *gorm.DB, id uint64) (*entities.Post, error) {
	post, err := r.PostRepository.GetPostByID(ctx, db, id)
	r.once.Do(r.race)
	return post, err
}

func TestReject_ApprovedBetweenReadAndClaim(t *testing.T) {
	var racing *racingPostRepo
	f := newFixture(t, withPostRepo(func(inner store.PostRepository) store.PostRepository {
		racing = &racingPostRepo{PostRepository: inner}
		return racing
	}))
	f.acceptAllMessages()
	post := f.createPost(t, &entities.Post{UserID: 25})
	racing.race = func() {
		ok, err := f.posts.ClaimApproval(context.Background(), nil, post.ID, 7, 1, time.Now())
		require.NoError(t, err)
		require.True(t, ok)
	}

	result, err := f.moderation.Reject(context.Background(), post.ID, 8, enums.ReasonSpam, "")
	require.NoError(t, err)
	assert.False(t, result.Applied())
	assert.Equal(t, vo.OutcomeAlreadyApproved, result.Outcome)
	require.NotNil(t, result.HandledBy)
	assert.Equal(t, int64(7), *result.HandledBy)

	// 失败的一方不发事件、不通知投稿人
	assert.Empty(t, f.publisher.moderationEvents())
	f.messenger.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

	got, err := f.posts.GetPostByID(context.Background(), nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.StatusApproved, got.Status)
	assert.Nil(t, got.RejectionReason)
}
