package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/confession_service/internal/testlog"
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/myErrors"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRejectionDraft_SaveTakeExpire(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewRejectionDraftRepository(client, time.Minute, testlog.New(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, 10)
	assert.ErrorIs(t, err, myErrors.ErrCacheMiss)

	require.NoError(t, repo.Save(ctx, &RejectionDraft{AdminID: 10, PostID: 42, StartedAt: time.Now()}))
	draft, err := repo.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), draft.PostID)

	// 新草稿覆盖旧草稿
	require.NoError(t, repo.Save(ctx, &RejectionDraft{AdminID: 10, PostID: 43}))
	draft, err = repo.Take(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(43), draft.PostID)

	_, err = repo.Take(ctx, 10)
	assert.ErrorIs(t, err, myErrors.ErrCacheMiss)

	require.NoError(t, repo.Save(ctx, &RejectionDraft{AdminID: 11, PostID: 1}))
	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, 11)
	assert.ErrorIs(t, err, myErrors.ErrCacheMiss)
	assert.NoError(t, repo.Clear(ctx, 11))
}

func TestRankCache_RoundTripAndInvalidate(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRankCache(client, time.Minute, testlog.New(t))
	ctx := context.Background()

	require.NoError(t, cache.SetSnapshot(ctx, &vo.RankSnapshot{UserID: 5, RankName: "Junior", TotalPoints: 300}))
	got, err := cache.GetSnapshot(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Junior", got.RankName)

	require.NoError(t, cache.Invalidate(ctx, 5, 6))
	_, err = cache.GetSnapshot(ctx, 5)
	assert.ErrorIs(t, err, myErrors.ErrCacheMiss)

	// 损坏的数据按未命中处理并被删除
	require.NoError(t, mr.Set("confession:rank:7", "{not json"))
	_, err = cache.GetSnapshot(ctx, 7)
	assert.ErrorIs(t, err, myErrors.ErrCacheMiss)
	assert.False(t, mr.Exists("confession:rank:7"))
}

func TestRankCache_InvalidateAllKeepsOtherKeys(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRankCache(client, time.Minute, testlog.New(t))
	ctx := context.Background()

	for uid := int64(1); uid <= 450; uid++ {
		require.NoError(t, cache.SetSnapshot(ctx, &vo.RankSnapshot{UserID: uid}))
	}
	require.NoError(t, mr.Set("confession:rejection_draft:1", "{}"))

	n, err := cache.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(450), n)
	_, err = cache.GetSnapshot(ctx, 3)
	assert.ErrorIs(t, err, myErrors.ErrCacheMiss)
	assert.True(t, mr.Exists("confession:rejection_draft:1"))

	n, err = cache.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplyDraft_TakeOnce(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewReplyDraftRepository(client, time.Minute, testlog.New(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &ReplyDraft{AdminID: 3, MessageID: 12, StartedAt: time.Now()}))
	draft, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), draft.MessageID)

	draft, err = repo.Take(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), draft.MessageID)
	_, err = repo.Take(ctx, 3)
	assert.ErrorIs(t, err, myErrors.ErrCacheMiss)

	require.NoError(t, mr.Set("confession:reply_draft:4", "oops"))
	_, err = repo.Get(ctx, 4)
	assert.ErrorIs(t, err, myErrors.ErrCacheMiss)
}
