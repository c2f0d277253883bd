package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/internal/testlog"
	"github.com/Xushengqwer/confession_service/models/dto"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/myErrors"
	"github.com/Xushengqwer/confession_service/repo/store"
	"github.com/Xushengqwer/confession_service/repo/store/storetest"
)

var toolsNow = time.Date(2026, 5, 20, 15, 0, 0, 0, time.UTC)

type toolsFixture struct {
	db    *gorm.DB
	users store.UserRepository
	svc   AdminToolsService
}

func newToolsFixture(t *testing.T) *toolsFixture {
	t.Helper()
	logger := testlog.New(t)
	db := storetest.NewDB(t)
	f := &toolsFixture{db: db, users: store.NewUserRepository(db, logger)}
	svc := NewAdminToolsService(f.users, store.NewAdminQueryRepository(db, logger),
		store.NewPostRepository(db, logger), store.NewCommentRepository(db, logger), logger)
	svc.(*adminToolsService).now = func() time.Time { return toolsNow }
	f.svc = svc
	return f
}

func (f *toolsFixture) post(t *testing.T, userID int64, status enums.ApprovalStatus, category, content string, daysAgo int) *entities.Post {
	t.Helper()
	p := &entities.Post{UserID: userID, Status: status, Category: category, Content: content,
		CreatedAt: toolsNow.AddDate(0, 0, -daysAgo)}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *toolsFixture) comment(t *testing.T, postID uint64, userID int64, content string) *entities.Comment {
	t.Helper()
	c := &entities.Comment{PostID: postID, UserID: userID, Content: content}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *toolsFixture) react(t *testing.T, userID int64, targetType enums.TargetType, id uint64, kind string) {
	t.Helper()
	require.NoError(t, f.db.Create(&entities.Reaction{UserID: userID, TargetType: targetType, TargetID: id, ReactionType: kind}).Error)
}

func TestSearchUsers(t *testing.T) {
	f := newToolsFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.UpsertProfile(ctx, &entities.User{UserID: 500, Username: "night_owl", FirstName: "Ada", LastName: "Lovelace"}))
	require.NoError(t, f.users.UpsertProfile(ctx, &entities.User{UserID: 501, Username: "daybreak"}))
	require.NoError(t, f.users.UpsertProfile(ctx, &entities.User{UserID: 502}))
	// 更新资料不影响封禁状态
	require.NoError(t, f.users.SetBlocked(ctx, 501, true))
	require.NoError(t, f.users.UpsertProfile(ctx, &entities.User{UserID: 501, Username: "daybreak"}))

	got, err := f.svc.SearchUsers(ctx, "LOVE", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada Lovelace", got[0].DisplayName)

	got, err = f.svc.SearchUsers(ctx, "@day", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "@daybreak", got[0].DisplayName)
	assert.True(t, got[0].Blocked)

	got, err = f.svc.SearchUsers(ctx, "502", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Anonymous User", got[0].DisplayName)

	// 通配符按字面匹配
	got, err = f.svc.SearchUsers(ctx, "%", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = f.svc.SearchUsers(ctx, "n_ght", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = f.svc.SearchUsers(ctx, "  ", 0)
	assert.ErrorIs(t, err, myErrors.ErrValidation)
}

func TestGetUserDetail(t *testing.T) {
	f := newToolsFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.UpsertProfile(ctx, &entities.User{UserID: 500, FirstName: "Ada"}))

	a := f.post(t, 500, enums.StatusApproved, "Love", "first", 3)
	b := f.post(t, 500, enums.StatusApproved, "Love, Campus Life", "second", 2)
	f.post(t, 500, enums.StatusRejected, "", "third", 1)
	f.post(t, 500, enums.StatusPending, "", "fourth", 0)
	other := f.post(t, 600, enums.StatusApproved, "", "not hers", 0)

	c1 := f.comment(t, other.ID, 500, "nice")
	f.comment(t, a.ID, 500, "self reply")
	f.comment(t, a.ID, 600, "hello")
	f.react(t, 1, enums.TargetPost, a.ID, "like")
	f.react(t, 2, enums.TargetPost, a.ID, "like")
	f.react(t, 3, enums.TargetPost, b.ID, "like")
	f.react(t, 4, enums.TargetPost, b.ID, "dislike")
	f.react(t, 5, enums.TargetPost, other.ID, "like")
	f.react(t, 6, enums.TargetComment, c1.ID, "like")

	detail, err := f.svc.GetUserDetail(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, "Ada", detail.User.DisplayName)
	assert.Equal(t, int64(4), detail.Stats.TotalPosts)
	assert.Equal(t, int64(2), detail.Stats.ApprovedPosts)
	assert.Equal(t, int64(1), detail.Stats.RejectedPosts)
	assert.Equal(t, int64(1), detail.Stats.PendingPosts)
	assert.Equal(t, int64(2), detail.Stats.TotalComments)
	assert.Equal(t, int64(3), detail.Stats.PostLikesReceived)
	assert.Equal(t, int64(1), detail.Stats.CommentLikesReceived)

	require.Len(t, detail.RecentPosts, 4)
	assert.Equal(t, "fourth", detail.RecentPosts[0].Content)
	assert.Equal(t, "first", detail.RecentPosts[3].Content)
	assert.Equal(t, int64(2), detail.RecentPosts[3].CommentCount)
	assert.Len(t, detail.RecentComments, 2)

	// 没有用户记录，但有内容
	anon, err := f.svc.GetUserDetail(ctx, 600)
	require.NoError(t, err)
	assert.Equal(t, "Anonymous User", anon.User.DisplayName)
	assert.Equal(t, int64(1), anon.Stats.PostLikesReceived)

	_, err = f.svc.GetUserDetail(ctx, 777)
	assert.ErrorIs(t, err, myErrors.ErrNotFound)
}

func TestUserPostsAndCommentsPaginated(t *testing.T) {
	f := newToolsFixture(t)
	ctx := context.Background()
	var first *entities.Post
	for i := 0; i < 7; i++ {
		p := f.post(t, 510, enums.StatusApproved, "", fmt.Sprintf("post %d", i), 7-i)
		if first == nil {
			first = p
		}
	}
	f.comment(t, first.ID, 510, "only comment")

	page1, err := f.svc.UserPosts(ctx, 510, 0)
	require.NoError(t, err)
	assert.Len(t, page1.Posts, 5)
	assert.Equal(t, "post 6", page1.Posts[0].Content)
	assert.Equal(t, 1, page1.Pagination.Page)
	assert.Equal(t, 2, page1.Pagination.TotalPages)
	assert.True(t, page1.Pagination.HasNext)
	assert.False(t, page1.Pagination.HasPrevious)

	page2, err := f.svc.UserPosts(ctx, 510, 2)
	require.NoError(t, err)
	require.Len(t, page2.Posts, 2)
	assert.Equal(t, int64(1), page2.Posts[1].CommentCount)
	assert.False(t, page2.Pagination.HasNext)
	assert.True(t, page2.Pagination.HasPrevious)

	comments, err := f.svc.UserComments(ctx, 510, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), comments.Pagination.Total)
	assert.Equal(t, 1, comments.Pagination.TotalPages)
	require.Len(t, comments.Comments, 1)
	assert.False(t, comments.Comments[0].IsReply)

	empty, err := f.svc.UserComments(ctx, 999, 1)
	require.NoError(t, err)
	assert.Zero(t, empty.Pagination.TotalPages)
	assert.Empty(t, empty.Comments)
}

func TestSearchContent(t *testing.T) {
	f := newToolsFixture(t)
	ctx := context.Background()
	old := f.post(t, 520, enums.StatusApproved, "Food", "coffee at dawn", 20)
	f.post(t, 521, enums.StatusPending, "", "More Coffee please", 1)
	f.post(t, 522, enums.StatusApproved, "Coffee", "category match only", 2)
	f.comment(t, old.ID, 523, "I also love coffee")
	f.comment(t, old.ID, 524, "tea person")

	all, err := f.svc.SearchContent(ctx, &dto.ContentSearchRequest{Query: "coffee"})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
	}

	comments, err := f.svc.SearchContent(ctx, &dto.ContentSearchRequest{Query: "coffee", Type: "comments"})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, enums.TargetComment, comments[0].Type)
	assert.Equal(t, old.ID, comments[0].PostID)

	recent, err := f.svc.SearchContent(ctx, &dto.ContentSearchRequest{
		Query: "coffee", Type: "posts",
		DateFrom: toolsNow.AddDate(0, 0, -5).Format(time.DateOnly), DateTo: toolsNow.Format(time.DateOnly),
	})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	byUser, err := f.svc.SearchContent(ctx, &dto.ContentSearchRequest{Query: "coffee", UserID: 521})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, int64(521), byUser[0].UserID)

	// all 时帖子和评论各占一半
	capped, err := f.svc.SearchContent(ctx, &dto.ContentSearchRequest{Query: "coffee", Limit: 2})
	require.NoError(t, err)
	require.Len(t, capped, 2)
	types := map[enums.TargetType]int{}
	for _, r := range capped {
		types[r.Type]++
	}
	assert.Equal(t, 1, types[enums.TargetPost])
	assert.Equal(t, 1, types[enums.TargetComment])

	for _, bad := range []*dto.ContentSearchRequest{
		{Query: " "},
		{Query: "coffee", Type: "users"},
		{Query: "coffee", DateFrom: "20-05-2026"},
		{Query: "coffee", DateFrom: "2026-05-20", DateTo: "2026-05-01"},
	} {
		_, err := f.svc.SearchContent(ctx, bad)
		assert.ErrorIs(t, err, myErrors.ErrValidation, bad)
	}
}

func TestUserActivityAnalytics(t *testing.T) {
	f := newToolsFixture(t)
	ctx := context.Background()
	a := f.post(t, 530, enums.StatusApproved, "Love, Campus Life", "popular one", 0)
	b := f.post(t, 530, enums.StatusApproved, "Love", "quiet one", 1)
	f.post(t, 530, enums.StatusRejected, "Regrets", "rejected", 1)
	f.post(t, 530, enums.StatusApproved, "", "old one", 30)
	c := f.comment(t, b.ID, 530, "liked comment")
	f.comment(t, b.ID, 530, "plain comment")

	for uid := int64(1); uid <= 3; uid++ {
		f.react(t, uid, enums.TargetPost, a.ID, "like")
	}
	f.react(t, 1, enums.TargetPost, b.ID, "like")
	f.react(t, 2, enums.TargetPost, b.ID, "dislike")
	f.react(t, 1, enums.TargetComment, c.ID, "like")

	got, err := f.svc.UserActivityAnalytics(ctx, 530)
	require.NoError(t, err)

	require.NotNil(t, got.MostLikedPost)
	assert.Equal(t, a.ID, got.MostLikedPost.ID)
	assert.Equal(t, int64(3), got.MostLikedPost.Likes)
	require.NotNil(t, got.MostLikedComment)
	assert.Equal(t, c.ID, got.MostLikedComment.ID)

	assert.Equal(t, int64(3), got.Engagement.ApprovedPosts)
	assert.Equal(t, int64(3), got.Engagement.MaxLikes)
	assert.Equal(t, int64(2), got.Engagement.LikedPosts)
	assert.InDelta(t, 1.33, got.Engagement.AvgLikesPerPost, 0.001)

	require.NotEmpty(t, got.Categories)
	assert.Equal(t, "Love", got.Categories[0].Category)
	assert.Equal(t, int64(2), got.Categories[0].Posts)
	assert.Equal(t, int64(2), got.Categories[0].Approved)
	names := make([]string, 0, len(got.Categories))
	for _, cat := range got.Categories {
		names = append(names, cat.Category)
	}
	assert.ElementsMatch(t, []string{"Love", "Campus Life", "Regrets", "Uncategorized"}, names)

	require.Len(t, got.PostsLast7Days, 7)
	assert.Equal(t, "2026-05-14", got.PostsLast7Days[0].Date)
	assert.Equal(t, "2026-05-20", got.PostsLast7Days[6].Date)
	assert.Equal(t, int64(1), got.PostsLast7Days[6].Posts)
	assert.Equal(t, int64(2), got.PostsLast7Days[5].Posts)
	assert.Zero(t, got.PostsLast7Days[0].Posts)

	empty, err := f.svc.UserActivityAnalytics(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, empty.MostLikedPost)
	assert.Zero(t, empty.Engagement.AvgLikesPerPost)
}
