package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/constant"
	"github.com/Xushengqwer/confession_service/models/dto"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/myErrors"
	"github.com/Xushengqwer/confession_service/repo/store"
)

// AdminToolsService 管理员的只读查询，不修改任何数据
type AdminToolsService interface {
	// SearchUsers 纯数字按用户 ID，@ 开头按用户名，否则在用户名和姓名中查找
	SearchUsers(ctx context.Context, query string, limit int) ([]*vo.UserSummary, error)

	// GetUserDetail 没有用户记录但有内容的用户也能查到，显示为 Anonymous User
	GetUserDetail(ctx context.Context, userID int64) (*vo.UserDetail, error)

	// SearchContent 在帖子和评论中查找关键字，最新的在前。
	// type 为 all 时帖子和评论各占一半名额。
	SearchContent(ctx context.Context, req *dto.ContentSearchRequest) ([]*vo.ContentSearchResult, error)

	UserPosts(ctx context.Context, userID int64, page int) (*vo.UserPostsPage, error)
	UserComments(ctx context.Context, userID int64, page int) (*vo.UserCommentsPage, error)

	UserActivityAnalytics(ctx context.Context, userID int64) (*vo.UserActivityAnalytics, error)
}

type adminToolsService struct {
	users    store.UserRepository
	queries  store.AdminQueryRepository
	posts    store.PostRepository
	comments store.CommentRepository
	now      func() time.Time
	logger   *core.ZapLogger
}

func NewAdminToolsService(
	users store.UserRepository,
	queries store.AdminQueryRepository,
	posts store.PostRepository,
	comments store.CommentRepository,
	logger *core.ZapLogger,
) AdminToolsService {
	return &adminToolsService{
		users:    users,
		queries:  queries,
		posts:    posts,
		comments: comments,
		now:      time.Now,
		logger:   logger,
	}
}

const previewLength = 200

func (s *adminToolsService) SearchUsers(ctx context.Context, query string, limit int) ([]*vo.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, myErrors.Validation("Search query cannot be empty.")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	var q store.UserQuery
	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		q.UserID = id
	} else if name, ok := strings.CutPrefix(query, "@"); ok {
		q.Username = name
	} else {
		q.Text = query
	}
	users, err := s.users.SearchUsers(ctx, q, limit)
	if err != nil {
		s.logger.Error("搜索用户失败", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("搜索用户失败: %w", err)
	}
	out := make([]*vo.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, toUserSummary(u))
	}
	return out, nil
}

func (s *adminToolsService) GetUserDetail(ctx context.Context, userID int64) (*vo.UserDetail, error) {
	stats, err := s.queries.UserContentStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("统计用户(ID: %d)内容失败: %w", userID, err)
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, myErrors.ErrNotFound) {
			return nil, err
		}
		if stats.Approved+stats.Rejected+stats.Pending+stats.Comments == 0 {
			return nil, err
		}
		user = &entities.User{UserID: userID}
	}

	detail := &vo.UserDetail{
		User: *toUserSummary(user),
		Stats: vo.UserContentStats{
			TotalPosts:           stats.Approved + stats.Rejected + stats.Pending,
			ApprovedPosts:        stats.Approved,
			RejectedPosts:        stats.Rejected,
			PendingPosts:         stats.Pending,
			TotalComments:        stats.Comments,
			PostLikesReceived:    stats.PostLikes,
			CommentLikesReceived: stats.CommentLikes,
		},
	}

	posts, _, err := s.queries.ListUserPosts(ctx, userID, 0, constant.AdminRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("查询用户(ID: %d)投稿失败: %w", userID, err)
	}
	if detail.RecentPosts, err = s.postBriefs(ctx, posts); err != nil {
		return nil, err
	}
	comments, _, err := s.queries.ListUserComments(ctx, userID, 0, constant.AdminRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("查询用户(ID: %d)评论失败: %w", userID, err)
	}
	detail.RecentComments = commentBriefs(comments)
	return detail, nil
}

func (s *adminToolsService) SearchContent(ctx context.Context, req *dto.ContentSearchRequest) ([]*vo.ContentSearchResult, error) {
	filter := store.ContentFilter{Text: strings.TrimSpace(req.Query), UserID: req.UserID, Limit: req.Limit}
	if filter.Text == "" {
		return nil, myErrors.Validation("Search query cannot be empty.")
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if req.DateFrom != "" {
		from, err := time.ParseInLocation(time.DateOnly, req.DateFrom, time.UTC)
		if err != nil {
			return nil, myErrors.Validation("Invalid date_from, expected YYYY-MM-DD.")
		}
		filter.From = &from
	}
	if req.DateTo != "" {
		to, err := time.ParseInLocation(time.DateOnly, req.DateTo, time.UTC)
		if err != nil {
			return nil, myErrors.Validation("Invalid date_to, expected YYYY-MM-DD.")
		}
		// 含当天
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, myErrors.Validation("date_from must not be after date_to.")
	}

	var wantPosts, wantComments bool
	switch req.Type {
	case "", "all":
		wantPosts, wantComments = true, true
	case "posts":
		wantPosts = true
	case "comments":
		wantComments = true
	default:
		return nil, myErrors.Validation(fmt.Sprintf("Unknown content type %q. Use all, posts or comments.", req.Type))
	}

	limit := filter.Limit
	if wantPosts && wantComments {
		filter.Limit = max(limit/2, 1)
	}
	var results []*vo.ContentSearchResult
	if wantPosts {
		posts, err := s.queries.SearchPosts(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("搜索投稿失败: %w", err)
		}
		for _, p := range posts {
			results = append(results, &vo.ContentSearchResult{
				Type: enums.TargetPost, ID: p.ID, PostID: p.ID, UserID: p.UserID,
				Content: truncateRunes(p.Content, previewLength), Category: p.Category, Status: p.Status, CreatedAt: p.CreatedAt,
			})
		}
	}
	if wantComments {
		comments, err := s.queries.SearchComments(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("搜索评论失败: %w", err)
		}
		for _, c := range comments {
			results = append(results, &vo.ContentSearchResult{
				Type: enums.TargetComment, ID: c.ID, PostID: c.PostID, UserID: c.UserID,
				Content: truncateRunes(c.Content, previewLength), CreatedAt: c.CreatedAt,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []*vo.ContentSearchResult{}
	}
	return results, nil
}

func (s *adminToolsService) UserPosts(ctx context.Context, userID int64, page int) (*vo.UserPostsPage, error) {
	page = max(page, 1)
	posts, total, err := s.queries.ListUserPosts(ctx, userID, (page-1)*constant.AdminPageSize, constant.AdminPageSize)
	if err != nil {
		return nil, fmt.Errorf("分页查询用户(ID: %d)投稿失败: %w", userID, err)
	}
	briefs, err := s.postBriefs(ctx, posts)
	if err != nil {
		return nil, err
	}
	return &vo.UserPostsPage{Pagination: pagination(page, total), Posts: briefs}, nil
}

func (s *adminToolsService) UserComments(ctx context.Context, userID int64, page int) (*vo.UserCommentsPage, error) {
	page = max(page, 1)
	comments, total, err := s.queries.ListUserComments(ctx, userID, (page-1)*constant.AdminPageSize, constant.AdminPageSize)
	if err != nil {
		return nil, fmt.Errorf("分页查询用户(ID: %d)评论失败: %w", userID, err)
	}
	return &vo.UserCommentsPage{Pagination: pagination(page, total), Comments: commentBriefs(comments)}, nil
}

func pagination(page int, total int64) vo.Page {
	totalPages := int((total + constant.AdminPageSize - 1) / constant.AdminPageSize)
	return vo.Page{
		Page:        page,
		PerPage:     constant.AdminPageSize,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

func (s *adminToolsService) UserActivityAnalytics(ctx context.Context, userID int64) (*vo.UserActivityAnalytics, error) {
	posts, err := s.queries.UserPostSummaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询用户(ID: %d)投稿失败: %w", userID, err)
	}
	out := &vo.UserActivityAnalytics{
		UserID:         userID,
		Categories:     categoryStats(posts),
		PostsLast7Days: postsPerDay(posts, s.now().UTC(), 7),
	}

	var approved []uint64
	for _, p := range posts {
		if p.Status == enums.StatusApproved {
			approved = append(approved, p.ID)
		}
	}
	postLikes, err := s.queries.LikeCounts(ctx, enums.TargetPost, approved)
	if err != nil {
		return nil, fmt.Errorf("统计投稿点赞失败: %w", err)
	}
	var sum int64
	out.Engagement.ApprovedPosts = int64(len(approved))
	for _, id := range approved {
		n := postLikes[id]
		sum += n
		out.Engagement.MaxLikes = max(out.Engagement.MaxLikes, n)
		if n > 0 {
			out.Engagement.LikedPosts++
		}
	}
	if len(approved) > 0 {
		out.Engagement.AvgLikesPerPost = math.Round(float64(sum)/float64(len(approved))*100) / 100
	}
	if id, likes := mostLiked(approved, postLikes); likes > 0 {
		post, err := s.posts.GetPostByID(ctx, nil, id)
		if err != nil {
			return nil, err
		}
		out.MostLikedPost = &vo.MostLikedContent{ID: id, Content: truncateRunes(post.Content, previewLength), Likes: likes}
	}

	commentIDs, err := s.queries.UserCommentIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询用户(ID: %d)评论失败: %w", userID, err)
	}
	commentLikes, err := s.queries.LikeCounts(ctx, enums.TargetComment, commentIDs)
	if err != nil {
		return nil, fmt.Errorf("统计评论点赞失败: %w", err)
	}
	if id, likes := mostLiked(commentIDs, commentLikes); likes > 0 {
		comment, err := s.comments.GetCommentByID(ctx, nil, id)
		if err != nil {
			return nil, err
		}
		out.MostLikedComment = &vo.MostLikedContent{ID: id, Content: truncateRunes(comment.Content, previewLength), Likes: likes}
	}
	return out, nil
}

// mostLiked 并列时取 ids 中靠前的
func mostLiked(ids []uint64, likes map[uint64]int64) (uint64, int64) {
	var bestID uint64
	var best int64
	for _, id := range ids {
		if n := likes[id]; n > best {
			bestID, best = id, n
		}
	}
	return bestID, best
}

func categoryStats(posts []*entities.Post) []*vo.CategoryStat {
	byName := make(map[string]*vo.CategoryStat)
	for _, p := range posts {
		for _, name := range splitCategories(p.Category) {
			stat, ok := byName[name]
			if !ok {
				stat = &vo.CategoryStat{Category: name}
				byName[name] = stat
			}
			stat.Posts++
			if p.Status == enums.StatusApproved {
				stat.Approved++
			}
		}
	}
	out := make([]*vo.CategoryStat, 0, len(byName))
	for _, stat := range byName {
		out = append(out, stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Posts != out[j].Posts {
			return out[i].Posts > out[j].Posts
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func splitCategories(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return []string{"Uncategorized"}
	}
	return out
}

// postsPerDay 最近 days 天（含今天，UTC）每天的投稿数，最早的在前，没有投稿的日期也列出
func postsPerDay(posts []*entities.Post, now time.Time, days int) []*vo.DailyCount {
	counts := make(map[string]int64)
	for _, p := range posts {
		counts[p.CreatedAt.UTC().Format(time.DateOnly)]++
	}
	out := make([]*vo.DailyCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(time.DateOnly)
		out = append(out, &vo.DailyCount{Date: date, Posts: counts[date]})
	}
	return out
}

func (s *adminToolsService) postBriefs(ctx context.Context, posts []*entities.Post) ([]*vo.PostBrief, error) {
	ids := make([]uint64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	counts, err := s.queries.CommentCounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("统计评论数失败: %w", err)
	}
	out := make([]*vo.PostBrief, 0, len(posts))
	for _, p := range posts {
		out = append(out, &vo.PostBrief{
			PostID:       p.ID,
			PostNumber:   p.PostNumber,
			Content:      truncateRunes(p.Content, previewLength),
			Category:     p.Category,
			Status:       p.Status,
			Flagged:      p.Flagged,
			CommentCount: counts[p.ID],
			CreatedAt:    p.CreatedAt,
		})
	}
	return out, nil
}

func commentBriefs(comments []*entities.Comment) []*vo.CommentBrief {
	out := make([]*vo.CommentBrief, 0, len(comments))
	for _, c := range comments {
		out = append(out, &vo.CommentBrief{
			CommentID: c.ID,
			PostID:    c.PostID,
			IsReply:   c.ParentCommentID != nil,
			Content:   truncateRunes(c.Content, previewLength),
			Flagged:   c.Flagged,
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}

func toUserSummary(u *entities.User) *vo.UserSummary {
	return &vo.UserSummary{
		UserID:      u.UserID,
		Username:    u.Username,
		DisplayName: u.DisplayName(),
		Blocked:     u.Blocked,
		JoinDate:    u.CreatedAt,
	}
}
