package store

import (
	"context"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
)

// ContentFilter 内容搜索条件，零值字段不参与过滤
type ContentFilter struct {
	Text   string
	UserID int64
	From   *time.Time
	To     *time.Time // 不含
	Limit  int
}

// UserContentStats 用户投稿和评论的计数
type UserContentStats struct {
	Approved     int64
	Rejected     int64
	Pending      int64
	Comments     int64
	PostLikes    int64 // 收到的 like
	CommentLikes int64
}

// AdminQueryRepository 管理员查询用的只读聚合，不参与任何写路径
type AdminQueryRepository interface {
	UserContentStats(ctx context.Context, userID int64) (*UserContentStats, error)

	// ListUserPosts 最新的在前，同时返回总数
	ListUserPosts(ctx context.Context, userID int64, offset, limit int) ([]*entities.Post, int64, error)
	ListUserComments(ctx context.Context, userID int64, offset, limit int) ([]*entities.Comment, int64, error)

	// SearchPosts 正文或分类包含关键字，最新的在前
	SearchPosts(ctx context.Context, f ContentFilter) ([]*entities.Post, error)
	SearchComments(ctx context.Context, f ContentFilter) ([]*entities.Comment, error)

	// CommentCounts 每个帖子的评论数（含回复），没有评论的帖子不在结果中
	CommentCounts(ctx context.Context, postIDs []uint64) (map[uint64]int64, error)

	// LikeCounts 每个对象收到的 like 数，没有 like 的对象不在结果中
	LikeCounts(ctx context.Context, targetType enums.TargetType, ids []uint64) (map[uint64]int64, error)

	// UserPostSummaries 用户全部投稿，只取 id、status、category、created_at
	UserPostSummaries(ctx context.Context, userID int64) ([]*entities.Post, error)
	UserCommentIDs(ctx context.Context, userID int64) ([]uint64, error)
}

type adminQueryRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

func NewAdminQueryRepository(db *gorm.DB, logger *core.ZapLogger) AdminQueryRepository {
	return &adminQueryRepository{db: db, logger: logger}
}

func (r *adminQueryRepository) UserContentStats(ctx context.Context, userID int64) (*UserContentStats, error) {
	db := r.db.WithContext(ctx)
	var rows []struct {
		Status enums.ApprovalStatus
		N      int64
	}
	if err := db.Model(&entities.Post{}).Select("status, COUNT(*) AS n").
		Where("user_id = ?", userID).Group("status").Scan(&rows).Error; err != nil {
		r.logger.Error("统计用户投稿失败", zap.Int64("userID", userID), zap.Error(err))
		return nil, err
	}
	stats := &UserContentStats{}
	for _, row := range rows {
		switch row.Status {
		case enums.StatusApproved:
			stats.Approved = row.N
		case enums.StatusRejected:
			stats.Rejected = row.N
		case enums.StatusPending:
			stats.Pending = row.N
		}
	}

	if err := db.Model(&entities.Comment{}).Where("user_id = ?", userID).Count(&stats.Comments).Error; err != nil {
		return nil, err
	}
	ownPosts := db.Model(&entities.Post{}).Select("id").Where("user_id = ?", userID)
	if err := db.Model(&entities.Reaction{}).
		Where("target_type = ? AND reaction_type = ? AND target_id IN (?)", enums.TargetPost, "like", ownPosts).
		Count(&stats.PostLikes).Error; err != nil {
		return nil, err
	}
	ownComments := db.Model(&entities.Comment{}).Select("id").Where("user_id = ?", userID)
	if err := db.Model(&entities.Reaction{}).
		Where("target_type = ? AND reaction_type = ? AND target_id IN (?)", enums.TargetComment, "like", ownComments).
		Count(&stats.CommentLikes).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *adminQueryRepository) ListUserPosts(ctx context.Context, userID int64, offset, limit int) ([]*entities.Post, int64, error) {
	db := r.db.WithContext(ctx).Model(&entities.Post{}).Where("user_id = ?", userID)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var posts []*entities.Post
	err := db.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&posts).Error
	return posts, total, err
}

func (r *adminQueryRepository) ListUserComments(ctx context.Context, userID int64, offset, limit int) ([]*entities.Comment, int64, error) {
	db := r.db.WithContext(ctx).Model(&entities.Comment{}).Where("user_id = ?", userID)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var comments []*entities.Comment
	err := db.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&comments).Error
	return comments, total, err
}

func (r *adminQueryRepository) SearchPosts(ctx context.Context, f ContentFilter) ([]*entities.Post, error) {
	tx := applyContentFilter(r.db.WithContext(ctx).Model(&entities.Post{}), f)
	if f.Text != "" {
		p := containsPattern(f.Text)
		tx = tx.Where("(LOWER(content) LIKE ? ESCAPE '!' OR LOWER(category) LIKE ? ESCAPE '!')", p, p)
	}
	var posts []*entities.Post
	err := tx.Order("created_at DESC").Order("id DESC").Limit(f.Limit).Find(&posts).Error
	return posts, err
}

func (r *adminQueryRepository) SearchComments(ctx context.Context, f ContentFilter) ([]*entities.Comment, error) {
	tx := applyContentFilter(r.db.WithContext(ctx).Model(&entities.Comment{}), f)
	if f.Text != "" {
		tx = tx.Where("LOWER(content) LIKE ? ESCAPE '!'", containsPattern(f.Text))
	}
	var comments []*entities.Comment
	err := tx.Order("created_at DESC").Order("id DESC").Limit(f.Limit).Find(&comments).Error
	return comments, err
}

func applyContentFilter(tx *gorm.DB, f ContentFilter) *gorm.DB {
	if f.UserID != 0 {
		tx = tx.Where("user_id = ?", f.UserID)
	}
	if f.From != nil {
		tx = tx.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		tx = tx.Where("created_at < ?", *f.To)
	}
	return tx
}

func (r *adminQueryRepository) CommentCounts(ctx context.Context, postIDs []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		PostID uint64
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&entities.Comment{}).Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).Group("post_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PostID] = row.N
	}
	return out, nil
}

func (r *adminQueryRepository) LikeCounts(ctx context.Context, targetType enums.TargetType, ids []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		TargetID uint64
		N        int64
	}
	err := r.db.WithContext(ctx).Model(&entities.Reaction{}).Select("target_id, COUNT(*) AS n").
		Where("target_type = ? AND reaction_type = ? AND target_id IN ?", targetType, "like", ids).
		Group("target_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TargetID] = row.N
	}
	return out, nil
}

func (r *adminQueryRepository) UserPostSummaries(ctx context.Context, userID int64) ([]*entities.Post, error) {
	var posts []*entities.Post
	err := r.db.WithContext(ctx).Select("id", "status", "category", "created_at").
		Where("user_id = ?", userID).Order("id ASC").Find(&posts).Error
	return posts, err
}

func (r *adminQueryRepository) UserCommentIDs(ctx context.Context, userID int64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&entities.Comment{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

// containsPattern 小写后转义 LIKE 通配符，配合 ESCAPE '!' 使用
func containsPattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
	return "%" + s + "%"
}
