package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/constant"
	"github.com/Xushengqwer/confession_service/myErrors"
)

// RejectionDraft 管理员正在填写的自定义拒绝原因
type RejectionDraft struct {
	AdminID   int64     `json:"admin_id"`
	PostID    uint64    `json:"post_id"`
	StartedAt time.Time `json:"started_at"`
	// 发起时的管理员消息，取消后用于恢复原来的审核按钮
	ChatID    int64 `json:"chat_id,omitempty"`
	MessageID int   `json:"message_id,omitempty"`
}

// RejectionDraftRepository 每个管理员同一时间只有一个草稿，新的覆盖旧的
type RejectionDraftRepository interface {
	// Save 写入草稿并设置 TTL
	Save(ctx context.Context, draft *RejectionDraft) error

	// Get 草稿不存在或已过期时返回 myErrors.ErrCacheMiss
	Get(ctx context.Context, adminID int64) (*RejectionDraft, error)

	// Take 读取并删除草稿（GETDEL），用于取消
	Take(ctx context.Context, adminID int64) (*RejectionDraft, error)

	// Clear 删除草稿，不存在时不报错
	Clear(ctx context.Context, adminID int64) error
}

type rejectionDraftRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      *core.ZapLogger
}

// NewRejectionDraftRepository 构造草稿仓库，ttl <= 0 时使用 10 分钟
func NewRejectionDraftRepository(redisClient *redis.Client, ttl time.Duration, logger *core.ZapLogger) RejectionDraftRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &rejectionDraftRepository{redisClient: redisClient, ttl: ttl, logger: logger}
}

func draftKey(adminID int64) string {
	return constant.RejectionDraftPrefix + strconv.FormatInt(adminID, 10)
}

func (r *rejectionDraftRepository) Save(ctx context.Context, draft *RejectionDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("序列化拒绝草稿失败: %w", err)
	}
	if err := r.redisClient.Set(ctx, draftKey(draft.AdminID), payload, r.ttl).Err(); err != nil {
		r.logger.Error("写入拒绝草稿失败", zap.Int64("adminID", draft.AdminID), zap.Error(err))
		return fmt.Errorf("写入拒绝草稿 (admin: %d) 失败: %w", draft.AdminID, err)
	}
	return nil
}

func (r *rejectionDraftRepository) Get(ctx context.Context, adminID int64) (*RejectionDraft, error) {
	raw, err := r.redisClient.Get(ctx, draftKey(adminID)).Result()
	return r.decode(adminID, raw, err)
}

func (r *rejectionDraftRepository) Take(ctx context.Context, adminID int64) (*RejectionDraft, error) {
	raw, err := r.redisClient.GetDel(ctx, draftKey(adminID)).Result()
	return r.decode(adminID, raw, err)
}

func (r *rejectionDraftRepository) Clear(ctx context.Context, adminID int64) error {
	return r.redisClient.Del(ctx, draftKey(adminID)).Err()
}

func (r *rejectionDraftRepository) decode(adminID int64, raw string, err error) (*RejectionDraft, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, myErrors.ErrCacheMiss
		}
		r.logger.Error("读取拒绝草稿失败", zap.Int64("adminID", adminID), zap.Error(err))
		return nil, fmt.Errorf("读取拒绝草稿 (admin: %d) 失败: %w", adminID, err)
	}
	var draft RejectionDraft
	if jsonErr := json.Unmarshal([]byte(raw), &draft); jsonErr != nil {
		r.logger.Warn("拒绝草稿数据损坏，按未命中处理", zap.Int64("adminID", adminID), zap.Error(jsonErr))
		return nil, myErrors.ErrCacheMiss
	}
	return &draft, nil
}
