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

// ReplyDraft 管理员正在输入的私信回复
type ReplyDraft struct {
	AdminID   int64     `json:"admin_id"`
	MessageID uint64    `json:"message_id"`
	StartedAt time.Time `json:"started_at"`
	ChatID    int64     `json:"chat_id,omitempty"`
	PromptID  int       `json:"prompt_id,omitempty"`
}

// ReplyDraftRepository 与拒绝草稿一样，每个管理员同一时间只有一个
type ReplyDraftRepository interface {
	Save(ctx context.Context, draft *ReplyDraft) error

	// Get 不存在或已过期时返回 myErrors.ErrCacheMiss
	Get(ctx context.Context, adminID int64) (*ReplyDraft, error)

	// Take 读取并删除
	Take(ctx context.Context, adminID int64) (*ReplyDraft, error)
}

type replyDraftRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      *core.ZapLogger
}

// NewReplyDraftRepository ttl <= 0 时使用 10 分钟
func NewReplyDraftRepository(redisClient *redis.Client, ttl time.Duration, logger *core.ZapLogger) ReplyDraftRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &replyDraftRepository{redisClient: redisClient, ttl: ttl, logger: logger}
}

func replyDraftKey(adminID int64) string {
	return constant.ReplyDraftPrefix + strconv.FormatInt(adminID, 10)
}

func (r *replyDraftRepository) Save(ctx context.Context, draft *ReplyDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("序列化回复草稿失败: %w", err)
	}
	if err := r.redisClient.Set(ctx, replyDraftKey(draft.AdminID), payload, r.ttl).Err(); err != nil {
		r.logger.Error("写入回复草稿失败", zap.Int64("adminID", draft.AdminID), zap.Error(err))
		return fmt.Errorf("写入回复草稿 (admin: %d) 失败: %w", draft.AdminID, err)
	}
	return nil
}

func (r *replyDraftRepository) Get(ctx context.Context, adminID int64) (*ReplyDraft, error) {
	raw, err := r.redisClient.Get(ctx, replyDraftKey(adminID)).Result()
	return r.decode(adminID, raw, err)
}

func (r *replyDraftRepository) Take(ctx context.Context, adminID int64) (*ReplyDraft, error) {
	raw, err := r.redisClient.GetDel(ctx, replyDraftKey(adminID)).Result()
	return r.decode(adminID, raw, err)
}

func (r *replyDraftRepository) decode(adminID int64, raw string, err error) (*ReplyDraft, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, myErrors.ErrCacheMiss
		}
		r.logger.Error("读取回复草稿失败", zap.Int64("adminID", adminID), zap.Error(err))
		return nil, fmt.Errorf("读取回复草稿 (admin: %d) 失败: %w", adminID, err)
	}
	var draft ReplyDraft
	if jsonErr := json.Unmarshal([]byte(raw), &draft); jsonErr != nil {
		r.logger.Warn("回复草稿数据损坏，按未命中处理", zap.Int64("adminID", adminID), zap.Error(jsonErr))
		return nil, myErrors.ErrCacheMiss
	}
	return &draft, nil
}
