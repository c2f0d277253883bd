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
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/myErrors"
)

// RankCache 用户等级快照缓存。
// - 只是读路径的加速，积分变动提交后删除，未命中由上层回源数据库
type RankCache interface {
	// GetSnapshot 未命中返回 myErrors.ErrCacheMiss
	GetSnapshot(ctx context.Context, userID int64) (*vo.RankSnapshot, error)

	SetSnapshot(ctx context.Context, snapshot *vo.RankSnapshot) error

	// Invalidate 删除一个或多个用户的快照
	Invalidate(ctx context.Context, userIDs ...int64) error

	// InvalidateAll 删除全部快照，周期清零这类批量变更之后调用。返回删除的 key 数。
	InvalidateAll(ctx context.Context) (int64, error)
}

type rankCache struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      *core.ZapLogger
}

// NewRankCache 构造等级快照缓存，ttl <= 0 时使用 5 分钟
func NewRankCache(redisClient *redis.Client, ttl time.Duration, logger *core.ZapLogger) RankCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &rankCache{redisClient: redisClient, ttl: ttl, logger: logger}
}

func rankKey(userID int64) string {
	return constant.RankSnapshotPrefix + strconv.FormatInt(userID, 10)
}

func (c *rankCache) GetSnapshot(ctx context.Context, userID int64) (*vo.RankSnapshot, error) {
	key := rankKey(userID)
	jsonData, err := c.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.logger.Debug("等级快照缓存未命中", zap.String("key", key))
			return nil, myErrors.ErrCacheMiss
		}
		c.logger.Error("读取等级快照缓存失败", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("获取用户(ID: %d)等级快照失败: %w", userID, err)
	}

	var snapshot vo.RankSnapshot
	if jsonErr := json.Unmarshal([]byte(jsonData), &snapshot); jsonErr != nil {
		c.logger.Error("反序列化等级快照失败，删除损坏的缓存", zap.String("key", key), zap.Error(jsonErr))
		_ = c.redisClient.Del(ctx, key).Err()
		return nil, myErrors.ErrCacheMiss
	}
	return &snapshot, nil
}

func (c *rankCache) SetSnapshot(ctx context.Context, snapshot *vo.RankSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("序列化等级快照失败: %w", err)
	}
	return c.redisClient.Set(ctx, rankKey(snapshot.UserID), payload, c.ttl).Err()
}

func (c *rankCache) Invalidate(ctx context.Context, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, rankKey(id))
	}
	return c.redisClient.Del(ctx, keys...).Err()
}

func (c *rankCache) InvalidateAll(ctx context.Context) (int64, error) {
	var deleted int64
	batch := make([]string, 0, 200)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.redisClient.Unlink(ctx, batch...).Result()
		deleted += n
		batch = batch[:0]
		return err
	}

	iter := c.redisClient.Scan(ctx, 0, constant.RankSnapshotPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Error("扫描等级快照缓存失败", zap.Error(err))
		return deleted, fmt.Errorf("扫描等级快照缓存失败: %w", err)
	}
	return deleted, flush()
}
