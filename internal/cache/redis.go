package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oggyb/devmatch/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	unreadTTL = time.Hour
	tagsTTL   = 6 * time.Hour
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForUnreadCount generates Redis key for a user's unread message total
func (c *RedisCache) KeyForUnreadCount(userID string) string {
	return fmt.Sprintf("unread:count:%s", userID)
}

func (c *RedisCache) SetUnreadCount(ctx context.Context, userID string, count int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, c.KeyForUnreadCount(userID), count, unreadTTL).Err()
}

// GetUnreadCount reports ok=false on a cache miss.
func (c *RedisCache) GetUnreadCount(ctx context.Context, userID string) (int64, bool, error) {
	key := c.KeyForUnreadCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// InvalidateUnread drops cached totals for the given users.
func (c *RedisCache) InvalidateUnread(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.KeyForUnreadCount(id))
	}
	return c.Del(ctx, keys...)
}

// KeyForTags generates Redis key for a tag list snapshot ("languages", "job-titles").
func (c *RedisCache) KeyForTags(kind string) string {
	return fmt.Sprintf("tags:%s", kind)
}

// SetJSON stores v as a JSON document.
func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.Client.Set(ctx, key, raw, ttl).Err()
}

// GetJSON loads a JSON document into dst; ok=false on a cache miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) SetTags(ctx context.Context, kind string, v any) error {
	return c.SetJSON(ctx, c.KeyForTags(kind), v, tagsTTL)
}

func (c *RedisCache) GetTags(ctx context.Context, kind string, dst any) (bool, error) {
	return c.GetJSON(ctx, c.KeyForTags(kind), dst)
}

func (c *RedisCache) InvalidateTags(ctx context.Context, kind string) error {
	return c.Del(ctx, c.KeyForTags(kind))
}
