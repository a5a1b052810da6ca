package oclient

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "portfolio:token:"

var _ TokenCache = &RedisTokenCache{}

// RedisTokenCache keeps access tokens in Redis with a TTL just under their lifetime.
type RedisTokenCache struct {
	redis redis.Cmdable
}

func NewRedisTokenCache(cmdable redis.Cmdable) *RedisTokenCache {
	return &RedisTokenCache{redis: cmdable}
}

func (c *RedisTokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	tok, err := c.redis.Get(ctx, tokenKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return tok, true, nil
}

func (c *RedisTokenCache) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	return c.redis.Set(ctx, tokenKeyPrefix+key, token, ttl).Err()
}

func (c *RedisTokenCache) Delete(ctx context.Context, key string) error {
	return c.redis.Del(ctx, tokenKeyPrefix+key).Err()
}
