package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every cache entry so the Redis instance can be
// shared with other tools.
const keyPrefix = "edusense:cache"

// RedisCache implements ReportCache on a Redis client.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(client *redis.Client, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, logger: logger}
}

func namespaced(key string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, key)
}

// Get returns the cached value, or ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, namespaced(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores a value. A zero ttl stores without expiration.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, namespaced(key), value, ttl).Err()
}

// Delete removes a single key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, namespaced(key)).Err()
}

// DeleteByPrefix scans for keys under the prefix and removes them.
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	pattern := namespaced(prefix) + "*"

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("failed to delete cache key",
				"key", iter.Val(),
				"error", err,
			)
		}
	}
	return iter.Err()
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
