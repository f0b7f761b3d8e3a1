package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pgx-risk-engine/internal/domain"
)

const redisKeyPrefix = "pgx:explanation:"

// RedisCache is a Redis-backed explanation cache shared across processes.
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedisCache creates a Redis-backed explanation cache and verifies the
// connection.
func NewRedisCache(redisURL string, defaultTTL time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &RedisCache{client: client, defaultTTL: defaultTTL}, nil
}

// Get retrieves a cached explanation bundle. Transport errors and corrupted
// entries read as cache misses.
func (c *RedisCache) Get(ctx context.Context, key string) (domain.ExplanationBundle, bool) {
	val, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return domain.ExplanationBundle{}, false
	}

	var bundle domain.ExplanationBundle
	if err := json.Unmarshal([]byte(val), &bundle); err != nil {
		c.client.Del(ctx, redisKeyPrefix+key)
		return domain.ExplanationBundle{}, false
	}
	return bundle, true
}

// Set stores an explanation bundle with the default TTL.
func (c *RedisCache) Set(ctx context.Context, key string, bundle domain.ExplanationBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to marshal explanation: %w", err)
	}
	return c.client.Set(ctx, redisKeyPrefix+key, data, c.defaultTTL).Err()
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
