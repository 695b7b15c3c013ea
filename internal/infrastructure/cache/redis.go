package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pourcost/backend/internal/domain"
)

const defaultKeyPrefix = "pourcost:"

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping redis: %w", err)
	}

	return client, nil
}

// RedisCache stores JSON-encoded values in Redis. Get returns the raw JSON
// bytes; callers decode into their own types.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps a Redis client. An empty prefix uses "pourcost:".
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, error) {
	payload, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get %s: %w", key, err)
	}
	return payload, nil
}

// Set stores a value in Redis with TTL. A zero ttl never expires.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value from Redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// Exists checks if a key exists in Redis
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close closes the underlying client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
