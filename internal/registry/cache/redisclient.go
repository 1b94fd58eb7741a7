package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lanternhq/go-push-relay/internal/registry"
)

// RedisClient adapts go-redis to the CacheClient interface. Registrations
// are stored as JSON blobs under the decorator's per-pair keys.
type RedisClient struct {
	rdb *redis.Client
}

var _ CacheClient = (*RedisClient)(nil)

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// A dead cache should surface at startup, not on the first lookup.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisClient{rdb: rdb}, nil
}

func (c *RedisClient) Get(ctx context.Context, key string) (*registry.Registration, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		// Includes redis.Nil on a miss; the decorator treats any error as one.
		return nil, err
	}

	var reg registry.Registration
	if err := json.Unmarshal(val, &reg); err != nil {
		return nil, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return &reg, nil
}

func (c *RedisClient) Set(ctx context.Context, key string, reg *registry.Registration, ttl time.Duration) error {
	raw, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

func (c *RedisClient) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
