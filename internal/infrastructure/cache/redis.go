package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Cache is the read-through view cache. Get reports a miss through the
// second return value; an error means the cache itself failed.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

type redisCache struct {
	client *redis.Client
}

type Config struct {
	Host     string
	Port     string
	Password string
}

func NewRedis(ctx context.Context, cfg Config) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &redisCache{client: client}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores the value with no TTL; entries live until evicted externally.
func (c *redisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, 0).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
