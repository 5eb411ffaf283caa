package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/inventory/pkg/config"
)

const (
	redisPoolSize     = 10
	redisMinIdleConns = 2
	redisDialTimeout  = 2 * time.Second
	redisIOTimeout    = time.Second
)

// RedisClient wraps redis.Client. It backs the item cache (when
// CACHE_BACKEND=redis) and the session store.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects to cfg.RedisURL and verifies the connection.
func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisClient{client: rdb}, nil
}

// redisOptions parses the URL and applies pool settings. Socket timeouts
// follow cfg.CacheCallTimeout.
func redisOptions(cfg *config.Config) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	io := redisIOTimeout
	if cfg.CacheCallTimeout > 0 {
		io = cfg.CacheCallTimeout
	}

	opts.ClientName = cfg.ServiceName
	opts.PoolSize = redisPoolSize
	opts.MinIdleConns = redisMinIdleConns
	opts.MaxRetries = 1
	opts.DialTimeout = redisDialTimeout
	opts.ReadTimeout = io
	opts.WriteTimeout = io
	opts.PoolTimeout = io + time.Second
	return opts, nil
}

// Ping checks the Redis connection health.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close shuts down the connection pool.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client returns the underlying redis.Client.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
