package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/todos/pkg/config"
)

// RedisClient wraps redis.Client with production-ready configuration.
// One client is shared by every Redis concern of the process: sessions, the
// todo read-model cache, change channels and, with TODO_STORE=redis, the
// todo and user documents themselves.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a Redis client sized for cfg.TodoStore and verifies
// connectivity via Ping.
func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Verify connectivity with a 2s deadline
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisClient{client: rdb}, nil
}

// clientOptions parses cfg.RedisURL and applies pool settings. When Redis is
// the primary todo store every list and update goes through it, so the pool is
// larger than when it only backs sessions and the cache.
func clientOptions(cfg *config.Config) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	opts.PoolSize, opts.MinIdleConns = 10, 2
	if cfg.TodoStore == config.StoreRedis {
		opts.PoolSize, opts.MinIdleConns = 32, 8
	}
	// Shows up in CLIENT LIST, which separates api from worker connections.
	if opts.ClientName == "" {
		opts.ClientName = cfg.ServiceName
	}

	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second
	return opts, nil
}

// Ping checks the Redis connection health.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close shuts down the Redis connection pool. Closing twice is not an error,
// so deferred closes in main can coexist with explicit shutdown paths.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client returns the underlying redis.Client for direct use.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
