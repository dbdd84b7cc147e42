// Package cache is the optional Redis read-through layer for recipes.
//
// Every write bumps a generation counter. A reader captures the generation
// before loading from the database and its fill only lands if no write
// happened in between, so an invalidation can never be undone by a slow
// reader holding the previous row.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config tunes the recipe cache. Zero values select the defaults.
type Config struct {
	URL      string
	TTL      time.Duration
	PoolSize int
}

// Cache stores recipes and the recipe listing in Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 10
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return newCache(client, cfg.TTL), nil
}

func newCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultRecipeTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Ping reports whether Redis answers; used by the readiness check.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
