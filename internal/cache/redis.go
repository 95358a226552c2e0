// Package cache holds the Redis-backed identity cache and rate limiter.
// The raw client is also shared with the review event stream.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client      *redis.Client
	identityTTL time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithIdentityTTL overrides how long resolved users stay cached.
// Non-positive values keep the default.
func WithIdentityTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.identityTTL = ttl
		}
	}
}

// New connects to redisURL and fails fast if the server does not answer.
func New(ctx context.Context, redisURL string, opts ...Option) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.PoolSize = 20
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	c := &Cache{client: client, identityTTL: defaultIdentityTTL}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the shared client for stream producers and consumers.
func (c *Cache) Client() *redis.Client {
	return c.client
}
