// Package cache is a thin Redis layer for hot list endpoints (outstanding
// returns, pending approval queues). Every accessor is nil-safe: with no
// Redis configured the methods degrade to misses and the API serves straight
// from PostgreSQL.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys
const (
	KeyOutstanding = "vgate:returns:outstanding"
	KeyPendingAll  = "vgate:passes:pending"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis, or returns a disabled cache when addr is empty or
// the server is unreachable.
func New(addr, password string, db int, ttl time.Duration) *Cache {
	if addr == "" {
		return &Cache{ttl: ttl}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return &Cache{ttl: ttl}
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached JSON payload for key, or ok=false on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Cache) Set(ctx context.Context, key string, payload []byte) {
	if !c.Enabled() {
		return
	}
	c.client.Set(ctx, key, payload, c.ttl)
}

// InvalidateGatePassCaches drops every pass-derived key. Called after any
// mutation that changes pass or return state.
func (c *Cache) InvalidateGatePassCaches(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	c.client.Del(ctx, KeyOutstanding, KeyPendingAll)
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
