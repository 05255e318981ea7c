// Package dedupe remembers which chat-platform updates were already handled.
// The platform redelivers an update when the webhook answer is slow or
// fails, so handlers use FirstSeen to reply at most once per update id.
package dedupe

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard marks update ids in Redis with a TTL.
type RedisGuard struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisGuard returns a guard using client. A non-positive ttl means 24h.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisGuard{Client: client, TTL: ttl}
}

// UpdateKey is the marker key of an update id.
func (g *RedisGuard) UpdateKey(updateID int) string {
	return "tg:update:" + strconv.Itoa(updateID)
}

// FirstSeen atomically marks updateID and reports whether it was unmarked.
// A nil guard treats every update as new.
func (g *RedisGuard) FirstSeen(ctx context.Context, updateID int) (bool, error) {
	if g == nil || g.Client == nil {
		return true, nil
	}
	return g.Client.SetNX(ctx, g.UpdateKey(updateID), "1", g.TTL).Result()
}

// Ping checks connectivity.
func (g *RedisGuard) Ping(ctx context.Context) error {
	if g == nil || g.Client == nil {
		return nil
	}
	return g.Client.Ping(ctx).Err()
}
