package dedupe

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"github.com/tbourn/sushi-order-bot/internal/config"
)

// Module provides a *RedisGuard, nil when REDIS_ADDR is unset.
var Module = fx.Provide(newGuard)

func newGuard(lc fx.Lifecycle, cfg config.Config) *RedisGuard {
	if cfg.Redis.Addr == "" {
		return nil
	}
	g := NewRedisGuard(redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr}), cfg.Redis.DedupeTTL)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Dispatch fails open, so an unreachable Redis only warns.
			if err := g.Ping(ctx); err != nil {
				log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, update dedupe degraded")
			}
			return nil
		},
		OnStop: func(context.Context) error { return g.Client.Close() },
	})
	return g
}
