package repo

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/tbourn/sushi-order-bot/internal/config"
)

// Module wires the database handle and its lifecycle.
var Module = fx.Options(
	fx.Provide(newDB),
	fx.Invoke(registerLifecycle),
)

func newDB(cfg config.Config) (*gorm.DB, error) {
	db, err := Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func registerLifecycle(lc fx.Lifecycle, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			n, err := PurgeExpiredIdempotency(ctx, db, time.Now().UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				return nil
			}
			if n > 0 {
				log.Info().Int64("purged", n).Msg("expired idempotency records removed")
			}
			return nil
		},
		OnStop: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}
