package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

func run(ctx context.Context, app *fx.App) {
	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("failed to start application")
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	if err := app.Stop(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to stop application")
		os.Exit(1)
	}
}
