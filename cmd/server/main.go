// Command server runs the sushi order bot: the Telegram webhook, the Mini
// App order API and the bot setup endpoints.
//
// @title       Sushi Order Bot API
// @version     1.0
// @description Order intake for the Telegram Mini App, the bot webhook and bot setup endpoints.
// @BasePath    /
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	_ "github.com/tbourn/sushi-order-bot/docs"
	"github.com/tbourn/sushi-order-bot/internal/di"
)

func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
		di.Module(),
	)

	run(ctx, app)
}
