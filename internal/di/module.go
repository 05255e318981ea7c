// Package di composes every fx module into the application graph.
package di

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/tbourn/sushi-order-bot/internal/app"
	"github.com/tbourn/sushi-order-bot/internal/config"
	"github.com/tbourn/sushi-order-bot/internal/dedupe"
	"github.com/tbourn/sushi-order-bot/internal/events"
	httpapi "github.com/tbourn/sushi-order-bot/internal/http"
	"github.com/tbourn/sushi-order-bot/internal/menu"
	"github.com/tbourn/sushi-order-bot/internal/observability"
	"github.com/tbourn/sushi-order-bot/internal/repo"
	"github.com/tbourn/sushi-order-bot/internal/services"
	"github.com/tbourn/sushi-order-bot/internal/sysutil"
	"github.com/tbourn/sushi-order-bot/internal/telegram"
)

// Module returns the application graph; opts are appended last so tests
// can fx.Replace any provided value.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		fx.Provide(func(cfg config.Config) zerolog.Logger { return sysutil.SetupLogger(cfg, nil) }),
		observability.Module,
		repo.Module,
		telegram.Module,
		dedupe.Module,
		events.Module,
		menu.Module,
		services.Module,
		httpapi.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
