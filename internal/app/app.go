// Package app runs the HTTP server inside the fx lifecycle.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/tbourn/sushi-order-bot/internal/config"
)

// Module provides the *http.Server and starts/stops it with the app.
var Module = fx.Options(
	fx.Provide(newHTTPServer),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("", p.Config.Port),
		Handler:           p.Router,
		ReadTimeout:       p.Config.ReadTimeout,
		ReadHeaderTimeout: p.Config.ReadHeaderTimeout,
		WriteTimeout:      p.Config.WriteTimeout,
		IdleTimeout:       p.Config.IdleTimeout,
		MaxHeaderBytes:    p.Config.MaxHeaderBytes,
	}
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     zerolog.Logger
	Server     *http.Server
	Config     config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			p.Logger.Info().Str("addr", p.Server.Addr).Msg("starting sushi order bot")
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error().Err(err).Msg("http server terminated")
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info().Msg("sushi order bot stopped")
			return nil
		},
	})
}
