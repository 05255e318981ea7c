package telegram

import (
	"go.uber.org/fx"

	"github.com/tbourn/sushi-order-bot/internal/config"
)

// Module provides the Bot API client to fx graphs.
var Module = fx.Provide(func(cfg config.Config) *Client { return New(cfg.Telegram) })
