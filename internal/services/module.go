package services

import (
	"go.uber.org/fx"

	"github.com/tbourn/sushi-order-bot/internal/telegram"
)

// Module provides the bot-facing services. Order intake and dispatch need
// repository adapters and are wired by the HTTP layer.
var Module = fx.Provide(
	func(c *telegram.Client) BotAPI { return c },
	NewNotificationService,
	NewReconcilerService,
)
