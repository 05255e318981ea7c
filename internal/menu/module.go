package menu

import (
	"go.uber.org/fx"

	"github.com/tbourn/sushi-order-bot/internal/config"
)

// Module provides the menu catalog read from MENU_PATH.
var Module = fx.Provide(func(cfg config.Config) *Catalog {
	return NewCatalog(cfg.Shop.MenuPath, WithMaxItems(5000))
})
