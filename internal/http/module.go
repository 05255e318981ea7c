package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/tbourn/sushi-order-bot/internal/config"
	"github.com/tbourn/sushi-order-bot/internal/dedupe"
	"github.com/tbourn/sushi-order-bot/internal/events"
	"github.com/tbourn/sushi-order-bot/internal/menu"
	"github.com/tbourn/sushi-order-bot/internal/services"
)

// Module provides the fully routed *gin.Engine.
var Module = fx.Provide(newEngine)

type engineParams struct {
	fx.In

	Config     config.Config
	DB         *gorm.DB
	Notifier   *services.NotificationService
	Reconciler *services.ReconcilerService
	Catalog    *menu.Catalog
	Guard      *dedupe.RedisGuard     `optional:"true"`
	Publisher  *events.KafkaPublisher `optional:"true"`
}

func newEngine(p engineParams) *gin.Engine {
	gin.SetMode(p.Config.GinMode)
	r := gin.New()

	deps := Deps{
		Notifier: p.Notifier,
		Bot:      p.Reconciler,
		Catalog:  p.Catalog,
	}
	// Optional collaborators arrive as nil pointers; keep the interfaces nil.
	if p.Guard != nil {
		deps.Guard = p.Guard
	}
	if p.Publisher != nil {
		deps.Publisher = p.Publisher
	}

	RegisterRoutes(r, p.DB, deps, p.Config)
	return r
}
