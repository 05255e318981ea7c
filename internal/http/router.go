// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - The Telegram webhook is never throttled
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/sushi-order-bot/internal/config"
	"github.com/tbourn/sushi-order-bot/internal/domain"
	"github.com/tbourn/sushi-order-bot/internal/http/handlers"
	"github.com/tbourn/sushi-order-bot/internal/http/middleware"
	"github.com/tbourn/sushi-order-bot/internal/repo"
	"github.com/tbourn/sushi-order-bot/internal/services"
)

// orderRepoShim adapts the repository free functions to the
// services.OrderRepo interface expected by the OrderService.
type orderRepoShim struct{}

func (orderRepoShim) CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return repo.CreateOrder(ctx, db, o)
}

func (orderRepoShim) GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	return repo.GetOrder(ctx, db, id)
}

func (orderRepoShim) CountOrders(ctx context.Context, db *gorm.DB, f repo.OrderFilter) (int64, error) {
	return repo.CountOrders(ctx, db, f)
}

func (orderRepoShim) ListOrdersPage(ctx context.Context, db *gorm.DB, f repo.OrderFilter, offset, limit int) ([]domain.Order, error) {
	return repo.ListOrdersPage(ctx, db, f, offset, limit)
}

func (orderRepoShim) UpdateOrderStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.OrderStatus) error {
	return repo.UpdateOrderStatus(ctx, db, id, from, to)
}

func (orderRepoShim) OrdersStats(ctx context.Context, db *gorm.DB, f repo.OrderFilter) (int64, *time.Time, error) {
	return repo.OrdersStats(ctx, db, f)
}

// userStoreShim adapts repo.UpsertUser to services.UserStore.
type userStoreShim struct{}

func (userStoreShim) UpsertUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return repo.UpsertUser(ctx, db, u)
}

// Notifier sends the admin alert and the fixed command replies.
type Notifier interface {
	services.AdminNotifier
	services.Replier
}

// Deps are the collaborators RegisterRoutes builds services from.
// Guard and Publisher are optional and must be nil interfaces when absent.
type Deps struct {
	Notifier  Notifier
	Bot       handlers.BotReconciler
	Catalog   handlers.MenuCatalog
	Guard     services.UpdateGuard
	Publisher services.OrderPublisher
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: X-User-ID for rate-limit keys and idempotency scope
//  4. RedactingLogger: structured logs with PII and token scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Metrics
//  8. Idempotency validator on POST /api/orders (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay, webhook exempt)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Caller identity
	r.Use(middleware.Identity())

	// 4) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Scope:  services.IdempotencyScopeOrders,
			Routes: []string{http.MethodPost + " /api/orders"},
		},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			_, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
			switch {
			case err == nil:
				return true, nil
			case errors.Is(err, repo.ErrNotFound):
				return false, nil
			default:
				return false, err
			}
		},
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).
		Skip("/bot/webhook", "/health", "/metrics")
	r.Use(rl.Handler())

	// 10) CORS posture (allow all if none configured)
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		middleware.HeaderUserID, middleware.HeaderIdempotencyKey, middleware.HeaderTelegramSecret,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers. The Mini App is embedded by Telegram clients, so
	// framing is restricted by CSP instead of being denied outright.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:     cfg.Security.EnableHSTS,
		HSTSMaxAge:     cfg.Security.HSTSMaxAge,
		NoStore:        false,
		EnablePolicy:   true,
		FrameAncestors: cfg.Security.FrameAncestors,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/bot
	orderSvc := services.NewOrderService(db, orderRepoShim{}, deps.Notifier, deps.Publisher, cfg.IdempotencyTTL)
	dispatcher := &services.DispatcherService{
		DB:         db,
		Users:      userStoreShim{},
		Replier:    deps.Notifier,
		Reconciler: deps.Bot,
		Guard:      deps.Guard,
	}
	h := handlers.New(orderSvc, dispatcher, deps.Bot, deps.Catalog, handlers.SiteOptions{
		WebAppURL:     cfg.Telegram.WebAppURL,
		WebhookSecret: cfg.Telegram.WebhookSecret,
		PublicDir:     cfg.Shop.PublicDir,
	})

	// Site
	r.GET("/", h.Index)
	r.GET("/health", h.Health)
	r.GET("/menu_qr", h.MenuQR)
	if cfg.Shop.PublicDir != "" {
		r.Static("/static", cfg.Shop.PublicDir)
	}

	// Bot
	r.POST("/bot/webhook", h.Webhook)
	r.GET("/set_webhook", h.SetWebhook)
	r.GET("/delete_webhook", h.DeleteWebhook)
	r.GET("/set_menu_button", h.SetMenuButton)
	r.GET("/setup_commands", h.SetupCommands)
	r.GET("/menu_button_status", h.MenuButtonStatus)
	r.GET("/bot_info", h.BotInfo)

	// Public API
	api := r.Group("/api")
	{
		// Orders
		api.POST("/orders", h.CreateOrder)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/:id", h.GetOrder)
		api.PATCH("/orders/:id/status", h.UpdateOrderStatus)
		api.GET("/orders/:id/qrcode", h.OrderQRCode)

		// Menu
		m := api.Group("/menu", gzip.Gzip(gzip.DefaultCompression))
		m.GET("", h.Menu)
		m.GET("/search", h.SearchMenu)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
