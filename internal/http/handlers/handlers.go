// Package handlers exposes the HTTP surface of the ordering bot:
//
//   - /api/orders...            order intake, reads, status changes, QR codes
//   - /bot/webhook              inbound Telegram updates
//   - /set_webhook and friends  bot configuration reconciliation
//   - /, /api/menu..., /health  Mini App assets, menu catalog, liveness
//
// Handlers are transport-thin: they decode and check input, call services,
// and translate results and errors into HTTP responses.
package handlers

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"

	"github.com/tbourn/sushi-order-bot/internal/domain"
	"github.com/tbourn/sushi-order-bot/internal/http/middleware"
	"github.com/tbourn/sushi-order-bot/internal/menu"
	"github.com/tbourn/sushi-order-bot/internal/repo"
	"github.com/tbourn/sushi-order-bot/internal/services"
	"github.com/tbourn/sushi-order-bot/internal/telegram"
	"github.com/tbourn/sushi-order-bot/internal/utils"
)

//
// Service contracts (context-aware)
//

// OrderService defines order operations consumed by HTTP handlers.
type OrderService interface {
	// Submit validates and stores an order; idemKey may be empty.
	Submit(ctx context.Context, sub services.OrderSubmission, idemKey string) (*services.OrderConfirmation, error)
	// Get loads one order with items and delivery info.
	Get(ctx context.Context, id string) (*domain.Order, error)
	// ListPage returns a page of orders matching f and the total count.
	ListPage(ctx context.Context, f repo.OrderFilter, page, pageSize int) ([]domain.Order, int64, error)
	// Stats returns count and latest update time for ETag computation.
	Stats(ctx context.Context, f repo.OrderFilter) (int64, *time.Time, error)
	// UpdateStatus moves an order along its lifecycle.
	UpdateStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error)
}

// Dispatcher routes one inbound update to its command handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, u services.Update) services.DispatchResult
}

// BotReconciler pushes and reads back bot configuration.
type BotReconciler interface {
	EnsureWebhook(ctx context.Context, rawURL string) (services.Result, error)
	DeleteWebhook(ctx context.Context) (services.Result, error)
	DefaultMenuButton(targetURL string) services.MenuButtonConfig
	EnsureMenuButton(ctx context.Context, cfg services.MenuButtonConfig, chatID telegram.ChatID) (services.Result, error)
	EnsureCommands(ctx context.Context, cmds []tgbotapi.BotCommand) (services.Result, error)
	Snapshot(ctx context.Context) services.Snapshot
	BotInfo(ctx context.Context) (tgbotapi.User, error)
}

// MenuCatalog serves and searches the Mini App menu document.
type MenuCatalog interface {
	Raw() ([]byte, error)
	Search(q string, k int) ([]menu.Result, error)
}

//
// Handler wiring
//

// SiteOptions carries the static settings the handlers need.
type SiteOptions struct {
	// WebAppURL is encoded by /menu_qr.
	WebAppURL string
	// WebhookSecret, when set, must match the secret-token header on
	// every /bot/webhook request.
	WebhookSecret string
	// PublicDir holds the Mini App build; index.html is served at "/".
	PublicDir string
}

// Handlers groups the HTTP endpoints. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	orders     OrderService
	dispatcher Dispatcher
	bot        BotReconciler
	catalog    MenuCatalog
	site       SiteOptions

	now func() time.Time
}

// New constructs a Handlers instance bound to the given services.
func New(orders OrderService, dispatcher Dispatcher, bot BotReconciler, catalog MenuCatalog, site SiteOptions) *Handlers {
	return &Handlers{
		orders:     orders,
		dispatcher: dispatcher,
		bot:        bot,
		catalog:    catalog,
		site:       site,
		now:        time.Now,
	}
}

// userID returns the caller identity resolved by middleware.Identity, or the
// raw X-User-ID header when that middleware did not run. Empty means
// anonymous; the order service applies the fallback.
func userID(c *gin.Context) string {
	if uid := middleware.UserIDFrom(c); uid != "" {
		return uid
	}
	if c.Request != nil {
		return strings.TrimSpace(c.GetHeader(middleware.HeaderUserID))
	}
	return ""
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}
