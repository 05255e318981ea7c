package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/sushi-order-bot/internal/domain"
	"github.com/tbourn/sushi-order-bot/internal/http/middleware"
	"github.com/tbourn/sushi-order-bot/internal/menu"
	"github.com/tbourn/sushi-order-bot/internal/repo"
	"github.com/tbourn/sushi-order-bot/internal/services"
	"github.com/tbourn/sushi-order-bot/internal/telegram"
)

type fakeOrders struct {
	submitted []services.OrderSubmission
	keys      []string
	submitErr error
	replay    bool

	orders    map[string]*domain.Order
	lastList  repo.OrderFilter
	stats     int64
	statsTS   *time.Time
	updateErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[string]*domain.Order{}}
}

func (f *fakeOrders) Submit(_ context.Context, sub services.OrderSubmission, key string) (*services.OrderConfirmation, error) {
	f.submitted = append(f.submitted, sub)
	f.keys = append(f.keys, key)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	total := decimal.Zero
	for _, it := range sub.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return &services.OrderConfirmation{OrderID: "order-1", Total: total, Replayed: f.replay}, nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (*domain.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, services.ErrOrderNotFound
}

func (f *fakeOrders) ListPage(_ context.Context, fl repo.OrderFilter, page, pageSize int) ([]domain.Order, int64, error) {
	f.lastList = fl
	out := []domain.Order{}
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrders) Stats(context.Context, repo.OrderFilter) (int64, *time.Time, error) {
	return f.stats, f.statsTS, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, services.ErrOrderNotFound
	}
	o.Status = next
	return o, nil
}

type fakeDispatcher struct {
	updates []services.Update
}

func (d *fakeDispatcher) Dispatch(_ context.Context, u services.Update) services.DispatchResult {
	d.updates = append(d.updates, u)
	return services.DispatchResult{Command: domain.ClassifyCommand(u.CommandText)}
}

type fakeReconciler struct {
	res       services.Result
	err       error
	lastURL   string
	lastMenu  services.MenuButtonConfig
	commands  []tgbotapi.BotCommand
	snapshot  services.Snapshot
	me        tgbotapi.User
	meErr     error
	deleteHit int
}

func (r *fakeReconciler) EnsureWebhook(_ context.Context, rawURL string) (services.Result, error) {
	r.lastURL = rawURL
	if rawURL == "" {
		return services.Result{}, services.ErrNoWebhookURL
	}
	return r.res, r.err
}

func (r *fakeReconciler) DeleteWebhook(context.Context) (services.Result, error) {
	r.deleteHit++
	return r.res, r.err
}

func (r *fakeReconciler) DefaultMenuButton(targetURL string) services.MenuButtonConfig {
	if targetURL == "" {
		targetURL = "https://shop.test"
	}
	return services.MenuButtonConfig{Label: "Меню", TargetURL: targetURL}
}

func (r *fakeReconciler) EnsureMenuButton(_ context.Context, cfg services.MenuButtonConfig, _ telegram.ChatID) (services.Result, error) {
	r.lastMenu = cfg
	return r.res, r.err
}

func (r *fakeReconciler) EnsureCommands(_ context.Context, cmds []tgbotapi.BotCommand) (services.Result, error) {
	r.commands = cmds
	return r.res, r.err
}

func (r *fakeReconciler) Snapshot(context.Context) services.Snapshot { return r.snapshot }

func (r *fakeReconciler) BotInfo(context.Context) (tgbotapi.User, error) { return r.me, r.meErr }

type fakeCatalog struct {
	raw     []byte
	results []menu.Result
	err     error
	lastQ   string
	lastK   int
}

func (c *fakeCatalog) Raw() ([]byte, error) { return c.raw, c.err }

func (c *fakeCatalog) Search(q string, k int) ([]menu.Result, error) {
	c.lastQ, c.lastK = q, k
	return c.results, c.err
}

type fixture struct {
	orders     *fakeOrders
	dispatcher *fakeDispatcher
	bot        *fakeReconciler
	catalog    *fakeCatalog
	h          *Handlers
	r          *gin.Engine
}

// newFixture wires handlers onto a bare engine with the identity and
// idempotency middleware the order routes rely on.
func newFixture(t *testing.T, site SiteOptions) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{
		orders:     newFakeOrders(),
		dispatcher: &fakeDispatcher{},
		bot:        &fakeReconciler{res: services.Result{Outcome: services.OutcomeSent, Description: "ok"}},
		catalog:    &fakeCatalog{},
	}
	f.h = New(f.orders, f.dispatcher, f.bot, f.catalog, site)
	f.h.now = func() time.Time { return time.Unix(1700000000, 0) }

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Identity())
	api := r.Group("/api")
	api.POST("/orders", middleware.IdempotencyValidator(middleware.IdempotencyOptions{Scope: services.IdempotencyScopeOrders}, nil), f.h.CreateOrder)
	api.GET("/orders", f.h.ListOrders)
	api.GET("/orders/:id", f.h.GetOrder)
	api.PATCH("/orders/:id/status", f.h.UpdateOrderStatus)
	api.GET("/orders/:id/qrcode", f.h.OrderQRCode)
	api.GET("/menu", f.h.Menu)
	api.GET("/menu/search", f.h.SearchMenu)
	r.POST("/bot/webhook", f.h.Webhook)
	r.GET("/set_webhook", f.h.SetWebhook)
	r.GET("/delete_webhook", f.h.DeleteWebhook)
	r.GET("/set_menu_button", f.h.SetMenuButton)
	r.GET("/setup_commands", f.h.SetupCommands)
	r.GET("/menu_button_status", f.h.MenuButtonStatus)
	r.GET("/bot_info", f.h.BotInfo)
	r.GET("/menu_qr", f.h.MenuQR)
	r.GET("/health", f.h.Health)
	r.GET("/", f.h.Index)
	f.r = r
	return f
}

func (f *fixture) do(method, target string, body []byte, hdr map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

var errBoom = errors.New("boom")
