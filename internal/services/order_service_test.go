package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/sushi-order-bot/internal/domain"
	"github.com/tbourn/sushi-order-bot/internal/repo"
)

// ----- Test doubles -----

// sqlOrderRepo proxies the repo package functions.
type sqlOrderRepo struct{}

func (sqlOrderRepo) CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return repo.CreateOrder(ctx, db, o)
}
func (sqlOrderRepo) GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	return repo.GetOrder(ctx, db, id)
}
func (sqlOrderRepo) CountOrders(ctx context.Context, db *gorm.DB, f repo.OrderFilter) (int64, error) {
	return repo.CountOrders(ctx, db, f)
}
func (sqlOrderRepo) ListOrdersPage(ctx context.Context, db *gorm.DB, f repo.OrderFilter, offset, limit int) ([]domain.Order, error) {
	return repo.ListOrdersPage(ctx, db, f, offset, limit)
}
func (sqlOrderRepo) UpdateOrderStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.OrderStatus) error {
	return repo.UpdateOrderStatus(ctx, db, id, from, to)
}
func (sqlOrderRepo) OrdersStats(ctx context.Context, db *gorm.DB, f repo.OrderFilter) (int64, *time.Time, error) {
	return repo.OrdersStats(ctx, db, f)
}

type fakeNotifier struct {
	orders []*domain.Order
	res    Result
	err    error
}

func (n *fakeNotifier) NotifyAdmin(_ context.Context, o *domain.Order) (Result, error) {
	n.orders = append(n.orders, o)
	if n.res.Outcome == "" {
		n.res.Outcome = OutcomeSent
	}
	return n.res, n.err
}

type fakePublisher struct {
	ids []string
	err error
}

func (p *fakePublisher) PublishOrderCreated(_ context.Context, o *domain.Order) error {
	p.ids = append(p.ids, o.ID)
	return p.err
}

func newOrderDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if migrate {
		if err := repo.AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func newOrderService(t *testing.T) (*OrderService, *fakeNotifier, *fakePublisher) {
	t.Helper()
	n, p := &fakeNotifier{}, &fakePublisher{}
	return NewOrderService(newOrderDB(t, true), sqlOrderRepo{}, n, p, time.Hour), n, p
}

func validSubmission() OrderSubmission {
	return OrderSubmission{
		UserID: "42",
		DeliveryInfo: DeliveryInput{
			Name:    "Ana",
			Phone:   "+37360000000",
			Address: "Str. Ismail 1",
		},
		Items: []ItemInput{
			{Name: "Philadelphia", Quantity: 2, Price: decimal.NewFromInt(50)},
			{Name: "Miso", Quantity: 1, Price: decimal.RequireFromString("25.50")},
		},
	}
}

// ----- Tests -----

func TestNewOrderService_DefaultTTL(t *testing.T) {
	s := NewOrderService(nil, sqlOrderRepo{}, nil, nil, 0)
	if s.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("default ttl = %v", s.IdempotencyTTL)
	}
}

func TestSubmit_PersistsNotifiesAndPublishes(t *testing.T) {
	s, n, p := newOrderService(t)
	ctx := context.Background()

	conf, err := s.Submit(ctx, validSubmission(), "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if conf.OrderID == "" || conf.Replayed {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}
	if !conf.Total.Equal(decimal.RequireFromString("125.5")) {
		t.Fatalf("total = %s want 125.5", conf.Total)
	}
	if conf.Notified.Outcome != OutcomeSent {
		t.Fatalf("notification outcome = %q", conf.Notified.Outcome)
	}

	o, err := s.Get(ctx, conf.OrderID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if o.Status != domain.StatusPending || o.UserID != "42" {
		t.Fatalf("unexpected order: %+v", o)
	}
	if len(o.Items) != 2 || o.Items[0].ItemName != "Philadelphia" || o.Items[0].Quantity != 2 {
		t.Fatalf("items not stored: %+v", o.Items)
	}
	if o.DeliveryInfo == nil || o.DeliveryInfo.Phone != "+37360000000" {
		t.Fatalf("delivery not stored: %+v", o.DeliveryInfo)
	}
	if len(n.orders) != 1 || n.orders[0].ID != conf.OrderID {
		t.Fatalf("admin not notified exactly once")
	}
	if len(p.ids) != 1 || p.ids[0] != conf.OrderID {
		t.Fatalf("event not published exactly once: %v", p.ids)
	}
}

func TestSubmit_ClientTotalIgnored(t *testing.T) {
	s, _, _ := newOrderService(t)
	sub := validSubmission()
	wrong := decimal.NewFromInt(1)
	sub.Total = &wrong

	conf, err := s.Submit(context.Background(), sub, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	o, _ := s.Get(context.Background(), conf.OrderID)
	if !o.Total.Equal(decimal.RequireFromString("125.5")) {
		t.Fatalf("stored total = %s, want computed 125.5", o.Total)
	}
}

func TestSubmit_ValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*OrderSubmission)
		fields []string
	}{
		{"no items", func(s *OrderSubmission) { s.Items = nil }, []string{"items"}},
		{"empty items", func(s *OrderSubmission) { s.Items = []ItemInput{} }, []string{"items"}},
		{"blank name", func(s *OrderSubmission) { s.DeliveryInfo.Name = "   " }, []string{"delivery_info.name"}},
		{"missing phone and address", func(s *OrderSubmission) {
			s.DeliveryInfo.Phone = ""
			s.DeliveryInfo.Address = ""
		}, []string{"delivery_info.phone", "delivery_info.address"}},
		{"zero quantity", func(s *OrderSubmission) { s.Items[0].Quantity = 0 }, []string{"items[0].quantity"}},
		{"negative price", func(s *OrderSubmission) { s.Items[1].Price = decimal.NewFromInt(-5) }, []string{"items[1].price"}},
		{"zero price", func(s *OrderSubmission) { s.Items[1].Price = decimal.Zero }, []string{"items[1].price"}},
		{"blank item name", func(s *OrderSubmission) { s.Items[0].Name = "" }, []string{"items[0].name"}},
		{"sub-cent price", func(s *OrderSubmission) { s.Items[0].Price = decimal.RequireFromString("0.001") }, []string{"items[0].price"}},
		{"price too large", func(s *OrderSubmission) { s.Items[1].Price = decimal.RequireFromString("100000.01") }, []string{"items[1].price"}},
		{"price overflowing the column", func(s *OrderSubmission) { s.Items[0].Price = decimal.New(1, 10) }, []string{"items[0].price"}},
		{"quantity too large", func(s *OrderSubmission) { s.Items[0].Quantity = 1000 }, []string{"items[0].quantity"}},
		{"too many items", func(s *OrderSubmission) {
			s.Items = make([]ItemInput, 101)
			for i := range s.Items {
				s.Items[i] = ItemInput{Name: "Roll", Quantity: 1, Price: decimal.NewFromInt(1)}
			}
		}, []string{"items"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, n, _ := newOrderService(t)
			sub := validSubmission()
			tc.mutate(&sub)

			_, err := s.Submit(context.Background(), sub, "")
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			for _, f := range tc.fields {
				if !ve.Has(f) {
					t.Fatalf("expected field %q in %+v", f, ve.Fields)
				}
			}
			if len(ve.Fields) != len(tc.fields) {
				t.Fatalf("expected %d field errors, got %+v", len(tc.fields), ve.Fields)
			}
			if len(n.orders) != 0 {
				t.Fatalf("invalid order must not notify admin")
			}
			var count int64
			s.DB.Model(&domain.Order{}).Count(&count)
			if count != 0 {
				t.Fatalf("invalid order persisted")
			}
		})
	}
}

func TestValidate_Messages(t *testing.T) {
	s := NewOrderService(nil, sqlOrderRepo{}, nil, nil, 0)
	sub := validSubmission()
	sub.Items[0].Quantity = 0

	err := s.Validate(normalizeSubmission(sub))
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Fields) != 1 {
		t.Fatalf("expected one field error, got %v", err)
	}
	if ve.Fields[0].Message != "must be greater than 0" {
		t.Fatalf("message = %q", ve.Fields[0].Message)
	}

	sub = validSubmission()
	sub.Items = []ItemInput{}
	_ = errors.As(s.Validate(sub), &ve)
	if ve.Fields[0].Message != "must contain at least 1 item(s)" {
		t.Fatalf("message = %q", ve.Fields[0].Message)
	}

	// Zero-value service builds its validator lazily.
	if err := (&OrderService{}).Validate(normalizeSubmission(validSubmission())); err != nil {
		t.Fatalf("valid submission rejected: %v", err)
	}
}

func TestSubmit_NormalizesText(t *testing.T) {
	s, _, _ := newOrderService(t)
	sub := validSubmission()
	sub.UserID = "  "
	sub.DeliveryInfo.Name = "  Cafe\u0301  "
	sub.Items[0].Name = " Philadelphia "

	conf, err := s.Submit(context.Background(), sub, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	o, _ := s.Get(context.Background(), conf.OrderID)
	if o.DeliveryInfo.Name != "Caf\u00e9" {
		t.Fatalf("name not NFC-normalized: %q", o.DeliveryInfo.Name)
	}
	if o.Items[0].ItemName != "Philadelphia" {
		t.Fatalf("item name not trimmed: %q", o.Items[0].ItemName)
	}
	if o.UserID != AnonymousUser {
		t.Fatalf("user id = %q want %q", o.UserID, AnonymousUser)
	}
}

func TestSubmit_IdempotentReplay(t *testing.T) {
	s, n, p := newOrderService(t)
	ctx := context.Background()

	first, err := s.Submit(ctx, validSubmission(), "key-1")
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second, err := s.Submit(ctx, validSubmission(), "key-1")
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if !second.Replayed || second.OrderID != first.OrderID || !second.Total.Equal(first.Total) {
		t.Fatalf("expected replay of %s, got %+v", first.OrderID, second)
	}

	var count int64
	s.DB.Model(&domain.Order{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 order, got %d", count)
	}
	if len(n.orders) != 1 || len(p.ids) != 1 {
		t.Fatalf("replay must not notify or publish again")
	}

	// Another user with the same key gets a new order.
	other := validSubmission()
	other.UserID = "43"
	third, err := s.Submit(ctx, other, "key-1")
	if err != nil || third.Replayed || third.OrderID == first.OrderID {
		t.Fatalf("keys must be scoped per user: %+v err=%v", third, err)
	}
}

func TestSubmit_LargestOrderFitsMoneyColumns(t *testing.T) {
	s, _, _ := newOrderService(t)
	sub := validSubmission()
	sub.Items = make([]ItemInput, 100)
	for i := range sub.Items {
		sub.Items[i] = ItemInput{Name: "Omakase", Quantity: 999, Price: decimal.RequireFromString("100000.00")}
	}
	sub.Items[0].Price = decimal.RequireFromString("99999.990")

	conf, err := s.Submit(context.Background(), sub, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	// decimal(12,2) holds up to 9999999999.99.
	if !conf.Total.LessThan(decimal.New(1, 10)) || !conf.Total.Equal(conf.Total.Round(2)) {
		t.Fatalf("total %s does not fit decimal(12,2)", conf.Total)
	}
}

func TestValidate_MoneyBoundsMessages(t *testing.T) {
	s, _, _ := newOrderService(t)
	sub := validSubmission()
	sub.Items[0].Price = decimal.RequireFromString("1.005")
	sub.Items[1].Quantity = 5000

	var ve *ValidationError
	if !errors.As(s.Validate(sub), &ve) || len(ve.Fields) != 2 {
		t.Fatalf("expected two field errors, got %v", ve)
	}
	want := map[string]string{
		"items[0].price":    "must have at most 2 decimal places",
		"items[1].quantity": "must be at most 999",
	}
	for _, f := range ve.Fields {
		if want[f.Field] != f.Message {
			t.Fatalf("%s: %q, want %q", f.Field, f.Message, want[f.Field])
		}
	}
}

func TestSubmit_KeyOwnedByCallerNotPayloadUser(t *testing.T) {
	s, n, _ := newOrderService(t)
	ctx := context.Background()

	sub := validSubmission()
	sub.IdempotencyOwner = AnonymousUser
	first, err := s.Submit(ctx, sub, "K1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	for _, user := range []string{"u0", "u1", "u2"} {
		retry := validSubmission()
		retry.UserID = user
		retry.IdempotencyOwner = AnonymousUser
		conf, err := s.Submit(ctx, retry, "K1")
		if err != nil || !conf.Replayed || conf.OrderID != first.OrderID {
			t.Fatalf("user %s: expected replay of %s, got %+v err=%v", user, first.OrderID, conf, err)
		}
	}

	var count int64
	s.DB.Model(&domain.Order{}).Count(&count)
	if count != 1 || len(n.orders) != 1 {
		t.Fatalf("expected a single order, got %d stored / %d notified", count, len(n.orders))
	}
}

func TestSubmit_ExpiredKeyCreatesNewOrder(t *testing.T) {
	s, n, _ := newOrderService(t)
	s.IdempotencyTTL = 50 * time.Millisecond
	ctx := context.Background()

	first, err := s.Submit(ctx, validSubmission(), "k")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	second, err := s.Submit(ctx, validSubmission(), "k")
	if err != nil || second.Replayed || second.OrderID == first.OrderID {
		t.Fatalf("expected a fresh order after expiry, got %+v err=%v", second, err)
	}

	var count int64
	s.DB.Model(&domain.Order{}).Count(&count)
	if count != 2 || len(n.orders) != 2 {
		t.Fatalf("expected 2 stored and notified orders, got %d/%d", count, len(n.orders))
	}

	// The key now replays the second order.
	third, err := s.Submit(ctx, validSubmission(), "k")
	if err != nil || !third.Replayed || third.OrderID != second.OrderID {
		t.Fatalf("expected replay of the second order, got %+v err=%v", third, err)
	}
}

func TestSubmit_NotifierAndPublisherFailuresDoNotFail(t *testing.T) {
	s, n, p := newOrderService(t)
	n.res = Result{Outcome: OutcomeFailed, Error: "boom"}
	n.err = errors.New("boom")
	p.err = errors.New("kafka down")

	conf, err := s.Submit(context.Background(), validSubmission(), "")
	if err != nil {
		t.Fatalf("Submit must succeed after commit, got %v", err)
	}
	if conf.Notified.Outcome != OutcomeFailed {
		t.Fatalf("notification failure not reported: %+v", conf.Notified)
	}
	if _, err := s.Get(context.Background(), conf.OrderID); err != nil {
		t.Fatalf("order should be persisted: %v", err)
	}
}

func TestSubmit_NilCollaborators(t *testing.T) {
	s := NewOrderService(newOrderDB(t, true), sqlOrderRepo{}, nil, nil, time.Hour)
	conf, err := s.Submit(context.Background(), validSubmission(), "")
	if err != nil || conf.Notified.Outcome != "" {
		t.Fatalf("unexpected: %+v err=%v", conf, err)
	}
}

func TestSubmit_DBError(t *testing.T) {
	n := &fakeNotifier{}
	s := NewOrderService(newOrderDB(t, false), sqlOrderRepo{}, n, nil, time.Hour)
	if _, err := s.Submit(context.Background(), validSubmission(), ""); err == nil {
		t.Fatalf("expected error without tables")
	}
	if len(n.orders) != 0 {
		t.Fatalf("failed order must not notify admin")
	}
}

func TestGet_NotFound(t *testing.T) {
	s, _, _ := newOrderService(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestListPage_FilterAndPaging(t *testing.T) {
	s, _, _ := newOrderService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		conf, err := s.Submit(ctx, validSubmission(), "")
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		ids = append(ids, conf.OrderID)
	}
	if _, err := s.UpdateStatus(ctx, ids[0], domain.StatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	items, total, err := s.ListPage(ctx, repo.OrderFilter{}, 1, 2)
	if err != nil || total != 3 || len(items) != 2 {
		t.Fatalf("page1 = %d items, total %d, err %v", len(items), total, err)
	}

	items, total, err = s.ListPage(ctx, repo.OrderFilter{Status: domain.StatusConfirmed}, 0, 0)
	if err != nil || total != 1 || len(items) != 1 || items[0].ID != ids[0] {
		t.Fatalf("confirmed filter = %+v total %d err %v", items, total, err)
	}

	items, total, err = s.ListPage(ctx, repo.OrderFilter{UserID: "nobody"}, 1, 10)
	if err != nil || total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("empty result should be non-nil empty slice, got %v total %d err %v", items, total, err)
	}

	if _, _, err := s.ListPage(ctx, repo.OrderFilter{Status: "eaten"}, 1, 10); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	count, maxAt, err := s.Stats(ctx, repo.OrderFilter{})
	if err != nil || count != 3 || maxAt == nil {
		t.Fatalf("Stats = %d, %v, %v", count, maxAt, err)
	}
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	s, _, _ := newOrderService(t)
	ctx := context.Background()

	conf, err := s.Submit(ctx, validSubmission(), "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	id := conf.OrderID

	if _, err := s.UpdateStatus(ctx, id, domain.StatusDelivering); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending → delivering must be rejected, got %v", err)
	}
	for _, next := range []domain.OrderStatus{domain.StatusConfirmed, domain.StatusDelivering, domain.StatusCompleted} {
		o, err := s.UpdateStatus(ctx, id, next)
		if err != nil {
			t.Fatalf("→ %s: %v", next, err)
		}
		if o.Status != next {
			t.Fatalf("status = %s want %s", o.Status, next)
		}
	}
	if _, err := s.UpdateStatus(ctx, id, domain.StatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completed is terminal, got %v", err)
	}
}

func TestUpdateStatus_CancelAndErrors(t *testing.T) {
	s, _, _ := newOrderService(t)
	ctx := context.Background()

	conf, _ := s.Submit(ctx, validSubmission(), "")
	o, err := s.UpdateStatus(ctx, conf.OrderID, domain.StatusCancelled)
	if err != nil || o.Status != domain.StatusCancelled {
		t.Fatalf("cancel pending: %+v err=%v", o, err)
	}

	if _, err := s.UpdateStatus(ctx, conf.OrderID, "eaten"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := s.UpdateStatus(ctx, "missing", domain.StatusConfirmed); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestFieldPath(t *testing.T) {
	cases := map[string]string{
		"OrderSubmission.items[0].quantity":  "items[0].quantity",
		"OrderSubmission.delivery_info.name": "delivery_info.name",
		"items":                              "items",
	}
	for in, want := range cases {
		if got := fieldPath(in); got != want {
			t.Errorf("fieldPath(%q) = %q; want %q", in, got, want)
		}
	}
}
