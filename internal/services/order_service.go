// Package services – OrderService
//
// This file implements order intake: it validates a submission against an
// explicit schema, computes the total from the items, persists the order
// with its items and delivery details in one transaction, and then alerts
// the admin chat and publishes an order event. The alert and the event are
// best-effort: once the order is committed the submission succeeds.
//
// Idempotency: a submission carrying an Idempotency-Key returns the order
// created by the first submission with that key (same caller, same scope)
// instead of creating another one.
package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/sushi-order-bot/internal/domain"
	"github.com/tbourn/sushi-order-bot/internal/repo"
	"github.com/tbourn/sushi-order-bot/internal/utils"
)

// IdempotencyScopeOrders namespaces idempotency keys of order submissions.
const IdempotencyScopeOrders = "orders"

// AnonymousUser is recorded when a submission names no user.
const AnonymousUser = "anonymous"

// moneyPlaces matches the scale of the decimal(12,2) money columns.
const moneyPlaces = 2

// DeliveryInput is the delivery part of a submission.
type DeliveryInput struct {
	Name    string `json:"name"            validate:"required,max=255"  example:"Ana"`
	Phone   string `json:"phone"           validate:"required,max=64"   example:"+37360000000"`
	Address string `json:"address"         validate:"required,max=1000" example:"Str. Ismail 1, ap. 5"`
	Notes   string `json:"notes,omitempty" validate:"max=1000"          example:"Ring twice"`
}

// ItemInput is one ordered item. Price is the unit price.
type ItemInput struct {
	Name     string          `json:"name"     validate:"required,max=255" example:"Philadelphia Roll"`
	Quantity int             `json:"quantity" validate:"gt=0,lte=999"        example:"2"`
	Price    decimal.Decimal `json:"price"    validate:"gt=0,lte=100000"     swaggertype:"number" example:"50"`
}

// OrderSubmission is the order payload accepted from the mini-app.
type OrderSubmission struct {
	UserID       string           `json:"user_id,omitempty" validate:"max=64"                 example:"123456789"`
	DeliveryInfo DeliveryInput    `json:"delivery_info"`
	Items        []ItemInput      `json:"items"             validate:"required,min=1,max=100,dive"`
	Total        *decimal.Decimal `json:"total,omitempty"   swaggertype:"number"              example:"100"`

	// IdempotencyOwner scopes the Idempotency-Key. The HTTP layer sets it to
	// the caller identity; when empty UserID is used.
	IdempotencyOwner string `json:"-" swaggerignore:"true"`
}

func (sub OrderSubmission) idempotencyOwner() string {
	if sub.IdempotencyOwner != "" {
		return sub.IdempotencyOwner
	}
	return sub.UserID
}

// OrderConfirmation is returned for an accepted submission.
type OrderConfirmation struct {
	OrderID  string
	Total    decimal.Decimal
	Replayed bool
	Notified Result
}

// OrderRepo defines the repository contract required by OrderService.
type OrderRepo interface {
	// CreateOrder inserts the order together with its items and delivery info.
	CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error
	// GetOrder loads an order with items and delivery info.
	GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error)
	// CountOrders returns the number of orders matching f.
	CountOrders(ctx context.Context, db *gorm.DB, f repo.OrderFilter) (int64, error)
	// ListOrdersPage returns a page of orders matching f, newest first.
	ListOrdersPage(ctx context.Context, db *gorm.DB, f repo.OrderFilter, offset, limit int) ([]domain.Order, error)
	// UpdateOrderStatus moves an order from one status to another.
	UpdateOrderStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.OrderStatus) error
	// OrdersStats returns count and latest update time for ETags.
	OrdersStats(ctx context.Context, db *gorm.DB, f repo.OrderFilter) (int64, *time.Time, error)
}

// AdminNotifier alerts staff about a new order.
type AdminNotifier interface {
	NotifyAdmin(ctx context.Context, o *domain.Order) (Result, error)
}

// OrderPublisher emits an event for a committed order.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, o *domain.Order) error
}

// OrderService implements order intake, reads and status changes.
type OrderService struct {
	DB       *gorm.DB
	Repo     OrderRepo
	Notifier AdminNotifier
	// Publisher is optional.
	Publisher OrderPublisher

	// IdempotencyTTL bounds how long a key replays its order.
	IdempotencyTTL time.Duration

	validate *validator.Validate
}

// NewOrderService constructs an OrderService with its payload validator.
func NewOrderService(db *gorm.DB, r OrderRepo, n AdminNotifier, p OrderPublisher, ttl time.Duration) *OrderService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &OrderService{
		DB:             db,
		Repo:           r,
		Notifier:       n,
		Publisher:      p,
		IdempotencyTTL: ttl,
		validate:       newValidator(),
	}
}

// Submit validates and stores sub. idemKey may be empty.
func (s *OrderService) Submit(ctx context.Context, sub OrderSubmission, idemKey string) (*OrderConfirmation, error) {
	ctx, span := otel.Tracer("services/OrderService").Start(ctx, "Submit",
		trace.WithAttributes(attribute.Int("items", len(sub.Items))),
	)
	defer span.End()
	lg := zerolog.Ctx(ctx)

	sub = normalizeSubmission(sub)
	if err := s.Validate(sub); err != nil {
		ordersSubmitted.WithLabelValues("invalid").Inc()
		return nil, err
	}

	now := time.Now().UTC()
	if idemKey != "" {
		if conf, ok := s.replay(ctx, sub.idempotencyOwner(), idemKey, now); ok {
			ordersSubmitted.WithLabelValues("replayed").Inc()
			return conf, nil
		}
	}

	order := buildOrder(sub, now)
	span.SetAttributes(attribute.String("order.id", order.ID))
	if sub.Total != nil && !sub.Total.Equal(order.Total) {
		lg.Warn().
			Str("order_id", order.ID).
			Str("client_total", sub.Total.String()).
			Str("computed_total", order.Total.String()).
			Msg("client total differs from computed total, using computed")
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.CreateOrder(ctx, tx, order); err != nil {
			return err
		}
		if idemKey == "" {
			return nil
		}
		_, err := repo.CreateIdempotency(ctx, tx, sub.idempotencyOwner(), IdempotencyScopeOrders, idemKey, order.ID, 201, s.IdempotencyTTL)
		return err
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent submission with the same key won the race.
		if conf, ok := s.replay(ctx, sub.idempotencyOwner(), idemKey, now); ok {
			ordersSubmitted.WithLabelValues("replayed").Inc()
			return conf, nil
		}
	}
	if err != nil {
		span.RecordError(err)
		ordersSubmitted.WithLabelValues("failed").Inc()
		return nil, err
	}
	ordersSubmitted.WithLabelValues("created").Inc()
	lg.Info().Str("order_id", order.ID).Str("total", order.Total.String()).Msg("order accepted")

	conf := &OrderConfirmation{OrderID: order.ID, Total: order.Total}
	if s.Notifier != nil {
		res, nerr := s.Notifier.NotifyAdmin(ctx, order)
		if nerr != nil {
			lg.Warn().Err(nerr).Str("order_id", order.ID).Msg("admin notification failed")
		}
		adminNotifications.WithLabelValues(string(res.Outcome)).Inc()
		conf.Notified = res
	}
	if s.Publisher != nil {
		if perr := s.Publisher.PublishOrderCreated(ctx, order); perr != nil {
			lg.Warn().Err(perr).Str("order_id", order.ID).Msg("order event not published")
		}
	}
	return conf, nil
}

// Validate checks sub against the payload schema and returns a
// *ValidationError listing every offending field. Prices must fit the
// stored money columns: at most 2 decimal places.
func (s *OrderService) Validate(sub OrderSubmission) error {
	v := s.validate
	if v == nil {
		v = newValidator()
	}
	out := &ValidationError{}
	if err := v.Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe.Namespace()), Message: fieldMessage(fe)})
		}
	}
	for i, it := range sub.Items {
		if !it.Price.Equal(it.Price.Round(moneyPlaces)) {
			out.Fields = append(out.Fields, FieldError{
				Field:   fmt.Sprintf("items[%d].price", i),
				Message: fmt.Sprintf("must have at most %d decimal places", moneyPlaces),
			})
		}
	}
	if len(out.Fields) == 0 {
		return nil
	}
	return out
}

// Get returns the order with id.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := otel.Tracer("services/OrderService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("order.id", id)),
	)
	defer span.End()

	o, err := s.Repo.GetOrder(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// ListPage returns a page of orders matching f and the total count.
func (s *OrderService) ListPage(ctx context.Context, f repo.OrderFilter, page, pageSize int) ([]domain.Order, int64, error) {
	ctx, span := otel.Tracer("services/OrderService").Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := utils.Offset(page, pageSize)

	total, err := s.Repo.CountOrders(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Order{}, 0, nil
	}
	items, err := s.Repo.ListOrdersPage(ctx, s.DB, f, offset, pageSize)
	return items, total, err
}

// Stats returns the count and latest update time of orders matching f.
func (s *OrderService) Stats(ctx context.Context, f repo.OrderFilter) (int64, *time.Time, error) {
	return s.Repo.OrdersStats(ctx, s.DB, f)
}

// UpdateStatus moves order id to next if the lifecycle allows it.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
	ctx, span := otel.Tracer("services/OrderService").Start(ctx, "UpdateStatus",
		trace.WithAttributes(
			attribute.String("order.id", id),
			attribute.String("order.status", string(next)),
		),
	)
	defer span.End()

	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	var updated *domain.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.Repo.GetOrder(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !o.Status.CanTransition(next) {
			return ErrInvalidTransition
		}
		if err := s.Repo.UpdateOrderStatus(ctx, tx, id, o.Status, next); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrInvalidTransition
			}
			return err
		}
		updated, err = s.Repo.GetOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("order_id", id).Str("status", string(next)).Msg("order status changed")
	return updated, nil
}

// replay returns the confirmation of the order recorded under key, if any.
func (s *OrderService) replay(ctx context.Context, userID, key string, now time.Time) (*OrderConfirmation, bool) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, IdempotencyScopeOrders, key, now)
	if err != nil || rec == nil {
		return nil, false
	}
	o, err := s.Repo.GetOrder(ctx, s.DB, rec.ResourceID)
	if err != nil {
		return nil, false
	}
	return &OrderConfirmation{OrderID: o.ID, Total: o.Total, Replayed: true}, true
}

// buildOrder maps a valid submission to a new pending order. The stored
// total is always the computed one.
func buildOrder(sub OrderSubmission, now time.Time) *domain.Order {
	o := &domain.Order{
		ID:        uuid.NewString(),
		UserID:    sub.UserID,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		DeliveryInfo: &domain.DeliveryInfo{
			Name:      sub.DeliveryInfo.Name,
			Phone:     sub.DeliveryInfo.Phone,
			Address:   sub.DeliveryInfo.Address,
			Notes:     sub.DeliveryInfo.Notes,
			CreatedAt: now,
		},
	}
	o.Items = make([]domain.OrderItem, 0, len(sub.Items))
	for _, it := range sub.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ItemName:  it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			CreatedAt: now,
		})
	}
	o.Total = domain.ItemsTotal(o.Items)
	return o
}

// normalizeSubmission trims text fields and converts them to NFC so the same
// name typed on different keyboards is stored identically.
func normalizeSubmission(sub OrderSubmission) OrderSubmission {
	sub.UserID = clean(sub.UserID)
	if sub.UserID == "" {
		sub.UserID = AnonymousUser
	}
	sub.DeliveryInfo.Name = clean(sub.DeliveryInfo.Name)
	sub.DeliveryInfo.Phone = clean(sub.DeliveryInfo.Phone)
	sub.DeliveryInfo.Address = clean(sub.DeliveryInfo.Address)
	sub.DeliveryInfo.Notes = clean(sub.DeliveryInfo.Notes)
	items := make([]ItemInput, len(sub.Items))
	for i, it := range sub.Items {
		it.Name = clean(it.Name)
		items[i] = it
	}
	if sub.Items != nil {
		sub.Items = items
	}
	return sub
}

func clean(s string) string { return norm.NFC.String(strings.TrimSpace(s)) }

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// fieldPath drops the root struct name from a validator namespace:
// "OrderSubmission.items[0].quantity" -> "items[0].quantity".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + fe.Param() + " item(s)"
		}
		return "must be at most " + fe.Param() + " characters"
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
