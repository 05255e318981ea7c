// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order
// aggregate (order, items, delivery info).
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - When an order is not found, functions return ErrNotFound
//     (gorm.ErrRecordNotFound).
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/sushi-order-bot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// OrderFilter narrows order listings. Zero fields match everything.
type OrderFilter struct {
	UserID string
	Status domain.OrderStatus
}

func (f OrderFilter) apply(q *gorm.DB) *gorm.DB {
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

// CreateOrder inserts o together with its items and delivery info. GORM
// writes the associations in the same statement batch, so callers wanting
// all-or-nothing semantics pass a transaction handle.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return db.WithContext(ctx).Create(o).Error
}

// GetOrder fetches an order with its items (in insertion order) and delivery
// info. It returns ErrNotFound if the order does not exist.
func GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	var o domain.Order
	err := withAssociations(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CountOrders returns the number of orders matching f.
func CountOrders(ctx context.Context, db *gorm.DB, f OrderFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Order{})).Count(&total).Error
	return total, err
}

// ListOrdersPage returns a page of orders matching f, newest first, with
// their associations loaded. Use CountOrders for pagination metadata.
func ListOrdersPage(ctx context.Context, db *gorm.DB, f OrderFilter, offset, limit int) ([]domain.Order, error) {
	var out []domain.Order
	err := f.apply(withAssociations(db.WithContext(ctx))).
		Order("created_at desc").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateOrderStatus sets the status of order id to "to" only if it is
// currently "from". If no row matches it returns ErrNotFound.
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.OrderStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func withAssociations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("DeliveryInfo")
}
