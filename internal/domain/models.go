// Package domain defines the persistence models for users, orders, order
// items and delivery details. These types are mapped with GORM and form the
// core data layer of the ordering bot.
package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusDelivering OrderStatus = "delivering"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDelivering, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an order may move from s to next.
// Orders advance pending → confirmed → delivering → completed, and any
// non-terminal order may be cancelled.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.Terminal() || !next.Valid() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusConfirmed
	case StatusConfirmed:
		return next == StatusDelivering
	case StatusDelivering:
		return next == StatusCompleted
	}
	return false
}

// User is a chat-platform user known to the bot. Its lifecycle is
// independent of orders.
//
// Fields:
//   - TelegramID: platform user id (unique, required).
//   - FirstName / LastName / Username / PhoneNumber: optional profile data.
type User struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	TelegramID  string    `json:"telegram_id"  gorm:"type:varchar(64);not null;uniqueIndex"`
	FirstName   string    `json:"first_name"   gorm:"type:varchar(255)"`
	LastName    string    `json:"last_name"    gorm:"type:varchar(255)"`
	Username    string    `json:"username"     gorm:"type:varchar(255)"`
	PhoneNumber string    `json:"phone_number" gorm:"type:varchar(64)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Order is a customer order. It exclusively owns its items and its delivery
// details; both are cascade-deleted with the order.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: identifier of the submitting customer (indexed, required).
//   - Total: order amount, always > 0.
//   - Status: lifecycle state, "pending" on creation.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Order struct {
	ID        string          `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string          `json:"user_id"    gorm:"type:varchar(64);not null;index"`
	Total     decimal.Decimal `json:"total"      gorm:"type:decimal(12,2);not null"`
	Status    OrderStatus     `json:"status"     gorm:"type:varchar(16);not null;default:'pending';index"`
	CreatedAt time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt time.Time       `json:"updated_at"`

	Items        []OrderItem   `json:"items"                   gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	DeliveryInfo *DeliveryInfo `json:"delivery_info,omitempty" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// OrderItem is one line of an order. Price is the unit price.
type OrderItem struct {
	ID        uint            `json:"id"        gorm:"primaryKey"`
	OrderID   string          `json:"order_id"  gorm:"type:char(36);not null;index"`
	ItemName  string          `json:"item_name" gorm:"type:varchar(255);not null"`
	Quantity  int             `json:"quantity"  gorm:"not null;check:quantity > 0"`
	Price     decimal.Decimal `json:"price"     gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName returns the database table name for OrderItem.
func (OrderItem) TableName() string { return "order_items" }

// Subtotal is Price * Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// MarshalJSON adds the derived subtotal to the stored columns.
func (i OrderItem) MarshalJSON() ([]byte, error) {
	type item OrderItem
	return json.Marshal(struct {
		item
		Subtotal decimal.Decimal `json:"subtotal"`
	}{item(i), i.Subtotal()})
}

// DeliveryInfo holds the shipping and contact details of an order (1:1).
type DeliveryInfo struct {
	ID        uint      `json:"id"       gorm:"primaryKey"`
	OrderID   string    `json:"order_id" gorm:"type:char(36);not null;uniqueIndex"`
	Name      string    `json:"name"     gorm:"type:varchar(255);not null"`
	Phone     string    `json:"phone"    gorm:"type:varchar(64);not null"`
	Address   string    `json:"address"  gorm:"type:text;not null"`
	Notes     string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for DeliveryInfo.
func (DeliveryInfo) TableName() string { return "delivery_info" }

// ItemsTotal returns the sum of all item subtotals.
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
