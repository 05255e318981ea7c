package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/sushi-order-bot/internal/domain"
)

func TestOrdersStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if _, _, err := OrdersStats(context.Background(), db, OrderFilter{}); err == nil {
		t.Fatalf("expected error due to missing orders table")
	}
}

func TestOrdersStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, allModels()...)
	count, maxAt, err := OrdersStats(context.Background(), db, OrderFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("OrdersStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestOrdersStats_Success_FilterAndMax(t *testing.T) {
	db := newTestDB(t, allModels()...)
	ctx := context.Background()

	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC) // max for u1
	t3 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)   // other user

	for _, o := range []*domain.Order{
		seedOrder(t, "o1", "u1", domain.StatusPending, t1),
		seedOrder(t, "o2", "u1", domain.StatusConfirmed, t2),
		seedOrder(t, "o3", "u2", domain.StatusPending, t3),
	} {
		if err := CreateOrder(ctx, db, o); err != nil {
			t.Fatalf("seed %s: %v", o.ID, err)
		}
	}

	count, maxAt, err := OrdersStats(ctx, db, OrderFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("OrdersStats error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	if maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected max updated_at %v, got %v", t2, maxAt)
	}

	count, maxAt, err = OrdersStats(ctx, db, OrderFilter{Status: domain.StatusPending})
	if err != nil || count != 2 || maxAt == nil || !maxAt.Equal(t3) {
		t.Fatalf("pending stats = (%d, %v, %v)", count, maxAt, err)
	}
}
