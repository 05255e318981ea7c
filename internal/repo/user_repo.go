// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/sushi-order-bot/internal/domain"
)

// UpsertUser inserts u or, if a user with the same TelegramID exists,
// refreshes its profile fields. PhoneNumber is only overwritten when set.
func UpsertUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	cols := []string{"first_name", "last_name", "username", "updated_at"}
	if u.PhoneNumber != "" {
		cols = append(cols, "phone_number")
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(u).Error
}

// GetUserByTelegramID returns the user with the given platform id or
// ErrNotFound.
func GetUserByTelegramID(ctx context.Context, db *gorm.DB, telegramID string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
