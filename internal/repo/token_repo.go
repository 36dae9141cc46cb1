// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for issued store
// tokens.
//
// At most one live token row is kept per store: the store id is the primary
// key, and a reissue overwrites the previous row rather than accumulating
// history. A token is considered dead once its expiry passes regardless of
// whether the row is ever cleaned up.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
)

// UpsertStoreToken creates or replaces the single live token row for a
// store.
func UpsertStoreToken(ctx context.Context, db *gorm.DB, storeID, token string, expiresAt time.Time) error {
	row := domain.StoreToken{
		StoreID:   storeID,
		Token:     token,
		ExpiresAt: expiresAt,
		UpdatedAt: time.Now().UTC(),
	}
	if err := row.Validate(); err != nil {
		return err
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

// GetStoreToken fetches the live token row for a store, or ErrNotFound.
func GetStoreToken(ctx context.Context, db *gorm.DB, storeID string) (*domain.StoreToken, error) {
	var row domain.StoreToken
	err := db.WithContext(ctx).
		Where("store_id = ?", storeID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
