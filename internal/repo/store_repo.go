// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the store
// registry.
//
// Uniqueness of store id and contact email is checked by lookup before
// insert (the registry is append-only from the core's perspective), and
// ambiguous matches are reported as ErrDuplicateRow rather than resolved.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
)

// CreateStore inserts a new store row. The caller must have validated the
// row and derived its identifier (domain.StoreID).
func CreateStore(ctx context.Context, db *gorm.DB, store domain.Store) (*domain.Store, error) {
	store.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// GetStore fetches a store by its case-insensitive identifier. Missing rows
// return ErrNotFound; more than one row under the identifier returns
// ErrDuplicateRow.
func GetStore(ctx context.Context, db *gorm.DB, id string) (*domain.Store, error) {
	var rows []domain.Store
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &rows[0], nil
	default:
		return nil, ErrDuplicateRow
	}
}

// GetStoreByEmail fetches a store by contact email (exact match). Missing
// rows return ErrNotFound; multiple matches return ErrDuplicateRow, since
// email is unique across all stores.
func GetStoreByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Store, error) {
	var rows []domain.Store
	err := db.WithContext(ctx).
		Where("email = ?", email).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &rows[0], nil
	default:
		return nil, ErrDuplicateRow
	}
}
