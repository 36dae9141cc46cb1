// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the inventory
// ledger (MedicineBatch rows).
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a batch row is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - When more than one row exists under a partition key expected to be
//     unique, lookups return ErrDuplicateRow. The partition index is
//     intentionally non-unique (the backing row store offers no cross-row
//     constraint), so corruption is detected at read time, never silently
//     resolved.
//   - On DB errors (connectivity issues, etc.) the raw gorm error is
//     propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicateRow is returned when a lookup by a key expected to be unique
// matches more than one row. It indicates backing-store corruption.
var ErrDuplicateRow = errors.New("duplicate row for unique key")

// CreateBatch inserts a new inventory row. The row ID is a randomly
// generated UUID and CreatedAt is set to UTC. The caller is responsible for
// having validated the row (domain.MedicineBatch.Validate).
func CreateBatch(ctx context.Context, db *gorm.DB, batch domain.MedicineBatch) (*domain.MedicineBatch, error) {
	batch.ID = uuid.NewString()
	batch.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindBatchByPartition fetches the single row addressed by the compound
// partition key. Zero matches return ErrNotFound; more than one match
// returns ErrDuplicateRow.
func FindBatchByPartition(ctx context.Context, db *gorm.DB, partitionID string) (*domain.MedicineBatch, error) {
	var rows []domain.MedicineBatch
	err := db.WithContext(ctx).
		Where("partition_id = ?", partitionID).
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

// UpdateBatchQuantity persists a new quantity for the row with the given ID.
//
// This is a merge-style update of a previously read row: the read and the
// write are not atomic, so two concurrent writers can race and the later
// write wins (lost-update hazard). That matches the per-row-atomicity
// contract of the backing store; no optimistic concurrency token is used.
// Returns ErrNotFound when no row was affected.
func UpdateBatchQuantity(ctx context.Context, db *gorm.DB, id string, quantity int) error {
	res := db.WithContext(ctx).
		Model(&domain.MedicineBatch{}).
		Where("id = ?", id).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindBatchesByMedicineName returns every row across all stores whose
// canonical medicine name equals the query. This is the logical
// medicine-name index the coverage resolver relies on; an empty result is
// not an error.
func FindBatchesByMedicineName(ctx context.Context, db *gorm.DB, medicineName string) ([]domain.MedicineBatch, error) {
	var rows []domain.MedicineBatch
	err := db.WithContext(ctx).
		Where("medicine_name = ?", medicineName).
		Find(&rows).Error
	return rows, err
}

// CountBatchesByStore returns the total number of inventory rows owned by
// storeID, for pagination metadata.
func CountBatchesByStore(ctx context.Context, db *gorm.DB, storeID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.MedicineBatch{}).
		Where("store_id = ?", storeID).
		Count(&total).Error
	return total, err
}

// ListBatchesByStorePage returns a paginated slice of a store's inventory
// rows, ordered by canonical medicine name then batch number for stable
// paging. The caller computes offset and limit.
func ListBatchesByStorePage(ctx context.Context, db *gorm.DB, storeID string, offset, limit int) ([]domain.MedicineBatch, error) {
	var rows []domain.MedicineBatch
	err := db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("medicine_name asc, batch_number asc").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
