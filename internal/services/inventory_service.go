// Package services – InventoryService
//
// This file implements the inventory ledger: per-store, per-medicine-batch
// stock counts with stock-in, checkout, and the medicine-name index the
// coverage resolver queries. All names are case-folded before key formation,
// so ledger lookups are case-insensitive by construction.
//
// Quantity updates are read-then-write: the storage layer provides per-row
// atomicity only, so two concurrent stock-ins on the same triple can race
// (lost update). This is an accepted limitation of the design; see
// repo.UpdateBatchQuantity.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
	"github.com/pharmafind/go-pharmacy-backend/internal/repo"
)

// InventoryService owns stock mutations and inventory queries.
type InventoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// StockIn records one incoming unit of a medicine batch. A first stock-in
// for a (store, medicine, batch) triple creates the row with quantity 1;
// subsequent stock-ins increment the existing row. More than one existing
// row for the triple is ledger corruption and fails with ErrDuplicateKey.
func (s *InventoryService) StockIn(ctx context.Context, storeID, medicineName, batchNumber, manufacturer, expiryDate string, price float64) (*domain.MedicineBatch, error) {
	tr := otel.Tracer("services/InventoryService")
	ctx, span := tr.Start(ctx, "StockIn",
		trace.WithAttributes(
			attribute.String("store.id", storeID),
			attribute.String("medicine.name", medicineName),
		),
	)
	defer span.End()

	batch := domain.NewMedicineBatch(storeID, medicineName, batchNumber, manufacturer, expiryDate, price)
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	existing, err := repo.FindBatchByPartition(ctx, s.DB, batch.PartitionID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return repo.CreateBatch(ctx, s.DB, batch)
	case errors.Is(err, repo.ErrDuplicateRow):
		return nil, ErrDuplicateKey
	case err != nil:
		return nil, err
	}

	if err := repo.UpdateBatchQuantity(ctx, s.DB, existing.ID, existing.Quantity+1); err != nil {
		return nil, err
	}
	existing.Quantity++
	return existing, nil
}

// Checkout removes one unit of a medicine batch. A triple that was never
// stocked fails with ErrMedicineNotFound; a zero-quantity row is treated as
// present, so decrementing it fails with ErrInsufficientStock and the prior
// persisted state is left untouched.
func (s *InventoryService) Checkout(ctx context.Context, storeID, medicineName, batchNumber string) (*domain.MedicineBatch, error) {
	tr := otel.Tracer("services/InventoryService")
	ctx, span := tr.Start(ctx, "Checkout",
		trace.WithAttributes(
			attribute.String("store.id", storeID),
			attribute.String("medicine.name", medicineName),
		),
	)
	defer span.End()

	partitionID := domain.PartitionID(storeID, medicineName, batchNumber)
	existing, err := repo.FindBatchByPartition(ctx, s.DB, partitionID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrMedicineNotFound
	case errors.Is(err, repo.ErrDuplicateRow):
		return nil, ErrDuplicateKey
	case err != nil:
		return nil, err
	}

	if existing.Quantity-1 < 0 {
		return nil, ErrInsufficientStock
	}
	if err := repo.UpdateBatchQuantity(ctx, s.DB, existing.ID, existing.Quantity-1); err != nil {
		return nil, err
	}
	existing.Quantity--
	return existing, nil
}

// FindByName returns every ledger row across all stores whose canonical
// medicine name equals the query. The name is case-folded before lookup.
func (s *InventoryService) FindByName(ctx context.Context, medicineName string) ([]domain.MedicineBatch, error) {
	return repo.FindBatchesByMedicineName(ctx, s.DB, strings.ToLower(medicineName))
}

// ListPage returns a page of a store's own inventory rows and the total
// count. Defaults are applied for invalid page/pageSize.
func (s *InventoryService) ListPage(ctx context.Context, storeID string, page, pageSize int) ([]domain.MedicineBatch, int64, error) {
	tr := otel.Tracer("services/InventoryService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("store.id", storeID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountBatchesByStore(ctx, s.DB, storeID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.MedicineBatch{}, 0, nil
	}

	items, err := repo.ListBatchesByStorePage(ctx, s.DB, storeID, offset, pageSize)
	return items, total, err
}
