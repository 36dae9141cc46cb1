package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testBatch(store, med, batch string) domain.MedicineBatch {
	return domain.NewMedicineBatch(store, med, batch, "Acme Labs", "2027-01-01", 3.2)
}

func TestCreateAndFindBatchByPartition(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := CreateBatch(ctx, db, testBatch("s1", "Ibuprofen", "B1"))
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated row id")
	}

	got, err := FindBatchByPartition(ctx, db, domain.PartitionID("s1", "ibuprofen", "B1"))
	if err != nil {
		t.Fatalf("FindBatchByPartition: %v", err)
	}
	if got.MedicineName != "ibuprofen" || got.Quantity != 1 {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFindBatchByPartition_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := FindBatchByPartition(context.Background(), db, "missing|missing|b0")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindBatchByPartition_DuplicateRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Two rows under the same partition key simulate ledger corruption;
	// the partition index is deliberately non-unique so this can happen.
	if _, err := CreateBatch(ctx, db, testBatch("s1", "aspirin", "B1")); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if _, err := CreateBatch(ctx, db, testBatch("s1", "aspirin", "B1")); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	_, err := FindBatchByPartition(ctx, db, domain.PartitionID("s1", "aspirin", "B1"))
	if !errors.Is(err, ErrDuplicateRow) {
		t.Fatalf("expected ErrDuplicateRow, got %v", err)
	}
}

func TestUpdateBatchQuantity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := CreateBatch(ctx, db, testBatch("s1", "ibuprofen", "B1"))
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := UpdateBatchQuantity(ctx, db, created.ID, 5); err != nil {
		t.Fatalf("UpdateBatchQuantity: %v", err)
	}

	got, err := FindBatchByPartition(ctx, db, created.PartitionID)
	if err != nil {
		t.Fatalf("FindBatchByPartition: %v", err)
	}
	if got.Quantity != 5 {
		t.Fatalf("Quantity = %d, want 5", got.Quantity)
	}

	if err := UpdateBatchQuantity(ctx, db, "missing-id", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing row, got %v", err)
	}
}

func TestFindBatchesByMedicineName_AcrossStores(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, store := range []string{"s1", "s2", "s3"} {
		if _, err := CreateBatch(ctx, db, testBatch(store, "lisinopril", "B1")); err != nil {
			t.Fatalf("CreateBatch: %v", err)
		}
	}
	if _, err := CreateBatch(ctx, db, testBatch("s1", "other", "B1")); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	rows, err := FindBatchesByMedicineName(ctx, db, "lisinopril")
	if err != nil {
		t.Fatalf("FindBatchesByMedicineName: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	none, err := FindBatchesByMedicineName(ctx, db, "absent")
	if err != nil {
		t.Fatalf("FindBatchesByMedicineName: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(none))
	}
}

func TestListBatchesByStorePage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, med := range []string{"aaa", "bbb", "ccc", "ddd"} {
		if _, err := CreateBatch(ctx, db, testBatch("s1", med, "B1")); err != nil {
			t.Fatalf("CreateBatch: %v", err)
		}
	}

	total, err := CountBatchesByStore(ctx, db, "s1")
	if err != nil {
		t.Fatalf("CountBatchesByStore: %v", err)
	}
	if total != 4 {
		t.Fatalf("total = %d, want 4", total)
	}

	page, err := ListBatchesByStorePage(ctx, db, "s1", 2, 2)
	if err != nil {
		t.Fatalf("ListBatchesByStorePage: %v", err)
	}
	if len(page) != 2 || page[0].MedicineName != "ccc" {
		t.Fatalf("unexpected page: %+v", page)
	}
}
