package services

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
	"github.com/pharmafind/go-pharmacy-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func stockIn(t *testing.T, svc *InventoryService, store, med, batch string) int {
	t.Helper()
	row, err := svc.StockIn(context.Background(), store, med, batch, "Acme Labs", "2027-01-01", 3.2)
	if err != nil {
		t.Fatalf("stock in %s/%s/%s: %v", store, med, batch, err)
	}
	return row.Quantity
}

func TestInventory_StockInAndCheckoutSequence(t *testing.T) {
	svc := &InventoryService{DB: newTestDB(t)}
	ctx := context.Background()

	if q := stockIn(t, svc, "pharma1", "Lisinopril", "B-1"); q != 1 {
		t.Fatalf("quantity after first stock-in = %d, want 1", q)
	}
	if q := stockIn(t, svc, "pharma1", "lisinopril", "b-1"); q != 2 {
		t.Fatalf("quantity after second stock-in = %d, want 2", q)
	}

	row, err := svc.Checkout(ctx, "pharma1", "LISINOPRIL", "B-1")
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	if row.Quantity != 1 {
		t.Fatalf("quantity after first checkout = %d, want 1", row.Quantity)
	}

	row, err = svc.Checkout(ctx, "pharma1", "lisinopril", "B-1")
	if err != nil {
		t.Fatalf("second checkout: %v", err)
	}
	if row.Quantity != 0 {
		t.Fatalf("quantity after second checkout = %d, want 0", row.Quantity)
	}

	// The zero-quantity row still exists, so this is an out-of-stock
	// failure rather than an unknown medicine.
	if _, err := svc.Checkout(ctx, "pharma1", "lisinopril", "B-1"); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("checkout at zero = %v, want ErrInsufficientStock", err)
	}

	after, err := repo.FindBatchesByMedicineName(ctx, svc.DB, "lisinopril")
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 1 || after[0].Quantity != 0 {
		t.Fatalf("persisted rows = %+v, want single zero-quantity row", after)
	}
}

func TestInventory_CheckoutNeverStocked(t *testing.T) {
	svc := &InventoryService{DB: newTestDB(t)}

	_, err := svc.Checkout(context.Background(), "pharma1", "aspirin", "B-9")
	if !errors.Is(err, ErrMedicineNotFound) {
		t.Fatalf("checkout = %v, want ErrMedicineNotFound", err)
	}
}

func TestInventory_StockInRejectsIncompleteRow(t *testing.T) {
	svc := &InventoryService{DB: newTestDB(t)}

	_, err := svc.StockIn(context.Background(), "pharma1", "aspirin", "B-1", "", "2027-01-01", 1.0)
	if err == nil {
		t.Fatal("stock-in without manufacturer succeeded")
	}
}

func TestInventory_DuplicateRowsSurfaceAsCorruption(t *testing.T) {
	svc := &InventoryService{DB: newTestDB(t)}
	ctx := context.Background()

	stockIn(t, svc, "pharma1", "aspirin", "B-1")
	// Force a second row under the same partition key behind the service's
	// back, as an uncoordinated writer would.
	dup, err := repo.CreateBatch(ctx, svc.DB, domain.NewMedicineBatch("pharma1", "aspirin", "B-1", "Acme Labs", "2027-01-01", 3.2))
	if err != nil || dup == nil {
		t.Fatalf("force duplicate: %v", err)
	}

	if _, err := svc.StockIn(ctx, "pharma1", "aspirin", "B-1", "Acme Labs", "2027-01-01", 3.2); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("stock-in over duplicates = %v, want ErrDuplicateKey", err)
	}
	if _, err := svc.Checkout(ctx, "pharma1", "aspirin", "B-1"); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("checkout over duplicates = %v, want ErrDuplicateKey", err)
	}
}

func TestInventory_ListPage(t *testing.T) {
	svc := &InventoryService{DB: newTestDB(t)}
	ctx := context.Background()

	for _, med := range []string{"amoxicillin", "ibuprofen", "lisinopril"} {
		stockIn(t, svc, "pharma1", med, "B-1")
	}
	stockIn(t, svc, "pharma2", "aspirin", "B-1")

	items, total, err := svc.ListPage(ctx, "pharma1", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if len(items) != 2 || items[0].MedicineName != "amoxicillin" || items[1].MedicineName != "ibuprofen" {
		t.Fatalf("page 1 = %+v", items)
	}

	items, _, err = svc.ListPage(ctx, "pharma1", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].MedicineName != "lisinopril" {
		t.Fatalf("page 2 = %+v", items)
	}

	// Out-of-range paging inputs fall back to defaults.
	items, total, err = svc.ListPage(ctx, "pharma1", 0, -5)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("defaulted page: total=%d items=%d", total, len(items))
	}
}
