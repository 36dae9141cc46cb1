package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
)

func testStore(name, email string) domain.Store {
	return domain.Store{
		ID:            domain.StoreID(name),
		StoreName:     name,
		Email:         email,
		ContactNumber: "555-0100",
		Latitude:      "52.52",
		Longitude:     "13.40",
		PasswordHash:  "$2a$10$hash",
	}
}

func TestCreateAndGetStore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateStore(ctx, db, testStore("Central Pharmacy", "c@example.com")); err != nil {
		t.Fatalf("CreateStore: %v", err)
	}

	got, err := GetStore(ctx, db, "centralpharmacy")
	if err != nil {
		t.Fatalf("GetStore: %v", err)
	}
	if got.StoreName != "Central Pharmacy" || got.Email != "c@example.com" {
		t.Fatalf("unexpected store: %+v", got)
	}
}

func TestGetStore_NotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := GetStore(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetStoreByEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateStore(ctx, db, testStore("Central Pharmacy", "c@example.com")); err != nil {
		t.Fatalf("CreateStore: %v", err)
	}

	got, err := GetStoreByEmail(ctx, db, "c@example.com")
	if err != nil {
		t.Fatalf("GetStoreByEmail: %v", err)
	}
	if got.ID != "centralpharmacy" {
		t.Fatalf("unexpected store id: %q", got.ID)
	}

	if _, err := GetStoreByEmail(ctx, db, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
