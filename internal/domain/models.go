// Package domain defines the persistence models for the pharmacy network:
// inventory batches, registered stores, and issued auth tokens. These types
// are mapped with GORM and form the core data layer of the application.
//
// All row keys are case-folded at construction time so that lookups are
// case-insensitive by construction rather than by collation. Each type
// exposes a Validate method implementing the flat-attribute projection
// contract: a row with any missing required field is rejected at the
// boundary instead of being persisted half-populated.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PartitionID joins store, medicine, and batch identifiers into the compound
// case-folded key that addresses a unique inventory row.
func PartitionID(storeID, medicineName, batchNumber string) string {
	return strings.ToLower(storeID + "|" + medicineName + "|" + batchNumber)
}

// StoreID derives the case-insensitive store identifier from a display name
// (spaces stripped, lower-cased). The identifier is stable across changes of
// capitalization or spacing in user input.
func StoreID(storeName string) string {
	return strings.ToLower(strings.ReplaceAll(storeName, " ", ""))
}

// MedicineBatch is one inventory row: the quantity of a single medicine
// batch held by a single store.
//
// Invariants:
//   - At most one row may exist per PartitionID; more than one is ledger
//     corruption and is surfaced as a duplicate-key error at read time
//     (the backing row store provides no cross-row uniqueness guarantee,
//     so the index below is intentionally non-unique).
//   - Quantity never goes negative; decrements that would cross zero are
//     rejected before the write.
type MedicineBatch struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	PartitionID  string    `json:"-"             gorm:"type:varchar(255);not null;index:idx_batch_partition"`
	DisplayName  string    `json:"medicineName"  gorm:"type:varchar(255);not null"`
	MedicineName string    `json:"-"             gorm:"type:varchar(255);not null;index:idx_batch_medicine"`
	Manufacturer string    `json:"manufacturer"  gorm:"type:varchar(255);not null"`
	ExpiryDate   string    `json:"expiryDate"    gorm:"type:varchar(32);not null"`
	BatchNumber  string    `json:"batchNumber"   gorm:"type:varchar(64);not null"`
	Price        float64   `json:"price"         gorm:"not null"`
	StoreID      string    `json:"storeName"     gorm:"type:varchar(255);not null;index:idx_batch_store"`
	Quantity     int       `json:"quantity"      gorm:"not null;default:1"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName returns the database table name for MedicineBatch.
func (MedicineBatch) TableName() string { return "medicine_batches" }

// NewMedicineBatch builds a quantity-1 inventory row with canonical keys
// derived from the raw inputs. The display name keeps the caller's casing.
func NewMedicineBatch(storeID, medicineName, batchNumber, manufacturer, expiryDate string, price float64) MedicineBatch {
	canonical := strings.ToLower(medicineName)
	return MedicineBatch{
		PartitionID:  PartitionID(storeID, canonical, batchNumber),
		DisplayName:  medicineName,
		MedicineName: canonical,
		Manufacturer: manufacturer,
		ExpiryDate:   expiryDate,
		BatchNumber:  batchNumber,
		Price:        price,
		StoreID:      storeID,
		Quantity:     1,
	}
}

// Validate rejects rows with missing required attributes or out-of-range
// numeric values before they reach the row store.
func (m MedicineBatch) Validate() error {
	for field, v := range map[string]string{
		"medicineName": m.MedicineName,
		"displayName":  m.DisplayName,
		"manufacturer": m.Manufacturer,
		"expiryDate":   m.ExpiryDate,
		"batchNumber":  m.BatchNumber,
		"storeName":    m.StoreID,
		"partitionId":  m.PartitionID,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("medicine batch: missing %s", field)
		}
	}
	if m.Price < 0 {
		return errors.New("medicine batch: price must be >= 0")
	}
	if m.Quantity < 0 {
		return errors.New("medicine batch: quantity must be >= 0")
	}
	return nil
}

// Store is a registered pharmacy. The primary key is the name-derived
// case-insensitive identifier; the display name keeps its original casing.
// The credential is stored only as a one-way hash.
//
// Store identifier and contact email are each unique across all stores.
// Rows are created at registration and never updated or deleted here.
type Store struct {
	ID            string    `json:"-"             gorm:"type:varchar(255);primaryKey"`
	StoreName     string    `json:"storeName"     gorm:"type:varchar(255);not null"`
	Email         string    `json:"email"         gorm:"type:varchar(255);not null;index:idx_store_email"`
	ContactNumber string    `json:"contactNumber" gorm:"type:varchar(64);not null"`
	Latitude      string    `json:"latitude"      gorm:"type:varchar(32);not null"`
	Longitude     string    `json:"longitude"     gorm:"type:varchar(32);not null"`
	PasswordHash  string    `json:"-"             gorm:"type:varchar(255);not null"`
	CreatedAt     time.Time `json:"-"`
}

// TableName returns the database table name for Store.
func (Store) TableName() string { return "stores" }

// Validate rejects partially populated store rows at construction time.
func (s Store) Validate() error {
	for field, v := range map[string]string{
		"storeName":     s.StoreName,
		"email":         s.Email,
		"contactNumber": s.ContactNumber,
		"latitude":      s.Latitude,
		"longitude":     s.Longitude,
		"passwordHash":  s.PasswordHash,
		"id":            s.ID,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("store: missing %s", field)
		}
	}
	return nil
}

// StoreToken is the single live signed credential for a store. The store id
// is the primary key, so a reissue replaces the previous row rather than
// accumulating history. Expiry is enforced by the token signature itself;
// ExpiresAt is recorded for operability, not verification.
type StoreToken struct {
	StoreID   string    `gorm:"type:varchar(255);primaryKey"`
	Token     string    `gorm:"type:text;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the database table name for StoreToken.
func (StoreToken) TableName() string { return "store_tokens" }

// Validate rejects token rows with missing attributes.
func (t StoreToken) Validate() error {
	if strings.TrimSpace(t.StoreID) == "" {
		return errors.New("store token: missing storeId")
	}
	if strings.TrimSpace(t.Token) == "" {
		return errors.New("store token: missing token")
	}
	if t.ExpiresAt.IsZero() {
		return errors.New("store token: missing expiresAt")
	}
	return nil
}
