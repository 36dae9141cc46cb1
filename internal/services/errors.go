// Package services defines the business logic for medication extraction,
// the inventory ledger, store coverage resolution, and the store registry.
// This file centralizes common service-level error values so that they can
// be consistently returned by service methods and checked by callers.
//
// These errors form the application's error taxonomy: validation and
// credential failures are caller errors; duplicate-key indicates
// backing-store corruption and is always fatal to the current request.
// Translation into HTTP status codes is performed at the handler layer.
package services

import "errors"

// Inventory ledger errors.
var (
	// ErrMedicineNotFound is returned when a checkout presupposes a row that
	// was never stocked.
	ErrMedicineNotFound = errors.New("medicine not stocked")

	// ErrInsufficientStock is returned when a decrement would take the
	// quantity negative. The write is not applied.
	ErrInsufficientStock = errors.New("no more units of this medicine available")

	// ErrDuplicateKey is returned when more than one row exists under a key
	// expected to be unique. It indicates ledger corruption and is never
	// silently resolved.
	ErrDuplicateKey = errors.New("duplicate entry for unique key")
)

// Store registry errors.
var (
	// ErrStoreExists is returned when registering a store whose derived
	// identifier is already taken.
	ErrStoreExists = errors.New("a store with this name already exists")

	// ErrEmailExists is returned when registering a store with a contact
	// email already bound to another store.
	ErrEmailExists = errors.New("a store with this email already exists")

	// ErrInvalidEmail is returned for malformed contact email addresses.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrStoreNotFound is returned when a requested store is not registered.
	ErrStoreNotFound = errors.New("store not found")

	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password; the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
