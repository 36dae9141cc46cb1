// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file holds SQLite bootstrapping (pure Go driver)
// and schema migration.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/pharmafind/go-pharmacy-backend/internal/domain"
)

// OpenSQLite opens or creates the database at path, applies PRAGMAs, and
// sizes the connection pool. A missing parent directory fails up front
// rather than surfacing as sqlite's opaque "out of memory (14)".
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// WAL keeps stock-in and checkout writers from starving the reads the
	// coverage resolver performs.
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the inventory ledger, store registry, and
// token tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.MedicineBatch{},
		&domain.Store{},
		&domain.StoreToken{},
	)
}
