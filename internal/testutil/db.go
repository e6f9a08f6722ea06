// Package testutil builds isolated in-memory databases and fixtures for tests.
package testutil

import (
	"testing"

	"elimufund.com/backend/internal/entity"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a fresh migrated SQLite database private to t. The pool is
// pinned to one connection so every query sees the same in-memory database;
// code under test must therefore issue queries inside a transaction through tx.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(entity.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
