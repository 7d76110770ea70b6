// Package testsupport holds fixtures and fakes shared by package tests.
package testsupport

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/database"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database. A single connection
// keeps every query on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), logging.NewNop(), logger.Silent)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
