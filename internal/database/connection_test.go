package database_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/database"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openWithBuffer(t *testing.T, level logger.LogLevel) (*gorm.DB, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	db, err := database.Open(sqlite.Open(":memory:"), logging.NewWithWriter(&buf, "debug", "json"), level)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db, &buf
}

func TestOpenLogsStatementsThroughSlog(t *testing.T) {
	db, buf := openWithBuffer(t, logger.Info)

	var n int
	if err := db.Raw("SELECT 41 + 1").Scan(&n).Error; err != nil {
		t.Fatalf("query failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"component":"gorm"`, `"msg":"SQL executed"`, "SELECT 41 + 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestOpenErrorLevelOnlyLogsFailures(t *testing.T) {
	db, buf := openWithBuffer(t, logger.Error)

	var n int
	if err := db.Raw("SELECT 1").Scan(&n).Error; err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected successful statements to be quiet, got:\n%s", buf.String())
	}

	if err := db.Exec("SELECT * FROM missing_table").Error; err == nil {
		t.Fatal("expected query against a missing table to fail")
	}
	if out := buf.String(); !strings.Contains(out, `"level":"ERROR"`) || !strings.Contains(out, "missing_table") {
		t.Errorf("expected the failure to be logged at ERROR, got:\n%s", out)
	}
}
