package storage

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the schema applied
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Configure(Config{
		Driver:       DriverSQLite,
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("configure sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestOpenRequiresDSN(t *testing.T) {
	t.Parallel()

	db, err := Open(Config{Driver: DriverSQLite, DSN: "  "})
	if err == nil {
		t.Fatal("expected error when DSN is empty")
	}
	if db != nil {
		t.Fatal("expected returned db handle to be nil on error")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open(Config{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestAutoMigrateRejectsNilDatabase(t *testing.T) {
	t.Parallel()

	if err := AutoMigrate(nil); err == nil {
		t.Fatal("expected error when database handle is nil")
	}
}

func TestConfigureCreatesTables(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	for _, model := range Models() {
		if !db.Migrator().HasTable(model) {
			t.Errorf("table for %T was not created", model)
		}
	}
	if !db.Migrator().HasTable("drink_cost_calculations") {
		t.Error("expected drink_cost_calculations table")
	}
}

func TestCloseNilDatabase(t *testing.T) {
	t.Parallel()

	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) error = %v", err)
	}
}

func TestGormLogLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]logger.LogLevel{
		"silent":  logger.Silent,
		"ERROR":   logger.Error,
		" info ":  logger.Info,
		"warn":    logger.Warn,
		"":        logger.Warn,
		"verbose": logger.Warn,
	}
	for in, want := range tests {
		if got := gormLogLevel(in); got != want {
			t.Errorf("gormLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
