// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"taskapp-backend/internal/config"
	"taskapp-backend/internal/db"
)

// Open returns a fresh migrated database closed at test cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dbx, err := db.Connect(config.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { dbx.Close() })

	if err := db.Migrate(context.Background(), dbx, config.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbx
}
