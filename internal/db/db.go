package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"taskapp-backend/internal/config"
)

// Connect opens and pings a database for the given driver.
// Queries in this repo use ordered $N placeholders, which both drivers accept.
func Connect(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case config.DriverPostgres, config.DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == config.DriverSQLite {
		// one writer; also keeps a :memory: database alive across queries
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	stmts := postgresSchema
	if driver == config.DriverSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique-constraint failure
// from either supported driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
