package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/wonny/backtester/internal/storage/migrations"
)

const pragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// DB wraps a SQLite handle shared by the stores in this package
type DB struct {
	SQL *sql.DB
}

// Open opens (or creates) the database at path. A single connection is
// used so writers never contend for the file lock.
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&" + pragmas
	} else {
		dsn += "?" + pragmas
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &DB{SQL: db}, nil
}

// Migrate applies the embedded SQLite schema
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Apply(ctx, migrations.SQLiteFS, "sqlite", db)
}

// ExecSQL implements migrations.Execer
func (db *DB) ExecSQL(ctx context.Context, query string) error {
	_, err := db.SQL.ExecContext(ctx, query)
	return err
}

// Ping checks the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.SQL.PingContext(ctx)
}

// Close closes the underlying handle
func (db *DB) Close() error {
	return db.SQL.Close()
}
