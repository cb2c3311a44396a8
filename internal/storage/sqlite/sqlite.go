// Package sqlite implements the customer, order and line item repositories
// on an embedded SQLite database using the pure Go modernc.org/sqlite driver.
//
// Money is stored as TEXT and read back through decimal.Decimal's
// sql.Scanner, so no precision is lost. Timestamps are stored as RFC 3339
// strings in UTC.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-faster/errors"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		kind              TEXT NOT NULL CHECK (kind IN ('standard', 'premium')),
		name              TEXT NOT NULL,
		address           TEXT NOT NULL DEFAULT '',
		tax_id            TEXT NOT NULL UNIQUE,
		email             TEXT NOT NULL DEFAULT '',
		annual_fee        TEXT NOT NULL DEFAULT '0',
		shipping_discount TEXT NOT NULL DEFAULT '0'
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		number      INTEGER PRIMARY KEY AUTOINCREMENT,
		placed_at   TEXT    NOT NULL,
		customer_id INTEGER NOT NULL REFERENCES customers (id),
		status      TEXT    NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'SHIPPED'))
	)`,
	`CREATE INDEX IF NOT EXISTS orders_customer_id_idx ON orders (customer_id)`,
	`CREATE TABLE IF NOT EXISTS line_items (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		order_number INTEGER NOT NULL REFERENCES orders (number) ON DELETE CASCADE,
		article_code TEXT    NOT NULL,
		sale_price   TEXT    NOT NULL,
		quantity     INTEGER NOT NULL CHECK (quantity > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS line_items_order_number_idx ON line_items (order_number)`,
}

// Open opens the database at path (":memory:" for a private in-memory
// database), enables foreign keys and applies the schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	// A single connection keeps ":memory:" databases alive and serializes
	// writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "enable foreign keys")
	}
	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "enable WAL mode")
		}
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "apply schema")
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
