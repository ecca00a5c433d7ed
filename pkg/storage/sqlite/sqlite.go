// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" database/sql driver

	"github.com/Birmingham-AI/willAIam/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	key  TEXT PRIMARY KEY,
	data BLOB NOT NULL
)`

// Driver implements storage.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver creates a new SQLite-backed driver.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Serialize writes through a single connection. The conversation record
	// is written synchronously on every turn mutation, so contention between
	// pooled connections would only add lock errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// Get retrieves the record stored under key.
func (d *Driver) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := d.db.QueryRowContext(ctx,
		"SELECT data FROM conversations WHERE key = ?", key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Key: key}
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}

	return data, nil
}

// Set stores data under key, replacing any existing record.
func (d *Driver) Set(ctx context.Context, key string, data []byte) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO conversations (key, data) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("upserting record: %w", err)
	}

	return nil
}

// Delete removes the record stored under key.
func (d *Driver) Delete(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx,
		"DELETE FROM conversations WHERE key = ?", key,
	); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}
