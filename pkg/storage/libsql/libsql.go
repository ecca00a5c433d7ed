// Package libsql provides a libSQL-backed storage driver, for local sqld
// replicas or remote Turso databases.
package libsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/tursodatabase/go-libsql" // registers the "libsql" database/sql driver

	"github.com/Birmingham-AI/willAIam/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	key  TEXT PRIMARY KEY,
	data BLOB NOT NULL
)`

// Driver implements storage.Driver using libSQL.
type Driver struct {
	db *sql.DB
}

// NewDriver creates a new libSQL-backed driver.
// The dsn is a libSQL URL, e.g. "file:./willaiam.db" or
// "libsql://<database>.turso.io?authToken=<token>".
func NewDriver(dsn string) (*Driver, error) {
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

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
