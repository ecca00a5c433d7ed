// Package inmemory provides a map-backed storage driver for tests and
// ephemeral sessions.
package inmemory

import (
	"context"
	"sync"

	"github.com/Birmingham-AI/willAIam/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu guards records.
	mu sync.RWMutex

	// records maps conversation keys to their serialized records.
	records map[string][]byte
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		records: make(map[string][]byte),
	}
}

// Get retrieves the record stored under key.
func (d *Driver) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, ok := d.records[key]
	if !ok {
		return nil, storage.NotFoundError{Key: key}
	}

	// Copy so callers cannot mutate the stored record.
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Set stores data under key, replacing any existing record.
func (d *Driver) Set(_ context.Context, key string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	d.records[key] = stored
	return nil
}

// Delete removes the record stored under key.
func (d *Driver) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.records, key)
	return nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
