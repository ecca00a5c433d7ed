// Package storage defines the durable record boundary for conversations.
// A conversation is persisted as a single serialized record under a fixed
// key; drivers implement the key/value contract against a concrete backend.
package storage

import "context"

// Driver is the interface for persisting and retrieving serialized
// conversation records. Implementations must be safe for concurrent use.
type Driver interface {
	// Get retrieves the record stored under key.
	// Returns NotFoundError if no record exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores data under key, replacing any existing record.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes the record stored under key. Deleting an absent
	// record is not an error.
	Delete(ctx context.Context, key string) error

	// Close closes the driver and releases any resources.
	Close() error
}
