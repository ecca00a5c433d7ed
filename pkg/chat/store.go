package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Birmingham-AI/willAIam/pkg/storage"
)

// recordVersion is the schema version of the serialized conversation record.
const recordVersion = 1

// record is the durable shape of a conversation.
type record struct {
	Version int     `json:"version"`
	Turns   []*Turn `json:"turns"`
}

// Store holds the ordered turns of one conversation under a fixed durable
// key. Every mutation is written through to the storage driver synchronously,
// so a crash can lose at most the last update and never corrupts earlier
// turns.
//
// The store keeps its own copies of appended turns; the Assembler mutates its
// live turn and replays the same mutation here through Update.
type Store struct {
	mu     sync.Mutex
	key    string
	driver storage.Driver
	logger *zap.Logger
	turns  []*Turn
}

// NewStore creates a Store for the conversation persisted under key.
func NewStore(key string, driver storage.Driver, logger *zap.Logger) *Store {
	return &Store{
		key:    key,
		driver: driver,
		logger: logger,
	}
}

// Load populates the store from the durable record. An absent or malformed
// record yields an empty conversation, never an error.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.driver.Get(ctx, s.key)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			s.turns = nil
			return nil
		}
		return fmt.Errorf("loading conversation record: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("malformed conversation record, starting empty",
			zap.String("key", s.key),
			zap.Error(err),
		)
		s.turns = nil
		return nil
	}

	s.turns = rec.Turns
	return nil
}

// Append adds a turn to the conversation and persists the record.
func (s *Store) Append(ctx context.Context, turn *Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *turn
	s.turns = append(s.turns, &stored)
	return s.persistLocked(ctx)
}

// Update applies mutate to the turn with the given id and persists the
// record. Updating an unknown id is a no-op.
func (s *Store) Update(ctx context.Context, id string, mutate func(*Turn)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.turns {
		if t.ID == id {
			mutate(t)
			return s.persistLocked(ctx)
		}
	}

	return nil
}

// Reset clears all turns and removes the durable record. Callers streaming a
// turn must cancel it before resetting; Assembler.Reset enforces that
// ordering.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = nil
	if err := s.driver.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("removing conversation record: %w", err)
	}

	return nil
}

// All returns the conversation's turns in insertion order. Returned values
// are copies; a streaming turn's content may differ between calls.
func (s *Store) All() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, 0, len(s.turns))
	for _, t := range s.turns {
		out = append(out, *t)
	}
	return out
}

// Len returns the number of turns in the conversation.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.turns)
}

// FindByTraceID returns the turn carrying the given trace id.
func (s *Store) FindByTraceID(traceID string) (Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.turns {
		if t.TraceID == traceID {
			return *t, true
		}
	}
	return Turn{}, false
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(record{Version: recordVersion, Turns: s.turns})
	if err != nil {
		return fmt.Errorf("serializing conversation record: %w", err)
	}

	if err := s.driver.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("persisting conversation record: %w", err)
	}

	return nil
}
