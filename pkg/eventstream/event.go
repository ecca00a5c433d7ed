// Package eventstream defines transport-neutral events emitted when a
// conversation turn finishes, plus the Publisher contract for shipping them
// to a stream backend.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/Birmingham-AI/willAIam/pkg/chat"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after an assistant turn reaches a
	// terminal state.
	EventTypeTurnCompleted = "willaiam.turn.completed"
)

// TurnCompletedEvent is a transport-neutral event payload for a finished turn.
type TurnCompletedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Turn          chat.Turn   `json:"turn"`
}

// EventSource identifies where the turn originated.
type EventSource struct {
	Client  string `json:"client"`
	Version string `json:"version,omitempty"`
}

// NewTurnCompletedEvent builds a v1 event for a finished turn.
func NewTurnCompletedEvent(source EventSource, turn chat.Turn) *TurnCompletedEvent {
	return &TurnCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Turn:          turn,
	}
}
