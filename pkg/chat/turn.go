// Package chat implements the conversation domain: turns, the durable
// conversation store, and the assembler that reconstructs an assistant turn
// from the backend's event stream.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status is a turn's lifecycle state.
type Status string

const (
	// StatusPending means the turn exists but no content has arrived yet.
	StatusPending Status = "pending"

	// StatusStreaming means content frames are being accumulated.
	StatusStreaming Status = "streaming"

	StatusComplete  Status = "complete"
	StatusCancelled Status = "cancelled"
	StatusErrored   Status = "errored"
)

// Terminal reports whether the status is final. A terminal turn is immutable;
// frames that race past a terminal transition are discarded.
func (s Status) Terminal() bool {
	switch s {
	case StatusComplete, StatusCancelled, StatusErrored:
		return true
	}
	return false
}

// Turn is one message in a conversation.
//
// Content is append-only while Status is StatusStreaming and frozen once the
// turn reaches a terminal state. TraceID is set at most once, only on
// assistant turns.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	TraceID   string    `json:"trace_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserTurn creates a completed user turn carrying the prompt.
func NewUserTurn(content string) *Turn {
	return &Turn{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Status:    StatusComplete,
		CreatedAt: time.Now().UTC(),
	}
}

// NewAssistantTurn creates a pending assistant turn. The turn materializes in
// the conversation on its first content frame, not at creation.
func NewAssistantTurn() *Turn {
	return &Turn{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}
