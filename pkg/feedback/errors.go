package feedback

import (
	"errors"
	"fmt"

	"github.com/Birmingham-AI/willAIam/pkg/chat"
)

// ErrAlreadySubmitted is returned when feedback for a trace id has already
// been acknowledged by the backend.
var ErrAlreadySubmitted = errors.New("feedback already submitted for this answer")

// UnknownTraceError is returned when a trace id matches no turn in the
// conversation.
type UnknownTraceError struct {
	TraceID string
}

func (e UnknownTraceError) Error() string {
	return fmt.Sprintf("no answer found for trace id %q", e.TraceID)
}

// IneligibleTurnError is returned when the matched turn cannot accept
// feedback: only completed assistant turns are rateable.
type IneligibleTurnError struct {
	TraceID string
	Role    chat.Role
	Status  chat.Status
}

func (e IneligibleTurnError) Error() string {
	return fmt.Sprintf("turn for trace id %q is not rateable (role %s, status %s)", e.TraceID, e.Role, e.Status)
}
