package feedback

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Birmingham-AI/willAIam/pkg/chat"
)

// submission is one in-flight network call; waiters block on done and then
// observe the shared outcome.
type submission struct {
	done chan struct{}
	resp *Response
	err  error
}

// Correlator ties ratings to finished assistant turns and enforces
// exactly-once submission per trace id. A successful acknowledgement pins the
// trace permanently; a failed call is discarded so the user may retry.
// Concurrent submissions for the same trace coalesce onto one network call.
type Correlator struct {
	mu        sync.Mutex
	store     *chat.Store
	client    Submitter
	logger    *zap.Logger
	submitted map[string]bool
	inflight  map[string]*submission
}

// NewCorrelator creates a Correlator over the given conversation store.
func NewCorrelator(store *chat.Store, client Submitter, logger *zap.Logger) *Correlator {
	return &Correlator{
		store:     store,
		client:    client,
		logger:    logger,
		submitted: make(map[string]bool),
		inflight:  make(map[string]*submission),
	}
}

// Submit records feedback for the answer correlated to traceID.
//
// Preconditions: the trace must belong to a completed assistant turn in the
// store, and feedback for it must not already be acknowledged. Returns
// ErrAlreadySubmitted, UnknownTraceError, or IneligibleTurnError when a
// precondition fails.
func (c *Correlator) Submit(ctx context.Context, traceID string, rating Rating, comment string) (*Response, error) {
	turn, ok := c.store.FindByTraceID(traceID)
	if !ok {
		return nil, UnknownTraceError{TraceID: traceID}
	}
	if turn.Role != chat.RoleAssistant || turn.Status != chat.StatusComplete {
		return nil, IneligibleTurnError{TraceID: traceID, Role: turn.Role, Status: turn.Status}
	}

	c.mu.Lock()
	if c.submitted[traceID] {
		c.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	if sub, ok := c.inflight[traceID]; ok {
		c.mu.Unlock()
		select {
		case <-sub.done:
			return sub.resp, sub.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	sub := &submission{done: make(chan struct{})}
	c.inflight[traceID] = sub
	c.mu.Unlock()

	resp, err := c.client.Submit(ctx, traceID, rating, comment)

	c.mu.Lock()
	sub.resp, sub.err = resp, err
	if err == nil && resp.Success {
		c.submitted[traceID] = true
	} else {
		// Discarded so the user may retry.
		c.logger.Warn("feedback submission failed",
			zap.String("trace_id", traceID),
			zap.Error(err),
		)
	}
	delete(c.inflight, traceID)
	c.mu.Unlock()

	close(sub.done)
	return resp, err
}

// Submitted reports whether feedback for traceID has been acknowledged.
func (c *Correlator) Submitted(traceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.submitted[traceID]
}
