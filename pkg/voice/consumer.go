package voice

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Birmingham-AI/willAIam/pkg/chat"
)

// Consumer routes realtime events into a conversation store. It follows the
// same turn lifecycle as the streaming assembler: the assistant turn joins
// the conversation on its first delta, and events arriving after a terminal
// state are discarded.
type Consumer struct {
	mu     sync.Mutex
	store  *chat.Store
	logger *zap.Logger

	// turn is non-nil while an assistant response is in progress.
	turn *chat.Turn
}

// NewConsumer creates a Consumer over the given conversation store.
func NewConsumer(store *chat.Store, logger *zap.Logger) *Consumer {
	return &Consumer{
		store:  store,
		logger: logger,
	}
}

// Handle routes one event. Unrecognized event types are skipped.
func (c *Consumer) Handle(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventUserTranscriptCompleted:
		if ev.Transcript == "" {
			return nil
		}
		return c.store.Append(ctx, chat.NewUserTurn(ev.Transcript))

	case EventResponseStarted:
		if ev.Item == nil || ev.Item.Type != "message" {
			return nil
		}
		c.mu.Lock()
		c.turn = chat.NewAssistantTurn()
		c.mu.Unlock()
		return nil

	case EventResponseTextDelta, EventResponseAudioTranscriptDelta:
		return c.applyDelta(ctx, ev.Delta)

	case EventResponseDone:
		return c.finish(ctx)

	case EventError:
		return c.fail(ctx, ev.Error)

	default:
		c.logger.Debug("skipping unrecognized realtime event",
			zap.String("type", ev.Type),
		)
		return nil
	}
}

// Active reports whether an assistant response is in progress.
func (c *Consumer) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.turn != nil
}

func (c *Consumer) applyDelta(ctx context.Context, delta string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.turn == nil {
		// Delta without an announced response; start one.
		c.turn = chat.NewAssistantTurn()
	}
	if c.turn.Status.Terminal() {
		return nil
	}

	if c.turn.Status == chat.StatusPending {
		c.turn.Status = chat.StatusStreaming
		c.turn.Content = delta
		return c.store.Append(ctx, c.turn)
	}

	c.turn.Content += delta
	content := c.turn.Content
	return c.store.Update(ctx, c.turn.ID, func(t *chat.Turn) {
		t.Status = chat.StatusStreaming
		t.Content = content
	})
}

func (c *Consumer) finish(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.turn == nil || c.turn.Status.Terminal() {
		c.turn = nil
		return nil
	}

	wasPending := c.turn.Status == chat.StatusPending
	c.turn.Status = chat.StatusComplete

	var err error
	if wasPending {
		// Response ended with no transcript: materialize the empty answer.
		err = c.store.Append(ctx, c.turn)
	} else {
		err = c.store.Update(ctx, c.turn.ID, func(t *chat.Turn) {
			t.Status = chat.StatusComplete
		})
	}
	c.turn = nil
	return err
}

func (c *Consumer) fail(ctx context.Context, sessionErr *SessionError) error {
	message := "unknown error"
	if sessionErr != nil && sessionErr.Message != "" {
		message = sessionErr.Message
	}
	c.logger.Error("realtime session error", zap.String("message", message))

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.turn == nil || c.turn.Status.Terminal() {
		c.turn = nil
		return nil
	}

	materialized := c.turn.Status != chat.StatusPending
	c.turn.Status = chat.StatusErrored
	c.turn.Content = chat.DefaultFailureNotice

	var err error
	if materialized {
		err = c.store.Update(ctx, c.turn.ID, func(t *chat.Turn) {
			t.Status = chat.StatusErrored
			t.Content = chat.DefaultFailureNotice
		})
	}
	c.turn = nil
	return err
}
