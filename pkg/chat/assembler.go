package chat

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/Birmingham-AI/willAIam/pkg/sse"
)

// DefaultFailureNotice replaces partial content when a stream fails. Partial
// text is deliberately not preserved: a truncated answer must not read as a
// final one.
const DefaultFailureNotice = "Sorry, something went wrong while answering that. Please try again."

// StreamOpener opens a generation stream for a question against the prior
// conversation turns. The returned body delivers the wire protocol decoded
// by pkg/sse and must honor ctx cancellation.
type StreamOpener interface {
	Stream(ctx context.Context, question string, history []Turn) (io.ReadCloser, error)
}

// Hooks are optional callbacks invoked from the stream-consuming goroutine.
// OnError fires at most once per turn; cancellation never fires it.
type Hooks struct {
	OnDelta func(delta string)
	OnTrace func(traceID string)
	OnDone  func(turn Turn)
	OnError func(err error)
}

// Config configures an Assembler.
type Config struct {
	// FailureNotice is the content written to a turn that ends in
	// StatusErrored. Defaults to DefaultFailureNotice.
	FailureNotice string

	Hooks Hooks
}

// session owns one transport connection and its cancellation handle. It
// exists only while a turn is pending or streaming and is never shared.
type session struct {
	cancel  context.CancelFunc
	done    chan struct{}
	aborted bool
}

// Assembler owns one conversation's turn lifecycle. It routes decoded frames
// to content accumulation, trace correlation, or completion, and enforces the
// single-flight invariant: at most one turn is pending or streaming at any
// instant.
//
// Transport reads and caller-triggered cancellation race; the race is
// resolved by ordering, not by blocking the transport: every frame
// application re-checks the turn's status under the assembler mutex and
// discards the frame once a terminal state has been observed. No turn
// mutation is observable after Cancel returns, even if in-flight I/O settles
// later.
type Assembler struct {
	mu     sync.Mutex
	store  *Store
	opener StreamOpener
	logger *zap.Logger

	failureNotice string
	hooks         Hooks

	// session and turn are non-nil exactly while a generation is in flight.
	session *session
	turn    *Turn
}

// NewAssembler creates an Assembler for the given conversation store.
func NewAssembler(cfg Config, store *Store, opener StreamOpener, logger *zap.Logger) *Assembler {
	notice := cfg.FailureNotice
	if notice == "" {
		notice = DefaultFailureNotice
	}

	return &Assembler{
		store:         store,
		opener:        opener,
		logger:        logger,
		failureNotice: notice,
		hooks:         cfg.Hooks,
	}
}

// Start begins a generation for prompt. It appends the user turn, creates a
// pending assistant turn, and consumes the stream on a dedicated goroutine.
// The assistant turn joins the conversation on its first content frame.
//
// Returns ErrAlreadyStreaming, mutating nothing, if a turn is already in
// flight.
func (a *Assembler) Start(ctx context.Context, prompt string) (*Turn, error) {
	a.mu.Lock()
	if a.session != nil {
		a.mu.Unlock()
		return nil, ErrAlreadyStreaming
	}

	// History is captured before the user turn is appended: the prompt
	// travels separately in the request.
	history := a.store.All()

	user := NewUserTurn(prompt)
	if err := a.store.Append(ctx, user); err != nil {
		a.logger.Warn("persisting user turn", zap.Error(err))
	}

	turn := NewAssistantTurn()
	streamCtx, cancel := context.WithCancel(ctx)
	sess := &session{cancel: cancel, done: make(chan struct{})}
	a.session = sess
	a.turn = turn
	a.mu.Unlock()

	go a.consume(streamCtx, sess, turn, prompt, history)

	return turn, nil
}

// Cancel aborts the in-flight generation, if any. The turn's status becomes
// StatusCancelled synchronously and partial content is retained as-is;
// the transport's acknowledgement settles asynchronously. Reports whether a
// generation was cancelled.
func (a *Assembler) Cancel() bool {
	a.mu.Lock()
	sess, turn := a.session, a.turn
	if sess == nil || turn.Status.Terminal() {
		a.mu.Unlock()
		return false
	}

	sess.aborted = true
	materialized := a.materializedLocked(turn)
	turn.Status = StatusCancelled
	if materialized {
		// Cancel carries no caller context; persistence must not be
		// cancelled along with the stream.
		if err := a.store.Update(context.Background(), turn.ID, func(t *Turn) {
			t.Status = StatusCancelled
		}); err != nil {
			a.logger.Warn("persisting cancelled turn", zap.Error(err))
		}
	}
	a.teardownLocked(sess)
	a.mu.Unlock()

	sess.cancel()
	return true
}

// Reset cancels any in-flight generation, then clears the conversation and
// removes its durable record. Cancellation strictly precedes truncation.
func (a *Assembler) Reset(ctx context.Context) error {
	a.Cancel()
	return a.store.Reset(ctx)
}

// Active reports whether a turn is pending or streaming.
func (a *Assembler) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.session != nil
}

// Done returns a channel closed when the in-flight generation reaches a
// terminal state. When no generation is in flight the returned channel is
// already closed.
func (a *Assembler) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		return a.session.done
	}

	closed := make(chan struct{})
	close(closed)
	return closed
}

// consume opens the transport and drives frames through the state machine.
func (a *Assembler) consume(ctx context.Context, sess *session, turn *Turn, prompt string, history []Turn) {
	body, err := a.opener.Stream(ctx, prompt, history)
	if err != nil {
		a.fail(sess, turn, err)
		return
	}
	defer body.Close()

	reader := sse.NewReader(body)
	for {
		ev, err := reader.Next()
		if err != nil {
			a.fail(sess, turn, err)
			return
		}
		if ev == nil {
			// DoneSentinel or natural transport end.
			a.complete(sess, turn)
			return
		}
		a.apply(ctx, turn, ev)
	}
}

// apply routes one decoded frame. Frames arriving after a terminal state are
// discarded without mutation.
func (a *Assembler) apply(ctx context.Context, turn *Turn, ev *sse.Event) {
	a.mu.Lock()

	if turn.Status.Terminal() {
		a.mu.Unlock()
		return
	}

	switch ev.Type {
	case sse.TraceIDEvent:
		if turn.TraceID != "" {
			// Duplicate trace frames are non-fatal: the established
			// correlation must not be clobbered.
			a.logger.Warn("duplicate trace id frame ignored",
				zap.String("trace_id", turn.TraceID),
				zap.String("ignored", ev.Data),
			)
			a.mu.Unlock()
			return
		}

		turn.TraceID = ev.Data
		if a.materializedLocked(turn) {
			if err := a.store.Update(ctx, turn.ID, func(t *Turn) {
				t.TraceID = ev.Data
			}); err != nil {
				a.logger.Warn("persisting trace id", zap.Error(err))
			}
		}

		onTrace := a.hooks.OnTrace
		a.mu.Unlock()
		if onTrace != nil {
			onTrace(ev.Data)
		}

	case sse.DefaultEvent:
		var err error
		if turn.Status == StatusPending {
			turn.Status = StatusStreaming
			turn.Content = ev.Data
			err = a.store.Append(ctx, turn)
		} else {
			turn.Content += ev.Data
			content := turn.Content
			err = a.store.Update(ctx, turn.ID, func(t *Turn) {
				t.Status = StatusStreaming
				t.Content = content
			})
		}
		if err != nil {
			a.logger.Warn("persisting streamed content", zap.Error(err))
		}

		onDelta := a.hooks.OnDelta
		a.mu.Unlock()
		if onDelta != nil {
			onDelta(ev.Data)
		}

	default:
		a.logger.Debug("skipping unrecognized event frame",
			zap.String("event", ev.Type),
		)
		a.mu.Unlock()
	}
}

// complete finalizes the turn after the sentinel or a natural transport end.
func (a *Assembler) complete(sess *session, turn *Turn) {
	a.mu.Lock()

	if turn.Status.Terminal() {
		a.mu.Unlock()
		return
	}

	wasPending := turn.Status == StatusPending
	turn.Status = StatusComplete

	// Persistence here must outlive the stream context.
	ctx := context.Background()
	var err error
	if wasPending {
		// Stream ended before any content: materialize the empty answer.
		err = a.store.Append(ctx, turn)
	} else {
		err = a.store.Update(ctx, turn.ID, func(t *Turn) {
			t.Status = StatusComplete
		})
	}
	if err != nil {
		a.logger.Warn("persisting completed turn", zap.Error(err))
	}

	a.teardownLocked(sess)
	onDone := a.hooks.OnDone
	final := *turn
	a.mu.Unlock()

	if onDone != nil {
		onDone(final)
	}
}

// fail drives the turn to StatusErrored, unless the failure is the
// settlement of a requested abort, which is not an error.
func (a *Assembler) fail(sess *session, turn *Turn, cause error) {
	a.mu.Lock()

	if turn.Status.Terminal() {
		// Cancel won the race; the read error is the abort settling.
		a.mu.Unlock()
		return
	}

	if sess.aborted || errors.Is(cause, context.Canceled) {
		// Caller-driven cancellation observed through the transport.
		materialized := a.materializedLocked(turn)
		turn.Status = StatusCancelled
		if materialized {
			if err := a.store.Update(context.Background(), turn.ID, func(t *Turn) {
				t.Status = StatusCancelled
			}); err != nil {
				a.logger.Warn("persisting cancelled turn", zap.Error(err))
			}
		}
		a.teardownLocked(sess)
		a.mu.Unlock()
		return
	}

	wasPending := turn.Status == StatusPending
	turn.Status = StatusErrored
	turn.Content = a.failureNotice

	ctx := context.Background()
	var err error
	if wasPending {
		err = a.store.Append(ctx, turn)
	} else {
		err = a.store.Update(ctx, turn.ID, func(t *Turn) {
			t.Status = StatusErrored
			t.Content = a.failureNotice
		})
	}
	if err != nil {
		a.logger.Warn("persisting errored turn", zap.Error(err))
	}

	a.logger.Error("stream transport failed", zap.Error(cause))

	a.teardownLocked(sess)
	onError := a.hooks.OnError
	a.mu.Unlock()

	if onError != nil {
		onError(cause)
	}
}

// materializedLocked reports whether the turn has joined the conversation.
// Pending turns exist only inside the assembler.
func (a *Assembler) materializedLocked(turn *Turn) bool {
	return turn.Status != StatusPending
}

// teardownLocked destroys the stream session. Callers must hold a.mu.
func (a *Assembler) teardownLocked(sess *session) {
	if sess != nil {
		close(sess.done)
	}
	a.session = nil
	a.turn = nil
}
