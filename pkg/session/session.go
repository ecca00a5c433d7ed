// Package session wires the chat runtime for CLI commands: it turns resolved
// configuration into a storage driver, conversation store, assembler, and the
// backend, feedback, and eventstream clients, so every command shares one
// construction path.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Birmingham-AI/willAIam/pkg/backend"
	"github.com/Birmingham-AI/willAIam/pkg/chat"
	"github.com/Birmingham-AI/willAIam/pkg/dotdir"
	"github.com/Birmingham-AI/willAIam/pkg/eventstream"
	"github.com/Birmingham-AI/willAIam/pkg/eventstream/kafka"
	"github.com/Birmingham-AI/willAIam/pkg/eventstream/nop"
	"github.com/Birmingham-AI/willAIam/pkg/feedback"
	"github.com/Birmingham-AI/willAIam/pkg/storage"
	"github.com/Birmingham-AI/willAIam/pkg/storage/inmemory"
	"github.com/Birmingham-AI/willAIam/pkg/storage/libsql"
	"github.com/Birmingham-AI/willAIam/pkg/storage/postgres"
	"github.com/Birmingham-AI/willAIam/pkg/storage/sqlite"
	"github.com/Birmingham-AI/willAIam/pkg/utils"
)

// ConversationKey is the durable record key for the single CLI conversation.
const ConversationKey = "conversation"

// sqliteFile is the default database file inside the .willaiam/ directory.
const sqliteFile = "conversations.db"

// Session is the assembled chat runtime for one command invocation.
type Session struct {
	Logger    *zap.Logger
	Driver    storage.Driver
	Store     *chat.Store
	Assembler *chat.Assembler
	Backend   *backend.Client
	Feedback  *feedback.Correlator
	Publisher eventstream.Publisher
	ConfigDir string
}

// New builds a Session from resolved viper configuration. The hooks are
// installed on the assembler; OnDone is additionally chained to the
// eventstream publisher when one is configured. The conversation is loaded
// from the durable record before returning.
func New(ctx context.Context, v *viper.Viper, configDir string, logger *zap.Logger, hooks chat.Hooks) (*Session, error) {
	driver, err := newDriver(ctx, v, configDir)
	if err != nil {
		return nil, err
	}

	store := chat.NewStore(ConversationKey, driver, logger)
	if err := store.Load(ctx); err != nil {
		driver.Close()
		return nil, fmt.Errorf("loading conversation: %w", err)
	}

	publisher, err := newPublisher(v)
	if err != nil {
		driver.Close()
		return nil, err
	}

	backendClient := backend.NewClient(backend.Config{
		BaseURL:         v.GetString("backend.target"),
		EnableWebSearch: v.GetBool("backend.enable_web_search"),
	})

	feedbackClient := feedback.NewClient(feedback.Config{
		BaseURL: v.GetString("feedback.target"),
	})

	// Publish finished turns without displacing the caller's OnDone.
	source := eventstream.EventSource{Client: "willaiam", Version: utils.Version}
	callerDone := hooks.OnDone
	hooks.OnDone = func(turn chat.Turn) {
		if err := publisher.PublishTurn(context.Background(), eventstream.NewTurnCompletedEvent(source, turn)); err != nil {
			logger.Warn("publishing turn event", zap.Error(err))
		}
		if callerDone != nil {
			callerDone(turn)
		}
	}

	assembler := chat.NewAssembler(chat.Config{
		FailureNotice: v.GetString("chat.failure_notice"),
		Hooks:         hooks,
	}, store, backendClient, logger)

	return &Session{
		Logger:    logger,
		Driver:    driver,
		Store:     store,
		Assembler: assembler,
		Backend:   backendClient,
		Feedback:  feedback.NewCorrelator(store, feedbackClient, logger),
		Publisher: publisher,
		ConfigDir: configDir,
	}, nil
}

// Close releases the storage driver and the eventstream publisher.
func (s *Session) Close() error {
	var firstErr error
	if err := s.Publisher.Close(); err != nil {
		firstErr = err
	}
	if err := s.Driver.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// newDriver builds the configured storage driver.
func newDriver(ctx context.Context, v *viper.Viper, configDir string) (storage.Driver, error) {
	driver := v.GetString("storage.driver")

	switch driver {
	case "inmemory":
		return inmemory.NewDriver(), nil

	case "sqlite":
		path, err := databasePath(v, configDir)
		if err != nil {
			return nil, err
		}
		return sqlite.NewDriver(path)

	case "libsql":
		path, err := databasePath(v, configDir)
		if err != nil {
			return nil, err
		}
		if !strings.Contains(path, "://") {
			path = "file:" + path
		}
		return libsql.NewDriver(path)

	case "postgres":
		dsn := v.GetString("storage.dsn")
		if dsn == "" {
			return nil, fmt.Errorf("storage.dsn is required for the postgres driver")
		}
		return postgres.NewDriver(ctx, dsn)

	default:
		return nil, fmt.Errorf("unknown storage driver: %q (available: inmemory, sqlite, libsql, postgres)", driver)
	}
}

// databasePath resolves the sqlite/libsql file, defaulting to the
// conversations database inside the .willaiam/ directory.
func databasePath(v *viper.Viper, configDir string) (string, error) {
	if path := v.GetString("storage.sqlite_path"); path != "" {
		return path, nil
	}

	target, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving storage path: %w", err)
	}

	return filepath.Join(target, sqliteFile), nil
}

// newPublisher builds the configured eventstream publisher.
func newPublisher(v *viper.Viper) (eventstream.Publisher, error) {
	switch provider := v.GetString("eventstream.provider"); provider {
	case "", "nop":
		return nop.NewPublisher(), nil

	case "kafka":
		brokers := strings.Split(v.GetString("eventstream.brokers"), ",")
		cleaned := brokers[:0]
		for _, b := range brokers {
			if b = strings.TrimSpace(b); b != "" {
				cleaned = append(cleaned, b)
			}
		}
		return kafka.NewPublisher(kafka.Config{
			Brokers: cleaned,
			Topic:   v.GetString("eventstream.topic"),
		})

	default:
		return nil, fmt.Errorf("unknown eventstream provider: %q (available: nop, kafka)", provider)
	}
}
