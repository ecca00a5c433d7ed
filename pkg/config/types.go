package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent willaiam configuration stored as
// config.toml in the .willaiam/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Backend     BackendConfig     `toml:"backend"`
	Feedback    FeedbackConfig    `toml:"feedback"`
	Storage     StorageConfig     `toml:"storage"`
	Chat        ChatConfig        `toml:"chat"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Serve       ServeConfig       `toml:"serve"`
}

// BackendConfig holds settings for the answer backend.
type BackendConfig struct {
	Target          string `toml:"target,omitempty"`
	EnableWebSearch bool   `toml:"enable_web_search,omitempty"`
}

// FeedbackConfig holds settings for the feedback endpoint.
type FeedbackConfig struct {
	Target string `toml:"target,omitempty"`
}

// StorageConfig holds conversation persistence settings.
type StorageConfig struct {
	// Driver selects the storage backend: inmemory, sqlite, libsql, postgres.
	Driver string `toml:"driver,omitempty"`

	// SQLitePath is the database file for the sqlite and libsql drivers.
	// Empty means a conversations.db inside the resolved .willaiam/ directory.
	SQLitePath string `toml:"sqlite_path,omitempty"`

	// DSN is the connection string for the postgres driver.
	DSN string `toml:"dsn,omitempty"`
}

// ChatConfig holds chat behavior settings.
type ChatConfig struct {
	// FailureNotice replaces answer content when a stream fails. Empty means
	// the built-in notice.
	FailureNotice string `toml:"failure_notice,omitempty"`

	// RenderMarkdown renders completed answers through the terminal
	// markdown renderer.
	RenderMarkdown bool `toml:"render_markdown,omitempty"`
}

// EventStreamConfig holds turn-event publishing settings.
type EventStreamConfig struct {
	// Provider selects the publisher: nop, kafka.
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma-separated list of Kafka bootstrap brokers.
	Brokers string `toml:"brokers,omitempty"`

	// Topic is the Kafka topic turn events are published to.
	Topic string `toml:"topic,omitempty"`
}

// ServeConfig holds settings for the local stub backend.
type ServeConfig struct {
	Listen string `toml:"listen,omitempty"`

	// CorpusPath is the TOML file of canned answers. Empty means corpus.toml
	// inside the resolved .willaiam/ directory.
	CorpusPath string `toml:"corpus_path,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"backend.target": {
		get: func(c *Config) string { return c.Backend.Target },
		set: func(c *Config, v string) error { c.Backend.Target = v; return nil },
	},
	"backend.enable_web_search": {
		get: func(c *Config) string { return strconv.FormatBool(c.Backend.EnableWebSearch) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for backend.enable_web_search: %w", err)
			}
			c.Backend.EnableWebSearch = b
			return nil
		},
	},
	"feedback.target": {
		get: func(c *Config) string { return c.Feedback.Target },
		set: func(c *Config, v string) error { c.Feedback.Target = v; return nil },
	},
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			switch v {
			case "inmemory", "sqlite", "libsql", "postgres":
				c.Storage.Driver = v
				return nil
			default:
				return fmt.Errorf("invalid value for storage.driver: %q (available: inmemory, sqlite, libsql, postgres)", v)
			}
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.dsn": {
		get: func(c *Config) string { return c.Storage.DSN },
		set: func(c *Config, v string) error { c.Storage.DSN = v; return nil },
	},
	"chat.failure_notice": {
		get: func(c *Config) string { return c.Chat.FailureNotice },
		set: func(c *Config, v string) error { c.Chat.FailureNotice = v; return nil },
	},
	"chat.render_markdown": {
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.RenderMarkdown) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.render_markdown: %w", err)
			}
			c.Chat.RenderMarkdown = b
			return nil
		},
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case "nop", "kafka":
				c.EventStream.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for eventstream.provider: %q (available: nop, kafka)", v)
			}
		},
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return c.EventStream.Brokers },
		set: func(c *Config, v string) error { c.EventStream.Brokers = v; return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"serve.listen": {
		get: func(c *Config) string { return c.Serve.Listen },
		set: func(c *Config, v string) error { c.Serve.Listen = v; return nil },
	},
	"serve.corpus_path": {
		get: func(c *Config) string { return c.Serve.CorpusPath },
		set: func(c *Config, v string) error { c.Serve.CorpusPath = v; return nil },
	},
}
