package devserver

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FallbackAnswer is returned when no corpus entry matches and the corpus
// declares no default.
const FallbackAnswer = "I don't have notes on that yet. Try asking about a past meetup."

// corpusFile is the on-disk TOML shape of the corpus.
type corpusFile struct {
	DefaultAnswer string        `toml:"default_answer"`
	Answers       []corpusEntry `toml:"answer"`
}

// corpusEntry maps a question substring to a canned answer.
type corpusEntry struct {
	Match string `toml:"match"`
	Text  string `toml:"text"`
}

// Corpus holds the canned answers, hot-reloading from disk while the file
// changes underneath it.
type Corpus struct {
	mu      sync.RWMutex
	path    string
	logger  *zap.Logger
	entries []corpusEntry
	fallbck string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCorpus loads the corpus at path and starts watching it for changes.
// An empty path yields a corpus that always answers with FallbackAnswer.
func NewCorpus(path string, logger *zap.Logger) (*Corpus, error) {
	c := &Corpus{
		path:    path,
		logger:  logger,
		fallbck: FallbackAnswer,
		done:    make(chan struct{}),
	}

	if path == "" {
		return c, nil
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating corpus watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching corpus: %w", err)
	}
	c.watcher = watcher

	go c.watch()

	return c, nil
}

// Answer returns the canned answer for a question: the first entry whose
// match substring appears in the question (case-insensitive), else the
// corpus default, else FallbackAnswer.
func (c *Corpus) Answer(question string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lowered := strings.ToLower(question)
	for _, entry := range c.entries {
		if entry.Match != "" && strings.Contains(lowered, strings.ToLower(entry.Match)) {
			return entry.Text
		}
	}

	return c.fallbck
}

// Close stops the corpus watcher.
func (c *Corpus) Close() {
	close(c.done)
	if c.watcher != nil {
		c.watcher.Close()
	}
}

// load reads and parses the corpus file, replacing the in-memory entries.
func (c *Corpus) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("reading corpus: %w", err)
	}

	var file corpusFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing corpus TOML: %w", err)
	}

	fallback := file.DefaultAnswer
	if fallback == "" {
		fallback = FallbackAnswer
	}

	c.mu.Lock()
	c.entries = file.Answers
	c.fallbck = fallback
	c.mu.Unlock()

	c.logger.Info("corpus loaded",
		zap.String("path", c.path),
		zap.Int("entries", len(file.Answers)),
	)

	return nil
}

// watch reloads the corpus when the file changes. A reload failure keeps the
// previous corpus; editors often write partial files mid-save.
func (c *Corpus) watch() {
	for {
		select {
		case <-c.done:
			return

		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := c.load(); err != nil {
				c.logger.Warn("corpus reload failed", zap.Error(err))
			}

		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("corpus watcher error", zap.Error(err))
		}
	}
}
