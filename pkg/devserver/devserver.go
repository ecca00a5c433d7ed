// Package devserver is a local stand-in for the answer backend. It speaks
// the same wire protocol as production (/api/ask event streams, /v1/feedback
// acknowledgements) but answers from a canned TOML corpus, so the CLI can be
// developed and tested offline.
package devserver

import (
	"bufio"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Birmingham-AI/willAIam/pkg/utils"
)

// Config holds devserver settings.
type Config struct {
	// ListenAddr is the address to serve on, e.g. ":8000".
	ListenAddr string

	// CorpusPath is the TOML corpus of canned answers. Empty runs with the
	// built-in fallback answer only.
	CorpusPath string
}

// Server is the stub backend.
type Server struct {
	config Config
	corpus *Corpus
	logger *zap.Logger
	app    *fiber.App
}

// askRequest mirrors the production ask request body.
type askRequest struct {
	Question        string       `json:"question"`
	Messages        []askMessage `json:"messages"`
	EnableWebSearch bool         `json:"enable_web_search"`
}

type askMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// feedbackRequest mirrors the production feedback request body.
type feedbackRequest struct {
	TraceID string `json:"trace_id"`
	Rating  string `json:"rating"`
	Comment string `json:"comment"`
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// chunkSize is the number of runes per content frame; small enough that the
// client visibly streams.
const chunkSize = 24

// NewServer creates a devserver. The corpus is loaded immediately and watched
// for changes until Shutdown.
func NewServer(config Config, logger *zap.Logger) (*Server, error) {
	corpus, err := NewCorpus(config.CorpusPath, logger)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		corpus: corpus,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/api/ask", s.handleAsk)
	app.Post("/v1/feedback", s.handleFeedback)

	return s, nil
}

// Run starts the devserver on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting devserver",
		zap.String("listen", s.config.ListenAddr),
		zap.String("corpus", s.config.CorpusPath),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the devserver and stops the corpus watcher.
func (s *Server) Shutdown() error {
	s.corpus.Close()
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleAsk streams a canned answer in the production wire grammar: an
// optional trace_id frame, chunked data frames with newlines escaped, and the
// [DONE] sentinel.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "question required"})
	}

	answer := s.corpus.Answer(req.Question)
	traceID := uuid.NewString()

	s.logger.Info("answering question",
		zap.String("trace_id", traceID),
		zap.String("question", utils.Truncate(req.Question, 80)),
		zap.Int("history_len", len(req.Messages)),
	)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		w.WriteString("event: trace_id\n")
		w.WriteString("data: " + traceID + "\n")
		w.WriteString("\n")
		w.Flush()

		for _, chunk := range chunkAnswer(answer) {
			w.WriteString("data: " + chunk + "\n")
			if err := w.Flush(); err != nil {
				// Client hung up mid-stream.
				return
			}
		}

		w.WriteString("data: [DONE]\n")
		w.Flush()
	}))

	return nil
}

// handleFeedback acknowledges a feedback submission.
func (s *Server) handleFeedback(c *fiber.Ctx) error {
	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	if req.TraceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "trace_id required"})
	}
	if req.Rating != "like" && req.Rating != "dislike" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "rating must be like or dislike"})
	}

	s.logger.Info("feedback received",
		zap.String("trace_id", req.TraceID),
		zap.String("rating", req.Rating),
	)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "feedback recorded",
	})
}

// chunkAnswer splits an answer into wire-sized data payloads with real
// newlines escaped as the two-character sequence \n. Chunks are cut on rune
// boundaries before escaping so an escape sequence is never split.
func chunkAnswer(answer string) []string {
	runes := []rune(answer)
	chunks := make([]string, 0, len(runes)/chunkSize+1)

	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		chunks = append(chunks, strings.ReplaceAll(chunk, "\n", `\n`))
	}

	return chunks
}
