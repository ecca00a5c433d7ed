// Package backend implements the HTTP client for the answer backend. It opens
// generation streams against /api/ask and hands the raw body to the caller;
// decoding belongs to pkg/sse and lifecycle to pkg/chat.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Birmingham-AI/willAIam/pkg/chat"
)

// DefaultBaseURL is the default backend target.
const DefaultBaseURL = "http://localhost:8000"

// Config holds configuration for the backend client.
type Config struct {
	// BaseURL is the backend target (e.g. "http://localhost:8000").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// EnableWebSearch forwards the web-search flag on every question.
	EnableWebSearch bool
}

// Client opens generation streams against the backend.
type Client struct {
	baseURL         string
	enableWebSearch bool
	httpClient      *http.Client
}

// askRequest is the request body for /api/ask.
type askRequest struct {
	Question        string       `json:"question"`
	Messages        []askMessage `json:"messages"`
	EnableWebSearch bool         `json:"enable_web_search"`
}

// askMessage is one prior conversation turn as the backend expects it.
type askMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewClient creates a backend client. Answers can take arbitrarily long to
// generate, so the underlying HTTP client carries no timeout; callers bound
// requests through ctx.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:         baseURL,
		enableWebSearch: cfg.EnableWebSearch,
		httpClient:      &http.Client{},
	}
}

// Stream asks the backend a question and returns the undecoded event stream.
// history carries the prior turns; the question itself travels separately.
// A response status other than 200 is returned as a *TransportError carrying
// the status and the response body.
//
// The returned body honors ctx: cancelling it aborts the stream mid-read.
func (c *Client) Stream(ctx context.Context, question string, history []chat.Turn) (io.ReadCloser, error) {
	messages := make([]askMessage, 0, len(history))
	for _, turn := range history {
		messages = append(messages, askMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	body, err := json.Marshal(askRequest{
		Question:        question,
		Messages:        messages,
		EnableWebSearch: c.enableWebSearch,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ask", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating ask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &TransportError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return resp.Body, nil
}

// Ping checks backend reachability.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &TransportError{Status: resp.StatusCode}
	}

	return nil
}

// Ensure Client satisfies the assembler's opener contract.
var _ chat.StreamOpener = (*Client)(nil)
