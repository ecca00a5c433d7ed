// Package feedback implements answer feedback: an HTTP client for the
// backend's feedback endpoint and a Correlator that ties ratings to finished
// assistant turns with exactly-once submission per trace.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Rating is a thumbs-up or thumbs-down verdict on an answer.
type Rating string

const (
	RatingLike    Rating = "like"
	RatingDislike Rating = "dislike"
)

// Response is the backend's acknowledgement of a feedback submission.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Submitter sends one feedback record to the backend.
type Submitter interface {
	Submit(ctx context.Context, traceID string, rating Rating, comment string) (*Response, error)
}

// Config holds configuration for the feedback client.
type Config struct {
	// BaseURL is the backend target. Defaults to DefaultBaseURL if empty.
	BaseURL string
}

// DefaultBaseURL is the default backend target.
const DefaultBaseURL = "http://localhost:8000"

// Client posts feedback records to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// submitRequest is the request body for /v1/feedback.
type submitRequest struct {
	TraceID string `json:"trace_id"`
	Rating  string `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// NewClient creates a feedback client. Feedback is a short exchange, so the
// client carries a conservative timeout.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Submit posts one feedback record.
func (c *Client) Submit(ctx context.Context, traceID string, rating Rating, comment string) (*Response, error) {
	body, err := json.Marshal(submitRequest{
		TraceID: traceID,
		Rating:  string(rating),
		Comment: comment,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling feedback request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/feedback", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating feedback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending feedback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("feedback endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var ack Response
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("decoding feedback response: %w", err)
	}

	return &ack, nil
}

var _ Submitter = (*Client)(nil)
