package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/windfall/dialektlab/internal/lesson"
)

// LabClient is the HTTP client for the lesson and audio endpoints. It never
// retries: every retry is user-initiated by repeating the action.
type LabClient struct {
	baseURL string
	client  *http.Client
}

// NewLabClient creates a client for the given server base URL.
func NewLabClient(baseURL string) *LabClient {
	return &LabClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func (c *LabClient) WithHTTPClient(hc *http.Client) *LabClient {
	c.client = hc
	return c
}

// CreateLesson requests a fresh lesson for the topic and dialect. A non-2xx
// status is an error; nothing is partially applied on failure.
func (c *LabClient) CreateLesson(ctx context.Context, req lesson.Request) (*lesson.Lesson, error) {
	var out lesson.Lesson
	if err := c.postJSON(ctx, "/api/lesson", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SynthesizeAudio requests speech audio for one sentence.
func (c *LabClient) SynthesizeAudio(ctx context.Context, text, dialect string) (*lesson.AudioPayload, error) {
	var out lesson.AudioPayload
	req := lesson.AudioRequest{Text: text, Dialect: dialect}
	if err := c.postJSON(ctx, "/api/audio", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *LabClient) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("api error %d on %s: %s", resp.StatusCode, path, string(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
