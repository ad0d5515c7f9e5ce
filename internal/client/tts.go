package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TTSClient calls the hosted dialect text-to-speech endpoint.
type TTSClient struct {
	baseURL string
	client  *http.Client
}

// NewTTSClient creates a new TTS client. Some environments surface
// certificate issues with the hosted synthesis service; verifySSL=false
// relaxes TLS verification for those.
func NewTTSClient(baseURL string, verifySSL bool, timeout time.Duration) *TTSClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if !verifySSL {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &TTSClient{
		baseURL: baseURL,
		client:  httpClient,
	}
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	Dialect string `json:"dialect"`
}

// Synthesize requests speech audio for the given text in the given dialect.
// Returns the raw audio bytes and their MIME type.
func (c *TTSClient) Synthesize(ctx context.Context, text, dialect string) ([]byte, string, error) {
	if c.baseURL == "" {
		return nil, "", fmt.Errorf("tts endpoint not configured")
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, Dialect: dialect})
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to send tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("tts api error %d: %s", resp.StatusCode, string(snippet))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read tts response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/wav"
	}

	return audio, contentType, nil
}
