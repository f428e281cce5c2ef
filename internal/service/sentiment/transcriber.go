package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haven-labs/mindhaven/backend/internal/config"
)

// HTTPTranscriber calls a remote speech-recognition endpoint: the audio body
// is POSTed as-is and the response is `{"text": "..."}`.
type HTTPTranscriber struct {
	url    string
	client *http.Client
}

// NewHTTPTranscriber builds a transcriber from configuration. Returns nil
// when no endpoint is configured.
func NewHTTPTranscriber(cfg config.SentimentConfig) *HTTPTranscriber {
	if !cfg.TranscriptionEnabled() {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPTranscriber{
		url:    cfg.TranscribeURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Transcribe sends the audio clip and returns the recognized text.
func (t *HTTPTranscriber) Transcribe(ctx context.Context, audio io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, audio)
	if err != nil {
		return "", fmt.Errorf("building transcribe request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling transcribe service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("transcribe service returned %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding transcribe response: %w", err)
	}
	return payload.Text, nil
}
