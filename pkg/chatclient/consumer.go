package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/haven-labs/mindhaven/backend/internal/model/chat"
	"github.com/haven-labs/mindhaven/backend/pkg/sse"
)

// apologyMessage replaces the assistant turn whenever a stream fails, so the
// conversation never ends on a half-rendered reply.
const apologyMessage = "Sorry, something went wrong. Please try again."

var (
	// ErrStreamInFlight means Send was called while a previous stream is
	// still being consumed. One reply renders at a time.
	ErrStreamInFlight = errors.New("a response stream is already in flight")

	// ErrEmptyMessage means there was nothing to send.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrStreamInterrupted means the stream ended without a completion
	// sentinel.
	ErrStreamInterrupted = errors.New("stream ended before completion")
)

// Speaker voices a finished reply. It fires at most once per stream.
type Speaker interface {
	Speak(text string)
}

// Config holds the consumer's collaborators and settings.
type Config struct {
	// BaseURL is the backend origin, e.g. "http://localhost:5051".
	BaseURL string

	// Token is sent as a bearer credential. Empty is tolerated.
	Token string

	// Language selects the reply language by code; empty means English.
	Language string

	HTTPClient *http.Client

	// Speaker, when set, voices each completed reply.
	Speaker Speaker

	// OnSentiment, when set, receives every outgoing message on a side
	// channel. It must never delay or fail the reply path.
	OnSentiment func(text string)
}

// Consumer sends user messages and folds the streamed reply into its
// transcript token by token.
type Consumer struct {
	cfg        Config
	httpClient *http.Client
	transcript *Transcript
	inFlight   atomic.Bool
}

// NewConsumer builds a consumer around a fresh transcript.
func NewConsumer(cfg Config) *Consumer {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Consumer{
		cfg:        cfg,
		httpClient: client,
		transcript: NewTranscript(),
	}
}

// Transcript exposes the conversation record for rendering.
func (c *Consumer) Transcript() *Transcript {
	return c.transcript
}

type chatRequest struct {
	Prompt   string `json:"prompt"`
	Language string `json:"language,omitempty"`
}

// Send posts a user message and blocks until the reply stream finishes. The
// user turn and an assistant placeholder appear in the transcript before the
// request goes out; fragments then accumulate on the placeholder in order.
func (c *Consumer) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrStreamInFlight
	}
	defer c.inFlight.Store(false)

	c.transcript.Append(chat.Turn{Role: chat.RoleUser, Content: text, Complete: true})
	assistantID := c.transcript.Append(chat.Turn{Role: chat.RoleAssistant})

	if c.cfg.OnSentiment != nil {
		go c.cfg.OnSentiment(text)
	}

	resp, err := c.post(ctx, text)
	if err != nil {
		c.fail(assistantID)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.fail(assistantID)
		return fmt.Errorf("chat request failed with status %d", resp.StatusCode)
	}

	return c.consume(resp.Body, assistantID)
}

func (c *Consumer) post(ctx context.Context, text string) (*http.Response, error) {
	body, err := json.Marshal(chatRequest{Prompt: text, Language: c.cfg.Language})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/ai-chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	return c.httpClient.Do(req)
}

func (c *Consumer) consume(body io.Reader, assistantID string) error {
	reader := sse.NewReader(body)
	for {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			// The stream died without a sentinel.
			c.fail(assistantID)
			return ErrStreamInterrupted
		}
		if err != nil {
			c.fail(assistantID)
			return fmt.Errorf("reading stream: %w", err)
		}

		switch frame.Kind {
		case chat.FrameToken:
			c.transcript.AppendToken(assistantID, frame.Text)

		case chat.FrameDone:
			c.transcript.Complete(assistantID)
			if c.cfg.Speaker != nil {
				c.cfg.Speaker.Speak(c.transcript.Content(assistantID))
			}
			return nil

		case chat.FrameError:
			c.fail(assistantID)
			if frame.Text != "" {
				return fmt.Errorf("stream error: %s", frame.Text)
			}
			return errors.New("stream error")
		}
	}
}

// fail settles the assistant turn with the apology so the transcript stays
// coherent after any failure mode. In voice mode the apology is spoken too,
// so the user hears that something went wrong.
func (c *Consumer) fail(assistantID string) {
	c.transcript.SetContent(assistantID, apologyMessage)
	c.transcript.Complete(assistantID)
	if c.cfg.Speaker != nil {
		c.cfg.Speaker.Speak(apologyMessage)
	}
}
