package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/haven-labs/mindhaven/backend/internal/model/chat"
	"github.com/haven-labs/mindhaven/backend/pkg/sse"
)

type recordedRequest struct {
	prompt        string
	language      string
	authorization string
}

// streamServer replays the given frames as an event stream and records what
// the client sent.
func streamServer(t *testing.T, frames []chat.Frame) (*httptest.Server, *recordedRequest) {
	t.Helper()

	recorded := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt   string `json:"prompt"`
			Language string `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		recorded.prompt = req.Prompt
		recorded.language = req.Language
		recorded.authorization = r.Header.Get("Authorization")

		flusher := w.(http.Flusher)
		sse.SetupHeaders(w)
		for _, frame := range frames {
			sse.WriteFrame(w, flusher, frame)
		}
	}))
	t.Cleanup(server.Close)
	return server, recorded
}

type recordingSpeaker struct {
	mu    sync.Mutex
	texts []string
}

func (s *recordingSpeaker) Speak(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
}

func TestSendAccumulatesFragmentsInOrder(t *testing.T) {
	server, recorded := streamServer(t, []chat.Frame{
		chat.TokenFrame("Take "),
		chat.TokenFrame("a deep "),
		chat.TokenFrame("breath."),
		chat.DoneFrame(),
	})

	speaker := &recordingSpeaker{}
	consumer := NewConsumer(Config{BaseURL: server.URL, Token: "secret", Language: "es", Speaker: speaker})

	if err := consumer.Send(context.Background(), "I feel anxious"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	turns := consumer.Transcript().Render()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != chat.RoleUser || turns[0].Content != "I feel anxious" {
		t.Fatalf("unexpected user turn %+v", turns[0])
	}
	if turns[1].Role != chat.RoleAssistant {
		t.Fatalf("expected assistant turn, got %+v", turns[1])
	}
	if turns[1].Content != "Take a deep breath." {
		t.Fatalf("fragments out of order: %q", turns[1].Content)
	}
	if !turns[1].Complete {
		t.Fatalf("assistant turn not marked complete")
	}

	if recorded.prompt != "I feel anxious" {
		t.Fatalf("server saw prompt %q", recorded.prompt)
	}
	if recorded.language != "es" {
		t.Fatalf("server saw language %q", recorded.language)
	}
	if recorded.authorization != "Bearer secret" {
		t.Fatalf("server saw authorization %q", recorded.authorization)
	}

	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	if len(speaker.texts) != 1 {
		t.Fatalf("expected one spoken reply, got %d", len(speaker.texts))
	}
	if speaker.texts[0] != "Take a deep breath." {
		t.Fatalf("spoke %q", speaker.texts[0])
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	consumer := NewConsumer(Config{BaseURL: "http://unused"})
	if err := consumer.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if len(consumer.Transcript().Render()) != 0 {
		t.Fatalf("empty send must not touch the transcript")
	}
}

func TestSendRejectsConcurrentStreams(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		sse.SetupHeaders(w)
		sse.WriteFrame(w, flusher, chat.TokenFrame("slow"))
		close(started)
		<-release
		sse.WriteFrame(w, flusher, chat.DoneFrame())
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
	})

	consumer := NewConsumer(Config{BaseURL: server.URL})

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- consumer.Send(context.Background(), "first message")
	}()

	<-started
	if err := consumer.Send(context.Background(), "second message"); !errors.Is(err, ErrStreamInFlight) {
		t.Fatalf("expected ErrStreamInFlight, got %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	// The guard lifts once the stream settles.
	server2, _ := streamServer(t, []chat.Frame{chat.DoneFrame()})
	consumer.cfg.BaseURL = server2.URL
	if err := consumer.Send(context.Background(), "third message"); err != nil {
		t.Fatalf("send after completion failed: %v", err)
	}
}

func TestErrorFrameReplacesReplyWithApology(t *testing.T) {
	server, _ := streamServer(t, []chat.Frame{
		chat.TokenFrame("partial "),
		chat.ErrorFrame("model unavailable"),
	})

	speaker := &recordingSpeaker{}
	consumer := NewConsumer(Config{BaseURL: server.URL, Speaker: speaker})

	err := consumer.Send(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected stream error, got %v", err)
	}

	turns := consumer.Transcript().Render()
	if turns[1].Content != apologyMessage {
		t.Fatalf("expected apology, got %q", turns[1].Content)
	}
	if !turns[1].Complete {
		t.Fatalf("failed turn must still settle")
	}

	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	if len(speaker.texts) != 1 {
		t.Fatalf("expected the apology to be spoken once, spoke %v", speaker.texts)
	}
	if speaker.texts[0] != apologyMessage {
		t.Fatalf("spoke %q instead of the apology", speaker.texts[0])
	}
}

func TestAbruptEndReplacesReplyWithApology(t *testing.T) {
	server, _ := streamServer(t, []chat.Frame{
		chat.TokenFrame("cut off"),
	})

	speaker := &recordingSpeaker{}
	consumer := NewConsumer(Config{BaseURL: server.URL, Speaker: speaker})

	if err := consumer.Send(context.Background(), "hello"); !errors.Is(err, ErrStreamInterrupted) {
		t.Fatalf("expected ErrStreamInterrupted, got %v", err)
	}

	turns := consumer.Transcript().Render()
	if turns[1].Content != apologyMessage {
		t.Fatalf("expected apology, got %q", turns[1].Content)
	}

	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	if len(speaker.texts) != 1 || speaker.texts[0] != apologyMessage {
		t.Fatalf("expected the apology to be spoken once, spoke %v", speaker.texts)
	}
}

func TestSentimentHookReceivesOutgoingMessage(t *testing.T) {
	server, _ := streamServer(t, []chat.Frame{chat.DoneFrame()})

	got := make(chan string, 1)
	consumer := NewConsumer(Config{
		BaseURL:     server.URL,
		OnSentiment: func(text string) { got <- text },
	})

	if err := consumer.Send(context.Background(), "I feel overwhelmed"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case text := <-got:
		if text != "I feel overwhelmed" {
			t.Fatalf("sentiment hook saw %q", text)
		}
	case <-time.After(time.Second):
		t.Fatalf("sentiment hook never fired")
	}
}

func TestEmptyBearerTokenStillSent(t *testing.T) {
	server, recorded := streamServer(t, []chat.Frame{chat.DoneFrame()})

	consumer := NewConsumer(Config{BaseURL: server.URL})
	if err := consumer.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if recorded.authorization != "Bearer " {
		t.Fatalf("expected empty bearer credential, got %q", recorded.authorization)
	}
}
