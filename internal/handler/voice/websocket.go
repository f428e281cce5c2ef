// Package voice exposes the realtime transcription endpoint consumed by the
// voice bridge: binary audio chunks in, transcript events out.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	sentimentservice "github.com/haven-labs/mindhaven/backend/internal/service/sentiment"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second

	// maxClipBytes bounds the audio accumulated between flushes.
	maxClipBytes = 10 << 20
)

// Handler upgrades connections and relays audio to the transcriber.
type Handler struct {
	transcriber sentimentservice.Transcriber
	upgrader    websocket.Upgrader
}

// New creates a voice websocket handler.
func New(transcriber sentimentservice.Transcriber) *Handler {
	return &Handler{
		transcriber: transcriber,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes mounts the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/voice/ws", h.handleConnection)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// FlushMessage asks the server to transcribe the buffered audio. Final
// flushes reset the buffer afterwards.
type FlushMessage struct {
	Final bool `json:"final"`
}

// ConfigMessage carries per-connection settings.
type ConfigMessage struct {
	Language    string `json:"language"`
	ContentType string `json:"contentType"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// TranscriptEvent is the payload of transcript messages.
type TranscriptEvent struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

type connectionState struct {
	language    string
	contentType string
	buffer      bytes.Buffer
}

func newConnectionState() *connectionState {
	return &connectionState{
		language:    "en",
		contentType: "audio/webm",
	}
}

func (h *Handler) handleConnection(w http.ResponseWriter, r *http.Request) {
	if h.transcriber == nil {
		http.Error(w, "voice transcription unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] voice connection opened from %s", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)

	state := newConnectionState()
	h.send(conn, "connected", map[string]string{"language": state.language})

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch messageType {
		case websocket.BinaryMessage:
			if state.buffer.Len()+len(payload) > maxClipBytes {
				h.sendError(conn, "audio clip too large")
				state.buffer.Reset()
				continue
			}
			state.buffer.Write(payload)

		case websocket.TextMessage:
			var msg inboundMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				h.sendError(conn, "malformed message")
				continue
			}
			h.handleMessage(ctx, conn, state, &msg)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, msg *inboundMessage) {
	switch msg.Type {
	case "config":
		var cfg ConfigMessage
		if err := json.Unmarshal(msg.Data, &cfg); err != nil {
			h.sendError(conn, "malformed config")
			return
		}
		h.applyConfig(state, cfg)
		h.send(conn, "configured", map[string]string{"language": state.language})

	case "flush":
		var flush FlushMessage
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &flush); err != nil {
				h.sendError(conn, "malformed flush")
				return
			}
		}
		h.flush(ctx, conn, state, flush.Final)

	case "reset":
		state.buffer.Reset()

	default:
		h.sendError(conn, "unknown message type: "+msg.Type)
	}
}

func (h *Handler) applyConfig(state *connectionState, cfg ConfigMessage) {
	if cfg.Language != "" {
		state.language = cfg.Language
	}
	if cfg.ContentType != "" {
		state.contentType = cfg.ContentType
	}
}

// flush transcribes whatever audio has accumulated. A final flush clears the
// buffer so the next utterance starts clean.
func (h *Handler) flush(ctx context.Context, conn *websocket.Conn, state *connectionState, final bool) {
	if state.buffer.Len() == 0 {
		h.send(conn, "transcript", TranscriptEvent{Text: "", IsFinal: final})
		return
	}

	clip := bytes.NewReader(state.buffer.Bytes())
	text, err := h.transcriber.Transcribe(ctx, clip, state.contentType)
	if err != nil {
		log.Printf("[websocket] transcription failed: %v", err)
		h.sendError(conn, "transcription failed")
		return
	}

	if final {
		state.buffer.Reset()
	}

	h.send(conn, "transcript", TranscriptEvent{Text: text, IsFinal: final})
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, msgType string, data interface{}) {
	msg := outgoingMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write failed: %v", err)
	}
}

func (h *Handler) sendError(conn *websocket.Conn, message string) {
	h.send(conn, "error", map[string]string{"message": message})
}
