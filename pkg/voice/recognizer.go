package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultChunkSize = 4096

// StreamRecognizer recognizes speech over the realtime transcription
// websocket: it uploads audio chunks and turns transcript events into
// recognizer events.
type StreamRecognizer struct {
	// URL is the websocket endpoint, e.g. "ws://localhost:5051/api/voice/ws".
	URL string

	// Source opens the audio capture stream. It is called once per Start,
	// so the recognizer can be restarted.
	Source func() (io.ReadCloser, error)

	// ContentType describes the audio encoding; defaults server-side.
	ContentType string

	// Language is forwarded to the transcription backend.
	Language string

	// ChunkSize is the upload unit in bytes.
	ChunkSize int

	// FlushEvery requests an interim transcript after that many chunks.
	// Zero means only the final transcript is produced.
	FlushEvery int

	Dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type wsTranscript struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

type wsError struct {
	Message string `json:"message"`
}

// Start dials the endpoint and begins streaming audio. The returned channel
// closes when the capture ends or the connection drops.
func (r *StreamRecognizer) Start(ctx context.Context) (<-chan Event, error) {
	if r.Source == nil {
		return nil, errors.New("no audio source configured")
	}

	dialer := r.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing transcription endpoint: %w", err)
	}

	source, err := r.Source()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening audio source: %w", err)
	}

	if r.ContentType != "" || r.Language != "" {
		cfg := map[string]string{}
		if r.ContentType != "" {
			cfg["contentType"] = r.ContentType
		}
		if r.Language != "" {
			cfg["language"] = r.Language
		}
		if err := r.writeJSON(conn, "config", cfg); err != nil {
			source.Close()
			conn.Close()
			return nil, err
		}
	}

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()

	events := make(chan Event, 8)

	go r.upload(ctx, conn, source)
	go r.receive(conn, events)

	return events, nil
}

// Stop closes the connection, which unwinds both goroutines.
func (r *StreamRecognizer) Stop() {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (r *StreamRecognizer) upload(ctx context.Context, conn *websocket.Conn, source io.ReadCloser) {
	defer source.Close()

	chunkSize := r.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	buf := make([]byte, chunkSize)
	chunks := 0
	for {
		if ctx.Err() != nil {
			return
		}

		n, err := source.Read(buf)
		if n > 0 {
			if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return
			}
			chunks++
			if r.FlushEvery > 0 && chunks%r.FlushEvery == 0 {
				if werr := r.flush(conn, false); werr != nil {
					return
				}
			}
		}
		if errors.Is(err, io.EOF) {
			r.flush(conn, true)
			return
		}
		if err != nil {
			return
		}
	}
}

func (r *StreamRecognizer) flush(conn *websocket.Conn, final bool) error {
	return r.writeJSON(conn, "flush", map[string]bool{"final": final})
}

func (r *StreamRecognizer) writeJSON(conn *websocket.Conn, msgType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(wsEnvelope{Type: msgType, Data: payload})
}

func (r *StreamRecognizer) receive(conn *websocket.Conn, events chan<- Event) {
	defer close(events)

	for {
		var msg wsEnvelope
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "transcript":
			var transcript wsTranscript
			if err := json.Unmarshal(msg.Data, &transcript); err != nil {
				continue
			}
			if transcript.IsFinal {
				events <- Event{Kind: EventFinal, Text: transcript.Text}
				conn.Close()
				return
			}
			events <- Event{Kind: EventPartial, Text: transcript.Text}

		case "error":
			var failure wsError
			if err := json.Unmarshal(msg.Data, &failure); err != nil {
				continue
			}
			events <- Event{Kind: EventError, Err: errors.New(failure.Message)}
			conn.Close()
			return
		}
	}
}
