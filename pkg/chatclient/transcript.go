// Package chatclient consumes the streaming chat endpoint and maintains an
// ordered conversation transcript as fragments arrive.
package chatclient

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haven-labs/mindhaven/backend/internal/model/chat"
)

// Transcript is the ordered record of a conversation. All methods are safe
// for concurrent use; rendering the same state twice yields the same turns.
type Transcript struct {
	mu    sync.RWMutex
	turns []chat.Turn
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a turn and returns its ID, generating one when absent.
func (t *Transcript) Append(turn chat.Turn) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	t.turns = append(t.turns, turn)
	return turn.ID
}

// AppendToken concatenates a fragment onto the identified turn.
func (t *Transcript) AppendToken(id, token string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.turns {
		if t.turns[i].ID == id {
			t.turns[i].Content += token
			return
		}
	}
}

// SetContent replaces the identified turn's content.
func (t *Transcript) SetContent(id, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.turns {
		if t.turns[i].ID == id {
			t.turns[i].Content = content
			return
		}
	}
}

// Complete marks the identified turn finished.
func (t *Transcript) Complete(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.turns {
		if t.turns[i].ID == id {
			t.turns[i].Complete = true
			return
		}
	}
}

// Content returns the identified turn's current content.
func (t *Transcript) Content(id string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.turns {
		if t.turns[i].ID == id {
			return t.turns[i].Content
		}
	}
	return ""
}

// Render returns a snapshot of the turns in arrival order.
func (t *Transcript) Render() []chat.Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]chat.Turn, len(t.turns))
	copy(out, t.turns)
	return out
}
