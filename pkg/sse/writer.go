// Package sse implements the data-line framing used by the streaming chat
// endpoints: each frame is `data: <payload>\n\n`, with the string sentinels
// [DONE] and [ERROR] terminating a stream.
package sse

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/haven-labs/mindhaven/backend/internal/model/chat"
)

// SetupHeaders prepares a response for an unbuffered event stream.
func SetupHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// WriteFrame emits a single frame and flushes immediately so fragments are
// never batched behind buffering. Payloads containing newlines become
// multiple data lines within one event, per the event-stream format.
func WriteFrame(w http.ResponseWriter, flusher http.Flusher, frame chat.Frame) {
	for _, line := range strings.Split(frame.Payload(), "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", line); err != nil {
			log.Printf("[sse] failed to write frame: %v", err)
			return
		}
	}
	if _, err := fmt.Fprint(w, "\n"); err != nil {
		log.Printf("[sse] failed to terminate frame: %v", err)
		return
	}
	flusher.Flush()
}
