// Package stream relays token-streamed completions to the browser over
// long-lived HTTP responses.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/haven-labs/mindhaven/backend/internal/model/chat"
	"github.com/haven-labs/mindhaven/backend/internal/service/ai"
	"github.com/haven-labs/mindhaven/backend/pkg/sse"
	"github.com/haven-labs/mindhaven/backend/pkg/utils"
)

const timeoutMessage = "The response timed out. Please try again."

// TipPrompter derives the daily-tip user prompt server-side.
type TipPrompter interface {
	TipPrompt(ctx context.Context) (string, error)
}

// Handler serves the two relay variants: the direct chat stream and the
// daily-tip stream with its server-authoritative prompt.
type Handler struct {
	completer   ai.Completer
	tips        TipPrompter
	idleTimeout time.Duration
}

// New creates a stream handler.
func New(completer ai.Completer, tips TipPrompter, idleTimeout time.Duration) *Handler {
	if idleTimeout <= 0 {
		idleTimeout = 60 * time.Second
	}
	return &Handler{completer: completer, tips: tips, idleTimeout: idleTimeout}
}

// RegisterRoutes mounts the streaming endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ai-chat", h.handleChat)
	r.Get("/daily-tip", h.handleDailyTip)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt   string `json:"prompt"`
		Language string `json:"language"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt := strings.TrimSpace(payload.Prompt)
	if prompt == "" {
		// Rejected before any provider call is made.
		utils.RespondError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	system := ai.WithLanguage(ai.ChatSystemPrompt, payload.Language)
	h.relay(r.Context(), w, system, prompt)
}

// handleDailyTip derives the prompt from aggregated mood factors. Any
// client-supplied body or query is ignored on purpose: the prompt is
// server-authoritative.
func (h *Handler) handleDailyTip(w http.ResponseWriter, r *http.Request) {
	prompt, err := h.tips.TipPrompt(r.Context())
	if err != nil {
		log.Printf("[stream] failed to build tip prompt: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to aggregate mood factors")
		return
	}

	h.relay(r.Context(), w, ai.TipSystemPrompt, prompt)
}

type fragment struct {
	text string
	err  error
}

// relay opens the event stream and forwards each fragment as its own frame
// the moment it arrives. Provider failures become in-band error frames; the
// idle timeout bounds the wait between fragments.
func (h *Handler) relay(ctx context.Context, w http.ResponseWriter, systemPrompt, userPrompt string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sse.SetupHeaders(w)

	stream, err := h.completer.Stream(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.Printf("[stream] failed to open completion stream: %v", err)
		sse.WriteFrame(w, flusher, chatmodel.ErrorFrame(err.Error()))
		return
	}
	defer stream.Close()

	fragments := make(chan fragment)
	go func() {
		defer close(fragments)
		for {
			text, recvErr := stream.Recv()
			select {
			case fragments <- fragment{text: text, err: recvErr}:
			case <-ctx.Done():
				return
			}
			if recvErr != nil {
				return
			}
		}
	}()

	timer := time.NewTimer(h.idleTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client went away; nothing left to write.
			return

		case <-timer.C:
			log.Printf("[stream] no fragment within %s, aborting", h.idleTimeout)
			sse.WriteFrame(w, flusher, chatmodel.ErrorFrame(timeoutMessage))
			return

		case frag, open := <-fragments:
			if !open {
				return
			}
			if errors.Is(frag.err, io.EOF) {
				sse.WriteFrame(w, flusher, chatmodel.DoneFrame())
				return
			}
			if frag.err != nil {
				log.Printf("[stream] provider error mid-stream: %v", frag.err)
				sse.WriteFrame(w, flusher, chatmodel.ErrorFrame(frag.err.Error()))
				return
			}

			sse.WriteFrame(w, flusher, chatmodel.TokenFrame(frag.text))

			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(h.idleTimeout)
		}
	}
}
