package sentiment

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	analysis "github.com/haven-labs/mindhaven/backend/internal/analysis/sentiment"
	sentimentservice "github.com/haven-labs/mindhaven/backend/internal/service/sentiment"
	"github.com/haven-labs/mindhaven/backend/pkg/utils"
)

// maxAudioBytes caps uploaded clips; captures run a few seconds of webm,
// so 10MB is generous.
const maxAudioBytes = 10 << 20

// Handler serves the sentiment side-channel endpoints. Failures here must
// never affect the chat reply path; the client treats them as advisory.
type Handler struct {
	svc *sentimentservice.Service
}

// New creates a sentiment handler.
func New(svc *sentimentservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the analysis routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/text-sentiment", h.handleText)
	r.Post("/voice-sentiment", h.handleVoice)
}

type response struct {
	Success    bool             `json:"success"`
	Sentiment  *analysis.Result `json:"sentiment,omitempty"`
	Transcript string           `json:"transcript,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func (h *Handler) handleText(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, response{Error: "invalid request body"})
		return
	}

	result, err := h.svc.AnalyzeText(r.Context(), payload.Text)
	if err != nil {
		if errors.Is(err, analysis.ErrTextTooShort) {
			utils.RespondJSON(w, http.StatusBadRequest, response{Error: err.Error()})
			return
		}
		log.Printf("[sentiment] text analysis failed: %v", err)
		utils.RespondJSON(w, http.StatusInternalServerError, response{Error: "sentiment analysis failed"})
		return
	}

	utils.RespondJSON(w, http.StatusOK, response{Success: true, Sentiment: &result})
}

func (h *Handler) handleVoice(w http.ResponseWriter, r *http.Request) {
	if !h.svc.TranscriptionEnabled() {
		utils.RespondJSON(w, http.StatusServiceUnavailable, response{Error: "voice analysis unavailable"})
		return
	}

	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, response{Error: "No audio file provided"})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, response{Error: "No audio file provided"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	transcript, result, err := h.svc.AnalyzeAudio(r.Context(), file, contentType)
	if err != nil {
		switch {
		case errors.Is(err, sentimentservice.ErrNoSpeech):
			utils.RespondJSON(w, http.StatusBadRequest, response{Error: err.Error(), Transcript: transcript})
		case errors.Is(err, analysis.ErrTextTooShort):
			utils.RespondJSON(w, http.StatusBadRequest, response{Error: "Could not analyze sentiment from speech", Transcript: transcript})
		default:
			log.Printf("[sentiment] voice analysis failed: %v", err)
			utils.RespondJSON(w, http.StatusInternalServerError, response{Error: "voice analysis failed"})
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, response{Success: true, Sentiment: &result, Transcript: transcript})
}
