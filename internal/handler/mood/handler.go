package mood

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	moodmodel "github.com/haven-labs/mindhaven/backend/internal/model/mood"
	moodservice "github.com/haven-labs/mindhaven/backend/internal/service/mood"
	"github.com/haven-labs/mindhaven/backend/pkg/utils"
)

// Handler serves the mood logging endpoints.
type Handler struct {
	moodSvc *moodservice.Service
}

// New creates a mood handler.
func New(moodSvc *moodservice.Service) *Handler {
	return &Handler{moodSvc: moodSvc}
}

// RegisterRoutes mounts the mood routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/mood", h.handleSave)
	r.Get("/mood", h.handleHistory)
	r.Get("/mood/summary", h.handleSummary)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Date    string   `json:"date"`
		Mood    int      `json:"mood"`
		Factors []string `json:"factors"`
		Note    string   `json:"note"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry := moodmodel.Entry{
		Date:    payload.Date,
		Mood:    payload.Mood,
		Factors: strings.Join(payload.Factors, ","),
		Note:    payload.Note,
	}

	id, err := h.moodSvc.LogEntry(r.Context(), entry)
	if err != nil {
		if errors.Is(err, moodservice.ErrDateRequired) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[mood] failed to save entry: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to save mood entry")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	points, err := h.moodSvc.History(r.Context())
	if err != nil {
		log.Printf("[mood] failed to load history: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load mood history")
		return
	}
	utils.RespondJSON(w, http.StatusOK, points)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.moodSvc.Summary(r.Context())
	if err != nil {
		log.Printf("[mood] failed to build summary: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to build mood summary")
		return
	}
	utils.RespondJSON(w, http.StatusOK, summary)
}
