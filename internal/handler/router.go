package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	moodHandler "github.com/haven-labs/mindhaven/backend/internal/handler/mood"
	sentimentHandler "github.com/haven-labs/mindhaven/backend/internal/handler/sentiment"
	"github.com/haven-labs/mindhaven/backend/internal/handler/stream"
	voiceHandler "github.com/haven-labs/mindhaven/backend/internal/handler/voice"
	middlewarePkg "github.com/haven-labs/mindhaven/backend/internal/middleware"
	"github.com/haven-labs/mindhaven/backend/internal/service/ai"
	moodService "github.com/haven-labs/mindhaven/backend/internal/service/mood"
	sentimentService "github.com/haven-labs/mindhaven/backend/internal/service/sentiment"
	"github.com/haven-labs/mindhaven/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. The completer may be nil when
// no AI credentials are configured; the streaming endpoints then answer 503.
func NewRouter(completer ai.Completer, moodSvc *moodService.Service, sentimentSvc *sentimentService.Service, idleTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	r.Use(middlewarePkg.BearerToken)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		if completer != nil {
			stream.New(completer, moodSvc, idleTimeout).RegisterRoutes(api)
		} else {
			unavailable := func(w http.ResponseWriter, r *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "ai streaming unavailable")
			}
			api.Post("/ai-chat", unavailable)
			api.Get("/daily-tip", unavailable)
		}

		moodHandler.New(moodSvc).RegisterRoutes(api)

		sentimentHandler.New(sentimentSvc).RegisterRoutes(api)
		voiceHandler.New(sentimentSvc.Transcriber()).RegisterRoutes(api)
	})

	return r
}
