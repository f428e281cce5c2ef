package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/haven-labs/mindhaven/backend/internal/config"
	"github.com/haven-labs/mindhaven/backend/internal/handler"
	"github.com/haven-labs/mindhaven/backend/internal/service/ai"
	moodservice "github.com/haven-labs/mindhaven/backend/internal/service/mood"
	sentimentservice "github.com/haven-labs/mindhaven/backend/internal/service/sentiment"
	"github.com/haven-labs/mindhaven/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, err := storage.Open(cfg.Store.DataDir)
	if err != nil {
		log.Fatalf("failed to open mood store: %v", err)
	}
	defer store.Close()

	moodSvc := moodservice.NewService(store)

	// Initialize the completion client when credentials are present; the
	// rest of the app runs without it.
	var completer ai.Completer
	if cfg.AI.Enabled() {
		client, err := ai.NewClient(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI client: %v", err)
			log.Println("continuing without AI chat - check the Ark credential environment variables")
		} else {
			completer = client
			log.Println("AI completion client initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping AI chat initialization")
	}

	var transcriber sentimentservice.Transcriber
	if t := sentimentservice.NewHTTPTranscriber(cfg.Sentiment); t != nil {
		transcriber = t
		log.Println("Voice transcription enabled")
	} else {
		log.Println("TRANSCRIBE_URL not set, voice sentiment and live transcription disabled")
	}
	sentimentSvc := sentimentservice.NewService(transcriber)

	router := handler.NewRouter(completer, moodSvc, sentimentSvc, cfg.AI.IdleTimeout)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("MindHaven backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
