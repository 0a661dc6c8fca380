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

	"github.com/sentinellabs/honeypot/backend/internal/analysis/report"
	"github.com/sentinellabs/honeypot/backend/internal/callback"
	"github.com/sentinellabs/honeypot/backend/internal/config"
	"github.com/sentinellabs/honeypot/backend/internal/handler"
	"github.com/sentinellabs/honeypot/backend/internal/model/persona"
	aiService "github.com/sentinellabs/honeypot/backend/internal/service/ai"
	"github.com/sentinellabs/honeypot/backend/internal/service/engine"
	"github.com/sentinellabs/honeypot/backend/internal/service/session"
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

	personaStore := persona.NewMemoryStore(persona.Seed())

	// One limiter shared by both chains: the upstream quota is global.
	limiter := aiService.NewRateLimiter(cfg.Engine.RateLimitCapacity, cfg.Engine.RateLimitWindow, nil)

	var detector *aiService.Detector
	var personaGen *aiService.PersonaGenerator
	if cfg.AI.Enabled() {
		detectorModel, err := cfg.AI.NewChatModel(ctx, cfg.AI.DetectorTemperature)
		if err != nil {
			log.Printf("warning: failed to initialize detector model: %v", err)
		} else if detector, err = aiService.NewDetector(ctx, detectorModel, limiter); err != nil {
			log.Printf("warning: failed to compile detector chain: %v", err)
			detector = nil
		}

		personaModel, err := cfg.AI.NewChatModel(ctx, cfg.AI.PersonaTemperature)
		if err != nil {
			log.Printf("warning: failed to initialize persona model: %v", err)
		} else if personaGen, err = aiService.NewPersonaGenerator(ctx, personaModel, limiter, nil); err != nil {
			log.Printf("warning: failed to compile persona chain: %v", err)
			personaGen = nil
		}

		if detector != nil && personaGen != nil {
			log.Println("AI pipeline initialized successfully")
		} else {
			log.Println("AI pipeline degraded: heuristic analysis and canned replies in use")
		}
	} else {
		log.Println("Ark credentials not configured, running fully offline")
	}

	orchestrator := engine.New(detector, personaGen, nil)
	builder := report.NewBuilder(cfg.Engine.CostPerSecondUSD, "")

	var sender session.ReportSender
	if cfg.Callback.Enabled {
		sender = callback.NewClient(cfg.Callback.URL, cfg.Callback.Timeout)
		log.Printf("final report callback enabled: %s", cfg.Callback.URL)
	} else {
		log.Println("CALLBACK_URL not configured, final reports stay local")
	}

	sessions := session.NewService(personaStore, orchestrator, builder, sender, cfg.Engine, nil)

	router := handler.NewRouter(personaStore, sessions, cfg.Server.APIKey)

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

	log.Printf("Sentinel honeypot backend listening on %s", addr)
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
