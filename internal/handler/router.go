// Package handler wires HTTP routes to core services.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sentinellabs/honeypot/backend/internal/handler/engage"
	"github.com/sentinellabs/honeypot/backend/internal/handler/live"
	personaHandler "github.com/sentinellabs/honeypot/backend/internal/handler/persona"
	"github.com/sentinellabs/honeypot/backend/internal/handler/stream"
	middlewarePkg "github.com/sentinellabs/honeypot/backend/internal/middleware"
	personaModel "github.com/sentinellabs/honeypot/backend/internal/model/persona"
	"github.com/sentinellabs/honeypot/backend/internal/service/session"
	"github.com/sentinellabs/honeypot/backend/pkg/utils"
)

// NewRouter assembles the API surface around the session service.
func NewRouter(personas personaModel.Store, sessions *session.Service, apiKey string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth)

		// Everything else requires a key.
		api.Group(func(guarded chi.Router) {
			guarded.Use(middlewarePkg.APIKey(apiKey))

			personaHandler.New(personas).RegisterRoutes(guarded)
			engage.New(sessions).RegisterRoutes(guarded)
			stream.New(sessions).RegisterRoutes(guarded)
			live.New(sessions).RegisterRoutes(guarded)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "sentinel-honeypot",
	})
}
