// Package persona exposes the victim persona catalog.
package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentinellabs/honeypot/backend/internal/model/persona"
	"github.com/sentinellabs/honeypot/backend/pkg/utils"
)

// Handler serves the persona catalog.
type Handler struct {
	personas persona.Store
}

// New creates the persona handler.
func New(personas persona.Store) *Handler {
	return &Handler{personas: personas}
}

// RegisterRoutes mounts the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/{personaID}", h.handleGetPersona)
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}

func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "personaID")
	p, ok := h.personas.FindByID(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
