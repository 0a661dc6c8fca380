// Package stream serves the live session event feed over Server-Sent Events.
package stream

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sentinellabs/honeypot/backend/internal/service/session"
	"github.com/sentinellabs/honeypot/backend/pkg/utils"
)

// heartbeatInterval keeps idle connections alive through proxies.
const heartbeatInterval = 8 * time.Second

// Handler streams turn events and heartbeats for one session.
type Handler struct {
	sessions *session.Service
}

// New creates the SSE handler.
func New(sessions *session.Service) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes mounts the stream route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, unsubscribe, err := h.sessions.Subscribe(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	defer unsubscribe()

	utils.SetupSSEHeaders(w)

	ctx := r.Context()
	log.Printf("[sse] opening stream for session=%s", sessionID)

	utils.SendSSEChunk(w, flusher, map[string]any{
		"event":   "status",
		"message": "stream established",
	})

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] closing stream for session=%s", sessionID)
			return
		case event, open := <-events:
			if !open {
				// Session was reset; tell the client and stop.
				utils.SendSSEEvent(w, flusher, "closed", map[string]string{
					"sessionId": sessionID,
					"reason":    "session reset",
				})
				return
			}
			utils.SendSSEEvent(w, flusher, "turn", event)
		case t := <-ticker.C:
			elapsed, err := h.sessions.Elapsed(sessionID)
			if err != nil {
				return
			}
			utils.SendSSEChunk(w, flusher, map[string]any{
				"event":      "heartbeat",
				"elapsedSec": elapsed,
				"time":       t.UTC().Format(time.RFC3339),
			})
		}
	}
}
