// Package engage exposes the conversation endpoints: turn processing,
// session provisioning, reports, and reset.
package engage

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
	"github.com/sentinellabs/honeypot/backend/internal/service/session"
	"github.com/sentinellabs/honeypot/backend/pkg/utils"
)

// Handler routes conversation traffic to the session service.
type Handler struct {
	sessions *session.Service
}

// New creates the conversation handler.
func New(sessions *session.Service) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes mounts the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/message", h.handleMessage)
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}/report", h.handleReport)
	r.Post("/session/{sessionID}/reset", h.handleReset)
}

type messageRequest struct {
	SessionID           string          `json:"sessionId"`
	Message             convo.Message   `json:"message"`
	ConversationHistory []convo.Message `json:"conversationHistory"`
	Metadata            *convo.Metadata `json:"metadata"`
}

type messageResponse struct {
	SessionID              string             `json:"sessionId"`
	Reply                  string             `json:"reply"`
	ScamDetected           bool               `json:"scamDetected"`
	ConfidenceScore        float64            `json:"confidenceScore"`
	AgentNotes             string             `json:"agentNotes"`
	ExtractedIntelligence  convo.Intelligence `json:"extractedIntelligence"`
	TotalMessagesExchanged int                `json:"totalMessagesExchanged"`
	Status                 string             `json:"status"`
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload messageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if payload.Message.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "message text is required")
		return
	}

	meta := convo.DefaultMetadata()
	if payload.Metadata != nil {
		if payload.Metadata.Channel != "" {
			meta.Channel = payload.Metadata.Channel
		}
		if payload.Metadata.Language != "" {
			meta.Language = payload.Metadata.Language
		}
		if payload.Metadata.Locale != "" {
			meta.Locale = payload.Metadata.Locale
		}
	}

	result, snap, err := h.sessions.EngageTurn(r.Context(), session.Request{
		SessionID: payload.SessionID,
		Message:   payload.Message,
		History:   payload.ConversationHistory,
		Metadata:  meta,
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrTurnInFlight):
			utils.RespondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, session.ErrSessionRequired):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, "turn processing failed")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, messageResponse{
		SessionID:              snap.SessionID,
		Reply:                  result.Reply,
		ScamDetected:           result.ScamDetected,
		ConfidenceScore:        result.ConfidenceScore,
		AgentNotes:             result.AgentNotes,
		ExtractedIntelligence:  snap.Intelligence,
		TotalMessagesExchanged: len(snap.Messages),
		Status:                 "success",
	})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.sessions.CreateSession(payload.PersonaID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{"sessionId": id})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	rep, err := h.sessions.Report(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, rep)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	newID, rep, err := h.sessions.Reset(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "reset failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": newID,
		"report":    rep,
		"status":    "reset",
	})
}
