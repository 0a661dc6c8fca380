// Package live serves the websocket intelligence feed: every completed turn
// for a session is pushed to connected dashboards, and the socket accepts
// inbound scammer messages to drive turns directly.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
	"github.com/sentinellabs/honeypot/backend/internal/service/session"
)

const (
	readDeadline = 60 * time.Second
	pingInterval = 54 * time.Second
)

// Handler upgrades connections and bridges them to the session feed.
type Handler struct {
	sessions *session.Service
	upgrader websocket.Upgrader
}

// New creates the websocket handler.
func New(sessions *session.Service) *Handler {
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// conn serializes writes; gorilla connections allow one writer at a time.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	events, unsubscribe, err := h.sessions.Subscribe(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	defer unsubscribe()

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &conn{ws: ws}

	ws.SetReadDeadline(time.Now().Add(readDeadline))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	go h.pingLoop(ctx, c)
	go h.forwardEvents(ctx, c, sessionID, events)

	h.sendInfo(c, sessionID, map[string]any{
		"type":      "connected",
		"sessionId": sessionID,
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg inboundMessage
			if err := ws.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}

			ws.SetReadDeadline(time.Now().Add(readDeadline))

			if msg.SessionID != "" && msg.SessionID != sessionID {
				h.sendError(c, "session mismatch")
				continue
			}

			h.handleMessage(ctx, c, sessionID, &msg)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, c *conn, sessionID string, msg *inboundMessage) {
	switch msg.Type {
	case "message":
		h.handleInboundText(ctx, c, sessionID, msg.Data)
	case "report":
		h.handleReportRequest(c, sessionID)
	default:
		h.sendError(c, "unsupported message type: "+msg.Type)
	}
}

func (h *Handler) handleInboundText(ctx context.Context, c *conn, sessionID string, raw json.RawMessage) {
	var payload struct {
		Text      string `json:"text"`
		Sender    string `json:"sender"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.sendError(c, "invalid message payload")
		return
	}
	if payload.Text == "" {
		return
	}

	// The result is not echoed back directly; it arrives through the
	// subscribed event feed like every other turn.
	_, _, err := h.sessions.EngageTurn(ctx, session.Request{
		SessionID: sessionID,
		Message: convo.Message{
			Sender:    payload.Sender,
			Text:      payload.Text,
			Timestamp: payload.Timestamp,
		},
		Metadata: convo.DefaultMetadata(),
	})
	if err != nil {
		if errors.Is(err, session.ErrTurnInFlight) {
			h.sendError(c, "a turn is already in flight")
			return
		}
		h.sendError(c, "turn processing failed")
	}
}

func (h *Handler) handleReportRequest(c *conn, sessionID string) {
	rep, err := h.sessions.Report(sessionID)
	if err != nil {
		h.sendError(c, "report unavailable")
		return
	}
	h.sendInfo(c, sessionID, map[string]any{
		"type":   "report",
		"report": rep,
	})
}

func (h *Handler) forwardEvents(ctx context.Context, c *conn, sessionID string, events <-chan session.TurnEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-events:
			if !open {
				h.sendInfo(c, sessionID, map[string]any{
					"type":   "closed",
					"reason": "session reset",
				})
				return
			}
			h.sendInfo(c, sessionID, map[string]any{
				"type":  "turn",
				"event": event,
			})
		}
	}
}

func (h *Handler) sendInfo(c *conn, sessionID string, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := c.writeJSON(msg); err != nil {
		log.Printf("[websocket] write info failed: %v", err)
	}
}

func (h *Handler) sendError(c *conn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := c.writeJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

func (h *Handler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
