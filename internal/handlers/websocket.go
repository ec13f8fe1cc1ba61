package handlers

import (
	"encoding/json"
	"net/http"

	"thisisjapan-backend/internal/middleware"
	"thisisjapan-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler streams like events to subscribers
type WebSocketHandler struct {
	hub      *services.WSHub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler. allowedOrigin "*"
// accepts any origin.
func NewWebSocketHandler(hub *services.WSHub, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// HandleWebSocket handles GET /ws
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	connID := h.hub.Register(conn)
	defer h.hub.Unregister(connID)

	logger := log.With().Str("conn_id", connID).Logger()
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		logger = logger.With().Int64("user_id", userID).Logger()
	}
	logger.Info().Msg("WebSocket connection established")

	if err := h.hub.Send(connID, services.WSMessage{Type: "connected"}); err != nil {
		logger.Error().Err(err).Msg("Failed to send connected message")
		return
	}

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error().Err(err).Msg("WebSocket error")
			}
			return
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.sendError(connID, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "ping":
			err = h.hub.Send(connID, services.WSMessage{Type: "pong"})
		default:
			err = h.hub.Send(connID, services.WSMessage{Type: "error", Message: "Unknown message type"})
		}
		if err != nil {
			logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to reply")
			return
		}
	}
}

func (h *WebSocketHandler) sendError(connID, message string) {
	msg := services.WSMessage{
		Type:    "error",
		Message: message,
	}
	if err := h.hub.Send(connID, msg); err != nil {
		log.Error().Err(err).Str("conn_id", connID).Msg("Failed to send error message")
	}
}
