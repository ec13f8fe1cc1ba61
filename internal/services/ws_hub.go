package services

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"thisisjapan-backend/internal/metrics"
	"thisisjapan-backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteTimeout = 5 * time.Second

	// likeQueueSize bounds like events waiting for delivery. Events beyond it are dropped.
	likeQueueSize = 256
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Kind    models.Kind `json:"kind,omitempty"`
	ID      int64       `json:"id,omitempty"`
	Likes   int64       `json:"likes,omitempty"`
	Message string      `json:"message,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages like feed subscribers. Like events are delivered by a
// single dispatcher goroutine in publish order.
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient

	events    chan LikeEvent
	done      chan struct{}
	closeOnce sync.Once
}

var _ LikeNotifier = (*WSHub)(nil)

// NewWSHub creates a new WebSocket hub and starts its dispatcher
func NewWSHub() *WSHub {
	h := &WSHub{
		connections: make(map[string]*wsClient),
		events:      make(chan LikeEvent, likeQueueSize),
		done:        make(chan struct{}),
	}
	go h.dispatch()
	return h
}

func (h *WSHub) dispatch() {
	for {
		select {
		case <-h.done:
			return
		case event := <-h.events:
			h.Broadcast(WSMessage{
				Type:  "like",
				Kind:  event.Kind,
				ID:    event.ID,
				Likes: event.Likes,
			})
		}
	}
}

// Register adds a connection and returns its id
func (h *WSHub) Register(conn *websocket.Conn) string {
	id := uuid.New().String()

	h.mu.Lock()
	h.connections[id] = &wsClient{conn: conn}
	h.mu.Unlock()

	metrics.WebSocketConnections.Inc()
	log.Info().Str("conn_id", id).Msg("WebSocket connection registered")
	return id
}

// Unregister closes and removes a connection
func (h *WSHub) Unregister(id string) {
	h.mu.Lock()
	client, exists := h.connections[id]
	delete(h.connections, id)
	h.mu.Unlock()

	if !exists {
		return
	}
	client.conn.Close()
	metrics.WebSocketConnections.Dec()
	log.Info().Str("conn_id", id).Msg("WebSocket connection unregistered")
}

// Count returns the number of open connections
func (h *WSHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Send writes a message to one connection
func (h *WSHub) Send(id string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[id]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("connection %s is not registered", id)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(data); err != nil {
		h.Unregister(id)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Broadcast writes a message to every connection, dropping those that fail
func (h *WSHub) Broadcast(message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("type", message.Type).Msg("Failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	clients := maps.Clone(h.connections)
	h.mu.RUnlock()

	for id, client := range clients {
		if err := client.write(data); err != nil {
			log.Warn().Err(err).Str("conn_id", id).Msg("Failed to deliver broadcast")
			h.Unregister(id)
		}
	}
}

// PublishLike queues a like event for broadcast without blocking the caller.
// The event is dropped when the queue is full or the hub is closed.
func (h *WSHub) PublishLike(event LikeEvent) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.events <- event:
	default:
		log.Warn().
			Str("kind", string(event.Kind)).
			Int64("id", event.ID).
			Msg("Like feed queue full, dropping event")
	}
}

// Close stops the dispatcher and disconnects every subscriber
func (h *WSHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })

	h.mu.RLock()
	ids := slices.Collect(maps.Keys(h.connections))
	h.mu.RUnlock()

	for _, id := range ids {
		h.Unregister(id)
	}
}
