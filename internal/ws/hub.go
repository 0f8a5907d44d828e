// Package ws broadcasts ingestion events to connected dashboard clients.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Notice is one broadcast payload: a message was ingested from one of the
// feeds.
type Notice struct {
	Source    string `json:"source"`
	PatientID string `json:"patient_id,omitempty"`
	StayID    string `json:"stay_id,omitempty"`
	MessageID int64  `json:"message_id"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans ingestion notices out to websocket subscribers. Slow clients
// are dropped rather than allowed to stall the broadcast loop.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	logger  *zap.Logger

	upgrader websocket.Upgrader
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the request and registers the client until it
// disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 16),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.logger.Info("websocket client connected", zap.String("client", c.id))

	go h.writeLoop(c)
	h.readLoop(c)
}

// Broadcast sends the notice to every connected client.
func (h *Hub) Broadcast(n Notice) {
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// Buffer full; the write loop will notice on close.
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) writeLoop(c *client) {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// readLoop drains client frames so pings and close frames are processed;
// inbound payloads are ignored.
func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
	h.logger.Info("websocket client disconnected", zap.String("client", c.id))
}
