package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/signals/pkg/reactive"
)

// EventType represents the type of event pushed to clients.
type EventType string

const (
	EventWrite EventType = "write"
	EventError EventType = "error"
)

// Event is sent to websocket clients.
type Event struct {
	Type  EventType `json:"type"`
	ID    uint64    `json:"id,omitempty"`
	Name  string    `json:"name,omitempty"`
	Kind  string    `json:"kind,omitempty"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

// sendBuffer is the number of events queued per client before new
// events are dropped for it.
const sendBuffer = 64

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans out signal writes to connected websocket clients.
// It implements reactive.Observer; observer callbacks only enqueue and
// never wait on the network.
type Hub struct {
	reactive.NopObserver

	clients  map[string]*client
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
	now      func() time.Time
}

// NewHub creates a hub. checkOrigin may be nil to accept every origin.
func NewHub(logger *slog.Logger, checkOrigin func(*http.Request) bool) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
		now:    time.Now,
	}
}

// HandleWebSocket upgrades the request and streams events until the
// client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("inspect: websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.logger.Debug("inspect: client connected", "client", c.id, "remote", req.RemoteAddr)

	go h.writeLoop(c)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	h.logger.Debug("inspect: client disconnected", "client", c.id)
}

func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
}

// remove unregisters c and closes its connection. Safe to call twice.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()
	if !ok {
		return
	}
	close(c.send)
	c.conn.Close()
}

// Broadcast sends ev to every connected client.
func (h *Hub) Broadcast(ev Event) {
	if ev.At.IsZero() {
		ev.At = h.now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("inspect: client too slow, dropping event", "client", c.id)
		}
	}
}

// SignalWritten implements reactive.Observer.
func (h *Hub) SignalWritten(info reactive.Info) {
	h.Broadcast(Event{Type: EventWrite, ID: info.ID, Name: info.Name, Kind: string(info.Kind)})
}

// ErrorRaised implements reactive.Observer.
func (h *Hub) ErrorRaised(err error) {
	h.Broadcast(Event{Type: EventError, Error: err.Error()})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
}

var _ reactive.Observer = (*Hub)(nil)
