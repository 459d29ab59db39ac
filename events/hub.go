package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go-restobook/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 64
)

// client is one websocket connection. Messages queue on send and are
// written by the client's own goroutine, so a slow reader only ever
// blocks itself.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the connected websocket clients and broadcasts every event to
// all of them. Clients only listen; anything they send is discarded.
type Hub struct {
	upgrader   websocket.Upgrader
	sendBuffer int
	mu         sync.Mutex
	clients    map[*client]bool
}

// NewHub accepts connections from the listed origins, or from any origin
// when the list contains "*".
func NewHub(origins []string) *Hub {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &Hub{
		sendBuffer: sendBuffer,
		clients:    make(map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// ServeWS upgrades the request and holds the connection until the client
// goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, h.sendBuffer)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go h.write(c)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

// write drains the client's queue until the hub closes it.
func (h *Hub) write(c *client) {
	defer c.conn.Close()
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Debug("dropping websocket client", "error", err)
			h.drop(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(writeWait))
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(c)
}

// remove must be called with mu held.
func (h *Hub) remove(c *client) {
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues the event for every client without waiting on any of
// them. A client whose queue is full is disconnected.
func (h *Hub) Publish(ctx context.Context, e models.Event) error {
	message, err := json.Marshal(e)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			slog.Warn("websocket client too slow, disconnecting")
			h.remove(c)
		}
	}
	return nil
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
