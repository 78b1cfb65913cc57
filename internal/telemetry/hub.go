package telemetry

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	clientBuffer = 64
	writeWait    = time.Second
)

// Message is the JSON frame sent to dashboard clients.
type Message struct {
	Label string    `json:"label"`
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts samples to websocket dashboard clients. It is output only:
// anything a client sends is read and discarded. Clients that fall behind
// lose samples rather than slow the control loop.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	log      *slog.Logger

	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

type HubStats struct {
	Clients int
	Sent    uint64
	Dropped uint64
}

func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	return HubStats{Clients: n, Sent: h.sent.Load(), Dropped: h.dropped.Load()}
}

func (h *Hub) Publish(label string, value float64) {
	data, err := json.Marshal(Message{Label: label, Value: value, Time: time.Now()})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
			h.sent.Add(1)
		default:
			h.dropped.Add(1)
		}
	}
}

// ServeHTTP upgrades the request and streams samples until the client goes
// away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("dashboard upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("dashboard connected", "remote", r.RemoteAddr, "clients", n)

	done := make(chan struct{})
	go h.discardReads(c, done)
	h.writeLoop(c, done)

	h.mu.Lock()
	delete(h.clients, c)
	n = len(h.clients)
	h.mu.Unlock()
	_ = conn.Close()
	h.log.Info("dashboard disconnected", "remote", r.RemoteAddr, "clients", n)
}

func (h *Hub) discardReads(c *client, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
