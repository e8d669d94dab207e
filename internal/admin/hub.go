// Package admin serves a read-only websocket feed of board snapshots so a
// human can watch what the agent sees.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 8
)

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub fans board snapshots out to connected observers. Observers never send
// anything back except pings.
type Hub struct {
	logger *zap.Logger

	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client

	mu       sync.RWMutex
	lastSnap []byte
}

// NewHub creates a hub. Run must be started before ServeWS accepts clients.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, sendBufferSize),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run owns the client set. It exits when the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			if h.logger != nil {
				h.logger.Info("Observer connected", zap.String("clientId", c.id.String()))
			}
			h.mu.RLock()
			snap := h.lastSnap
			h.mu.RUnlock()
			if snap != nil {
				select {
				case c.send <- snap:
				default:
				}
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				if h.logger != nil {
					h.logger.Info("Observer disconnected", zap.String("clientId", c.id.String()))
				}
			}

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// Publish broadcasts a snapshot to all observers. The latest snapshot is
// retained and replayed to newly connecting observers.
func (h *Hub) Publish(snap *Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("Snapshot marshal failed", zap.Error(err))
		}
		return
	}

	h.mu.Lock()
	h.lastSnap = data
	h.mu.Unlock()

	select {
	case h.broadcast <- data:
	default:
	}
}

// LastSnapshot returns the most recently published snapshot bytes.
func (h *Hub) LastSnapshot() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastSnap
}

// ServeWS upgrades an observer connection and attaches it to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		}
		return
	}

	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	h.register <- c

	go c.writePump(h)
	go c.readPump(h)
}

func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Inbound frames are drained and discarded; the feed is one-way.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
