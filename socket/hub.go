// Package socket keeps track of open dashboard websocket connections and
// pushes messages to them.
package socket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harekrishna1602/anvesha-2.0/metrics"
)

// Conn is the part of *websocket.Conn the hub writes to
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// writeWait bounds a single push to a slow or stalled client
const writeWait = 10 * time.Second

// Envelope wraps every pushed message with its type
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SummaryMessage is the envelope type of dashboard summary pushes
const SummaryMessage = "dashboard_summary"

// client serializes writes to one connection; gorilla allows a single
// concurrent writer
type client struct {
	conn    Conn
	writeMu sync.Mutex
}

// Hub holds the open connections of each user. A user may have several.
// mu guards the registry only and is never held across a network write.
type Hub struct {
	clients map[string]map[Conn]*client
	mu      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[Conn]*client),
	}
}

// Register adds a connection for the user
func (h *Hub) Register(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[userID]
	if !ok {
		conns = make(map[Conn]*client)
		h.clients[userID] = conns
	}
	if _, ok := conns[conn]; ok {
		return
	}
	conns[conn] = &client{conn: conn}
	metrics.ActiveSockets.Inc()
	slog.Debug("websocket client registered", "user_id", userID)
}

// Unregister removes a connection; unknown connections are ignored
func (h *Hub) Unregister(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(userID, conn)
}

func (h *Hub) removeLocked(userID string, conn Conn) {
	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
	metrics.ActiveSockets.Dec()
	slog.Debug("websocket client unregistered", "user_id", userID)
}

// Connections returns the number of open connections for the user
func (h *Hub) Connections(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Send writes payload as a summary envelope to every connection of the user.
// A user without connections is not an error. Connections that fail to
// accept the write within writeWait are closed and dropped.
func (h *Hub) Send(userID string, payload interface{}) error {
	message, err := json.Marshal(Envelope{Type: SummaryMessage, Data: payload})
	if err != nil {
		return fmt.Errorf("socket: marshal message: %w", err)
	}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients[userID]))
	for _, c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	var errs []error
	for _, c := range targets {
		if err := c.write(message); err != nil {
			errs = append(errs, err)
			_ = c.conn.Close()
			h.Unregister(userID, c.conn)
		}
	}
	return errors.Join(errs...)
}

func (c *client) write(message []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, message)
}
