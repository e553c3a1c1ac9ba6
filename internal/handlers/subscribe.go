package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"storepress/internal/broadcast"
)

// Subscribe upgrades storefront clients to a websocket and registers them
// for live publish notifications.
type Subscribe struct {
	registry *broadcast.Registry
	upgrader websocket.Upgrader
}

// NewSubscribe creates the subscription handler. The event stream is a
// public, read-only feed, so cross-origin storefront pages may connect.
func NewSubscribe(registry *broadcast.Registry) *Subscribe {
	return &Subscribe{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Events handles GET /events. The connection stays open until the client
// disconnects or the registry drops it; all writes flow through the
// registry's per-connection writer, the handler goroutine only drains
// incoming frames to detect disconnection.
func (h *Subscribe) Events(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		slog.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	handle := h.registry.Register(conn)
	if handle == uuid.Nil {
		conn.Close()
		return
	}
	defer h.registry.Unregister(handle)

	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
