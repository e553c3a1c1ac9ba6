package handlers

import (
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"

	"storepress/internal/broadcast"
)

// Health reports liveness of the server and its backing services.
type Health struct {
	db       *sql.DB
	valkey   *redis.Client
	registry *broadcast.Registry
}

// NewHealth creates the health handler.
func NewHealth(db *sql.DB, valkey *redis.Client, registry *broadcast.Registry) *Health {
	return &Health{db: db, valkey: valkey, registry: registry}
}

// Check handles GET /health. Degraded dependencies turn the status to
// 503 so load balancers stop routing, but the body still names which
// dependency failed.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{
		"status":      "ok",
		"database":    "ok",
		"valkey":      "ok",
		"subscribers": h.registry.Count(),
	}

	if err := h.db.PingContext(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "unreachable"
	}
	if err := h.valkey.Ping(r.Context()).Err(); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["valkey"] = "unreachable"
	}

	respondJSON(w, status, body)
}
