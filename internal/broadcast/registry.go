package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event names pushed to subscribed storefront clients.
const (
	// EventConnected is the synthetic acknowledgment sent to a connection
	// right after registration, carrying the server timestamp.
	EventConnected = "connected"

	// EventTemplatePublished announces that a template's draft was
	// promoted to its published snapshot.
	EventTemplatePublished = "template-published"
)

// Envelope is the wire format for every pushed event.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ConnectedPayload is the data carried by the connected acknowledgment.
type ConnectedPayload struct {
	Timestamp time.Time `json:"timestamp"`
}

// --- Commands ---

type registryCmd interface{ isRegistryCmd() }

type baseRegistryCmd struct{}

func (baseRegistryCmd) isRegistryCmd() {}

type registerCmd struct {
	baseRegistryCmd
	conn    Conn
	replyCh chan uuid.UUID
}

type unregisterCmd struct {
	baseRegistryCmd
	handle uuid.UUID
}

type broadcastCmd struct {
	baseRegistryCmd
	data []byte
}

type countCmd struct {
	baseRegistryCmd
	replyCh chan int
}

type shutdownCmd struct {
	baseRegistryCmd
}

// Registry tracks every open subscriber connection and multicasts events
// to all of them. All access paths (request handlers registering, read
// pumps unregistering on disconnect, the publish workflow broadcasting)
// funnel through one command channel.
type Registry struct {
	cmdCh   chan registryCmd
	clients map[uuid.UUID]*clientWriter
	done    chan struct{}
}

// NewRegistry creates a registry and starts its actor goroutine.
func NewRegistry() *Registry {
	r := &Registry{
		cmdCh:   make(chan registryCmd, 256),
		clients: make(map[uuid.UUID]*clientWriter),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Register adds a connection and returns its handle. The connection
// immediately receives a connected acknowledgment so the client can detect
// connectivity. Returns uuid.Nil if the registry is already shut down.
func (r *Registry) Register(conn Conn) uuid.UUID {
	replyCh := make(chan uuid.UUID, 1)
	select {
	case r.cmdCh <- registerCmd{conn: conn, replyCh: replyCh}:
	case <-r.done:
		return uuid.Nil
	}

	select {
	case handle := <-replyCh:
		return handle
	case <-r.done:
		return uuid.Nil
	}
}

// Unregister removes a connection. Idempotent: safe to call from both the
// disconnect path and the failed-write path.
func (r *Registry) Unregister(handle uuid.UUID) {
	select {
	case r.cmdCh <- unregisterCmd{handle: handle}:
	case <-r.done:
	}
}

// Broadcast serializes the event once and delivers it to every currently
// registered connection. A failing connection is dropped as a side effect;
// delivery to the others is unaffected. The only error returned is a
// serialization failure; delivery failures are internal.
func (r *Registry) Broadcast(event string, payload any) error {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("marshal broadcast event: %w", err)
	}

	select {
	case r.cmdCh <- broadcastCmd{data: data}:
	case <-r.done:
	}
	return nil
}

// Count returns the number of live connections. Operational visibility
// only. Returns 0 after shutdown.
func (r *Registry) Count() int {
	replyCh := make(chan int, 1)
	select {
	case r.cmdCh <- countCmd{replyCh: replyCh}:
	case <-r.done:
		return 0
	}

	select {
	case count := <-replyCh:
		return count
	case <-r.done:
		return 0
	}
}

// Shutdown closes every connection and stops the actor goroutine.
func (r *Registry) Shutdown() {
	select {
	case r.cmdCh <- shutdownCmd{}:
	case <-r.done:
		return
	}
	<-r.done
}

func (r *Registry) run() {
	defer close(r.done)

	for cmd := range r.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			c.replyCh <- r.handleRegister(c.conn)
		case unregisterCmd:
			r.drop(c.handle, "unregistered")
		case broadcastCmd:
			r.handleBroadcast(c.data)
		case countCmd:
			c.replyCh <- len(r.clients)
		case shutdownCmd:
			r.handleShutdown()
			return
		}
	}
}

func (r *Registry) handleRegister(conn Conn) uuid.UUID {
	handle := uuid.New()
	cw := newClientWriter(handle, conn, r.Unregister)
	r.clients[handle] = cw

	ack, err := json.Marshal(Envelope{
		Event: EventConnected,
		Data:  ConnectedPayload{Timestamp: time.Now().UTC()},
	})
	if err == nil {
		cw.enqueue(ack)
	}

	slog.Debug("subscriber registered", "handle", handle, "total", len(r.clients))
	return handle
}

func (r *Registry) handleBroadcast(data []byte) {
	// Saturated send buffers are collected first: dropping while ranging
	// would mutate the map under iteration.
	var saturated []uuid.UUID
	for handle, cw := range r.clients {
		if !cw.enqueue(data) {
			saturated = append(saturated, handle)
		}
	}
	for _, handle := range saturated {
		r.drop(handle, "send buffer full")
	}
}

// drop removes and stops one connection. No-op for unknown handles, which
// makes unregistration idempotent.
func (r *Registry) drop(handle uuid.UUID, reason string) {
	cw, exists := r.clients[handle]
	if !exists {
		return
	}
	cw.stop()
	delete(r.clients, handle)
	slog.Debug("subscriber dropped", "handle", handle, "reason", reason, "remaining", len(r.clients))
}

func (r *Registry) handleShutdown() {
	for handle, cw := range r.clients {
		cw.stop()
		delete(r.clients, handle)
	}
	slog.Info("broadcast registry stopped")
}
