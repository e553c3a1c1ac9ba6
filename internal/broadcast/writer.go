package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// sendBufferSize bounds how far a slow client may fall behind before
	// it is dropped.
	sendBufferSize = 16

	// writeTimeout caps a single write so a dead TCP peer cannot stall
	// the writer goroutine.
	writeTimeout = 5 * time.Second
)

// Conn is the transport surface the registry needs from a connection.
// *websocket.Conn satisfies it; tests substitute fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// clientWriter owns all writes to one connection. Messages flow through a
// buffered channel so the broadcasting actor never blocks on client I/O,
// and each connection observes events in emission order.
type clientWriter struct {
	handle       uuid.UUID
	conn         Conn
	sendCh       chan []byte
	done         chan struct{}
	stopOnce     sync.Once
	onWriteError func(handle uuid.UUID)
}

func newClientWriter(handle uuid.UUID, conn Conn, onWriteError func(uuid.UUID)) *clientWriter {
	cw := &clientWriter{
		handle:       handle,
		conn:         conn,
		sendCh:       make(chan []byte, sendBufferSize),
		done:         make(chan struct{}),
		onWriteError: onWriteError,
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg := <-cw.sendCh:
			cw.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				// Dead connection discovered mid-delivery: remove it from
				// the registry, never surface the error to the publisher.
				cw.onWriteError(cw.handle)
				return
			}
		case <-cw.done:
			return
		}
	}
}

// enqueue hands a message to the writer goroutine. Returns false when the
// buffer is full, which the registry treats like a failed write.
func (cw *clientWriter) enqueue(data []byte) bool {
	select {
	case cw.sendCh <- data:
		return true
	default:
		return false
	}
}

// stop terminates the writer goroutine and closes the connection. Safe to
// call more than once.
func (cw *clientWriter) stop() {
	cw.stopOnce.Do(func() {
		close(cw.done)
		cw.conn.Close()
	})
}
