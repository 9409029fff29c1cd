package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline     = 5 * time.Second
	pingInterval      = 30 * time.Second
	pongDeadline      = 60 * time.Second
	messageBufferSize = 16
)

// wsWriter adapts a websocket connection to the session.Sink contract:
// a buffered send channel drained by one goroutine, so the session actor
// never blocks on a slow client. Keepalive pings ride the same goroutine.
type wsWriter struct {
	connection  *websocket.Conn
	clock       clockwork.Clock
	sendChannel chan []byte
	doneChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func newWSWriter(connection *websocket.Conn, clock clockwork.Clock) *wsWriter {
	cw := &wsWriter{
		connection:  connection,
		clock:       clock,
		sendChannel: make(chan []byte, messageBufferSize),
		doneChannel: make(chan struct{}),
	}
	cw.configurePongHandler()
	cw.wg.Add(1)
	go cw.run()
	return cw
}

// Send queues a message without blocking. False means the buffer is full
// and the session should evict this client.
func (cw *wsWriter) Send(data []byte) bool {
	select {
	case cw.sendChannel <- data:
		return true
	default:
		return false
	}
}

// Close sends a close frame with the given reason (when non-empty) and
// tears the connection down. Safe to call more than once.
func (cw *wsWriter) Close(reason string) {
	cw.stopOnce.Do(func() {
		// Signal the run goroutine to exit before writing the close
		// frame; this prevents concurrent writes to the connection.
		close(cw.doneChannel)
		cw.wg.Wait()

		if reason != "" {
			closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
			cw.updateWriteDeadline()
			_ = cw.connection.WriteMessage(websocket.CloseMessage, closeMsg)
		}

		_ = cw.connection.Close()
	})
}

func (cw *wsWriter) run() {
	ticker := cw.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer cw.wg.Done()

	for {
		select {
		case msg := <-cw.sendChannel:
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.Chan():
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-cw.doneChannel:
			return
		}
	}
}

func (cw *wsWriter) configurePongHandler() {
	cw.updateReadDeadline()
	cw.connection.SetPongHandler(func(string) error {
		cw.updateReadDeadline()
		return nil
	})
}

func (cw *wsWriter) updateWriteDeadline() {
	_ = cw.connection.SetWriteDeadline(cw.clock.Now().Add(writeDeadline))
}

func (cw *wsWriter) updateReadDeadline() {
	_ = cw.connection.SetReadDeadline(cw.clock.Now().Add(pongDeadline))
}
