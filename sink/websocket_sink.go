package sink

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketSink is the contract.Connection of a gorilla socket.
// gorilla allows one concurrent writer, so every write holds mu.
type WebsocketSink struct {
	mu           sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
	closeOnce    sync.Once
}

func NewWebsocketSink(conn *websocket.Conn, writeTimeout time.Duration, readLimit int64) *WebsocketSink {
	conn.SetReadLimit(readLimit)
	return &WebsocketSink{conn: conn, writeTimeout: writeTimeout}
}

// Send writes payload as one JSON text frame.
func (s *WebsocketSink) Send(ctx context.Context, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(payload)
}

// Receive blocks until the next data frame. A close handshake from the client
// is reported as io.EOF. Canceling ctx unblocks the read.
func (s *WebsocketSink) Receive(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	_, frame, err := s.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
			return nil, io.EOF
		}
		return nil, err
	}
	return frame, nil
}

// Close says goodbye to the client then drops the socket. Safe to call twice.
func (s *WebsocketSink) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
			time.Now().Add(s.writeTimeout),
		)
		s.mu.Unlock()
		err = s.conn.Close()
	})
	return err
}
