package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// fakeConnection records what is sent to it and replays scripted frames.
type fakeConnection struct {
	mu      sync.Mutex
	inbound chan []byte
	sent    []any
	failing bool
	closed  bool
}

func newFakeConnection(frames ...string) *fakeConnection {
	c := &fakeConnection{inbound: make(chan []byte, len(frames)+8)}
	for _, f := range frames {
		c.inbound <- []byte(f)
	}
	return c
}

func (c *fakeConnection) push(v any) {
	b, _ := json.Marshal(v)
	c.inbound <- b
}

// hangUp makes the next Receive report a clean disconnect.
func (c *fakeConnection) hangUp() {
	close(c.inbound)
}

func (c *fakeConnection) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame, ok := <-c.inbound:
		if !ok {
			return nil, io.EOF
		}
		return frame, nil
	}
}

func (c *fakeConnection) Send(_ context.Context, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing || c.closed {
		return fmt.Errorf("broken pipe")
	}
	c.sent = append(c.sent, payload)
	return nil
}

func (c *fakeConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConnection) Sent() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.sent...)
}
