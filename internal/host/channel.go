package host

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrChannelClosed = errors.New("host channel closed")

// Channel is the two-way link to the embedding host.
type Channel interface {
	Send(ctx context.Context, m Outbound) error
	OnReceive(func(Inbound))
}

const writeWait = 10 * time.Second

// WSChannel carries host messages as JSON text frames over a WebSocket.
type WSChannel struct {
	conn *websocket.Conn
	log  *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	handler func(Inbound)
	closed  bool
}

func NewWSChannel(conn *websocket.Conn, log *slog.Logger) *WSChannel {
	if log == nil {
		log = slog.Default()
	}
	return &WSChannel{conn: conn, log: log}
}

func (c *WSChannel) OnReceive(h func(Inbound)) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *WSChannel) Send(ctx context.Context, m Outbound) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrChannelClosed
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(deadline)
	return c.conn.WriteJSON(m)
}

// Serve reads host messages until the connection fails or ctx is done.
// Malformed messages are logged and skipped.
func (c *WSChannel) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		m, err := DecodeInbound(data)
		if err != nil {
			c.log.Debug("ignoring host message", "err", err)
			continue
		}

		c.mu.Lock()
		h := c.handler
		c.mu.Unlock()
		if h != nil {
			h(m)
		}
	}
}

func (c *WSChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}
