package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one live feed connection belonging to a user.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	userID string
	send   chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

// Run serves the connection until the peer goes away, ctx ends or the hub
// drops the client. The feed is one-way; anything the peer sends is
// discarded.
func (c *Client) Run(ctx context.Context) {
	ctx = c.conn.CloseRead(ctx)

	c.hub.Register(c)
	defer c.hub.Unregister(c)

	status, reason := c.writeLoop(ctx)
	c.conn.Close(status, reason)
}

func (c *Client) writeLoop(ctx context.Context) (ws.StatusCode, string) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return ws.StatusGoingAway, "server shutting down"
			}
			if err := c.write(ctx, msg); err != nil {
				return ws.StatusInternalError, "write failed"
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return ws.StatusPolicyViolation, "ping timeout"
			}
		case <-ctx.Done():
			return ws.StatusNormalClosure, ""
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}
