package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DialWebSocket opens an MQTT-over-WebSocket connection to a ws:// or
// wss:// URL. Every write is sent as one binary message; reads see the
// binary messages from the server as a continuous byte stream.
func DialWebSocket(ctx context.Context, rawURL string, cfg *Config) (net.Conn, error) {
	cfg = cfg.withDefaults()
	ctx, cancel := dialContext(ctx, cfg)
	defer cancel()

	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: cfg.DialTimeout,
		Subprotocols:     []string{cfg.Subprotocol},
	}
	ws, resp, err := dialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("transport: dial websocket %s: %w (status %d)", rawURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("transport: dial websocket %s: %w", rawURL, err)
	}
	if ws.Subprotocol() != cfg.Subprotocol {
		ws.Close()
		return nil, fmt.Errorf("transport: dial websocket %s: server did not accept subprotocol %q", rawURL, cfg.Subprotocol)
	}
	return &wsConn{Conn: ws}, nil
}

// wsConn wraps websocket.Conn to implement net.Conn.
type wsConn struct {
	*websocket.Conn
	reader io.Reader
	rmu    sync.Mutex
	wmu    sync.Mutex
}

func (c *wsConn) Read(p []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	for {
		if c.reader == nil {
			messageType, r, err := c.Conn.NextReader()
			if err != nil {
				return 0, err
			}
			// MQTT over WebSocket uses binary messages
			if messageType != websocket.BinaryMessage {
				continue
			}
			c.reader = r
		}

		n, err := c.reader.Read(p)
		if err == io.EOF {
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if err := c.Conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) SetDeadline(t time.Time) error {
	if err := c.SetReadDeadline(t); err != nil {
		return err
	}
	return c.SetWriteDeadline(t)
}
