// Package transport dials the byte streams an MQTT client runs over.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// ErrUnsupportedScheme is returned by Dial for an unknown URL scheme.
var ErrUnsupportedScheme = errors.New("transport: unsupported scheme")

// Config holds dial configuration.
type Config struct {
	// DialTimeout bounds connection setup when ctx has no deadline. Default: 10s.
	DialTimeout time.Duration

	// Subprotocol is the WebSocket subprotocol requested. Default: "mqtt".
	Subprotocol string
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DialTimeout: 10 * time.Second,
		Subprotocol: "mqtt",
	}
}

func (c *Config) withDefaults() *Config {
	out := DefaultConfig()
	if c == nil {
		return out
	}
	if c.DialTimeout > 0 {
		out.DialTimeout = c.DialTimeout
	}
	if c.Subprotocol != "" {
		out.Subprotocol = c.Subprotocol
	}
	return out
}

// Dial connects to the server named by rawURL. Supported schemes are
// tcp:// (also mqtt://), ws:// and wss://. A TCP URL without a port uses 1883.
func Dial(ctx context.Context, rawURL string, cfg *Config) (net.Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("transport: parse %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "tcp", "mqtt":
		return DialTCP(ctx, hostPort(u, "1883"), cfg)
	case "ws", "wss":
		return DialWebSocket(ctx, u.String(), cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func hostPort(u *url.URL, defaultPort string) string {
	if u.Port() != "" {
		return u.Host
	}
	return net.JoinHostPort(u.Hostname(), defaultPort)
}

// dialContext applies the dial timeout when ctx has no deadline.
func dialContext(ctx context.Context, cfg *Config) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, cfg.DialTimeout)
	}
	return context.WithCancel(ctx)
}
