package transport

import (
	"context"
	"fmt"
	"net"
)

// DialTCP opens a TCP connection to addr.
func DialTCP(ctx context.Context, addr string, cfg *Config) (net.Conn, error) {
	cfg = cfg.withDefaults()
	ctx, cancel := dialContext(ctx, cfg)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial tcp %s: %w", addr, err)
	}
	return conn, nil
}
