package client

import (
	"log/slog"
	"time"

	"github.com/bromq-dev/mqttc/pkg/packet"
)

// Config holds client configuration.
type Config struct {
	// KeepAlive is the keep-alive interval in seconds sent in CONNECT (0 = disabled).
	// The client does not ping on its own: when non-zero the caller must send
	// a packet (Ping will do) at least this often, or the server closes the
	// connection after one and a half intervals.
	KeepAlive uint16

	// SessionExpiry is the session expiry interval in seconds. The property
	// is only sent when non-zero.
	SessionExpiry uint32

	// CleanStart asks the server to discard any existing session.
	CleanStart bool

	// TxBufferSize is the capacity of the transmit buffer. It bounds the
	// largest packet the client can send.
	TxBufferSize int

	// RxBufferSize is the capacity of the receive buffer. It bounds the
	// largest packet the client can receive.
	RxBufferSize int

	// CommandTimeout bounds lock acquisition and response waits when the
	// caller's context has no deadline (0 = wait for the context only).
	CommandTimeout time.Duration

	// Logger is the slog.Logger to use (default: slog.Default()).
	Logger *slog.Logger

	// Metrics receives packet counters (optional).
	Metrics *Metrics

	// Credentials, if set, is consulted on every Connect and overrides
	// values set with SetAuth.
	Credentials CredentialSource

	// OnMessage is called from the read loop for every inbound PUBLISH.
	// It must not block.
	OnMessage func(*packet.Publish)
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		KeepAlive:      60,
		CleanStart:     true,
		TxBufferSize:   4096,
		RxBufferSize:   4096,
		CommandTimeout: 10 * time.Second,
	}
}

// withDefaults fills zero-valued sizes and the logger.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TxBufferSize < packet.HeaderReserve {
		c.TxBufferSize = def.TxBufferSize
	}
	if c.RxBufferSize < packet.HeaderReserve {
		c.RxBufferSize = def.RxBufferSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
