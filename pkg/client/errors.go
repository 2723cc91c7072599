package client

import (
	"errors"
	"fmt"

	"github.com/bromq-dev/mqttc/pkg/packet"
)

var (
	// ErrNotConnected is returned when a command needs an accepted connection.
	ErrNotConnected = errors.New("client: not connected")

	// ErrAlreadyConnected is returned by Connect once the server has
	// accepted the connection.
	ErrAlreadyConnected = errors.New("client: already connected")

	// ErrClosed is returned once the client has been closed or disconnected.
	ErrClosed = errors.New("client: closed")

	// ErrConnectionRefused is returned when the server rejects CONNECT.
	// Unwrap a *ConnackError to find the reason code.
	ErrConnectionRefused = errors.New("client: connection refused")

	// ErrServerDisconnected is returned after the server sent DISCONNECT.
	ErrServerDisconnected = errors.New("client: disconnected by server")
)

// ConnackError carries the reason code of a refused connection.
type ConnackError struct {
	ReasonCode packet.ReasonCode
	Reason     string // Reason String property, if the server sent one
}

func (e *ConnackError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("client: connection refused (0x%02X %s): %s", byte(e.ReasonCode), e.ReasonCode, e.Reason)
	}
	return fmt.Sprintf("client: connection refused (0x%02X %s)", byte(e.ReasonCode), e.ReasonCode)
}

func (e *ConnackError) Unwrap() error {
	return ErrConnectionRefused
}

// codecErrors are the packet package failures counted as codec errors.
var codecErrors = []error{
	packet.ErrBufferOverflow,
	packet.ErrValueOutOfRange,
	packet.ErrMalformedVarInt,
	packet.ErrTruncatedPacket,
	packet.ErrStringTooLong,
	packet.ErrMalformedPacket,
	packet.ErrInvalidPacketType,
	packet.ErrInvalidQoS,
	packet.ErrInvalidPropertyID,
}

func isCodecError(err error) bool {
	for _, target := range codecErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
