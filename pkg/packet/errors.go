package packet

import "errors"

// Sentinel errors for packet encoding and decoding.
var (
	// ErrBufferOverflow indicates a write or copy would exceed the capacity of the buffer.
	ErrBufferOverflow = errors.New("buffer overflow")

	// ErrValueOutOfRange indicates an integer does not fit the field it is written to.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrMalformedVarInt indicates a variable byte integer did not terminate within 4 bytes.
	ErrMalformedVarInt = errors.New("malformed variable byte integer")

	// ErrTruncatedPacket indicates a read needs more bytes than remain in the packet.
	ErrTruncatedPacket = errors.New("truncated packet")

	// ErrStringTooLong indicates a length-prefixed field exceeds 65535 bytes.
	ErrStringTooLong = errors.New("byte string exceeds 65535 bytes")

	// ErrMalformedPacket indicates the packet structure is invalid.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrInvalidPacketType indicates an unexpected or reserved packet type.
	ErrInvalidPacketType = errors.New("invalid packet type")

	// ErrInvalidQoS indicates an invalid QoS level.
	ErrInvalidQoS = errors.New("invalid QoS level")

	// ErrInvalidProtocol indicates an unrecognized protocol name or level.
	ErrInvalidProtocol = errors.New("invalid protocol name or level")

	// ErrInvalidPropertyID indicates an unknown property identifier.
	ErrInvalidPropertyID = errors.New("invalid property identifier")

	// ErrPropertyRunOpen indicates a property run was started twice, or a
	// packet was finalized with a property run still open.
	ErrPropertyRunOpen = errors.New("property run already open")

	// ErrNoPropertyRun indicates a property operation outside a property run.
	ErrNoPropertyRun = errors.New("no property run open")

	// ErrPacketFinalized indicates a write to a packet that was already encoded.
	ErrPacketFinalized = errors.New("packet already finalized")

	// ErrNotReadable indicates a read from a packet that is being assembled.
	ErrNotReadable = errors.New("packet is not a decoded view")
)
