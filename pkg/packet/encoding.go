package packet

import "encoding/binary"

// EncodeVarInt encodes a variable byte integer into buf, least significant
// group first, and returns the number of bytes written.
// MQTT 5.0 Section 1.5.5
func EncodeVarInt(buf []byte, value uint32) (int, error) {
	if value > MaxRemainingLength {
		return 0, ErrValueOutOfRange
	}
	if len(buf) < VarIntSize(value) {
		return 0, ErrBufferOverflow
	}

	i := 0
	for {
		encodedByte := byte(value & 0x7F)
		value >>= 7
		if value > 0 {
			encodedByte |= 0x80
		}
		buf[i] = encodedByte
		i++
		if value == 0 {
			return i, nil
		}
	}
}

// DecodeVarInt decodes a variable byte integer from buf.
// It returns the value and the number of bytes consumed. A fourth byte with
// the continuation bit set yields ErrMalformedVarInt; running out of input
// first yields ErrTruncatedPacket.
func DecodeVarInt(buf []byte) (value uint32, n int, err error) {
	var multiplier uint32 = 1

	for i := 0; i < MaxVarIntSize; i++ {
		if i >= len(buf) {
			return 0, 0, ErrTruncatedPacket
		}
		encodedByte := buf[i]
		value += uint32(encodedByte&0x7F) * multiplier

		if encodedByte&0x80 == 0 {
			return value, i + 1, nil
		}
		multiplier *= 128
	}

	return 0, 0, ErrMalformedVarInt
}

// VarIntSize returns the number of bytes needed to encode a value as a variable byte integer.
func VarIntSize(value uint32) int {
	switch {
	case value < 128:
		return 1
	case value < 16384:
		return 2
	case value < 2097152:
		return 3
	default:
		return 4
	}
}

// EncodeUint16 encodes a 16-bit unsigned integer in big-endian order.
func EncodeUint16(buf []byte, value uint16) (int, error) {
	if len(buf) < 2 {
		return 0, ErrBufferOverflow
	}
	binary.BigEndian.PutUint16(buf, value)
	return 2, nil
}

// DecodeUint16 decodes a 16-bit unsigned integer from big-endian bytes.
func DecodeUint16(buf []byte) (uint16, int, error) {
	if len(buf) < 2 {
		return 0, 0, ErrTruncatedPacket
	}
	return binary.BigEndian.Uint16(buf), 2, nil
}

// EncodeUint32 encodes a 32-bit unsigned integer in big-endian order.
func EncodeUint32(buf []byte, value uint32) (int, error) {
	if len(buf) < 4 {
		return 0, ErrBufferOverflow
	}
	binary.BigEndian.PutUint32(buf, value)
	return 4, nil
}

// DecodeUint32 decodes a 32-bit unsigned integer from big-endian bytes.
func DecodeUint32(buf []byte) (uint32, int, error) {
	if len(buf) < 4 {
		return 0, 0, ErrTruncatedPacket
	}
	return binary.BigEndian.Uint32(buf), 4, nil
}
