package packet

import "encoding/binary"

// Buffer is a fixed-capacity byte region with a single cursor. Writes and
// reads advance the cursor and are bounds-checked against the capacity; the
// underlying slice is never grown or replaced.
//
// Length fields whose value is unknown until their content is written are
// handled with Reserve, followed by either Compact or PatchPrefix once the
// content is in place.
type Buffer struct {
	buf []byte
	pos int
}

// Reservation marks MaxVarIntSize bytes held back for a variable byte
// integer length field.
type Reservation struct {
	start int
}

// NewBuffer returns a Buffer over buf with the cursor at offset 0.
func NewBuffer(buf []byte) *Buffer {
	return &Buffer{buf: buf}
}

// Reset repositions b over buf with the cursor at offset 0.
func (b *Buffer) Reset(buf []byte) {
	b.buf = buf
	b.pos = 0
}

// Offset returns the cursor position.
func (b *Buffer) Offset() int { return b.pos }

// Cap returns the fixed capacity of the buffer.
func (b *Buffer) Cap() int { return len(b.buf) }

// Remaining returns the number of bytes between the cursor and the end of the buffer.
func (b *Buffer) Remaining() int { return len(b.buf) - b.pos }

// Bytes returns the bytes before the cursor.
func (b *Buffer) Bytes() []byte { return b.buf[:b.pos] }

// grow returns the next n bytes for writing and advances the cursor.
func (b *Buffer) grow(n int) ([]byte, error) {
	if n > len(b.buf)-b.pos {
		return nil, ErrBufferOverflow
	}
	s := b.buf[b.pos : b.pos+n]
	b.pos += n
	return s, nil
}

// take returns the next n bytes for reading and advances the cursor.
func (b *Buffer) take(n int) ([]byte, error) {
	if n > len(b.buf)-b.pos {
		return nil, ErrTruncatedPacket
	}
	s := b.buf[b.pos : b.pos+n]
	b.pos += n
	return s, nil
}

// WriteUint8 writes a single byte.
func (b *Buffer) WriteUint8(v byte) error {
	s, err := b.grow(1)
	if err != nil {
		return err
	}
	s[0] = v
	return nil
}

// WriteUint16 writes v in big-endian order.
func (b *Buffer) WriteUint16(v uint16) error {
	s, err := b.grow(2)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(s, v)
	return nil
}

// WriteUint32 writes v in big-endian order.
func (b *Buffer) WriteUint32(v uint32) error {
	s, err := b.grow(4)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(s, v)
	return nil
}

// WriteVarInt writes v as a variable byte integer and returns its encoded size.
func (b *Buffer) WriteVarInt(v uint32) (int, error) {
	if v > MaxRemainingLength {
		return 0, ErrValueOutOfRange
	}
	s, err := b.grow(VarIntSize(v))
	if err != nil {
		return 0, err
	}
	return EncodeVarInt(s, v)
}

// WriteBytes writes data behind a 2-byte big-endian length prefix and
// returns the total number of bytes written.
func (b *Buffer) WriteBytes(data []byte) (int, error) {
	if len(data) > 0xFFFF {
		return 0, ErrStringTooLong
	}
	s, err := b.grow(2 + len(data))
	if err != nil {
		return 0, err
	}
	binary.BigEndian.PutUint16(s, uint16(len(data)))
	copy(s[2:], data)
	return len(s), nil
}

// WriteString is WriteBytes for a string.
func (b *Buffer) WriteString(str string) (int, error) {
	if len(str) > 0xFFFF {
		return 0, ErrStringTooLong
	}
	s, err := b.grow(2 + len(str))
	if err != nil {
		return 0, err
	}
	binary.BigEndian.PutUint16(s, uint16(len(str)))
	copy(s[2:], str)
	return len(s), nil
}

// WriteRaw writes data with no length prefix.
func (b *Buffer) WriteRaw(data []byte) error {
	s, err := b.grow(len(data))
	if err != nil {
		return err
	}
	copy(s, data)
	return nil
}

// ReadUint8 reads a single byte.
func (b *Buffer) ReadUint8() (byte, error) {
	s, err := b.take(1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

// ReadUint16 reads a big-endian 16-bit integer.
func (b *Buffer) ReadUint16() (uint16, error) {
	s, err := b.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(s), nil
}

// ReadUint32 reads a big-endian 32-bit integer.
func (b *Buffer) ReadUint32() (uint32, error) {
	s, err := b.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(s), nil
}

// ReadVarInt reads a variable byte integer.
func (b *Buffer) ReadVarInt() (uint32, error) {
	v, n, err := DecodeVarInt(b.buf[b.pos:])
	if err != nil {
		return 0, err
	}
	b.pos += n
	return v, nil
}

// ReadView reads a length-prefixed byte string and returns it as a view
// into the buffer. The view is only valid while the buffer is.
func (b *Buffer) ReadView() ([]byte, error) {
	n, _, err := DecodeUint16(b.buf[b.pos:])
	if err != nil {
		return nil, err
	}
	if 2+int(n) > len(b.buf)-b.pos {
		return nil, ErrTruncatedPacket
	}
	b.pos += 2
	s, _ := b.take(int(n))
	return s, nil
}

// ReadBytes reads a length-prefixed byte string, copies it into dst and
// returns its length. If dst is too small nothing is consumed and
// ErrBufferOverflow is returned.
func (b *Buffer) ReadBytes(dst []byte) (int, error) {
	n, _, err := DecodeUint16(b.buf[b.pos:])
	if err != nil {
		return 0, err
	}
	if 2+int(n) > len(b.buf)-b.pos {
		return 0, ErrTruncatedPacket
	}
	if int(n) > len(dst) {
		return 0, ErrBufferOverflow
	}
	copy(dst, b.buf[b.pos+2:b.pos+2+int(n)])
	b.pos += 2 + int(n)
	return int(n), nil
}

// ReadRaw returns the next n bytes as a view.
func (b *Buffer) ReadRaw(n int) ([]byte, error) {
	return b.take(n)
}

// Reserve holds back MaxVarIntSize bytes at the cursor for a length field
// that is written later by Compact or PatchPrefix.
func (b *Buffer) Reserve() (Reservation, error) {
	r := Reservation{start: b.pos}
	if _, err := b.grow(MaxVarIntSize); err != nil {
		return Reservation{}, err
	}
	return r, nil
}

// contentLen is the number of bytes written after the reservation.
func (b *Buffer) contentLen(r Reservation) (uint32, error) {
	n := b.pos - (r.start + MaxVarIntSize)
	if n < 0 {
		return 0, ErrMalformedPacket
	}
	if n > MaxRemainingLength {
		return 0, ErrValueOutOfRange
	}
	return uint32(n), nil
}

// Compact writes the length of the content following r into the
// reservation and shifts the content left over any unused reserved bytes,
// pulling the cursor back by the same amount. It returns the size of the
// length field.
func (b *Buffer) Compact(r Reservation) (int, error) {
	length, err := b.contentLen(r)
	if err != nil {
		return 0, err
	}
	n, err := EncodeVarInt(b.buf[r.start:], length)
	if err != nil {
		return 0, err
	}
	if gap := MaxVarIntSize - n; gap > 0 {
		copy(b.buf[r.start+n:], b.buf[r.start+MaxVarIntSize:b.pos])
		b.pos -= gap
	}
	return n, nil
}

// PatchPrefix writes the length of the content following r at the end of
// the reservation and moves the lead bytes immediately preceding r right
// so they abut the length field. The content itself does not move. It
// returns the new offset of the first lead byte, where the finished
// structure now starts.
func (b *Buffer) PatchPrefix(r Reservation, lead int) (int, error) {
	if lead > r.start {
		return 0, ErrMalformedPacket
	}
	length, err := b.contentLen(r)
	if err != nil {
		return 0, err
	}
	end := r.start + MaxVarIntSize
	n := VarIntSize(length)
	if _, err := EncodeVarInt(b.buf[end-n:end], length); err != nil {
		return 0, err
	}
	gap := MaxVarIntSize - n
	start := r.start - lead
	if gap > 0 && lead > 0 {
		copy(b.buf[start+gap:], b.buf[start:r.start])
	}
	return start + gap, nil
}
