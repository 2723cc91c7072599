package packet

type state uint8

const (
	stateIdle state = iota
	stateWriting
	stateProperties
	stateFinalized
	stateReading
)

// Packet is one control packet, either being assembled into a caller-owned
// buffer or decoded as a read-only view over a received frame.
//
// An outbound Packet starts with HeaderReserve bytes held back for the fixed
// header. Fields are written sequentially; an optional property run is
// bracketed by StartPropertyRun and StopPropertyRun; Encode finalizes the
// frame exactly once. A Packet must not be used after an encode error.
type Packet struct {
	control byte
	buf     Buffer
	frame   Reservation
	props   Reservation
	state   state

	frameStart int
	frameEnd   int
	remaining  uint32
}

// NewPacket starts an outbound packet of type t over buf. Flags are the low
// 4 bits of the control byte and cannot be changed afterwards.
func NewPacket(t Type, flags byte, buf []byte) (*Packet, error) {
	p := new(Packet)
	if err := p.Reset(t, flags, buf); err != nil {
		return nil, err
	}
	return p, nil
}

// Reset reinitializes p as a new outbound packet, allowing a Packet value
// to be reused across sends.
func (p *Packet) Reset(t Type, flags byte, buf []byte) error {
	if !t.Valid() {
		return ErrInvalidPacketType
	}
	if len(buf) < HeaderReserve {
		return ErrBufferOverflow
	}
	*p = Packet{control: controlByte(t, flags), state: stateWriting}
	p.buf.Reset(buf)
	_ = p.buf.WriteUint8(p.control)
	p.frame, _ = p.buf.Reserve()
	return nil
}

// Type returns the packet type.
func (p *Packet) Type() Type { return Type(p.control >> 4) }

// Flags returns the low 4 bits of the control byte.
func (p *Packet) Flags() byte { return p.control & 0x0F }

// Len returns the number of variable header and payload bytes written so
// far, or the remaining length of a decoded packet.
func (p *Packet) Len() int {
	switch p.state {
	case stateIdle:
		return 0
	case stateReading, stateFinalized:
		return int(p.remaining)
	default:
		return p.buf.Offset() - HeaderReserve
	}
}

// FrameLength returns the total encoded size of the frame. It is only
// meaningful after Encode or for a decoded packet.
func (p *Packet) FrameLength() int {
	return p.frameEnd - p.frameStart
}

// Frame returns the finished frame, or nil if the packet is not finalized.
func (p *Packet) Frame() []byte {
	if p.state != stateFinalized && p.state != stateReading {
		return nil
	}
	return p.buf.buf[p.frameStart:p.frameEnd]
}

func (p *Packet) writable() error {
	switch p.state {
	case stateWriting:
		return nil
	case stateProperties:
		return ErrPropertyRunOpen
	case stateIdle:
		return ErrInvalidPacketType
	default:
		return ErrPacketFinalized
	}
}

// WriteUint8 writes a single byte.
func (p *Packet) WriteUint8(v byte) error {
	if err := p.writable(); err != nil {
		return err
	}
	return p.buf.WriteUint8(v)
}

// WriteUint16 writes a big-endian 16-bit integer.
func (p *Packet) WriteUint16(v uint16) error {
	if err := p.writable(); err != nil {
		return err
	}
	return p.buf.WriteUint16(v)
}

// WriteUint32 writes a big-endian 32-bit integer.
func (p *Packet) WriteUint32(v uint32) error {
	if err := p.writable(); err != nil {
		return err
	}
	return p.buf.WriteUint32(v)
}

// WriteVarInt writes a variable byte integer.
func (p *Packet) WriteVarInt(v uint32) error {
	if err := p.writable(); err != nil {
		return err
	}
	_, err := p.buf.WriteVarInt(v)
	return err
}

// WriteBytes writes a 2-byte length prefix followed by data.
func (p *Packet) WriteBytes(data []byte) error {
	if err := p.writable(); err != nil {
		return err
	}
	_, err := p.buf.WriteBytes(data)
	return err
}

// WriteString writes a 2-byte length prefix followed by s.
func (p *Packet) WriteString(s string) error {
	if err := p.writable(); err != nil {
		return err
	}
	_, err := p.buf.WriteString(s)
	return err
}

// WriteRaw writes data with no length prefix, as used for PUBLISH payloads.
func (p *Packet) WriteRaw(data []byte) error {
	if err := p.writable(); err != nil {
		return err
	}
	return p.buf.WriteRaw(data)
}

// Encode finalizes the frame: the remaining length is written into the
// header reservation and the control byte is moved up against it, so the
// frame starts up to 3 bytes into the buffer. It returns the frame, which
// is a view into the buffer passed to NewPacket.
func (p *Packet) Encode() ([]byte, error) {
	if err := p.writable(); err != nil {
		return nil, err
	}
	remaining, err := p.buf.contentLen(p.frame)
	if err != nil {
		return nil, err
	}
	start, err := p.buf.PatchPrefix(p.frame, 1)
	if err != nil {
		return nil, err
	}
	p.remaining = remaining
	p.frameStart = start
	p.frameEnd = p.buf.Offset()
	p.state = stateFinalized
	return p.buf.buf[p.frameStart:p.frameEnd], nil
}

// Decode parses the fixed header at the start of buf and returns a packet
// positioned at the first byte of the variable header. Bytes in buf beyond
// the frame are ignored.
func Decode(buf []byte) (*Packet, error) {
	p := new(Packet)
	if err := p.Parse(buf); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse is Decode into an existing Packet.
func (p *Packet) Parse(buf []byte) error {
	if len(buf) < 2 {
		return ErrTruncatedPacket
	}
	t := Type(buf[0] >> 4)
	if !t.Valid() {
		return ErrInvalidPacketType
	}
	remaining, n, err := DecodeVarInt(buf[1:])
	if err != nil {
		return err
	}
	end := 1 + n + int(remaining)
	if end > len(buf) {
		return ErrTruncatedPacket
	}

	*p = Packet{
		control:   buf[0],
		state:     stateReading,
		frameEnd:  end,
		remaining: remaining,
	}
	p.buf.Reset(buf[:end])
	p.buf.pos = 1 + n
	return nil
}

// RemainingLength returns the remaining length from the fixed header of a
// decoded packet.
func (p *Packet) RemainingLength() uint32 { return p.remaining }

// Unread returns the number of bytes not yet read from a decoded packet.
func (p *Packet) Unread() int {
	if p.state != stateReading {
		return 0
	}
	return p.buf.Remaining()
}

func (p *Packet) readable() error {
	if p.state != stateReading {
		return ErrNotReadable
	}
	return nil
}

// ReadUint8 reads a single byte.
func (p *Packet) ReadUint8() (byte, error) {
	if err := p.readable(); err != nil {
		return 0, err
	}
	return p.buf.ReadUint8()
}

// ReadUint16 reads a big-endian 16-bit integer.
func (p *Packet) ReadUint16() (uint16, error) {
	if err := p.readable(); err != nil {
		return 0, err
	}
	return p.buf.ReadUint16()
}

// ReadUint32 reads a big-endian 32-bit integer.
func (p *Packet) ReadUint32() (uint32, error) {
	if err := p.readable(); err != nil {
		return 0, err
	}
	return p.buf.ReadUint32()
}

// ReadVarInt reads a variable byte integer.
func (p *Packet) ReadVarInt() (uint32, error) {
	if err := p.readable(); err != nil {
		return 0, err
	}
	return p.buf.ReadVarInt()
}

// ReadBytes copies a length-prefixed byte string into dst and returns its length.
func (p *Packet) ReadBytes(dst []byte) (int, error) {
	if err := p.readable(); err != nil {
		return 0, err
	}
	return p.buf.ReadBytes(dst)
}

// ReadView returns a length-prefixed byte string as a view into the frame.
func (p *Packet) ReadView() ([]byte, error) {
	if err := p.readable(); err != nil {
		return nil, err
	}
	return p.buf.ReadView()
}

// ReadString reads a length-prefixed byte string into a new string.
func (p *Packet) ReadString() (string, error) {
	v, err := p.ReadView()
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// ReadRemaining returns every unread byte of a decoded packet as a view.
func (p *Packet) ReadRemaining() ([]byte, error) {
	if err := p.readable(); err != nil {
		return nil, err
	}
	return p.buf.ReadRaw(p.buf.Remaining())
}

// encodeFrame assembles a frame of type t over buf, with body writing the
// variable header and payload.
func encodeFrame(buf []byte, t Type, flags byte, body func(p *Packet) error) ([]byte, error) {
	var p Packet
	if err := p.Reset(t, flags, buf); err != nil {
		return nil, err
	}
	if err := body(&p); err != nil {
		return nil, err
	}
	return p.Encode()
}

// expect checks that p is a decoded packet of type t.
func (p *Packet) expect(t Type) error {
	if err := p.readable(); err != nil {
		return err
	}
	if p.Type() != t {
		return ErrInvalidPacketType
	}
	return nil
}
