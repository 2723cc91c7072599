package packet

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeConnectMinimal(t *testing.T) {
	c := &Connect{ClientID: "abc", KeepAlive: 60, CleanStart: true}
	buf := make([]byte, 64)

	frame, err := c.Encode(buf)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	expected := []byte{
		0x10, 16, // CONNECT, remaining length
		0x00, 0x04, 'M', 'Q', 'T', 'T', // protocol name
		0x05,       // protocol level
		0x02,       // clean start only
		0x00, 0x3C, // keep alive 60
		0x00,                        // properties length
		0x00, 0x03, 'a', 'b', 'c', // client id
	}
	if !bytes.Equal(frame, expected) {
		t.Errorf("Encode() =\n%v\nwant\n%v", frame, expected)
	}

	// One byte of the 4-byte length reservation was used, so the frame
	// starts 3 bytes into the buffer.
	if &frame[0] != &buf[3] {
		t.Errorf("frame does not start at buf[3]")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	c := &Connect{
		ClientID:   "device-17",
		KeepAlive:  30,
		CleanStart: true,
		Username:   "user",
		Password:   []byte("secret"),
		Properties: []Property{Uint32Property(PropSessionExpiry, 3600)},
	}

	a, err := c.Encode(make([]byte, 128))
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Encode(make([]byte, 256))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("two encodes differ:\n%v\n%v", a, b)
	}
}

func TestFrameLengthPerRemainingLengthSize(t *testing.T) {
	for _, size := range []int{0, 100, 127, 128, 16383, 16384, 2097151, 2097152} {
		payload := testPattern(size)
		buf := make([]byte, HeaderReserve+size)

		p, err := NewPacket(TypePublish, 0, buf)
		if err != nil {
			t.Fatal(err)
		}
		if err := p.WriteRaw(payload); err != nil {
			t.Fatalf("size %d: WriteRaw() error: %v", size, err)
		}
		if p.Len() != size {
			t.Errorf("size %d: Len() = %d before finalize", size, p.Len())
		}

		frame, err := p.Encode()
		if err != nil {
			t.Fatalf("size %d: Encode() error: %v", size, err)
		}

		n := VarIntSize(uint32(size))
		if p.FrameLength() != 1+n+size || len(frame) != p.FrameLength() {
			t.Errorf("size %d: frame length = %d (len %d), want %d", size, p.FrameLength(), len(frame), 1+n+size)
		}
		if !bytes.Equal(frame[1+n:], payload) {
			t.Errorf("size %d: gap between length field and payload", size)
		}
		if !bytes.Equal(p.Frame(), frame) {
			t.Errorf("size %d: Frame() differs from Encode() result", size)
		}

		d, err := Decode(frame)
		if err != nil {
			t.Fatalf("size %d: Decode() error: %v", size, err)
		}
		if d.Type() != TypePublish || int(d.RemainingLength()) != size || d.Unread() != size {
			t.Errorf("size %d: decoded type %v remaining %d unread %d", size, d.Type(), d.RemainingLength(), d.Unread())
		}
	}
}

func TestPropertyRunSessionExpiry(t *testing.T) {
	buf := make([]byte, 32)
	p, _ := NewPacket(TypeConnect, 0, buf)

	if err := p.StartPropertyRun(); err != nil {
		t.Fatal(err)
	}
	if err := p.WriteProperty(Uint32Property(PropSessionExpiry, 10)); err != nil {
		t.Fatal(err)
	}
	if got := p.PropertyRunLength(); got != 5 {
		t.Errorf("PropertyRunLength() = %d, want 5", got)
	}
	if err := p.StopPropertyRun(); err != nil {
		t.Fatal(err)
	}
	if got := p.PropertyRunLength(); got != 0 {
		t.Errorf("PropertyRunLength() outside run = %d", got)
	}

	frame, err := p.Encode()
	if err != nil {
		t.Fatal(err)
	}
	expected := []byte{0x10, 0x06, 0x05, 0x11, 0x00, 0x00, 0x00, 0x0A}
	if !bytes.Equal(frame, expected) {
		t.Errorf("frame = %v, want %v", frame, expected)
	}
}

func TestEmptyPropertyRun(t *testing.T) {
	p, _ := NewPacket(TypeDisconnect, 0, make([]byte, 16))
	_ = p.WriteUint8(byte(ReasonSuccess))
	if err := p.WriteProperties(); err != nil {
		t.Fatal(err)
	}
	frame, _ := p.Encode()
	if !bytes.Equal(frame, []byte{0xE0, 0x02, 0x00, 0x00}) {
		t.Errorf("frame = %v", frame)
	}
}

func TestNestedCompaction(t *testing.T) {
	// A property block over 127 bytes needs a 2-byte length while the frame
	// around it needs 3; fields after the block must survive both shifts.
	long := string(testPattern(200))
	payload := testPattern(20000)

	pub := &Publish{
		QoS:      QoS1,
		Topic:    "sensors/temp",
		PacketID: 7,
		Properties: []Property{
			UserProperty("k", long),
			ByteProperty(PropPayloadFormat, 1),
			VarIntProperty(PropSubscriptionID, 300),
		},
		Payload: payload,
	}
	frame, err := pub.Encode(make([]byte, 21000))
	if err != nil {
		t.Fatal(err)
	}

	d, err := Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	if d.FrameLength() != len(frame) {
		t.Errorf("decoded frame length %d, want %d", d.FrameLength(), len(frame))
	}
	got, err := DecodePublish(d)
	if err != nil {
		t.Fatal(err)
	}
	if got.Topic != pub.Topic || got.PacketID != 7 || got.QoS != QoS1 {
		t.Errorf("header = %+v", got)
	}
	if v, ok := got.Properties.Get(PropUserProperty); !ok || string(v.Key) != "k" || string(v.Data) != long {
		t.Errorf("user property lost")
	}
	if v, ok := got.Properties.Uint(PropSubscriptionID); !ok || v != 300 {
		t.Errorf("subscription id = %d, %v", v, ok)
	}
	if !bytes.Equal(got.Payload, payload) {
		t.Errorf("payload corrupted")
	}
}

func TestPacketStateErrors(t *testing.T) {
	t.Run("property outside run", func(t *testing.T) {
		p, _ := NewPacket(TypeConnect, 0, make([]byte, 32))
		if err := p.WriteProperty(Uint32Property(PropSessionExpiry, 1)); !errors.Is(err, ErrNoPropertyRun) {
			t.Errorf("error = %v", err)
		}
		if err := p.StopPropertyRun(); !errors.Is(err, ErrNoPropertyRun) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("field write inside run", func(t *testing.T) {
		p, _ := NewPacket(TypeConnect, 0, make([]byte, 32))
		_ = p.StartPropertyRun()
		if err := p.StartPropertyRun(); !errors.Is(err, ErrPropertyRunOpen) {
			t.Errorf("nested start error = %v", err)
		}
		if err := p.WriteUint16(1); !errors.Is(err, ErrPropertyRunOpen) {
			t.Errorf("write error = %v", err)
		}
		if _, err := p.Encode(); !errors.Is(err, ErrPropertyRunOpen) {
			t.Errorf("encode error = %v", err)
		}
	})

	t.Run("after finalize", func(t *testing.T) {
		p, _ := NewPacket(TypePingreq, 0, make([]byte, 8))
		if _, err := p.Encode(); err != nil {
			t.Fatal(err)
		}
		if err := p.WriteUint8(1); !errors.Is(err, ErrPacketFinalized) {
			t.Errorf("write error = %v", err)
		}
		if _, err := p.Encode(); !errors.Is(err, ErrPacketFinalized) {
			t.Errorf("second encode error = %v", err)
		}
		if _, err := p.ReadUint8(); !errors.Is(err, ErrNotReadable) {
			t.Errorf("read error = %v", err)
		}
	})

	t.Run("decoded packet is read only", func(t *testing.T) {
		p, err := Decode([]byte{0xD0, 0x00})
		if err != nil {
			t.Fatal(err)
		}
		if err := p.WriteUint8(1); !errors.Is(err, ErrPacketFinalized) {
			t.Errorf("write error = %v", err)
		}
	})

	t.Run("bad property rolls back", func(t *testing.T) {
		p, _ := NewPacket(TypeConnect, 0, make([]byte, 32))
		_ = p.StartPropertyRun()
		if err := p.WriteProperty(Property{ID: 0x7F}); !errors.Is(err, ErrInvalidPropertyID) {
			t.Errorf("unknown id error = %v", err)
		}
		if err := p.WriteProperty(Property{ID: PropMaxQoS, Value: 300}); !errors.Is(err, ErrValueOutOfRange) {
			t.Errorf("byte range error = %v", err)
		}
		if err := p.WriteProperty(Property{ID: PropReceiveMax, Value: 70000}); !errors.Is(err, ErrValueOutOfRange) {
			t.Errorf("two byte range error = %v", err)
		}
		if got := p.PropertyRunLength(); got != 0 {
			t.Errorf("PropertyRunLength() = %d after failed writes", got)
		}
	})

	t.Run("buffer capacity", func(t *testing.T) {
		if _, err := NewPacket(TypeConnect, 0, make([]byte, HeaderReserve-1)); !errors.Is(err, ErrBufferOverflow) {
			t.Errorf("short buffer error = %v", err)
		}
		p, _ := NewPacket(TypeConnect, 0, make([]byte, HeaderReserve+1))
		if err := p.WriteUint16(1); !errors.Is(err, ErrBufferOverflow) {
			t.Errorf("overflow error = %v", err)
		}
		if _, err := NewPacket(TypeReserved, 0, make([]byte, 8)); !errors.Is(err, ErrInvalidPacketType) {
			t.Errorf("reserved type error = %v", err)
		}
	})
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		err   error
	}{
		{"empty", nil, ErrTruncatedPacket},
		{"one byte", []byte{0x30}, ErrTruncatedPacket},
		{"short body", []byte{0x30, 0x05, 0x00}, ErrTruncatedPacket},
		{"incomplete length", []byte{0x30, 0x80}, ErrTruncatedPacket},
		{"malformed length", []byte{0x30, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}, ErrMalformedVarInt},
		{"reserved type", []byte{0x00, 0x00}, ErrInvalidPacketType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.input); !errors.Is(err, tt.err) {
				t.Errorf("Decode() error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestDecodeFieldReads(t *testing.T) {
	p, _ := NewPacket(TypePublish, 0, make([]byte, 64))
	_ = p.WriteString("hello")
	_ = p.WriteUint8(0x7F)
	_ = p.WriteUint16(0xBEEF)
	_ = p.WriteUint32(0x01020304)
	_ = p.WriteVarInt(16384)
	frame, err := p.Encode()
	if err != nil {
		t.Fatal(err)
	}

	d, err := Decode(append(frame, 0xEE, 0xEE)) // trailing bytes belong to the next frame
	if err != nil {
		t.Fatal(err)
	}

	dst := make([]byte, 2)
	if _, err := d.ReadBytes(dst); !errors.Is(err, ErrBufferOverflow) {
		t.Fatalf("ReadBytes into short storage error = %v", err)
	}
	dst = make([]byte, 10)
	n, err := d.ReadBytes(dst)
	if err != nil || string(dst[:n]) != "hello" {
		t.Fatalf("ReadBytes() = %q, %v", dst[:n], err)
	}
	if v, err := d.ReadUint8(); err != nil || v != 0x7F {
		t.Errorf("ReadUint8() = %#x, %v", v, err)
	}
	if v, err := d.ReadUint16(); err != nil || v != 0xBEEF {
		t.Errorf("ReadUint16() = %#x, %v", v, err)
	}
	if v, err := d.ReadUint32(); err != nil || v != 0x01020304 {
		t.Errorf("ReadUint32() = %#x, %v", v, err)
	}
	if v, err := d.ReadVarInt(); err != nil || v != 16384 {
		t.Errorf("ReadVarInt() = %d, %v", v, err)
	}
	if d.Unread() != 0 {
		t.Errorf("Unread() = %d, want 0", d.Unread())
	}
	if _, err := d.ReadUint8(); !errors.Is(err, ErrTruncatedPacket) {
		t.Errorf("read past frame error = %v", err)
	}
}

func TestReadPropertiesErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		err   error
	}{
		{"length past frame", []byte{0x30, 0x02, 0x05, 0x01}, ErrTruncatedPacket},
		{"unknown id", []byte{0x30, 0x03, 0x02, 0x7F, 0x00}, ErrInvalidPropertyID},
		{"value past block", []byte{0x30, 0x04, 0x02, 0x11, 0x00, 0x00}, ErrTruncatedPacket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode(tt.frame)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := d.ReadProperties(); !errors.Is(err, tt.err) {
				t.Errorf("ReadProperties() error = %v, want %v", err, tt.err)
			}
		})
	}
}
