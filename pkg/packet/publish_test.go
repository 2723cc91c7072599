package packet

import (
	"bytes"
	"errors"
	"testing"
)

func TestPublishEncode(t *testing.T) {
	tests := []struct {
		name     string
		p        *Publish
		expected []byte
	}{
		{
			name: "qos0",
			p:    &Publish{Topic: "a/b", Payload: []byte("hi")},
			expected: []byte{
				0x30, 0x08,
				0x00, 0x03, 'a', '/', 'b',
				0x00,
				'h', 'i',
			},
		},
		{
			name: "qos1 retain",
			p:    &Publish{Topic: "t", QoS: QoS1, Retain: true, PacketID: 10, Payload: []byte{0x01}},
			expected: []byte{
				0x33, 0x07,
				0x00, 0x01, 't',
				0x00, 0x0A,
				0x00,
				0x01,
			},
		},
		{
			name: "qos2 dup no payload",
			p:    &Publish{Topic: "t", QoS: QoS2, Dup: true, PacketID: 1},
			expected: []byte{
				0x3C, 0x06,
				0x00, 0x01, 't',
				0x00, 0x01,
				0x00,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := tt.p.Encode(make([]byte, 64))
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if !bytes.Equal(frame, tt.expected) {
				t.Errorf("Encode() = %v, want %v", frame, tt.expected)
			}
		})
	}
}

func TestPublishRoundTrip(t *testing.T) {
	in := &Publish{
		QoS:      QoS1,
		Retain:   true,
		Topic:    "home/kitchen/temp",
		PacketID: 42,
		Properties: Properties{
			ByteProperty(PropPayloadFormat, 1),
			Uint32Property(PropMessageExpiry, 60),
			StringProperty(PropContentType, "text/plain"),
			StringProperty(PropResponseTopic, "home/kitchen/reply"),
			BinaryProperty(PropCorrelationData, []byte{1, 2, 3}),
			Uint16Property(PropTopicAlias, 3),
		},
		Payload: []byte("21.5"),
	}

	frame, err := in.Encode(make([]byte, 128))
	if err != nil {
		t.Fatal(err)
	}
	p, err := Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodePublish(p)
	if err != nil {
		t.Fatal(err)
	}

	if out.QoS != in.QoS || out.Retain != in.Retain || out.Dup || out.Topic != in.Topic || out.PacketID != in.PacketID {
		t.Errorf("header = %+v", out)
	}
	if !bytes.Equal(out.Payload, in.Payload) {
		t.Errorf("payload = %q", out.Payload)
	}
	if len(out.Properties) != len(in.Properties) {
		t.Fatalf("got %d properties, want %d", len(out.Properties), len(in.Properties))
	}
	for i, prop := range in.Properties {
		got := out.Properties[i]
		if got.ID != prop.ID || got.Value != prop.Value || !bytes.Equal(got.Data, prop.Data) {
			t.Errorf("property %v = %+v, want %+v", prop.ID, got, prop)
		}
	}
	if s, ok := out.Properties.Text(PropContentType); !ok || s != "text/plain" {
		t.Errorf("content type = %q, %v", s, ok)
	}

	// Decoded values are copies, not views into the frame.
	for i := range frame {
		frame[i] = 0
	}
	if out.Topic != "home/kitchen/temp" || string(out.Payload) != "21.5" {
		t.Errorf("decoded values alias the frame")
	}
}

func TestPublishErrors(t *testing.T) {
	buf := make([]byte, 64)
	if _, err := (&Publish{Topic: "t", QoS: 3}).Encode(buf); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("QoS 3 error = %v", err)
	}
	if _, err := (&Publish{Topic: "t", QoS: QoS1}).Encode(buf); !errors.Is(err, ErrMalformedPacket) {
		t.Errorf("missing packet id error = %v", err)
	}
	if _, err := (&Publish{Topic: "t", Payload: make([]byte, 64)}).Encode(buf); !errors.Is(err, ErrBufferOverflow) {
		t.Errorf("oversized payload error = %v", err)
	}

	tests := []struct {
		name  string
		frame []byte
		err   error
	}{
		{"qos3", []byte{0x36, 0x04, 0x00, 0x01, 't', 0x00}, ErrInvalidQoS},
		{"dup with qos0", []byte{0x38, 0x04, 0x00, 0x01, 't', 0x00}, ErrMalformedPacket},
		{"zero packet id", []byte{0x32, 0x06, 0x00, 0x01, 't', 0x00, 0x00, 0x00}, ErrMalformedPacket},
		{"missing properties", []byte{0x30, 0x03, 0x00, 0x01, 't'}, ErrTruncatedPacket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.frame)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := DecodePublish(p); !errors.Is(err, tt.err) {
				t.Errorf("DecodePublish() error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestConnackDecode(t *testing.T) {
	tests := []struct {
		name    string
		frame   []byte
		present bool
		code    ReasonCode
		props   int
		err     error
	}{
		{"accepted", []byte{0x20, 0x03, 0x00, 0x00, 0x00}, false, ReasonSuccess, 0, nil},
		{"session present", []byte{0x20, 0x03, 0x01, 0x00, 0x00}, true, ReasonSuccess, 0, nil},
		{"no property block", []byte{0x20, 0x02, 0x00, 0x87}, false, ReasonNotAuthorized, 0, nil},
		{"with properties", []byte{0x20, 0x08, 0x00, 0x00, 0x05, 0x27, 0x00, 0x00, 0x10, 0x00}, false, ReasonSuccess, 1, nil},
		{"reserved ack bits", []byte{0x20, 0x03, 0x02, 0x00, 0x00}, false, 0, 0, ErrMalformedPacket},
		{"flags set", []byte{0x21, 0x03, 0x00, 0x00, 0x00}, false, 0, 0, ErrMalformedPacket},
		{"too short", []byte{0x20, 0x01, 0x00}, false, 0, 0, ErrTruncatedPacket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.frame)
			if err != nil {
				t.Fatal(err)
			}
			c, err := DecodeConnack(p)
			if !errors.Is(err, tt.err) {
				t.Fatalf("DecodeConnack() error = %v, want %v", err, tt.err)
			}
			if err != nil {
				return
			}
			if c.SessionPresent != tt.present || c.ReasonCode != tt.code || len(c.Properties) != tt.props {
				t.Errorf("DecodeConnack() = %+v", c)
			}
		})
	}
}

func TestConnackEncode(t *testing.T) {
	in := &Connack{
		SessionPresent: true,
		ReasonCode:     ReasonSuccess,
		Properties:     Properties{StringProperty(PropAssignedClientID, "auto-1"), Uint16Property(PropServerKeepAlive, 30)},
	}
	frame, err := in.Encode(make([]byte, 64))
	if err != nil {
		t.Fatal(err)
	}
	p, _ := Decode(frame)
	out, err := DecodeConnack(p)
	if err != nil {
		t.Fatal(err)
	}
	if !out.SessionPresent || out.ReasonCode != ReasonSuccess {
		t.Errorf("DecodeConnack() = %+v", out)
	}
	if id, _ := out.Properties.Text(PropAssignedClientID); id != "auto-1" {
		t.Errorf("assigned client id = %q", id)
	}
	if ka, _ := out.Properties.Uint(PropServerKeepAlive); ka != 30 {
		t.Errorf("server keep alive = %d", ka)
	}
}

func TestDisconnect(t *testing.T) {
	buf := make([]byte, 64)

	frame, err := (&Disconnect{}).Encode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(frame, []byte{0xE0, 0x00}) {
		t.Errorf("normal disconnect = %v", frame)
	}

	in := &Disconnect{
		ReasonCode: ReasonDisconnectWithWill,
		Properties: Properties{StringProperty(PropReasonString, "bye")},
	}
	frame, err = in.Encode(buf)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := Decode(frame)
	out, err := DecodeDisconnect(p)
	if err != nil {
		t.Fatal(err)
	}
	if out.ReasonCode != ReasonDisconnectWithWill {
		t.Errorf("reason = %v", out.ReasonCode)
	}
	if s, _ := out.Properties.Text(PropReasonString); s != "bye" {
		t.Errorf("reason string = %q", s)
	}

	p, _ = Decode([]byte{0xE0, 0x01, 0x8B})
	out, err = DecodeDisconnect(p)
	if err != nil || out.ReasonCode != ReasonServerShuttingDown || out.Properties != nil {
		t.Errorf("reason-only disconnect = %+v, %v", out, err)
	}
}

func TestPing(t *testing.T) {
	buf := make([]byte, 8)
	frame, err := EncodePingreq(buf)
	if err != nil || !bytes.Equal(frame, []byte{0xC0, 0x00}) {
		t.Errorf("EncodePingreq() = %v, %v", frame, err)
	}
	frame, err = EncodePingresp(buf)
	if err != nil || !bytes.Equal(frame, []byte{0xD0, 0x00}) {
		t.Errorf("EncodePingresp() = %v, %v", frame, err)
	}

	p, _ := Decode(frame)
	if err := DecodePingresp(p); err != nil {
		t.Errorf("DecodePingresp() error: %v", err)
	}
	p, _ = Decode([]byte{0xD0, 0x01, 0x00})
	if err := DecodePingresp(p); !errors.Is(err, ErrMalformedPacket) {
		t.Errorf("non-empty PINGRESP error = %v", err)
	}
	p, _ = Decode([]byte{0xC0, 0x00})
	if err := DecodePingresp(p); !errors.Is(err, ErrInvalidPacketType) {
		t.Errorf("PINGREQ as PINGRESP error = %v", err)
	}
}

func TestTypeAndReasonNames(t *testing.T) {
	if TypePublish.String() != "PUBLISH" || Type(0).Valid() || !TypeAuth.Valid() {
		t.Errorf("type names or validity wrong")
	}
	if PropSessionExpiry.String() != "Session Expiry Interval" || PropertyID(0x7F).String() != "Unknown Property" {
		t.Errorf("property names wrong")
	}
	if !ReasonSuccess.IsSuccess() || ReasonBanned.IsSuccess() || ReasonBanned.String() != "Banned" {
		t.Errorf("reason code helpers wrong")
	}
}
