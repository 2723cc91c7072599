package packet

// Connack represents an MQTT 5.0 CONNACK packet.
// MQTT 5.0 Section 3.2
type Connack struct {
	SessionPresent bool
	ReasonCode     ReasonCode
	Properties     Properties
}

// Encode assembles the CONNACK frame in buf and returns it.
func (c *Connack) Encode(buf []byte) ([]byte, error) {
	return encodeFrame(buf, TypeConnack, 0, func(p *Packet) error {
		var ack byte
		if c.SessionPresent {
			ack = 0x01
		}
		if err := p.WriteUint8(ack); err != nil {
			return err
		}
		if err := p.WriteUint8(byte(c.ReasonCode)); err != nil {
			return err
		}
		return p.WriteProperties(c.Properties...)
	})
}

// DecodeConnack reads a CONNACK packet from a decoded frame.
func DecodeConnack(p *Packet) (*Connack, error) {
	if err := p.expect(TypeConnack); err != nil {
		return nil, err
	}
	if p.Flags() != 0 {
		return nil, ErrMalformedPacket
	}

	ack, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	// Bits 7-1 are reserved
	if ack&0xFE != 0 {
		return nil, ErrMalformedPacket
	}
	code, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}

	c := &Connack{
		SessionPresent: ack&0x01 != 0,
		ReasonCode:     ReasonCode(code),
	}
	// A server may omit the property block entirely.
	if p.Unread() > 0 {
		if c.Properties, err = p.ReadProperties(); err != nil {
			return nil, err
		}
	}
	return c, nil
}
