package packet

// Disconnect represents an MQTT 5.0 DISCONNECT packet.
// MQTT 5.0 Section 3.14
type Disconnect struct {
	ReasonCode ReasonCode
	Properties Properties
}

// Encode assembles the DISCONNECT frame in buf and returns it. A normal
// disconnection without properties uses the short 2-byte form.
func (d *Disconnect) Encode(buf []byte) ([]byte, error) {
	return encodeFrame(buf, TypeDisconnect, 0, func(p *Packet) error {
		if d.ReasonCode == ReasonSuccess && len(d.Properties) == 0 {
			return nil
		}
		if err := p.WriteUint8(byte(d.ReasonCode)); err != nil {
			return err
		}
		return p.WriteProperties(d.Properties...)
	})
}

// DecodeDisconnect reads a DISCONNECT packet from a decoded frame.
func DecodeDisconnect(p *Packet) (*Disconnect, error) {
	if err := p.expect(TypeDisconnect); err != nil {
		return nil, err
	}
	if p.Flags() != 0 {
		return nil, ErrMalformedPacket
	}

	d := &Disconnect{}
	if p.Unread() == 0 {
		return d, nil
	}
	code, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	d.ReasonCode = ReasonCode(code)
	if p.Unread() > 0 {
		if d.Properties, err = p.ReadProperties(); err != nil {
			return nil, err
		}
	}
	return d, nil
}
