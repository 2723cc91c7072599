package packet

// Publish represents an MQTT 5.0 PUBLISH packet.
// MQTT 5.0 Section 3.3
type Publish struct {
	// Fixed header flags
	Dup    bool
	QoS    QoS
	Retain bool

	Topic      string
	PacketID   uint16 // only sent for QoS > 0
	Properties Properties
	Payload    []byte
}

// flags returns the fixed header flags for this PUBLISH packet.
func (p *Publish) flags() byte {
	var flags byte
	if p.Retain {
		flags |= PublishFlagRetain
	}
	flags |= byte(p.QoS) << publishQoSShift
	if p.Dup {
		flags |= PublishFlagDup
	}
	return flags
}

// Encode assembles the PUBLISH frame in buf and returns it.
func (p *Publish) Encode(buf []byte) ([]byte, error) {
	if !p.QoS.Valid() {
		return nil, ErrInvalidQoS
	}
	if p.QoS > QoS0 && p.PacketID == 0 {
		return nil, ErrMalformedPacket
	}
	return encodeFrame(buf, TypePublish, p.flags(), p.write)
}

func (p *Publish) write(pkt *Packet) error {
	if err := pkt.WriteString(p.Topic); err != nil {
		return err
	}
	if p.QoS > QoS0 {
		if err := pkt.WriteUint16(p.PacketID); err != nil {
			return err
		}
	}
	if err := pkt.WriteProperties(p.Properties...); err != nil {
		return err
	}
	return pkt.WriteRaw(p.Payload)
}

// DecodePublish reads a PUBLISH packet from a decoded frame. Topic,
// properties and payload are copied out of the frame.
func DecodePublish(pkt *Packet) (*Publish, error) {
	if err := pkt.expect(TypePublish); err != nil {
		return nil, err
	}

	flags := pkt.Flags()
	p := &Publish{
		Retain: flags&PublishFlagRetain != 0,
		QoS:    QoS(flags>>publishQoSShift) & 0x03,
		Dup:    flags&PublishFlagDup != 0,
	}
	if !p.QoS.Valid() {
		return nil, ErrInvalidQoS
	}
	if p.QoS == QoS0 && p.Dup {
		return nil, ErrMalformedPacket
	}

	var err error
	if p.Topic, err = pkt.ReadString(); err != nil {
		return nil, err
	}
	if p.QoS > QoS0 {
		if p.PacketID, err = pkt.ReadUint16(); err != nil {
			return nil, err
		}
		if p.PacketID == 0 {
			return nil, ErrMalformedPacket
		}
	}
	if p.Properties, err = pkt.ReadProperties(); err != nil {
		return nil, err
	}

	payload, err := pkt.ReadRemaining()
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		p.Payload = append([]byte(nil), payload...)
	}
	return p, nil
}
