package packet

// Connect represents an MQTT 5.0 CONNECT packet.
// MQTT 5.0 Section 3.1
type Connect struct {
	ClientID   string
	KeepAlive  uint16 // seconds
	CleanStart bool

	// Username and Password are sent only when non-empty, and their flag
	// bits are set accordingly.
	Username string
	Password []byte

	Properties Properties
	Will       *Will
}

// Will is the message the server publishes if the client disconnects abnormally.
type Will struct {
	Topic      string
	Payload    []byte
	QoS        QoS
	Retain     bool
	Properties Properties
}

// Connect flag bits.
const (
	connectFlagReserved   = 1 << 0
	connectFlagCleanStart = 1 << 1
	connectFlagWill       = 1 << 2
	connectFlagWillRetain = 1 << 5
	connectFlagPassword   = 1 << 6
	connectFlagUsername   = 1 << 7

	connectWillQoSShift = 3
)

// Flags returns the connect flags byte.
func (c *Connect) Flags() byte {
	var flags byte
	if c.CleanStart {
		flags |= connectFlagCleanStart
	}
	if c.Will != nil {
		flags |= connectFlagWill
		flags |= byte(c.Will.QoS) << connectWillQoSShift
		if c.Will.Retain {
			flags |= connectFlagWillRetain
		}
	}
	if len(c.Password) > 0 {
		flags |= connectFlagPassword
	}
	if c.Username != "" {
		flags |= connectFlagUsername
	}
	return flags
}

// Encode assembles the CONNECT frame in buf and returns it.
func (c *Connect) Encode(buf []byte) ([]byte, error) {
	if c.Will != nil && !c.Will.QoS.Valid() {
		return nil, ErrInvalidQoS
	}
	return encodeFrame(buf, TypeConnect, 0, c.write)
}

func (c *Connect) write(p *Packet) error {
	// Variable header
	if err := p.WriteString(ProtocolName); err != nil {
		return err
	}
	if err := p.WriteUint8(byte(Version5)); err != nil {
		return err
	}
	if err := p.WriteUint8(c.Flags()); err != nil {
		return err
	}
	if err := p.WriteUint16(c.KeepAlive); err != nil {
		return err
	}
	if err := p.WriteProperties(c.Properties...); err != nil {
		return err
	}

	// Payload
	if err := p.WriteString(c.ClientID); err != nil {
		return err
	}
	if w := c.Will; w != nil {
		if err := p.WriteProperties(w.Properties...); err != nil {
			return err
		}
		if err := p.WriteString(w.Topic); err != nil {
			return err
		}
		if err := p.WriteBytes(w.Payload); err != nil {
			return err
		}
	}
	if c.Username != "" {
		if err := p.WriteString(c.Username); err != nil {
			return err
		}
	}
	if len(c.Password) > 0 {
		if err := p.WriteBytes(c.Password); err != nil {
			return err
		}
	}
	return nil
}

// DecodeConnect reads a CONNECT packet from a decoded frame.
func DecodeConnect(p *Packet) (*Connect, error) {
	if err := p.expect(TypeConnect); err != nil {
		return nil, err
	}

	name, err := p.ReadView()
	if err != nil {
		return nil, err
	}
	if string(name) != ProtocolName {
		return nil, ErrInvalidProtocol
	}
	level, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	if Version(level) != Version5 {
		return nil, ErrInvalidProtocol
	}

	flags, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	if flags&connectFlagReserved != 0 {
		return nil, ErrMalformedPacket
	}

	c := &Connect{CleanStart: flags&connectFlagCleanStart != 0}
	if c.KeepAlive, err = p.ReadUint16(); err != nil {
		return nil, err
	}
	if c.Properties, err = p.ReadProperties(); err != nil {
		return nil, err
	}
	if c.ClientID, err = p.ReadString(); err != nil {
		return nil, err
	}

	if flags&connectFlagWill != 0 {
		w := &Will{
			QoS:    QoS(flags>>connectWillQoSShift) & 0x03,
			Retain: flags&connectFlagWillRetain != 0,
		}
		if !w.QoS.Valid() {
			return nil, ErrInvalidQoS
		}
		if w.Properties, err = p.ReadProperties(); err != nil {
			return nil, err
		}
		if w.Topic, err = p.ReadString(); err != nil {
			return nil, err
		}
		payload, err := p.ReadView()
		if err != nil {
			return nil, err
		}
		w.Payload = append([]byte(nil), payload...)
		c.Will = w
	} else if flags&(0x03<<connectWillQoSShift|connectFlagWillRetain) != 0 {
		return nil, ErrMalformedPacket
	}

	if flags&connectFlagUsername != 0 {
		if c.Username, err = p.ReadString(); err != nil {
			return nil, err
		}
	}
	if flags&connectFlagPassword != 0 {
		password, err := p.ReadView()
		if err != nil {
			return nil, err
		}
		c.Password = append([]byte(nil), password...)
	}
	return c, nil
}
