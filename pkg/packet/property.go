package packet

// PropertyID represents an MQTT 5.0 property identifier.
// MQTT 5.0 Section 2.2.2.2
type PropertyID byte

// Property identifiers as defined in MQTT 5.0 Table 2-4
const (
	PropPayloadFormat        PropertyID = 0x01
	PropMessageExpiry        PropertyID = 0x02
	PropContentType          PropertyID = 0x03
	PropResponseTopic        PropertyID = 0x08
	PropCorrelationData      PropertyID = 0x09
	PropSubscriptionID       PropertyID = 0x0B
	PropSessionExpiry        PropertyID = 0x11
	PropAssignedClientID     PropertyID = 0x12
	PropServerKeepAlive      PropertyID = 0x13
	PropAuthMethod           PropertyID = 0x15
	PropAuthData             PropertyID = 0x16
	PropRequestProblemInfo   PropertyID = 0x17
	PropWillDelayInterval    PropertyID = 0x18
	PropRequestResponseInfo  PropertyID = 0x19
	PropResponseInfo         PropertyID = 0x1A
	PropServerReference      PropertyID = 0x1C
	PropReasonString         PropertyID = 0x1F
	PropReceiveMax           PropertyID = 0x21
	PropTopicAliasMax        PropertyID = 0x22
	PropTopicAlias           PropertyID = 0x23
	PropMaxQoS               PropertyID = 0x24
	PropRetainAvailable      PropertyID = 0x25
	PropUserProperty         PropertyID = 0x26
	PropMaxPacketSize        PropertyID = 0x27
	PropWildcardSubAvailable PropertyID = 0x28
	PropSubIDAvailable       PropertyID = 0x29
	PropSharedSubAvailable   PropertyID = 0x2A
)

// PropertyType is the wire shape of a property value.
type PropertyType byte

const (
	PropertyTypeByte        PropertyType = iota // Single byte
	PropertyTypeTwoByteInt                      // Two byte integer
	PropertyTypeFourByteInt                     // Four byte integer
	PropertyTypeVarInt                          // Variable byte integer
	PropertyTypeString                          // UTF-8 encoded string
	PropertyTypeBinary                          // Binary data
	PropertyTypeStringPair                      // UTF-8 string pair
)

type propertyInfo struct {
	name string
	typ  PropertyType
}

// propertyTable maps every recognized identifier to its name and value
// shape. Supporting a new property is a new row here.
var propertyTable = map[PropertyID]propertyInfo{
	PropPayloadFormat:        {"Payload Format Indicator", PropertyTypeByte},
	PropMessageExpiry:        {"Message Expiry Interval", PropertyTypeFourByteInt},
	PropContentType:          {"Content Type", PropertyTypeString},
	PropResponseTopic:        {"Response Topic", PropertyTypeString},
	PropCorrelationData:      {"Correlation Data", PropertyTypeBinary},
	PropSubscriptionID:       {"Subscription Identifier", PropertyTypeVarInt},
	PropSessionExpiry:        {"Session Expiry Interval", PropertyTypeFourByteInt},
	PropAssignedClientID:     {"Assigned Client Identifier", PropertyTypeString},
	PropServerKeepAlive:      {"Server Keep Alive", PropertyTypeTwoByteInt},
	PropAuthMethod:           {"Authentication Method", PropertyTypeString},
	PropAuthData:             {"Authentication Data", PropertyTypeBinary},
	PropRequestProblemInfo:   {"Request Problem Information", PropertyTypeByte},
	PropWillDelayInterval:    {"Will Delay Interval", PropertyTypeFourByteInt},
	PropRequestResponseInfo:  {"Request Response Information", PropertyTypeByte},
	PropResponseInfo:         {"Response Information", PropertyTypeString},
	PropServerReference:      {"Server Reference", PropertyTypeString},
	PropReasonString:         {"Reason String", PropertyTypeString},
	PropReceiveMax:           {"Receive Maximum", PropertyTypeTwoByteInt},
	PropTopicAliasMax:        {"Topic Alias Maximum", PropertyTypeTwoByteInt},
	PropTopicAlias:           {"Topic Alias", PropertyTypeTwoByteInt},
	PropMaxQoS:               {"Maximum QoS", PropertyTypeByte},
	PropRetainAvailable:      {"Retain Available", PropertyTypeByte},
	PropUserProperty:         {"User Property", PropertyTypeStringPair},
	PropMaxPacketSize:        {"Maximum Packet Size", PropertyTypeFourByteInt},
	PropWildcardSubAvailable: {"Wildcard Subscription Available", PropertyTypeByte},
	PropSubIDAvailable:       {"Subscription Identifier Available", PropertyTypeByte},
	PropSharedSubAvailable:   {"Shared Subscription Available", PropertyTypeByte},
}

// Type returns the value shape of the property and whether p is recognized.
func (p PropertyID) Type() (PropertyType, bool) {
	info, ok := propertyTable[p]
	return info.typ, ok
}

// String returns the name of the property.
func (p PropertyID) String() string {
	if info, ok := propertyTable[p]; ok {
		return info.name
	}
	return "Unknown Property"
}

// Property is one property entry. Integer-valued kinds use Value; string
// and binary kinds use Data; a User Property carries its name in Key and
// its value in Data.
type Property struct {
	ID    PropertyID
	Value uint32
	Data  []byte
	Key   []byte
}

// ByteProperty returns a single byte property.
func ByteProperty(id PropertyID, v byte) Property {
	return Property{ID: id, Value: uint32(v)}
}

// Uint16Property returns a two byte integer property.
func Uint16Property(id PropertyID, v uint16) Property {
	return Property{ID: id, Value: uint32(v)}
}

// Uint32Property returns a four byte integer property.
func Uint32Property(id PropertyID, v uint32) Property {
	return Property{ID: id, Value: v}
}

// VarIntProperty returns a variable byte integer property.
func VarIntProperty(id PropertyID, v uint32) Property {
	return Property{ID: id, Value: v}
}

// BinaryProperty returns a string or binary data property.
func BinaryProperty(id PropertyID, data []byte) Property {
	return Property{ID: id, Data: data}
}

// StringProperty returns a UTF-8 string property.
func StringProperty(id PropertyID, s string) Property {
	return Property{ID: id, Data: []byte(s)}
}

// UserProperty returns a User Property name/value pair.
func UserProperty(key, value string) Property {
	return Property{ID: PropUserProperty, Key: []byte(key), Data: []byte(value)}
}

type propertyCodec struct {
	encode func(b *Buffer, p Property) error
	decode func(b *Buffer, p *Property) error
}

var propertyCodecs = [...]propertyCodec{
	PropertyTypeByte: {
		encode: func(b *Buffer, p Property) error {
			if p.Value > 0xFF {
				return ErrValueOutOfRange
			}
			return b.WriteUint8(byte(p.Value))
		},
		decode: func(b *Buffer, p *Property) error {
			v, err := b.ReadUint8()
			p.Value = uint32(v)
			return err
		},
	},
	PropertyTypeTwoByteInt: {
		encode: func(b *Buffer, p Property) error {
			if p.Value > 0xFFFF {
				return ErrValueOutOfRange
			}
			return b.WriteUint16(uint16(p.Value))
		},
		decode: func(b *Buffer, p *Property) error {
			v, err := b.ReadUint16()
			p.Value = uint32(v)
			return err
		},
	},
	PropertyTypeFourByteInt: {
		encode: func(b *Buffer, p Property) error {
			return b.WriteUint32(p.Value)
		},
		decode: func(b *Buffer, p *Property) (err error) {
			p.Value, err = b.ReadUint32()
			return err
		},
	},
	PropertyTypeVarInt: {
		encode: func(b *Buffer, p Property) error {
			_, err := b.WriteVarInt(p.Value)
			return err
		},
		decode: func(b *Buffer, p *Property) (err error) {
			p.Value, err = b.ReadVarInt()
			return err
		},
	},
	PropertyTypeString: {
		encode: encodeDataProperty,
		decode: decodeDataProperty,
	},
	PropertyTypeBinary: {
		encode: encodeDataProperty,
		decode: decodeDataProperty,
	},
	PropertyTypeStringPair: {
		encode: func(b *Buffer, p Property) error {
			if _, err := b.WriteBytes(p.Key); err != nil {
				return err
			}
			_, err := b.WriteBytes(p.Data)
			return err
		},
		decode: func(b *Buffer, p *Property) error {
			key, err := b.ReadView()
			if err != nil {
				return err
			}
			p.Key = append([]byte(nil), key...)
			return decodeDataProperty(b, p)
		},
	},
}

func encodeDataProperty(b *Buffer, p Property) error {
	_, err := b.WriteBytes(p.Data)
	return err
}

func decodeDataProperty(b *Buffer, p *Property) error {
	v, err := b.ReadView()
	if err != nil {
		return err
	}
	p.Data = append([]byte(nil), v...)
	return nil
}

// StartPropertyRun reserves space for a property block length. Every
// WriteProperty until the matching StopPropertyRun becomes part of the block.
func (p *Packet) StartPropertyRun() error {
	if err := p.writable(); err != nil {
		return err
	}
	r, err := p.buf.Reserve()
	if err != nil {
		return err
	}
	p.props = r
	p.state = stateProperties
	return nil
}

// WriteProperty writes the identifier byte and the value of prop in the
// shape its identifier selects. On error the packet is left as it was
// before the call.
func (p *Packet) WriteProperty(prop Property) error {
	if p.state != stateProperties {
		return ErrNoPropertyRun
	}
	typ, ok := prop.ID.Type()
	if !ok {
		return ErrInvalidPropertyID
	}
	mark := p.buf.pos
	if err := p.buf.WriteUint8(byte(prop.ID)); err != nil {
		return err
	}
	if err := propertyCodecs[typ].encode(&p.buf, prop); err != nil {
		p.buf.pos = mark
		return err
	}
	return nil
}

// PropertyRunLength returns the number of property bytes written in the
// open run, identifier bytes included. It is 0 outside a run.
func (p *Packet) PropertyRunLength() int {
	if p.state != stateProperties {
		return 0
	}
	return p.buf.pos - p.props.start - MaxVarIntSize
}

// StopPropertyRun writes the property block length and closes the gap
// left by the unused part of its reservation.
func (p *Packet) StopPropertyRun() error {
	if p.state != stateProperties {
		return ErrNoPropertyRun
	}
	if _, err := p.buf.Compact(p.props); err != nil {
		return err
	}
	p.props = Reservation{}
	p.state = stateWriting
	return nil
}

// WriteProperties writes a complete property block holding props. An empty
// list produces a single zero length byte.
func (p *Packet) WriteProperties(props ...Property) error {
	if err := p.StartPropertyRun(); err != nil {
		return err
	}
	for _, prop := range props {
		if err := p.WriteProperty(prop); err != nil {
			return err
		}
	}
	return p.StopPropertyRun()
}

// Properties is a decoded property block.
type Properties []Property

// Get returns the first property with the given identifier.
func (ps Properties) Get(id PropertyID) (Property, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return Property{}, false
}

// Uint returns the integer value of the first property with the given identifier.
func (ps Properties) Uint(id PropertyID) (uint32, bool) {
	p, ok := ps.Get(id)
	return p.Value, ok
}

// Text returns the string value of the first property with the given identifier.
func (ps Properties) Text(id PropertyID) (string, bool) {
	p, ok := ps.Get(id)
	return string(p.Data), ok
}

// ReadProperties reads a property block: a variable byte integer length
// followed by that many bytes of entries. Values are copied out of the frame.
func (p *Packet) ReadProperties() (Properties, error) {
	length, err := p.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if int(length) > p.buf.Remaining() {
		return nil, ErrTruncatedPacket
	}
	if length == 0 {
		return nil, nil
	}

	end := p.buf.pos + int(length)
	block := Buffer{buf: p.buf.buf[:end], pos: p.buf.pos}

	var props Properties
	for block.pos < end {
		id, _ := block.ReadUint8()
		prop := Property{ID: PropertyID(id)}
		typ, ok := prop.ID.Type()
		if !ok {
			return nil, ErrInvalidPropertyID
		}
		if err := propertyCodecs[typ].decode(&block, &prop); err != nil {
			return nil, err
		}
		props = append(props, prop)
	}

	p.buf.pos = end
	return props, nil
}
