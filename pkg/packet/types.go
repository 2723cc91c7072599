// Package packet implements the MQTT 5.0 control packet wire format for a
// client. Outbound packets are assembled in place inside a caller-owned,
// fixed-capacity buffer; inbound packets are read as views over a receive
// buffer. Nothing in this package allocates while encoding.
package packet

// Type represents an MQTT control packet type (upper 4 bits of the control byte).
type Type byte

// MQTT Control Packet types as defined in MQTT 5.0 Section 2.1.2
const (
	TypeReserved    Type = 0
	TypeConnect     Type = 1
	TypeConnack     Type = 2
	TypePublish     Type = 3
	TypePuback      Type = 4
	TypePubrec      Type = 5
	TypePubrel      Type = 6
	TypePubcomp     Type = 7
	TypeSubscribe   Type = 8
	TypeSuback      Type = 9
	TypeUnsubscribe Type = 10
	TypeUnsuback    Type = 11
	TypePingreq     Type = 12
	TypePingresp    Type = 13
	TypeDisconnect  Type = 14
	TypeAuth        Type = 15
)

var typeNames = [...]string{
	TypeReserved:    "RESERVED",
	TypeConnect:     "CONNECT",
	TypeConnack:     "CONNACK",
	TypePublish:     "PUBLISH",
	TypePuback:      "PUBACK",
	TypePubrec:      "PUBREC",
	TypePubrel:      "PUBREL",
	TypePubcomp:     "PUBCOMP",
	TypeSubscribe:   "SUBSCRIBE",
	TypeSuback:      "SUBACK",
	TypeUnsubscribe: "UNSUBSCRIBE",
	TypeUnsuback:    "UNSUBACK",
	TypePingreq:     "PINGREQ",
	TypePingresp:    "PINGRESP",
	TypeDisconnect:  "DISCONNECT",
	TypeAuth:        "AUTH",
}

// String returns the upper-case protocol name of the packet type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "RESERVED"
}

// Valid reports whether t is a non-reserved packet type.
func (t Type) Valid() bool {
	return t >= TypeConnect && t <= TypeAuth
}

// controlByte combines a packet type with its 4 flag bits.
func controlByte(t Type, flags byte) byte {
	return byte(t)<<4 | flags&0x0F
}

// Version represents an MQTT protocol level.
type Version byte

const (
	Version311 Version = 4
	Version5   Version = 5
)

// QoS represents MQTT Quality of Service level.
type QoS byte

const (
	QoS0 QoS = 0 // At most once delivery
	QoS1 QoS = 1 // At least once delivery
	QoS2 QoS = 2 // Exactly once delivery
)

// Valid returns true if the QoS level is valid.
func (q QoS) Valid() bool {
	return q <= QoS2
}

// PUBLISH fixed header flags (bits 3-0 of the control byte).
const (
	PublishFlagRetain = 1 << 0
	PublishFlagDup    = 1 << 3
	publishQoSShift   = 1
)

// ProtocolName is the protocol name carried in every CONNECT.
const ProtocolName = "MQTT"

// MaxRemainingLength is the largest value a variable byte integer can hold (256MB - 1).
const MaxRemainingLength = 268435455

// Sizes of the reservations made while assembling a frame.
const (
	// MaxVarIntSize is the worst-case width of a variable byte integer.
	MaxVarIntSize = 4

	// HeaderReserve is the space kept in front of every outbound frame:
	// the control byte plus a worst-case remaining length.
	HeaderReserve = 1 + MaxVarIntSize
)
