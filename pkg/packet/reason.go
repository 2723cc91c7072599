package packet

// ReasonCode represents an MQTT 5.0 reason code.
// Reason codes less than 0x80 indicate success, 0x80 or greater indicate failure.
// MQTT 5.0 Section 2.4
type ReasonCode byte

// Reason codes a client sees in CONNACK and DISCONNECT.
const (
	ReasonSuccess                    ReasonCode = 0x00
	ReasonDisconnectWithWill         ReasonCode = 0x04
	ReasonUnspecifiedError           ReasonCode = 0x80
	ReasonMalformedPacket            ReasonCode = 0x81
	ReasonProtocolError              ReasonCode = 0x82
	ReasonImplSpecificError          ReasonCode = 0x83
	ReasonUnsupportedProtocolVersion ReasonCode = 0x84
	ReasonClientIDNotValid           ReasonCode = 0x85
	ReasonBadUserNameOrPassword      ReasonCode = 0x86
	ReasonNotAuthorized              ReasonCode = 0x87
	ReasonServerUnavailable          ReasonCode = 0x88
	ReasonServerBusy                 ReasonCode = 0x89
	ReasonBanned                     ReasonCode = 0x8A
	ReasonServerShuttingDown         ReasonCode = 0x8B
	ReasonBadAuthMethod              ReasonCode = 0x8C
	ReasonKeepAliveTimeout           ReasonCode = 0x8D
	ReasonSessionTakenOver           ReasonCode = 0x8E
	ReasonTopicNameInvalid           ReasonCode = 0x90
	ReasonPacketTooLarge             ReasonCode = 0x95
	ReasonQuotaExceeded              ReasonCode = 0x97
	ReasonPayloadFormatInvalid       ReasonCode = 0x99
	ReasonRetainNotSupported         ReasonCode = 0x9A
	ReasonQoSNotSupported            ReasonCode = 0x9B
	ReasonUseAnotherServer           ReasonCode = 0x9C
	ReasonServerMoved                ReasonCode = 0x9D
	ReasonConnectionRateExceeded     ReasonCode = 0x9F
)

var reasonNames = map[ReasonCode]string{
	ReasonSuccess:                    "Success",
	ReasonDisconnectWithWill:         "Disconnect with Will Message",
	ReasonUnspecifiedError:           "Unspecified error",
	ReasonMalformedPacket:            "Malformed Packet",
	ReasonProtocolError:              "Protocol Error",
	ReasonImplSpecificError:          "Implementation specific error",
	ReasonUnsupportedProtocolVersion: "Unsupported Protocol Version",
	ReasonClientIDNotValid:           "Client Identifier not valid",
	ReasonBadUserNameOrPassword:      "Bad User Name or Password",
	ReasonNotAuthorized:              "Not authorized",
	ReasonServerUnavailable:          "Server unavailable",
	ReasonServerBusy:                 "Server busy",
	ReasonBanned:                     "Banned",
	ReasonServerShuttingDown:         "Server shutting down",
	ReasonBadAuthMethod:              "Bad authentication method",
	ReasonKeepAliveTimeout:           "Keep Alive timeout",
	ReasonSessionTakenOver:           "Session taken over",
	ReasonTopicNameInvalid:           "Topic Name invalid",
	ReasonPacketTooLarge:             "Packet too large",
	ReasonQuotaExceeded:              "Quota exceeded",
	ReasonPayloadFormatInvalid:       "Payload format invalid",
	ReasonRetainNotSupported:         "Retain not supported",
	ReasonQoSNotSupported:            "QoS not supported",
	ReasonUseAnotherServer:           "Use another server",
	ReasonServerMoved:                "Server moved",
	ReasonConnectionRateExceeded:     "Connection rate exceeded",
}

// IsSuccess returns true if the reason code indicates success.
func (r ReasonCode) IsSuccess() bool {
	return r < 0x80
}

// String returns the protocol description of the reason code.
func (r ReasonCode) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "Unknown reason code"
}
