package packet

// EncodePingreq assembles a PINGREQ frame in buf. PINGREQ is a bare fixed
// header with a remaining length of 0.
// MQTT 5.0 Section 3.12
func EncodePingreq(buf []byte) ([]byte, error) {
	return encodeEmpty(buf, TypePingreq)
}

// EncodePingresp assembles a PINGRESP frame in buf.
// MQTT 5.0 Section 3.13
func EncodePingresp(buf []byte) ([]byte, error) {
	return encodeEmpty(buf, TypePingresp)
}

func encodeEmpty(buf []byte, t Type) ([]byte, error) {
	return encodeFrame(buf, t, 0, func(*Packet) error { return nil })
}

// DecodePingresp checks that p is a well-formed PINGRESP.
func DecodePingresp(p *Packet) error {
	if err := p.expect(TypePingresp); err != nil {
		return err
	}
	if p.Flags() != 0 || p.RemainingLength() != 0 {
		return ErrMalformedPacket
	}
	return nil
}
