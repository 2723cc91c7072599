package packet

import (
	"errors"
	"io"
)

// Reader reads MQTT frames from an io.Reader into a single fixed-capacity
// receive buffer. The buffer never grows: a frame larger than the buffer
// fails with ErrBufferOverflow.
type Reader struct {
	r   io.Reader
	buf []byte
	pos int
	end int
	pkt Packet
}

// NewReader creates a reader that receives into buf.
func NewReader(r io.Reader, buf []byte) *Reader {
	return &Reader{r: r, buf: buf}
}

// fill reads more data into the buffer.
func (r *Reader) fill() error {
	// Shift remaining data to the beginning
	if r.pos > 0 {
		copy(r.buf, r.buf[r.pos:r.end])
		r.end -= r.pos
		r.pos = 0
	}
	if r.end == len(r.buf) {
		return ErrBufferOverflow
	}

	n, err := r.r.Read(r.buf[r.end:])
	if n > 0 {
		r.end += n
		return nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return err
}

// available returns the number of unread bytes in the buffer.
func (r *Reader) available() int {
	return r.end - r.pos
}

// ReadPacket reads the next frame. The returned Packet and every view read
// from it are only valid until the next call to ReadPacket.
func (r *Reader) ReadPacket() (*Packet, error) {
	for {
		err := r.pkt.Parse(r.buf[r.pos:r.end])
		if err == nil {
			r.pos += r.pkt.FrameLength()
			return &r.pkt, nil
		}
		if !errors.Is(err, ErrTruncatedPacket) {
			return nil, err
		}
		if err := r.fill(); err != nil {
			return nil, err
		}
	}
}
