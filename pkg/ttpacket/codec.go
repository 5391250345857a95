package ttpacket

import (
	"encoding/binary"
	"math"
)

const headerSize = 9 // receiver u32 + sender u32 + tag u8

// reader consumes a fixed-width variant payload from the tail of a packet
// buffer, tracking how many bytes remain so a short or over-long payload
// is caught as a truncated error.
type reader struct {
	buf []byte
	off int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) need(n int) bool {
	return r.remaining() >= n
}

func (r *reader) u8() uint8 {
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *reader) u16() uint16 {
	v := binary.LittleEndian.Uint16(r.buf[r.off : r.off+2])
	r.off += 2
	return v
}

func (r *reader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.off : r.off+4])
	r.off += 4
	return v
}

func (r *reader) i16() int16 {
	return int16(r.u16())
}

func (r *reader) f32() float32 {
	return math.Float32frombits(r.u32())
}

// writer appends a fixed-width variant payload in little-endian order.
type writer struct {
	buf []byte
}

func (w *writer) putU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) putU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) putU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) putI16(v int16) {
	w.putU16(uint16(v))
}

func (w *writer) putF32(v float32) {
	w.putU32(math.Float32bits(v))
}

// Unmarshal decodes a raw byte buffer into a Packet. It returns a
// *DecodeError if the buffer is too short for the header, carries an
// unknown type tag, or the variant payload is the wrong length.
func Unmarshal(raw []byte) (Packet, error) {
	if len(raw) < headerSize {
		return nil, truncatedErr(0, "buffer shorter than the 9-byte header")
	}

	recv := Address(binary.LittleEndian.Uint32(raw[0:4]))
	send := Address(binary.LittleEndian.Uint32(raw[4:8]))
	tag := raw[8]
	h := Header{Receiver: recv, Sender: send}

	body := raw[headerSize:]

	want, ok := payloadSize(Kind(tag))
	if !ok {
		return nil, unknownTagErr(tag)
	}
	if len(body) != want {
		return nil, truncatedErr(tag, "payload length mismatch")
	}

	r := newReader(body)

	var p Packet
	switch Kind(tag) {
	case KindHelo:
		p = decodeHelo(h, r)
	case KindCloudHelo:
		p = decodeCloudHelo(h, r)
	case KindCommand1:
		p = decodeCommand1(h, r)
	case KindCommand2:
		p = decodeCommand2(h, r)
	case KindDataRev31:
		p = decodeDataRev31(h, r)
	case KindDataRev32:
		p = decodeDataRev32(h, r)
	case KindLight:
		p = decodeLight(h, r)
	}

	return p, nil
}

// payloadSize returns the fixed payload length (header excluded) for a
// known tag.
func payloadSize(k Kind) (int, bool) {
	switch k {
	case KindHelo:
		return 1, true
	case KindCloudHelo:
		return 5, true
	case KindCommand1:
		return 13, true
	case KindCommand2:
		return 7, true
	case KindDataRev31:
		return 39, true
	case KindDataRev32:
		return 51, true
	case KindLight:
		return 55, true
	default:
		return 0, false
	}
}

// Marshal encodes a Packet into its wire byte representation.
func Marshal(p Packet) []byte {
	h := p.header()
	w := &writer{buf: make([]byte, headerSize)}
	binary.LittleEndian.PutUint32(w.buf[0:4], uint32(h.Receiver))
	binary.LittleEndian.PutUint32(w.buf[4:8], uint32(h.Sender))
	w.buf[8] = uint8(p.Kind())

	switch v := p.(type) {
	case *Helo:
		encodeHelo(w, v)
	case *CloudHelo:
		encodeCloudHelo(w, v)
	case *Command1:
		encodeCommand1(w, v)
	case *Command2:
		encodeCommand2(w, v)
	case *DataRev31:
		encodeDataRev31(w, v)
	case *DataRev32:
		encodeDataRev32(w, v)
	case *Light:
		encodeLight(w, v)
	}

	return w.buf
}
