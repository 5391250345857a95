package ttpacket

// Helo is sent by a talker to the multicast address on power-up.
type Helo struct {
	Header
	PacketNumber uint8
}

func (*Helo) Kind() Kind { return KindHelo }

func decodeHelo(h Header, r *reader) Packet {
	return &Helo{Header: h, PacketNumber: r.u8()}
}

func encodeHelo(w *writer, p *Helo) {
	w.putU8(p.PacketNumber)
}
