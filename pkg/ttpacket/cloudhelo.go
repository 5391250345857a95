package ttpacket

// CloudHelo is a gateway's acceptance reply to a talker's Helo.
type CloudHelo struct {
	Header
	Command uint8
	Time    uint32
}

func (*CloudHelo) Kind() Kind { return KindCloudHelo }

func decodeCloudHelo(h Header, r *reader) Packet {
	return &CloudHelo{Header: h, Command: r.u8(), Time: r.u32()}
}

func encodeCloudHelo(w *writer, p *CloudHelo) {
	w.putU8(p.Command)
	w.putU32(p.Time)
}
