package ttpacket

// Command1 is the engine's reply to a data packet: sleep/heating control
// plus the talker's TDMA time slot.
type Command1 struct {
	Header
	Command       uint8
	Time          uint32
	SleepInterval uint16
	Reserved      uint16 // unknown field, passed through verbatim
	Heating       uint16
	SlotLength    uint8
	Slot          uint8
}

func (*Command1) Kind() Kind { return KindCommand1 }

func decodeCommand1(h Header, r *reader) Packet {
	return &Command1{
		Header:        h,
		Command:       r.u8(),
		Time:          r.u32(),
		SleepInterval: r.u16(),
		Reserved:      r.u16(),
		Heating:       r.u16(),
		SlotLength:    r.u8(),
		Slot:          r.u8(),
	}
}

func encodeCommand1(w *writer, p *Command1) {
	w.putU8(p.Command)
	w.putU32(p.Time)
	w.putU16(p.SleepInterval)
	w.putU16(p.Reserved)
	w.putU16(p.Heating)
	w.putU8(p.SlotLength)
	w.putU8(p.Slot)
}

// Command2 is the engine's reply to a light packet: integration time and
// gain for the next reading.
type Command2 struct {
	Header
	Command         uint8
	Time            uint32
	IntegrationTime uint8
	Gain            uint8
}

func (*Command2) Kind() Kind { return KindCommand2 }

func decodeCommand2(h Header, r *reader) Packet {
	return &Command2{
		Header:          h,
		Command:         r.u8(),
		Time:            r.u32(),
		IntegrationTime: r.u8(),
		Gain:            r.u8(),
	}
}

func encodeCommand2(w *writer, p *Command2) {
	w.putU8(p.Command)
	w.putU32(p.Time)
	w.putU8(p.IntegrationTime)
	w.putU8(p.Gain)
}
