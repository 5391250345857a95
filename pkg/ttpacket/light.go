package ttpacket

// Spectrometer wavelength bands, in nanometers, for the two light-sensor
// banks carried by a Light packet.
var (
	AS7263Bands = [6]int{610, 680, 730, 760, 810, 860}
	AS7262Bands = [6]int{450, 500, 550, 570, 600, 650}
)

// Light is a light-sensor reading: twelve 32-bit floats across two
// six-wavelength spectrometer banks.
type Light struct {
	Header
	PacketNumber    uint8
	Time            uint32
	AS7263          [6]float32 // indexed by position in AS7263Bands
	AS7262          [6]float32 // indexed by position in AS7262Bands
	IntegrationTime uint8
	Gain            uint8
}

func (*Light) Kind() Kind { return KindLight }

func decodeLight(h Header, r *reader) Packet {
	p := &Light{Header: h}
	p.PacketNumber = r.u8()
	p.Time = r.u32()
	for i := range p.AS7263 {
		p.AS7263[i] = r.f32()
	}
	for i := range p.AS7262 {
		p.AS7262[i] = r.f32()
	}
	p.IntegrationTime = r.u8()
	p.Gain = r.u8()
	return p
}

func encodeLight(w *writer, p *Light) {
	w.putU8(p.PacketNumber)
	w.putU32(p.Time)
	for _, v := range p.AS7263 {
		w.putF32(v)
	}
	for _, v := range p.AS7262 {
		w.putF32(v)
	}
	w.putU8(p.IntegrationTime)
	w.putU8(p.Gain)
}
