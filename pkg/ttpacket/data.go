package ttpacket

// DataRev31 is a revision-3.1 sensor data packet. Probe temperatures are
// signed 16-bit raw ADC readings; battery state is a single voltage
// reading rather than the Rev32 bandgap/raw pair.
type DataRev31 struct {
	Header
	PacketNumber       uint8
	Time               uint32
	ReferenceProbeCold int16
	ReferenceProbeHot  int16
	HeatProbeCold      int16
	HeatProbeHot       int16
	GrowthSensor       uint32
	Voltage            uint32
	NumberOfBits       uint8
	AirHumidity        uint8
	AirTemperature     int16
	GravityZMean       int16
	GravityZDerivation int16
	GravityYMean       int16
	GravityYDerivation int16
	GravityXMean       int16
	GravityXDerivation int16
	Moisture           int16
}

func (*DataRev31) Kind() Kind { return KindDataRev31 }

func decodeDataRev31(h Header, r *reader) Packet {
	return &DataRev31{
		Header:             h,
		PacketNumber:       r.u8(),
		Time:               r.u32(),
		ReferenceProbeCold: r.i16(),
		ReferenceProbeHot:  r.i16(),
		HeatProbeCold:      r.i16(),
		HeatProbeHot:       r.i16(),
		GrowthSensor:       r.u32(),
		Voltage:            r.u32(),
		NumberOfBits:       r.u8(),
		AirHumidity:        r.u8(),
		AirTemperature:     r.i16(),
		GravityZMean:       r.i16(),
		GravityZDerivation: r.i16(),
		GravityYMean:       r.i16(),
		GravityYDerivation: r.i16(),
		GravityXMean:       r.i16(),
		GravityXDerivation: r.i16(),
		Moisture:           r.i16(),
	}
}

func encodeDataRev31(w *writer, p *DataRev31) {
	w.putU8(p.PacketNumber)
	w.putU32(p.Time)
	w.putI16(p.ReferenceProbeCold)
	w.putI16(p.ReferenceProbeHot)
	w.putI16(p.HeatProbeCold)
	w.putI16(p.HeatProbeHot)
	w.putU32(p.GrowthSensor)
	w.putU32(p.Voltage)
	w.putU8(p.NumberOfBits)
	w.putU8(p.AirHumidity)
	w.putI16(p.AirTemperature)
	w.putI16(p.GravityZMean)
	w.putI16(p.GravityZDerivation)
	w.putI16(p.GravityYMean)
	w.putI16(p.GravityYDerivation)
	w.putI16(p.GravityXMean)
	w.putI16(p.GravityXDerivation)
	w.putI16(p.Moisture)
}

// DataRev32 is a revision-3.2 sensor data packet. Probe temperatures are
// raw unsigned ADC pairs; battery voltage is derived from the
// (AdcVoltBat, AdcBandgap) pair rather than carried directly.
type DataRev32 struct {
	Header
	PacketNumber       uint8
	Time               uint32
	ReferenceProbeCold uint32
	ReferenceProbeHot  uint32
	HeatProbeCold      uint32
	HeatProbeHot       uint32
	GrowthSensor       uint32
	AdcBandgap         uint32
	NumberOfBits       uint8
	AirHumidity        uint8
	AirTemperature     int16
	GravityZMean       int16
	GravityZDerivation int16
	GravityYMean       int16
	GravityYDerivation int16
	GravityXMean       int16
	GravityXDerivation int16
	StWC               uint16
	AdcVoltBat         uint32
}

func (*DataRev32) Kind() Kind { return KindDataRev32 }

func decodeDataRev32(h Header, r *reader) Packet {
	p := &DataRev32{Header: h}
	p.PacketNumber = r.u8()
	p.Time = r.u32()
	p.ReferenceProbeCold = r.u32()
	p.HeatProbeCold = r.u32()
	p.GrowthSensor = r.u32()
	p.AdcBandgap = r.u32()
	p.NumberOfBits = r.u8()
	p.AirHumidity = r.u8()
	p.AirTemperature = r.i16()
	p.GravityZMean = r.i16()
	p.GravityZDerivation = r.i16()
	p.GravityYMean = r.i16()
	p.GravityYDerivation = r.i16()
	p.GravityXMean = r.i16()
	p.GravityXDerivation = r.i16()
	p.ReferenceProbeHot = r.u32()
	p.HeatProbeHot = r.u32()
	p.StWC = r.u16()
	p.AdcVoltBat = r.u32()
	return p
}

func encodeDataRev32(w *writer, p *DataRev32) {
	w.putU8(p.PacketNumber)
	w.putU32(p.Time)
	w.putU32(p.ReferenceProbeCold)
	w.putU32(p.HeatProbeCold)
	w.putU32(p.GrowthSensor)
	w.putU32(p.AdcBandgap)
	w.putU8(p.NumberOfBits)
	w.putU8(p.AirHumidity)
	w.putI16(p.AirTemperature)
	w.putI16(p.GravityZMean)
	w.putI16(p.GravityZDerivation)
	w.putI16(p.GravityYMean)
	w.putI16(p.GravityYDerivation)
	w.putI16(p.GravityXMean)
	w.putI16(p.GravityXDerivation)
	w.putU32(p.ReferenceProbeHot)
	w.putU32(p.HeatProbeHot)
	w.putU16(p.StWC)
	w.putU32(p.AdcVoltBat)
}
