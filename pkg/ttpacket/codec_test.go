package ttpacket

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestHeloRoundTrip(t *testing.T) {
	raw := mustHex(t, "4a4a4a4a520103520502")

	p, err := Unmarshal(raw)
	require.NoError(t, err)

	helo, ok := p.(*Helo)
	require.True(t, ok)
	assert.Equal(t, Address(0x4a4a4a4a), helo.Receiver)
	assert.Equal(t, Address(0x52030152), helo.Sender)
	assert.Equal(t, uint8(2), helo.PacketNumber)

	assert.Equal(t, raw, Marshal(helo))
}

func TestCloudHeloRoundTrip(t *testing.T) {
	raw := mustHex(t, "52010352180103c241be52d84860")

	p, err := Unmarshal(raw)
	require.NoError(t, err)

	ch, ok := p.(*CloudHelo)
	require.True(t, ok)
	assert.Equal(t, uint8(190), ch.Command)
	assert.Equal(t, uint32(1615386706), ch.Time)

	assert.Equal(t, raw, Marshal(ch))
}

func TestCommand1RoundTrip(t *testing.T) {
	raw := mustHex(t, "52010352180103c242188cd84860100e000058022d02")

	p, err := Unmarshal(raw)
	require.NoError(t, err)

	c1, ok := p.(*Command1)
	require.True(t, ok)
	assert.Equal(t, uint8(24), c1.Command)
	assert.Equal(t, uint32(1615386764), c1.Time)
	assert.Equal(t, uint16(3600), c1.SleepInterval)
	assert.Equal(t, uint16(0), c1.Reserved)
	assert.Equal(t, uint16(600), c1.Heating)
	assert.Equal(t, uint8(45), c1.SlotLength)
	assert.Equal(t, uint8(2), c1.Slot)

	assert.Equal(t, raw, Marshal(c1))
}

func TestCommand2RoundTrip(t *testing.T) {
	raw := mustHex(t, "52010352180103c24a5289e148603203")

	p, err := Unmarshal(raw)
	require.NoError(t, err)

	c2, ok := p.(*Command2)
	require.True(t, ok)
	assert.Equal(t, uint8(82), c2.Command)
	assert.Equal(t, uint32(1615389065), c2.Time)
	assert.Equal(t, uint8(50), c2.IntegrationTime)
	assert.Equal(t, uint8(3), c2.Gain)

	assert.Equal(t, raw, Marshal(c2))
}

func TestDataRev32RoundTrip(t *testing.T) {
	raw := mustHex(t, "180103c2520103524d014038000077850000fa8500006cb8000041aa0000111ee2003900ddfc920f000000000000788500000256000086c545430100")

	p, err := Unmarshal(raw)
	require.NoError(t, err)

	d, ok := p.(*DataRev32)
	require.True(t, ok)
	assert.Equal(t, uint8(1), d.PacketNumber)
	assert.Equal(t, uint32(14400), d.Time)
	assert.Equal(t, uint32(34167), d.ReferenceProbeCold)
	assert.Equal(t, uint32(34168), d.ReferenceProbeHot)
	assert.Equal(t, uint32(34298), d.HeatProbeCold)
	assert.Equal(t, uint32(22018), d.HeatProbeHot)
	assert.Equal(t, uint32(47212), d.GrowthSensor)
	assert.Equal(t, uint32(43585), d.AdcBandgap)
	assert.Equal(t, uint8(17), d.NumberOfBits)
	assert.Equal(t, uint8(30), d.AirHumidity)
	assert.Equal(t, int16(226), d.AirTemperature)
	assert.Equal(t, int16(57), d.GravityZMean)
	assert.Equal(t, int16(-803), d.GravityZDerivation)
	assert.Equal(t, int16(3986), d.GravityYMean)
	assert.Equal(t, int16(0), d.GravityYDerivation)
	assert.Equal(t, int16(0), d.GravityXMean)
	assert.Equal(t, int16(0), d.GravityXDerivation)
	assert.Equal(t, uint16(50566), d.StWC)
	assert.Equal(t, uint32(82757), d.AdcVoltBat)

	assert.Equal(t, raw, Marshal(d))
}

func TestLightRoundTrip(t *testing.T) {
	raw := mustHex(t, "180103c252010352490240380000d10793414856da411448754256158f428151b34230d4b34245216742e5156842247e304244c42d42ea760f42d9e10b423203")

	p, err := Unmarshal(raw)
	require.NoError(t, err)

	l, ok := p.(*Light)
	require.True(t, ok)
	assert.Equal(t, uint8(2), l.PacketNumber)
	assert.Equal(t, uint32(14400), l.Time)
	assert.InDelta(t, 18.378816604614258, l.AS7263[0], 1e-6)
	assert.InDelta(t, 89.9144287109375, l.AS7263[5], 1e-6)
	assert.InDelta(t, 57.78248977661133, l.AS7262[0], 1e-6)
	assert.InDelta(t, 34.97055435180664, l.AS7262[5], 1e-6)
	assert.Equal(t, uint8(50), l.IntegrationTime)
	assert.Equal(t, uint8(3), l.Gain)

	assert.Equal(t, raw, Marshal(l))
}

func TestUnmarshalUnknownTag(t *testing.T) {
	raw := mustHex(t, "4a4a4a4a520103520a02")

	_, err := Unmarshal(raw)
	require.Error(t, err)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrUnknownTag, de.Kind)
}

func TestUnmarshalTruncated(t *testing.T) {
	raw := mustHex(t, "4a4a4a4a5201035205")

	_, err := Unmarshal(raw)
	require.Error(t, err)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrTruncated, de.Kind)
}

func TestUnmarshalShortHeader(t *testing.T) {
	_, err := Unmarshal([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
}

func TestDataRev31RoundTrip(t *testing.T) {
	orig := &DataRev31{
		Header:             Header{Receiver: Multicast, Sender: 0x11223344},
		PacketNumber:       7,
		Time:               1700000000,
		ReferenceProbeCold: -120,
		ReferenceProbeHot:  340,
		HeatProbeCold:      -80,
		HeatProbeHot:       900,
		GrowthSensor:       12345,
		Voltage:            3700,
		NumberOfBits:       12,
		AirHumidity:        45,
		AirTemperature:     225,
		GravityZMean:       10,
		GravityZDerivation: -5,
		GravityYMean:       20,
		GravityYDerivation: -10,
		GravityXMean:       30,
		GravityXDerivation: -15,
		Moisture:           512,
	}

	raw := Marshal(orig)
	p, err := Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, orig, p)
	assert.Equal(t, raw, Marshal(p))
}
