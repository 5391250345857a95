package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treetalker/ttcloud/internal/ttbus"
	"github.com/treetalker/ttcloud/internal/ttstore"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

type recordingBus struct {
	published map[string][][]byte
}

func newRecordingBus() *recordingBus {
	return &recordingBus{published: make(map[string][][]byte)}
}

func (b *recordingBus) Publish(subject string, data []byte) error {
	b.published[subject] = append(b.published[subject], data)
	return nil
}

func newTestEngine(own ttpacket.Address) (*Engine, *recordingBus) {
	bus := newRecordingBus()
	e := New(NewState(own), ttstore.NewMemory(), bus)
	e.Clock = func() time.Time { return time.Unix(1_700_000_000, 0).UTC() }
	return e, bus
}

func TestColdStartHeloAssignsSequentialSlots(t *testing.T) {
	own := ttpacket.Address(1)
	e, bus := newTestEngine(own)

	talkerA := ttpacket.Address(100)
	talkerB := ttpacket.Address(200)

	heloA := &ttpacket.Helo{Header: ttpacket.Header{Receiver: ttpacket.Multicast, Sender: talkerA}, PacketNumber: 1}
	require.NoError(t, e.HandleInbound(context.Background(), ttpacket.Marshal(heloA)))

	require.Len(t, bus.published[ttbus.HeloRequest], 1)
	var claim ttbus.HeloClaim
	require.NoError(t, json.Unmarshal(bus.published[ttbus.HeloRequest][0], &claim))
	assert.Equal(t, talkerA, claim.Talker)
	assert.Equal(t, own, claim.Gateway)

	verdictA, err := json.Marshal(ttbus.HeloVerdict{Talker: talkerA, Connect: true})
	require.NoError(t, err)
	require.NoError(t, e.HandleHeloResponse(verdictA))
	assert.EqualValues(t, 1, e.State.SlotOf(talkerA))

	heloB := &ttpacket.Helo{Header: ttpacket.Header{Receiver: ttpacket.Multicast, Sender: talkerB}, PacketNumber: 1}
	require.NoError(t, e.HandleInbound(context.Background(), ttpacket.Marshal(heloB)))
	verdictB, err := json.Marshal(ttbus.HeloVerdict{Talker: talkerB, Connect: true})
	require.NoError(t, err)
	require.NoError(t, e.HandleHeloResponse(verdictB))
	assert.EqualValues(t, 2, e.State.SlotOf(talkerB))

	// CloudHelo replies were published on the gateway's command subject.
	commandSubject := ttbus.Command(own.String())
	require.Len(t, bus.published[commandSubject], 2)
}

func TestHeloResponseRefusalIsSilent(t *testing.T) {
	own := ttpacket.Address(1)
	e, bus := newTestEngine(own)
	talker := ttpacket.Address(100)

	verdict, err := json.Marshal(ttbus.HeloVerdict{Talker: talker, Connect: false})
	require.NoError(t, err)
	require.NoError(t, e.HandleHeloResponse(verdict))

	assert.EqualValues(t, 0, e.State.SlotOf(talker))
	assert.Empty(t, bus.published)
}

func TestInboundPacketAddressedElsewhereIsDropped(t *testing.T) {
	e, bus := newTestEngine(ttpacket.Address(1))
	helo := &ttpacket.Helo{Header: ttpacket.Header{Receiver: ttpacket.Address(99), Sender: ttpacket.Address(2)}, PacketNumber: 1}

	require.NoError(t, e.HandleInbound(context.Background(), ttpacket.Marshal(helo)))
	assert.Empty(t, bus.published)
}

func TestInboundUnknownTagIsError(t *testing.T) {
	e, _ := newTestEngine(ttpacket.Address(1))
	err := e.HandleInbound(context.Background(), []byte{1, 0, 0, 0, 2, 0, 0, 0, 0x0a})
	assert.Error(t, err)
}

func TestDataRev32ReplyUsesAssignedSlot(t *testing.T) {
	own := ttpacket.Address(1)
	e, bus := newTestEngine(own)
	talker := ttpacket.Address(77)

	data := &ttpacket.DataRev32{
		Header:             ttpacket.Header{Receiver: own, Sender: talker},
		PacketNumber:       1,
		Time:               1_700_000_000,
		ReferenceProbeCold: 20000,
		ReferenceProbeHot:  19000,
		HeatProbeCold:      20500,
		HeatProbeHot:       19200,
		GrowthSensor:       1,
		AdcBandgap:         1100,
		AirHumidity:        40,
		AirTemperature:     300,
		AdcVoltBat:         2200,
	}

	require.NoError(t, e.HandleInbound(context.Background(), ttpacket.Marshal(data)))

	commandSubject := ttbus.Command(own.String())
	require.Len(t, bus.published[commandSubject], 1)

	pkt, err := ttpacket.Unmarshal(bus.published[commandSubject][0])
	require.NoError(t, err)
	cmd1, ok := pkt.(*ttpacket.Command1)
	require.True(t, ok)
	assert.EqualValues(t, 1, cmd1.Slot)
	assert.GreaterOrEqual(t, cmd1.SleepInterval, uint16(300))
}

func TestDataRev32CriticalAirTemperaturePublishesAnomaly(t *testing.T) {
	own := ttpacket.Address(1)
	e, bus := newTestEngine(own)
	talker := ttpacket.Address(77)

	data := &ttpacket.DataRev32{
		Header:             ttpacket.Header{Receiver: own, Sender: talker},
		PacketNumber:       1,
		Time:               1_700_000_000,
		AdcBandgap:         1100,
		AdcVoltBat:         2200,
		AirTemperature:     600,
	}

	require.NoError(t, e.HandleInbound(context.Background(), ttpacket.Marshal(data)))
	assert.Len(t, bus.published[ttbus.Anomaly(ttbus.AnomalyAirTemperature, own.String())], 1)
}

func TestRespondFalseSuppressesPublicationButEvaluates(t *testing.T) {
	own := ttpacket.Address(1)
	e, bus := newTestEngine(own)
	e.Respond = false
	talker := ttpacket.Address(100)

	helo := &ttpacket.Helo{Header: ttpacket.Header{Receiver: ttpacket.Multicast, Sender: talker}, PacketNumber: 1}
	require.NoError(t, e.HandleInbound(context.Background(), ttpacket.Marshal(helo)))

	assert.Empty(t, bus.published)
}
