package coordinator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treetalker/ttcloud/internal/ttbus"
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

func claim(gw, talker ttpacket.Address) []byte {
	raw, _ := json.Marshal(ttbus.HeloClaim{Gateway: gw, Talker: talker})
	return raw
}

func verdictFrom(t *testing.T, bus *recordingBus, subject string, idx int) ttbus.HeloVerdict {
	t.Helper()
	require.Greater(t, len(bus.published[subject]), idx)
	var v ttbus.HeloVerdict
	require.NoError(t, json.Unmarshal(bus.published[subject][idx], &v))
	return v
}

func TestFirstClaimIsAccepted(t *testing.T) {
	bus := newRecordingBus()
	c := New(bus)
	talker := ttpacket.Address(100)
	gw := ttpacket.Address(1)

	require.NoError(t, c.HandleClaim(claim(gw, talker)))

	v := verdictFrom(t, bus, ttbus.HeloResponse(gw.String()), 0)
	assert.Equal(t, talker, v.Talker)
	assert.True(t, v.Connect)
	assert.Equal(t, 1, c.AssignmentCount())
}

func TestSecondGatewayClaimingSameTalkerIsRefused(t *testing.T) {
	bus := newRecordingBus()
	c := New(bus)
	talker := ttpacket.Address(100)
	gwA := ttpacket.Address(1)
	gwB := ttpacket.Address(2)

	require.NoError(t, c.HandleClaim(claim(gwA, talker)))
	require.NoError(t, c.HandleClaim(claim(gwB, talker)))

	vA := verdictFrom(t, bus, ttbus.HeloResponse(gwA.String()), 0)
	assert.True(t, vA.Connect)

	vB := verdictFrom(t, bus, ttbus.HeloResponse(gwB.String()), 0)
	assert.False(t, vB.Connect)
	assert.Equal(t, 1, c.AssignmentCount())
}

func TestSameGatewayReclaimingIsAccepted(t *testing.T) {
	bus := newRecordingBus()
	c := New(bus)
	talker := ttpacket.Address(100)
	gw := ttpacket.Address(1)

	require.NoError(t, c.HandleClaim(claim(gw, talker)))
	require.NoError(t, c.HandleClaim(claim(gw, talker)))

	v := verdictFrom(t, bus, ttbus.HeloResponse(gw.String()), 1)
	assert.True(t, v.Connect)
	assert.Equal(t, 1, c.AssignmentCount())
}

func TestDistinctTalkersEachGetTheirOwnGateway(t *testing.T) {
	bus := newRecordingBus()
	c := New(bus)
	gw := ttpacket.Address(1)

	require.NoError(t, c.HandleClaim(claim(gw, ttpacket.Address(100))))
	require.NoError(t, c.HandleClaim(claim(gw, ttpacket.Address(200))))

	assert.Equal(t, 2, c.AssignmentCount())
}
