package aggregator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treetalker/ttcloud/internal/policy"
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

func writeGravity(t *testing.T, store ttstore.Store, talker ttpacket.Address, at time.Time, xd, yd, zd float64) {
	t.Helper()
	require.NoError(t, store.Write(context.Background(), ttstore.Observation{
		Measurement: policy.MeasurementGravity,
		Talker:      talker,
		Time:        at,
		Fields: map[string]float64{
			policy.FieldGravityXDerivation: xd,
			policy.FieldGravityYDerivation: yd,
			policy.FieldGravityZDerivation: zd,
		},
	}))
}

func TestRunMovementPublishesFleetBaseline(t *testing.T) {
	store := ttstore.NewMemory()
	now := time.Unix(1_700_000_000, 0).UTC()

	writeGravity(t, store, ttpacket.Address(1), now.Add(-time.Hour), 1, 2, 3)
	writeGravity(t, store, ttpacket.Address(2), now.Add(-time.Minute), 3, 4, 5)

	bus := newRecordingBus()
	a := New(store, bus)
	a.Clock = func() time.Time { return now }

	a.Run(context.Background())

	require.Len(t, bus.published[ttbus.GlobalMovement], 1)
	var b ttbus.Baseline
	require.NoError(t, json.Unmarshal(bus.published[ttbus.GlobalMovement][0], &b))
	assert.InDelta(t, 2.0, b.MeanX, 0.001)
	assert.InDelta(t, 3.0, b.MeanY, 0.001)
	assert.InDelta(t, 4.0, b.MeanZ, 0.001)
}

func TestRunMovementSkipsPublishWithoutData(t *testing.T) {
	store := ttstore.NewMemory()
	bus := newRecordingBus()
	a := New(store, bus)
	a.Clock = func() time.Time { return time.Unix(1_700_000_000, 0).UTC() }

	a.Run(context.Background())

	assert.Empty(t, bus.published[ttbus.GlobalMovement])
}

func writeStemTemperature(t *testing.T, store ttstore.Store, talker ttpacket.Address, at time.Time, refCold, refHot, heatCold, heatHot float64) {
	t.Helper()
	require.NoError(t, store.Write(context.Background(), ttstore.Observation{
		Measurement: policy.MeasurementStemTemperature,
		Talker:      talker,
		Time:        at,
		Fields: map[string]float64{
			policy.FieldReferenceProbeCold: refCold,
			policy.FieldReferenceProbeHot:  refHot,
			policy.FieldHeatProbeCold:      heatCold,
			policy.FieldHeatProbeHot:       heatHot,
		},
	}))
}

func TestRunTemperaturePublishesFleetBaselineWithTwoOrMoreRows(t *testing.T) {
	store := ttstore.NewMemory()
	now := time.Unix(1_700_000_000, 0).UTC()

	writeStemTemperature(t, store, ttpacket.Address(1), now.Add(-2*time.Hour), 100, 100, 110, 110)
	writeStemTemperature(t, store, ttpacket.Address(1), now.Add(-time.Hour), 100, 100, 120, 130)

	bus := newRecordingBus()
	a := New(store, bus)
	a.Clock = func() time.Time { return now }

	a.Run(context.Background())

	require.Len(t, bus.published[ttbus.GlobalTemperature], 1)
}

func TestRunTemperatureSkipsPublishWithOnlyOneRow(t *testing.T) {
	store := ttstore.NewMemory()
	now := time.Unix(1_700_000_000, 0).UTC()

	writeStemTemperature(t, store, ttpacket.Address(1), now.Add(-time.Hour), 100, 100, 110, 110)

	bus := newRecordingBus()
	a := New(store, bus)
	a.Clock = func() time.Time { return now }

	a.Run(context.Background())

	assert.Empty(t, bus.published[ttbus.GlobalTemperature])
}
