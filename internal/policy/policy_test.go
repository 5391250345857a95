package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treetalker/ttcloud/internal/ttstore"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

func TestComputeTemperature(t *testing.T) {
	// Cross-checked against original_source/ttcloud/ttt/util.py's
	// compute_temperature for a representative raw ADC reading.
	got := ComputeTemperature(20000)
	assert.InDelta(t, 47.9, got, 0.05)
}

func TestComputeBatteryVoltageRev32(t *testing.T) {
	v := ComputeBatteryVoltageRev32(2200, 1100)
	assert.InDelta(t, 4400, v, 0.01)
}

func TestComputeBatteryVoltageRev31(t *testing.T) {
	v := ComputeBatteryVoltageRev31(1100)
	assert.InDelta(t, 131722, v, 1)
}

func TestEvaluateSleepLinearDeclineHoldsSteady(t *testing.T) {
	// spec.md §8 edge case: history declines 3800mV -> 3750mV over 48h;
	// 48h-ahead extrapolation lands on 3700mV exactly, so the regression
	// contributes nothing and sleep equals the prior value.
	store := ttstore.NewMemory()
	talker := ttpacket.Address(42)
	now := time.Unix(1_700_000_000, 0).UTC()

	require.NoError(t, store.Write(context.Background(), ttstore.Observation{
		Measurement: MeasurementPower,
		Talker:      talker,
		Fields:      map[string]float64{FieldVoltage: 3800},
		Time:        now.Add(-48 * time.Hour),
	}))

	sleep := EvaluateSleep(context.Background(), store, talker, now, 3750, 600)
	assert.Equal(t, 600, sleep)
}

func TestEvaluateSleepNoHistoryUsesLastSleepClamped(t *testing.T) {
	store := ttstore.NewMemory()
	sleep := EvaluateSleep(context.Background(), store, ttpacket.Address(1), time.Now(), 3700, 100)
	assert.Equal(t, SleepTimeMin, sleep)
}

func TestEvaluatePositionRequiresTwoPointsPerAxis(t *testing.T) {
	store := ttstore.NewMemory()
	talker := ttpacket.Address(7)
	now := time.Now()

	anomaly, _, evaluated := EvaluatePosition(context.Background(), store, talker, now, AnalysisWindowShort, Reading{})
	assert.False(t, evaluated)
	assert.False(t, anomaly)
}

func TestEvaluatePositionFlagsOutlier(t *testing.T) {
	store := ttstore.NewMemory()
	talker := ttpacket.Address(7)
	now := time.Now()
	ctx := context.Background()

	for i, v := range []float64{10, 10, 11, 9} {
		require.NoError(t, store.Write(ctx, ttstore.Observation{
			Measurement: MeasurementGravity,
			Talker:      talker,
			Fields: map[string]float64{
				FieldGravityXMean: v,
				FieldGravityYMean: v,
				FieldGravityZMean: v,
			},
			Time: now.Add(-time.Duration(i+1) * time.Hour),
		}))
	}

	anomaly, baseline, evaluated := EvaluatePosition(ctx, store, talker, now, AnalysisWindowShort, Reading{MeanX: 500, MeanY: 500, MeanZ: 500})
	require.True(t, evaluated)
	assert.True(t, anomaly)
	assert.Greater(t, baseline.StdevX, 0.0)
}

func TestEvaluateMovementNoBaselineYet(t *testing.T) {
	assert.False(t, EvaluateMovement(Reading{DerivationX: 1000}, Baseline{}, false))
}

func TestEvaluateMovementFlagsOutlier(t *testing.T) {
	baseline := Baseline{MeanX: 0, StdevX: 1, MeanY: 0, StdevY: 1, MeanZ: 0, StdevZ: 1}
	assert.True(t, EvaluateMovement(Reading{DerivationX: 100}, baseline, true))
	assert.False(t, EvaluateMovement(Reading{DerivationX: 1}, baseline, true))
}

func TestEvaluateStemTemperatureNoBaseline(t *testing.T) {
	store := ttstore.NewMemory()
	anomaly, deltaCold, deltaHot := EvaluateStemTemperature(context.Background(), store, ttpacket.Address(1), time.Now(), AnalysisWindowShort,
		StemTemperatureReading{ReferenceProbeCold: 20000, HeatProbeCold: 20500, ReferenceProbeHot: 19000, HeatProbeHot: 19200},
		TemperatureBaseline{}, false)
	assert.False(t, anomaly)
	assert.NotZero(t, deltaCold)
	assert.NotZero(t, deltaHot)
}

func TestEvaluateAirTemperature(t *testing.T) {
	assert.True(t, EvaluateAirTemperature(CriticalAirTemperature))
	assert.True(t, EvaluateAirTemperature(CriticalAirTemperature+1))
	assert.False(t, EvaluateAirTemperature(CriticalAirTemperature-1))
}

func TestComposeCommand1ForcesMinSleepOnAnomaly(t *testing.T) {
	cmd := ComposeCommand1(ttpacket.Address(1), ttpacket.Address(2), time.Unix(100, 0), 900, true, 5)
	assert.EqualValues(t, SleepTimeMin, cmd.SleepInterval)
	assert.EqualValues(t, SleepTimeMin/6, cmd.Heating)
	assert.EqualValues(t, DataCommand, cmd.Command)
	assert.EqualValues(t, TimeSlotLength, cmd.SlotLength)
	assert.EqualValues(t, 5, cmd.Slot)
	assert.EqualValues(t, 0, cmd.Reserved)
}

func TestComposeCommand1NoAnomalyKeepsComputedSleep(t *testing.T) {
	cmd := ComposeCommand1(ttpacket.Address(1), ttpacket.Address(2), time.Unix(100, 0), 900, false, 0)
	assert.EqualValues(t, 900, cmd.SleepInterval)
	assert.EqualValues(t, 150, cmd.Heating)
}

func TestComposeCommand2IsFixed(t *testing.T) {
	cmd := ComposeCommand2(ttpacket.Address(1), ttpacket.Address(2), time.Unix(100, 0))
	assert.EqualValues(t, LightCommand, cmd.Command)
	assert.EqualValues(t, 50, cmd.IntegrationTime)
	assert.EqualValues(t, 3, cmd.Gain)
}

func TestEvaluateBrightnessNoHistory(t *testing.T) {
	store := ttstore.NewMemory()
	anomaly := EvaluateBrightness(context.Background(), store, ttpacket.Address(1), time.Now(), AnalysisWindowShort, [6]float64{}, [6]float64{})
	assert.False(t, anomaly)
}

func TestEvaluateBrightnessFlagsOutlier(t *testing.T) {
	store := ttstore.NewMemory()
	talker := ttpacket.Address(9)
	now := time.Now()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		fields := map[string]float64{}
		for _, f := range AS7263Fields {
			fields[f] = 10
		}
		require.NoError(t, store.Write(ctx, ttstore.Observation{
			Measurement: MeasurementAS7263,
			Talker:      talker,
			Fields:      fields,
			Time:        now.Add(-time.Duration(i+1) * time.Hour),
		}))

		blueFields := map[string]float64{}
		for _, f := range AS7262Fields {
			blueFields[f] = 10
		}
		require.NoError(t, store.Write(ctx, ttstore.Observation{
			Measurement: MeasurementAS7262,
			Talker:      talker,
			Fields:      blueFields,
			Time:        now.Add(-time.Duration(i+1) * time.Hour),
		}))
	}

	var hotRed, flatBlue [6]float64
	for i := range hotRed {
		hotRed[i] = 1000
		flatBlue[i] = 10
	}

	anomaly := EvaluateBrightness(ctx, store, talker, now, AnalysisWindowShort, hotRed, flatBlue)
	assert.True(t, anomaly)
}

func TestComputeMovementBaselineRequiresOnePointPerAxis(t *testing.T) {
	_, ok := ComputeMovementBaseline(nil, []float64{1}, []float64{1})
	assert.False(t, ok)

	b, ok := ComputeMovementBaseline([]float64{1, 2}, []float64{1}, []float64{1})
	require.True(t, ok)
	assert.Equal(t, 1.5, b.MeanX)
}

func TestComputeTemperatureBaselineRequiresTwoRowsPerProbe(t *testing.T) {
	_, ok := ComputeTemperatureBaseline([]float64{1}, []float64{1, 2})
	assert.False(t, ok)

	b, ok := ComputeTemperatureBaseline([]float64{1, 2, 3}, []float64{1, 3})
	require.True(t, ok)
	assert.Greater(t, b.StdevDeltaCold, 0.0)
}

func TestQueryFleetMovementBaselinePoolsAcrossTalkers(t *testing.T) {
	store := ttstore.NewMemory()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0).UTC()

	require.NoError(t, store.Write(ctx, ttstore.Observation{
		Measurement: MeasurementGravity,
		Talker:      ttpacket.Address(1),
		Time:        now.Add(-time.Hour),
		Fields: map[string]float64{
			FieldGravityXDerivation: 1,
			FieldGravityYDerivation: 2,
			FieldGravityZDerivation: 3,
		},
	}))
	require.NoError(t, store.Write(ctx, ttstore.Observation{
		Measurement: MeasurementGravity,
		Talker:      ttpacket.Address(2),
		Time:        now.Add(-time.Minute),
		Fields: map[string]float64{
			FieldGravityXDerivation: 3,
			FieldGravityYDerivation: 4,
			FieldGravityZDerivation: 5,
		},
	}))

	baseline, ok, err := QueryFleetMovementBaseline(ctx, store, now, AnalysisWindowShort)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2.0, baseline.MeanX)
	assert.Equal(t, 3.0, baseline.MeanY)
	assert.Equal(t, 4.0, baseline.MeanZ)

	_, ok, err = QueryFleetMovementBaseline(ctx, store, now.Add(-30*24*time.Hour), AnalysisWindowShort)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueryFleetTemperatureBaselineRequiresTwoRows(t *testing.T) {
	store := ttstore.NewMemory()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0).UTC()

	write := func(talker ttpacket.Address, at time.Time, refCold, refHot, heatCold, heatHot float64) {
		require.NoError(t, store.Write(ctx, ttstore.Observation{
			Measurement: MeasurementStemTemperature,
			Talker:      talker,
			Time:        at,
			Fields: map[string]float64{
				FieldReferenceProbeCold: refCold,
				FieldReferenceProbeHot:  refHot,
				FieldHeatProbeCold:      heatCold,
				FieldHeatProbeHot:       heatHot,
			},
		}))
	}

	write(ttpacket.Address(1), now.Add(-2*time.Hour), 100, 100, 110, 110)
	_, ok, err := QueryFleetTemperatureBaseline(ctx, store, now, AnalysisWindowShort)
	require.NoError(t, err)
	assert.False(t, ok)

	write(ttpacket.Address(2), now.Add(-time.Hour), 100, 100, 120, 130)
	baseline, ok, err := QueryFleetTemperatureBaseline(ctx, store, now, AnalysisWindowShort)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, baseline.StdevDeltaCold, 0.0)
}
