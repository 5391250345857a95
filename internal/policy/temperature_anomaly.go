package policy

import (
	"context"
	"time"

	"github.com/treetalker/ttcloud/internal/ttstore"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// CriticalAirTemperature is the raw threshold (50.0 degC * 10) above which
// a talker's air-temperature reading is always critical, independent of
// any history.
const CriticalAirTemperature = 500

// TemperatureBaseline is the fleet-wide stdev-of-deltas pair published by
// the aggregator on global/temperature.
type TemperatureBaseline struct {
	StdevDeltaCold, StdevDeltaHot float64
}

// StemTemperatureReading holds one packet's raw probe measurements.
type StemTemperatureReading struct {
	ReferenceProbeCold, ReferenceProbeHot float64
	HeatProbeCold, HeatProbeHot           float64
}

// EvaluateStemTemperature converts the raw probe readings to degrees,
// computes the current cold/hot deltas, and flags an anomaly when either
// delta strays more than Confidence fleet-wide stdevs from this talker's
// own recent mean delta. Requires both history and a published baseline;
// either missing means no anomaly.
func EvaluateStemTemperature(ctx context.Context, store ttstore.Store, talker ttpacket.Address, now time.Time, window time.Duration, r StemTemperatureReading, baseline TemperatureBaseline, baselineSet bool) (bool, float64, float64) {
	deltaCold := absF(ComputeTemperature(r.HeatProbeCold) - ComputeTemperature(r.ReferenceProbeCold))
	deltaHot := absF(ComputeTemperature(r.HeatProbeHot) - ComputeTemperature(r.ReferenceProbeHot))

	if !baselineSet {
		return false, deltaCold, deltaHot
	}

	cold, errCold := queryField(ctx, store, MeasurementStemTemperature, FieldReferenceProbeCold, talker, now, window)
	coldHeat, errColdHeat := queryField(ctx, store, MeasurementStemTemperature, FieldHeatProbeCold, talker, now, window)
	hot, errHot := queryField(ctx, store, MeasurementStemTemperature, FieldReferenceProbeHot, talker, now, window)
	hotHeat, errHotHeat := queryField(ctx, store, MeasurementStemTemperature, FieldHeatProbeHot, talker, now, window)
	if errCold != nil || errColdHeat != nil || errHot != nil || errHotHeat != nil {
		return false, deltaCold, deltaHot
	}
	if len(cold) == 0 || len(coldHeat) == 0 || len(hot) == 0 || len(hotHeat) == 0 {
		return false, deltaCold, deltaHot
	}

	meanDeltaCold := mean(deltaSeries(coldHeat, cold))
	meanDeltaHot := mean(deltaSeries(hotHeat, hot))

	anomaly := absF(deltaCold-meanDeltaCold) > baseline.StdevDeltaCold*Confidence ||
		absF(deltaHot-meanDeltaHot) > baseline.StdevDeltaHot*Confidence

	return anomaly, deltaCold, deltaHot
}

// EvaluateAirTemperature flags a raw air-temperature reading at or above
// CriticalAirTemperature.
func EvaluateAirTemperature(raw int16) bool {
	return int(raw) >= CriticalAirTemperature
}

func deltaSeries(heat, reference []float64) []float64 {
	n := len(heat)
	if len(reference) < n {
		n = len(reference)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = absF(heat[i] - reference[i])
	}
	return out
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
