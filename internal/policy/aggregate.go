package policy

import (
	"context"
	"time"

	"github.com/treetalker/ttcloud/internal/ttstore"
)

// QueryFleetMovementBaseline queries every talker's gravity derivative
// history over window ending at now and reduces it with
// ComputeMovementBaseline. Shared by internal/aggregator (live, window =
// AnalysisWindowShort) and internal/historical (replay, both windows).
func QueryFleetMovementBaseline(ctx context.Context, store ttstore.Store, now time.Time, window time.Duration) (Baseline, bool, error) {
	xs, err := queryFleetField(ctx, store, MeasurementGravity, FieldGravityXDerivation, now, window)
	if err != nil {
		return Baseline{}, false, err
	}
	ys, err := queryFleetField(ctx, store, MeasurementGravity, FieldGravityYDerivation, now, window)
	if err != nil {
		return Baseline{}, false, err
	}
	zs, err := queryFleetField(ctx, store, MeasurementGravity, FieldGravityZDerivation, now, window)
	if err != nil {
		return Baseline{}, false, err
	}

	baseline, ok := ComputeMovementBaseline(xs, ys, zs)
	return baseline, ok, nil
}

// QueryFleetTemperatureBaseline is QueryFleetMovementBaseline's
// stem-temperature counterpart.
func QueryFleetTemperatureBaseline(ctx context.Context, store ttstore.Store, now time.Time, window time.Duration) (TemperatureBaseline, bool, error) {
	refCold, err := queryFleetField(ctx, store, MeasurementStemTemperature, FieldReferenceProbeCold, now, window)
	if err != nil {
		return TemperatureBaseline{}, false, err
	}
	refHot, err := queryFleetField(ctx, store, MeasurementStemTemperature, FieldReferenceProbeHot, now, window)
	if err != nil {
		return TemperatureBaseline{}, false, err
	}
	heatCold, err := queryFleetField(ctx, store, MeasurementStemTemperature, FieldHeatProbeCold, now, window)
	if err != nil {
		return TemperatureBaseline{}, false, err
	}
	heatHot, err := queryFleetField(ctx, store, MeasurementStemTemperature, FieldHeatProbeHot, now, window)
	if err != nil {
		return TemperatureBaseline{}, false, err
	}

	baseline, ok := ComputeTemperatureBaseline(pairwiseAbsDelta(heatCold, refCold), pairwiseAbsDelta(heatHot, refHot))
	return baseline, ok, nil
}

func queryFleetField(ctx context.Context, store ttstore.Store, measurement, field string, now time.Time, window time.Duration) ([]float64, error) {
	points, err := store.Query(ctx, ttstore.Query{
		Measurement: measurement,
		Field:       field,
		AllTalkers:  true,
		Since:       window,
		Now:         now,
	})
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out, nil
}

func pairwiseAbsDelta(a, b []float64) []float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		out[i] = d
	}
	return out
}

// ComputeMovementBaseline reduces per-axis derivative samples collected
// across the whole fleet into a Baseline. ok is false when any axis has
// fewer than one point, per spec.md §4.8 ("publish ... if ≥ 1 point per
// axis").
func ComputeMovementBaseline(xs, ys, zs []float64) (Baseline, bool) {
	if len(xs) < 1 || len(ys) < 1 || len(zs) < 1 {
		return Baseline{}, false
	}

	return Baseline{
		MeanX: mean(xs), StdevX: stdev(xs),
		MeanY: mean(ys), StdevY: stdev(ys),
		MeanZ: mean(zs), StdevZ: stdev(zs),
	}, true
}

// ComputeTemperatureBaseline reduces fleet-wide cold/hot probe deltas
// into the stdev pair the per-talker stem-temperature anomaly check
// compares against. ok is false when either probe has fewer than two
// rows, per spec.md §4.8.
func ComputeTemperatureBaseline(deltaCold, deltaHot []float64) (TemperatureBaseline, bool) {
	if len(deltaCold) < 2 || len(deltaHot) < 2 {
		return TemperatureBaseline{}, false
	}

	return TemperatureBaseline{
		StdevDeltaCold: stdev(deltaCold),
		StdevDeltaHot:  stdev(deltaHot),
	}, true
}
