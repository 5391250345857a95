package policy

import (
	"context"
	"time"

	"github.com/treetalker/ttcloud/internal/ttstore"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// Baseline is a fleet-wide or per-talker mean/stdev triple over the three
// gravity axes, as published by the aggregator on global/movement or
// computed locally for the position check.
type Baseline struct {
	MeanX, StdevX float64
	MeanY, StdevY float64
	MeanZ, StdevZ float64
}

// Reading is the subset of a data packet's gravity fields the anomaly
// checks need.
type Reading struct {
	MeanX, MeanY, MeanZ                   float64
	DerivationX, DerivationY, DerivationZ float64
}

// EvaluatePosition flags a talker whose current gravity mean strays more
// than Confidence sample-stdevs from its own recent history on any axis.
// It requires at least two points on every axis; otherwise it reports no
// anomaly (spec: "if ≥ 2 points exist on every axis").
func EvaluatePosition(ctx context.Context, store ttstore.Store, talker ttpacket.Address, now time.Time, window time.Duration, r Reading) (bool, Baseline, bool) {
	xs, errX := queryField(ctx, store, MeasurementGravity, FieldGravityXMean, talker, now, window)
	ys, errY := queryField(ctx, store, MeasurementGravity, FieldGravityYMean, talker, now, window)
	zs, errZ := queryField(ctx, store, MeasurementGravity, FieldGravityZMean, talker, now, window)
	if errX != nil || errY != nil || errZ != nil {
		return false, Baseline{}, false
	}
	if len(xs) < 2 || len(ys) < 2 || len(zs) < 2 {
		return false, Baseline{}, false
	}

	b := Baseline{
		MeanX: mean(xs), StdevX: stdev(xs),
		MeanY: mean(ys), StdevY: stdev(ys),
		MeanZ: mean(zs), StdevZ: stdev(zs),
	}

	anomaly := beyondConfidence(r.MeanX, b.MeanX, b.StdevX) ||
		beyondConfidence(r.MeanY, b.MeanY, b.StdevY) ||
		beyondConfidence(r.MeanZ, b.MeanZ, b.StdevZ)

	return anomaly, b, true
}

// EvaluateMovement compares a talker's derivative triple to the fleet
// movement baseline. baselineSet must be false until the aggregator has
// published at least once, in which case this always reports no anomaly.
func EvaluateMovement(r Reading, baseline Baseline, baselineSet bool) bool {
	if !baselineSet {
		return false
	}

	return beyondConfidence(r.DerivationX, baseline.MeanX, baseline.StdevX) ||
		beyondConfidence(r.DerivationY, baseline.MeanY, baseline.StdevY) ||
		beyondConfidence(r.DerivationZ, baseline.MeanZ, baseline.StdevZ)
}

func queryField(ctx context.Context, store ttstore.Store, measurement, field string, talker ttpacket.Address, now time.Time, window time.Duration) ([]float64, error) {
	points, err := store.Query(ctx, ttstore.Query{
		Measurement: measurement,
		Field:       field,
		Talker:      talker,
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
