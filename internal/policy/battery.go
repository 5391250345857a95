package policy

import (
	"context"
	"time"

	"github.com/treetalker/ttcloud/internal/ttstore"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

const (
	// RDE is the fixed gain factor in the sleep-interval control loop.
	RDE = 1.0
	// SleepTimeMin is the lower clamp on any computed sleep interval, in
	// seconds.
	SleepTimeMin = 300
	// SleepTimeDefault seeds the regression when a talker has no prior
	// sleep interval on record.
	SleepTimeDefault = 600
	// sleepTargetVoltage is the battery voltage (mV) the control loop
	// extrapolates 48 hours ahead and steers toward.
	sleepTargetVoltage = 3700.0
	// sleepExtrapolation is how far ahead of "now" voltage is predicted.
	sleepExtrapolation = 48 * time.Hour
	// AnalysisWindowShort is the "last 2 days" window used by every
	// per-talker anomaly evaluation and the battery regression.
	AnalysisWindowShort = 48 * time.Hour
	// AnalysisWindowLong is the "last 7 days" window used by historical
	// mode's "critical" pass.
	AnalysisWindowLong = 7 * 24 * time.Hour
)

// EvaluateSleep runs the battery/sleep OLS regression: it fits a line
// through the talker's recent voltage history plus the current reading,
// extrapolates 48 hours ahead, and nudges lastSleep toward
// sleepTargetVoltage. lastSleep is the talker's previously computed sleep
// interval (SleepTimeDefault if none on record yet).
func EvaluateSleep(ctx context.Context, store ttstore.Store, talker ttpacket.Address, now time.Time, voltageNow float64, lastSleep int) int {
	points, err := store.Query(ctx, ttstore.Query{
		Measurement: MeasurementPower,
		Field:       FieldVoltage,
		Talker:      talker,
		Since:       AnalysisWindowShort,
		Now:         now,
	})
	if err != nil || len(points) == 0 {
		return max(lastSleep, SleepTimeMin)
	}

	xs := make([]float64, 0, len(points)+1)
	ys := make([]float64, 0, len(points)+1)
	for _, p := range points {
		xs = append(xs, float64(p.Time.Unix()))
		ys = append(ys, p.Value)
	}
	xs = append(xs, float64(now.Unix()))
	ys = append(ys, voltageNow)

	predicted := olsFit(xs, ys, float64(now.Add(sleepExtrapolation).Unix()))

	sleep := lastSleep + int(RDE*(sleepTargetVoltage-predicted))
	return max(sleep, SleepTimeMin)
}
