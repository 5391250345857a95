package policy

import (
	"context"
	"time"

	"github.com/treetalker/ttcloud/internal/ttstore"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// scalarRed and scalarBlue weight each spectrometer band before they are
// averaged into one scalar per bank, favoring the infrared end of the red
// bank per original_source/eval/policy.py's comment referencing Allison
// et al. 2016 on airborne wildfire detection.
var (
	scalarRed  = [6]float64{0.4, 0.5, 1, 2, 3, 5}
	scalarBlue = [6]float64{1, 1, 1, 1, 1, 1}
)

func scaledBrightness(bands [6]float64, scalar [6]float64) float64 {
	var sum float64
	for i, v := range bands {
		sum += v * scalar[i]
	}
	return sum / 6
}

// EvaluateBrightness computes the current scaled red/blue brightness
// scalars and flags an anomaly if either strays more than Confidence
// stdevs from this talker's recent history. Absence of history on either
// bank means no anomaly, not an error.
func EvaluateBrightness(ctx context.Context, store ttstore.Store, talker ttpacket.Address, now time.Time, window time.Duration, as7263, as7262 [6]float64) bool {
	curRed := scaledBrightness(as7263, scalarRed)
	curBlue := scaledBrightness(as7262, scalarBlue)

	reds, err := queryBankHistory(ctx, store, MeasurementAS7263, AS7263Fields, scalarRed, talker, now, window)
	if err != nil || len(reds) == 0 {
		return false
	}
	blues, err := queryBankHistory(ctx, store, MeasurementAS7262, AS7262Fields, scalarBlue, talker, now, window)
	if err != nil || len(blues) == 0 {
		return false
	}

	return beyondConfidence(curRed, mean(reds), stdev(reds)) ||
		beyondConfidence(curBlue, mean(blues), stdev(blues))
}

// queryBankHistory fetches each band field's history independently and
// assembles per-timestamp scaled scalars from the points present at each
// index. The Python original pulls all six bands in one row-oriented
// query; ttstore's Query is one field at a time, so the assembly happens
// here instead, on the shortest of the six series.
func queryBankHistory(ctx context.Context, store ttstore.Store, measurement string, fields [6]string, scalar [6]float64, talker ttpacket.Address, now time.Time, window time.Duration) ([]float64, error) {
	var series [6][]float64
	minLen := -1
	for i, field := range fields {
		vals, err := queryField(ctx, store, measurement, field, talker, now, window)
		if err != nil {
			return nil, err
		}
		series[i] = vals
		if minLen == -1 || len(vals) < minLen {
			minLen = len(vals)
		}
	}

	out := make([]float64, 0, minLen)
	for i := 0; i < minLen; i++ {
		var bands [6]float64
		for b := range fields {
			bands[b] = series[b][i]
		}
		out = append(out, scaledBrightness(bands, scalar))
	}
	return out, nil
}
