// Package policy implements the fixed anomaly-detection thresholds and the
// battery/sleep control loop that turn a decoded data or light packet,
// plus recent history, into an anomaly verdict and (where applicable) a
// reply packet. None of the pack's examples carry a statistics or linear
// algebra dependency (no gonum, no stats library anywhere in the
// examined repos), so the small amount of arithmetic here — mean, sample
// stdev, and a simple linear ordinary least squares fit — is hand-rolled
// against the standard library, mirroring exactly what
// original_source/eval/policy.py does with Python's statistics module
// and scikit-learn's LinearRegression.
package policy

import "math"

// Confidence is the sigma multiplier every 3-sigma anomaly rule uses.
const Confidence = 3.0

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdev is the sample standard deviation (n-1 denominator), matching
// Python's statistics.stdev.
func stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}

// beyondConfidence reports whether value strays more than Confidence
// sample-stdevs from mean.
func beyondConfidence(value, m, sd float64) bool {
	return math.Abs(value-m) > sd*Confidence
}

// olsFit fits y = a + b*x by ordinary least squares and evaluates it at
// xPredict. A single data point degenerates to a flat line through it.
func olsFit(xs, ys []float64, xPredict float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if len(xs) == 1 {
		return ys[0]
	}

	mx := mean(xs)
	my := mean(ys)

	var num, den float64
	for i := range xs {
		dx := xs[i] - mx
		num += dx * (ys[i] - my)
		den += dx * dx
	}
	if den == 0 {
		return my
	}

	b := num / den
	a := my - b*mx
	return a + b*xPredict
}
