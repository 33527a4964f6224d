package analyze

import (
	"math"
	"sort"
)

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev computes the sample standard deviation (n-1 in the
// denominator). Callers must guarantee len(values) >= 2.
func sampleStdDev(values []float64) float64 {
	m := mean(values)
	varianceSum := 0.0
	for _, v := range values {
		varianceSum += (v - m) * (v - m)
	}
	return math.Sqrt(varianceSum / float64(len(values)-1))
}

// median returns the middle value, or the average of the two middle
// values for an even count.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
