package qc

import (
	"math"
	"sort"
)

// median returns the median of vs. It copies before sorting and averages the
// two middle values for even-length input. Returns NaN for empty input.
func median(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// medianAbsDeviation returns the MAD of vs about med.
func medianAbsDeviation(vs []float64, med float64) float64 {
	devs := make([]float64, len(vs))
	for i, v := range vs {
		devs[i] = math.Abs(v - med)
	}
	return median(devs)
}

// finite reports whether v is a real measurement (not NaN or ±Inf).
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteValues returns the finite entries of vs, preserving order.
func finiteValues(vs []float64) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if finite(v) {
			out = append(out, v)
		}
	}
	return out
}
