package qc

import (
	"math"

	"github.com/oceanstream/argo-etl-service/internal/domain"
)

// detectSpikes flags spikes per parameter. Two independent methods run over
// each series; a point is a spike when either method flags it.
func detectSpikes(p domain.Profile, th Thresholds) map[domain.Param][]bool {
	masks := make(map[domain.Param][]bool, len(domain.Params))
	for _, param := range domain.Params {
		values := p.Values(param)
		threshold := th.Param(param).SpikeThreshold

		mask := secondDifferenceMask(values, threshold)
		windowMask := windowMedianMask(values, threshold, th.SpikeWindowSize)
		for i := range mask {
			mask[i] = mask[i] || windowMask[i]
		}
		masks[param] = mask
	}
	return masks
}

// secondDifferenceMask flags interior points whose residual against the mean
// of their neighbours exceeds threshold. The residual is corrected by half
// the neighbour-to-neighbour difference, as in the Argo real-time QC spike
// test, so a genuine spike does not drag its own neighbours over the
// threshold. Endpoints are never flagged, and a point is only tested when
// itself and both neighbours are finite.
func secondDifferenceMask(values []float64, threshold float64) []bool {
	mask := make([]bool, len(values))
	for i := 1; i < len(values)-1; i++ {
		if !finite(values[i-1]) || !finite(values[i]) || !finite(values[i+1]) {
			continue
		}
		residual := math.Abs(values[i]-0.5*(values[i-1]+values[i+1])) -
			math.Abs(0.5*(values[i+1]-values[i-1]))
		if residual > threshold {
			mask[i] = true
		}
	}
	return mask
}

// windowMedianMask flags points that deviate from the median of the other
// points in a centered window of the given (odd) size. Points within half a
// window of either end are skipped, as are points with fewer than 2 finite
// neighbours in the window.
func windowMedianMask(values []float64, threshold float64, window int) []bool {
	mask := make([]bool, len(values))
	half := window / 2

	for i := half; i < len(values)-half; i++ {
		if !finite(values[i]) {
			continue
		}

		neighbours := make([]float64, 0, window-1)
		for j := i - half; j <= i+half; j++ {
			if j == i || !finite(values[j]) {
				continue
			}
			neighbours = append(neighbours, values[j])
		}
		if len(neighbours) < 2 {
			continue
		}

		if math.Abs(values[i]-median(neighbours)) > threshold {
			mask[i] = true
		}
	}
	return mask
}
