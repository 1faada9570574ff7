package qc

import (
	"math"

	"github.com/oceanstream/argo-etl-service/internal/domain"
)

// zScoreScale converts a MAD-based deviation to the equivalent of a standard
// deviation for normally distributed data (Iglewicz & Hoaglin).
const zScoreScale = 0.6745

// detectOutliers flags statistical outliers per parameter using the
// modified Z-score. Missing values never contribute to the statistics and
// are never flagged.
func detectOutliers(p domain.Profile, th Thresholds) map[domain.Param][]bool {
	masks := make(map[domain.Param][]bool, len(domain.Params))
	for _, param := range domain.Params {
		masks[param] = modifiedZScoreMask(p.Values(param), th.Param(param).statCutoff())
	}
	return masks
}

// modifiedZScoreMask marks values whose |0.6745*(v-median)/MAD| exceeds
// cutoff. Requires at least 3 finite values. A zero MAD means the series is
// essentially constant and nothing is flagged, avoiding a division by zero.
func modifiedZScoreMask(values []float64, cutoff float64) []bool {
	mask := make([]bool, len(values))

	fin := finiteValues(values)
	if len(fin) < 3 {
		return mask
	}

	med := median(fin)
	mad := medianAbsDeviation(fin, med)
	if mad == 0 {
		return mask
	}

	for i, v := range values {
		if !finite(v) {
			continue
		}
		z := zScoreScale * (v - med) / mad
		if math.Abs(z) > cutoff {
			mask[i] = true
		}
	}
	return mask
}
