package qc

import (
	"math"

	"github.com/oceanstream/argo-etl-service/internal/domain"
)

// detectGradients flags vertical-gradient anomalies per parameter. The
// gradient between consecutive levels is Δvalue/Δpressure; segments with a
// zero or non-finite pressure difference are excluded so degenerate spacing
// never flags a point on its own. Both endpoints of an anomalous segment are
// marked.
func detectGradients(p domain.Profile, th Thresholds) map[domain.Param][]bool {
	pres := p.Values(domain.ParamPres)

	masks := make(map[domain.Param][]bool, len(domain.Params))
	for _, param := range domain.Params {
		values := p.Values(param)
		threshold := th.Param(param).GradientThreshold
		mask := make([]bool, len(values))

		for i := 0; i < len(values)-1; i++ {
			dp := pres[i+1] - pres[i]
			if !finite(dp) || dp == 0 {
				continue
			}
			if !finite(values[i]) || !finite(values[i+1]) {
				continue
			}
			g := (values[i+1] - values[i]) / dp
			if math.Abs(g) > threshold {
				mask[i] = true
				mask[i+1] = true
			}
		}
		masks[param] = mask
	}
	return masks
}
