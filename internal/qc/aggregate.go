package qc

import (
	"github.com/oceanstream/argo-etl-service/internal/domain"
)

// Detector names, as recorded in point verdicts and report metadata.
const (
	detectorLimits   = "physical_limits"
	detectorOutlier  = "statistical_outlier"
	detectorSpike    = "spike"
	detectorGradient = "gradient"
	detectorDensity  = "density_inversion"
)

// detectorNames is the fixed merge order. Aggregation iterates this list so
// the final verdict never depends on which detector goroutine finished first.
var detectorNames = []string{detectorLimits, detectorOutlier, detectorSpike, detectorGradient, detectorDensity}

// detection is one detector's output: a boolean mask per parameter, indexed
// by acquisition order.
type detection struct {
	name  string
	masks map[domain.Param][]bool
}

// pointVerdict is the final per-level, per-parameter outcome.
type pointVerdict struct {
	Flag      domain.Flag
	Detectors []string // detectors that contributed a bad classification
}

// aggregateFlags merges source flags, the physical-limits check and the
// detector masks into one verdict per point.
//
// Precedence is encoded in the flag severity table (domain.Escalate): the
// limits check proposes bad, detectors propose probably-bad, and escalation
// never downgrades. A point that was checked and passed everything moves
// from "no QC" to good; contextual source flags (changed, estimated, ...)
// survive unless a check fires on them.
func aggregateFlags(p domain.Profile, th Thresholds, detections []detection) [][]pointVerdict {
	verdicts := make([][]pointVerdict, len(p.Levels))

	for i, level := range p.Levels {
		verdicts[i] = make([]pointVerdict, len(domain.Params))
		for j, param := range domain.Params {
			verdicts[i][j] = judgePoint(level, param, i, th, detections)
		}
	}
	return verdicts
}

func judgePoint(level domain.Level, param domain.Param, idx int, th Thresholds, detections []detection) pointVerdict {
	value := level.Value(param)
	if !finite(value) {
		return pointVerdict{Flag: domain.FlagMissing}
	}

	v := pointVerdict{Flag: level.SourceFlag(param)}

	// Physical limits: inclusive bounds, highest precedence.
	pt := th.Param(param)
	if value < pt.Min || value > pt.Max {
		v.Flag = domain.Escalate(v.Flag, domain.FlagBad)
		v.Detectors = append(v.Detectors, detectorLimits)
	}

	for _, d := range detections {
		if mask := d.masks[param]; idx < len(mask) && mask[idx] {
			v.Flag = domain.Escalate(v.Flag, domain.FlagProbablyBad)
			v.Detectors = append(v.Detectors, d.name)
		}
	}

	// Checked and clean: promote an unqualified point to good. Contextual
	// source flags other than "no QC" are preserved as-is.
	if len(v.Detectors) == 0 && v.Flag == domain.FlagNoQC {
		v.Flag = domain.FlagGood
	}
	return v
}

// countMask returns the number of flagged points across all parameters.
func countMask(masks map[domain.Param][]bool) int {
	n := 0
	for _, param := range domain.Params {
		for _, hit := range masks[param] {
			if hit {
				n++
			}
		}
	}
	return n
}
