// Package qc implements the quality-control engine for Argo profiles: a
// structural validator, four independent detectors (statistical outliers,
// spikes, vertical gradients, density inversions), flag aggregation over the
// Argo flag set, and quality classification into a single report.
//
// The engine is pure computation. It performs no I/O, holds no state across
// runs, and never mutates the input profile; many runs may share one Engine
// concurrently as long as the Thresholds value is not modified.
package qc

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/oceanstream/argo-etl-service/internal/domain"
)

// Engine runs the QC pipeline for single profiles against a fixed set of
// thresholds.
type Engine struct {
	thresholds Thresholds
}

// NewEngine validates the thresholds and returns an engine. A thresholds
// value that fails validation is a configuration error, never a degraded
// run.
func NewEngine(th Thresholds) (*Engine, error) {
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("qc thresholds: %w", err)
	}
	return &Engine{thresholds: th}, nil
}

// Thresholds returns the engine's threshold configuration.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Run performs quality control on one profile and returns its report.
//
// The four detectors are evaluated concurrently; their outputs are merged in
// a fixed logical order so the result is identical to a sequential run.
// Cancellation is all-or-nothing: a cancelled context yields an error and no
// report, never a partial one.
func (e *Engine) Run(ctx context.Context, profile domain.Profile) (domain.QCReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.QCReport{}, err
	}

	if reason, ok := validateStructure(profile, e.thresholds); !ok {
		return e.buildRejected(profile, reason), nil
	}

	var (
		outliers  map[domain.Param][]bool
		spikes    map[domain.Param][]bool
		gradients map[domain.Param][]bool

		densityMask    []bool
		inversionPairs int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		outliers = detectOutliers(profile, e.thresholds)
		return gctx.Err()
	})
	g.Go(func() error {
		spikes = detectSpikes(profile, e.thresholds)
		return gctx.Err()
	})
	g.Go(func() error {
		gradients = detectGradients(profile, e.thresholds)
		return gctx.Err()
	})
	g.Go(func() error {
		densityMask, inversionPairs = detectDensityInversions(profile, e.thresholds)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return domain.QCReport{}, err
	}

	// A density inversion implicates the temperature/salinity pair, not the
	// pressure reading, so its mask escalates both of those parameters.
	detections := []detection{
		{name: detectorOutlier, masks: outliers},
		{name: detectorSpike, masks: spikes},
		{name: detectorGradient, masks: gradients},
		{name: detectorDensity, masks: map[domain.Param][]bool{
			domain.ParamTemp: densityMask,
			domain.ParamPsal: densityMask,
		}},
	}

	verdicts := aggregateFlags(profile, e.thresholds, detections)

	return e.buildReport(profile, verdicts, reportCounts{
		outliers:   countMask(outliers),
		spikes:     countMask(spikes),
		gradients:  countMask(gradients),
		inversions: inversionPairs,
	}), nil
}

// reportCounts carries the per-detector scalar totals into report assembly.
type reportCounts struct {
	outliers   int
	spikes     int
	gradients  int
	inversions int
}

func (e *Engine) buildReport(profile domain.Profile, verdicts [][]pointVerdict, counts reportCounts) domain.QCReport {
	flagsSummary := make(map[domain.Flag]int)
	var good, bad, limitViolations int

	for _, levelVerdicts := range verdicts {
		for _, v := range levelVerdicts {
			flagsSummary[v.Flag]++
			switch {
			case v.Flag.IsGood():
				good++
			case v.Flag.IsBad():
				bad++
			}
			for _, d := range v.Detectors {
				if d == detectorLimits {
					limitViolations++
				}
			}
		}
	}

	total := len(profile.Levels) * len(domain.Params)
	goodPct := 0.0
	if denom := good + bad; denom > 0 {
		goodPct = 100 * float64(good) / float64(denom)
	}

	issues := make([]string, 0, 4)
	if issue := positionIssue(profile); issue != "" {
		issues = append(issues, issue)
	}
	if limitViolations > 0 {
		issues = append(issues, fmt.Sprintf("%d values outside physical limits", limitViolations))
	}
	if counts.outliers > 0 {
		issues = append(issues, fmt.Sprintf("%d statistical outliers detected", counts.outliers))
	}
	if counts.spikes > 0 {
		issues = append(issues, fmt.Sprintf("%d spikes detected", counts.spikes))
	}
	if counts.gradients > 0 {
		issues = append(issues, fmt.Sprintf("%d gradient anomalies detected", counts.gradients))
	}
	if counts.inversions > 0 {
		issues = append(issues, fmt.Sprintf("%d density inversions detected", counts.inversions))
	}
	if goodPct < e.thresholds.MinGoodDataPercentage {
		issues = append(issues, fmt.Sprintf("good data %.1f%% below minimum %.1f%%", goodPct, e.thresholds.MinGoodDataPercentage))
	}

	return domain.QCReport{
		ProfileID:          profile.ID,
		TotalMeasurements:  total,
		GoodDataPercentage: goodPct,
		FlagsSummary:       flagsSummary,
		OutliersRemoved:    counts.outliers,
		SpikeDetections:    counts.spikes,
		GradientAnomalies:  counts.gradients,
		DensityInversions:  counts.inversions,
		DataQuality:        classify(goodPct),
		Issues:             issues,
		Metadata:           e.metadata(detectorNames),
	}
}

// buildRejected produces the terminal report for a profile that failed the
// structural pre-checks. No detector runs; the single issue string names the
// failure.
func (e *Engine) buildRejected(profile domain.Profile, reason string) domain.QCReport {
	return domain.QCReport{
		ProfileID:         profile.ID,
		TotalMeasurements: len(profile.Levels) * len(domain.Params),
		FlagsSummary:      map[domain.Flag]int{},
		DataQuality:       domain.QualityUnusable,
		Issues:            []string{reason},
		Metadata:          e.metadata([]string{}),
	}
}

func (e *Engine) metadata(detectors []string) map[string]any {
	return map[string]any{
		"detectors":         detectors,
		"thresholds":        e.thresholds,
		"equation_of_state": "EOS-80 (UNESCO 1983)",
	}
}

// positionIssue reports a malformed profile position. Bad coordinates are a
// data-quality note, not an engine failure.
func positionIssue(p domain.Profile) string {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) ||
		math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) ||
		math.Abs(p.Latitude) > 90 || math.Abs(p.Longitude) > 180 {
		return fmt.Sprintf("invalid position: lat=%g lon=%g", p.Latitude, p.Longitude)
	}
	return ""
}
