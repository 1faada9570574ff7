package qc

import (
	"fmt"
	"sort"

	"github.com/oceanstream/argo-etl-service/internal/domain"
)

// validateStructure runs the structural pre-checks that can short-circuit
// the pipeline. It returns ok=true to proceed, or ok=false with a
// human-readable reason for the terminal unusable report.
func validateStructure(p domain.Profile, th Thresholds) (reason string, ok bool) {
	if len(p.Levels) < th.MinProfileLength {
		return fmt.Sprintf("profile too short: %d levels (minimum %d)", len(p.Levels), th.MinProfileLength), false
	}

	if gap, found := maxPressureGap(p); found && gap > th.MaxDepthGap {
		return fmt.Sprintf("excessive depth gap: %.1f dbar (maximum %.1f)", gap, th.MaxDepthGap), false
	}

	return "", true
}

// maxPressureGap returns the largest gap between consecutive pressures after
// sorting ascending. Non-finite pressures are ignored; found is false when
// fewer than two finite pressures exist.
func maxPressureGap(p domain.Profile) (gap float64, found bool) {
	pres := finiteValues(p.Values(domain.ParamPres))
	if len(pres) < 2 {
		return 0, false
	}
	sort.Float64s(pres)

	for i := 0; i < len(pres)-1; i++ {
		if d := pres[i+1] - pres[i]; d > gap {
			gap = d
		}
	}
	return gap, true
}
