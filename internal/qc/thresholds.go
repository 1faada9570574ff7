package qc

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oceanstream/argo-etl-service/internal/domain"
)

// ParamThresholds holds the per-parameter limits used by the detectors.
// StatThreshold is the modified Z-score cutoff for the statistical outlier
// check; when zero, the spike threshold is reused.
type ParamThresholds struct {
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	SpikeThreshold    float64 `json:"spike_threshold"`
	GradientThreshold float64 `json:"gradient_threshold"`
	StatThreshold     float64 `json:"stat_threshold,omitempty"`
}

func (pt ParamThresholds) statCutoff() float64 {
	if pt.StatThreshold > 0 {
		return pt.StatThreshold
	}
	return pt.SpikeThreshold
}

// Thresholds is the full QC configuration for one engine instance. It is
// shared read-only across concurrent runs and must never be mutated after
// construction; build a new value to change thresholds.
type Thresholds struct {
	Temp ParamThresholds `json:"TEMP"`
	Psal ParamThresholds `json:"PSAL"`
	Pres ParamThresholds `json:"PRES"`

	DensityInversionThreshold float64 `json:"density_inversion_threshold"`
	MinGoodDataPercentage     float64 `json:"min_good_data_percentage"`
	MaxDepthGap               float64 `json:"max_depth_gap"`
	MinProfileLength          int     `json:"min_profile_length"`

	// SpikeWindowSize is the moving-window median width. Must be odd.
	SpikeWindowSize int `json:"spike_window_size"`
}

// DefaultThresholds returns the operational defaults for Argo core
// parameters. Physical ranges follow the Argo real-time QC manual.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Temp: ParamThresholds{Min: -2.5, Max: 40.0, SpikeThreshold: 5.0, GradientThreshold: 2.0},
		Psal: ParamThresholds{Min: 2.0, Max: 42.0, SpikeThreshold: 2.0, GradientThreshold: 1.0},
		Pres: ParamThresholds{Min: 0.0, Max: 11000.0, SpikeThreshold: 100.0, GradientThreshold: 50.0},

		DensityInversionThreshold: 0.05,
		MinGoodDataPercentage:     70.0,
		MaxDepthGap:               500.0,
		MinProfileLength:          5,
		SpikeWindowSize:           5,
	}
}

// LoadThresholdsFile reads a JSON thresholds file over the defaults, so a
// partial file only overrides the fields it names. The result is validated
// before use.
func LoadThresholdsFile(path string) (Thresholds, error) {
	th := DefaultThresholds()

	data, err := os.ReadFile(path)
	if err != nil {
		return Thresholds{}, fmt.Errorf("read thresholds file: %w", err)
	}
	if err := json.Unmarshal(data, &th); err != nil {
		return Thresholds{}, fmt.Errorf("parse thresholds file %s: %w", path, err)
	}
	if err := th.Validate(); err != nil {
		return Thresholds{}, fmt.Errorf("thresholds file %s: %w", path, err)
	}
	return th, nil
}

// Param returns the thresholds for the given parameter.
func (t Thresholds) Param(p domain.Param) ParamThresholds {
	switch p {
	case domain.ParamTemp:
		return t.Temp
	case domain.ParamPsal:
		return t.Psal
	case domain.ParamPres:
		return t.Pres
	}
	return ParamThresholds{}
}

// Validate checks that every required field carries a usable value. A
// Thresholds that fails validation must never reach the engine; a missing
// threshold would silently disable a check.
func (t Thresholds) Validate() error {
	for _, p := range domain.Params {
		pt := t.Param(p)
		if pt.Min >= pt.Max {
			return fmt.Errorf("%s: min %g must be below max %g", p, pt.Min, pt.Max)
		}
		if pt.SpikeThreshold <= 0 {
			return fmt.Errorf("%s: spike_threshold must be positive, got %g", p, pt.SpikeThreshold)
		}
		if pt.GradientThreshold <= 0 {
			return fmt.Errorf("%s: gradient_threshold must be positive, got %g", p, pt.GradientThreshold)
		}
		if pt.StatThreshold < 0 {
			return fmt.Errorf("%s: stat_threshold must not be negative, got %g", p, pt.StatThreshold)
		}
	}
	if t.DensityInversionThreshold < 0 {
		return fmt.Errorf("density_inversion_threshold must not be negative, got %g", t.DensityInversionThreshold)
	}
	if t.MinGoodDataPercentage < 0 || t.MinGoodDataPercentage > 100 {
		return fmt.Errorf("min_good_data_percentage must be within [0,100], got %g", t.MinGoodDataPercentage)
	}
	if t.MaxDepthGap <= 0 {
		return fmt.Errorf("max_depth_gap must be positive, got %g", t.MaxDepthGap)
	}
	if t.MinProfileLength < 1 {
		return fmt.Errorf("min_profile_length must be at least 1, got %d", t.MinProfileLength)
	}
	if t.SpikeWindowSize < 3 || t.SpikeWindowSize%2 == 0 {
		return fmt.Errorf("spike_window_size must be an odd number >= 3, got %d", t.SpikeWindowSize)
	}
	return nil
}
