package qc

import (
	"math"
	"testing"

	"github.com/oceanstream/argo-etl-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDetectGradients(t *testing.T) {
	th := DefaultThresholds() // TEMP gradient threshold 2.0 °C/dbar

	t.Run("marks both endpoints of a steep segment", func(t *testing.T) {
		p := makeProfile(
			[]float64{10, 20, 30, 40, 50},
			[]float64{10, 10, 10, 35, 35}, // 2.5 °C/dbar between levels 2 and 3
			[]float64{35, 35, 35, 35, 35},
		)
		mask := detectGradients(p, th)["TEMP"]

		assert.Equal(t, []bool{false, false, true, true, false}, mask)
	})

	t.Run("zero pressure difference is excluded", func(t *testing.T) {
		p := makeProfile(
			[]float64{10, 20, 20, 40, 50},
			[]float64{10, 10, 35, 10, 10}, // huge jump, but dp == 0 across it
			[]float64{35, 35, 35, 35, 35},
		)
		mask := detectGradients(p, th)["TEMP"]

		assert.False(t, mask[1], "degenerate spacing must not flag on its own")
		// The 20→40 dbar segment still sees 35→10 over 20 dbar: 1.25 °C/dbar, under threshold.
		assert.False(t, mask[3])
	})

	t.Run("missing values are excluded", func(t *testing.T) {
		p := makeProfile(
			[]float64{10, 20, 30, 40, 50},
			[]float64{10, math.NaN(), 35, 35, 35},
			[]float64{35, 35, 35, 35, 35},
		)
		mask := detectGradients(p, th)["TEMP"]

		for i, hit := range mask {
			assert.False(t, hit, "index %d", i)
		}
	})

	t.Run("smooth profile flags nothing", func(t *testing.T) {
		p := makeProfile(
			[]float64{10, 20, 30, 40, 50},
			[]float64{20, 19, 18, 17, 16},
			[]float64{35, 35.1, 35.2, 35.3, 35.4},
		)
		masks := detectGradients(p, th)
		for _, param := range domain.Params {
			for i, hit := range masks[param] {
				assert.False(t, hit, "%s index %d", param, i)
			}
		}
	})
}
