package qc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"odd length", []float64{3, 1, 2}, 2},
		{"even length", []float64{4, 1, 3, 2}, 2.5},
		{"single value", []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, median(tt.values))
		})
	}
}

func TestMedian_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(median(nil)))
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	median(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestModifiedZScoreMask(t *testing.T) {
	t.Run("flags an obvious outlier", func(t *testing.T) {
		values := []float64{10, 10.1, 10.2, 9.9, 10.1, 50, 10, 10.2}
		mask := modifiedZScoreMask(values, 3.5)

		assert.True(t, mask[5])
		for i, hit := range mask {
			if i != 5 {
				assert.False(t, hit, "index %d should not be flagged", i)
			}
		}
	})

	t.Run("constant series flags nothing", func(t *testing.T) {
		// MAD is zero here; flagging would divide by zero.
		mask := modifiedZScoreMask([]float64{5, 5, 5, 5, 5}, 3.5)
		for i, hit := range mask {
			assert.False(t, hit, "index %d", i)
		}
	})

	t.Run("fewer than three finite values flags nothing", func(t *testing.T) {
		mask := modifiedZScoreMask([]float64{1, math.NaN(), 100}, 3.5)
		for i, hit := range mask {
			assert.False(t, hit, "index %d", i)
		}
	})

	t.Run("missing values are excluded from statistics", func(t *testing.T) {
		values := []float64{10, math.NaN(), 10.1, 9.9, 10.2, 60, 10.1}
		mask := modifiedZScoreMask(values, 3.5)

		assert.False(t, mask[1], "NaN must never be flagged")
		assert.True(t, mask[5])
	})
}
