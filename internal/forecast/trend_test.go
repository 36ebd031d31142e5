package forecast

import (
	"errors"
	"testing"

	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLabels(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   domain.Trend
	}{
		{"increasing", []float64{10, 10, 12, 12}, domain.TrendIncreasing},
		{"decreasing", []float64{10, 10, 8, 8}, domain.TrendDecreasing},
		{"stable", []float64{10, 10, 10.5, 10.5}, domain.TrendStable},
		{"exactly ten percent up is stable", []float64{10, 11}, domain.TrendStable},
		{"odd length puts extra point in second half", []float64{10, 0, 21}, domain.TrendStable},
		{"from zero", []float64{0, 0, 1, 1}, domain.TrendIncreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.values, 0.10, 0.10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyScaleInvariant(t *testing.T) {
	series := [][]float64{
		{3, 4, 5, 6, 7, 8, 9},
		{9, 8, 7, 6, 5, 4},
		{5, 5.2, 4.9, 5.1, 5, 5.05},
		{1, 30, 2, 40, 3, 50, 4, 60},
	}
	scales := []float64{0.001, 0.5, 3, 1000}

	for _, s := range series {
		base, err := Classify(s, 0.10, 0.10)
		require.NoError(t, err)
		for _, k := range scales {
			scaled := make([]float64, len(s))
			for i, v := range s {
				scaled[i] = v * k
			}
			got, err := Classify(scaled, 0.10, 0.10)
			require.NoError(t, err)
			assert.Equal(t, base, got, "series %v scaled by %v", s, k)
		}
	}
}

func TestClassifyRejectsShortHorizon(t *testing.T) {
	for _, values := range [][]float64{nil, {5}} {
		_, err := Classify(values, 0.10, 0.10)
		assert.True(t, errors.Is(err, domain.ErrHorizonTooShort))
	}
}
