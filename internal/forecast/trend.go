package forecast

import (
	"fmt"

	"github.com/andresuchdata/freshpredict/internal/domain"
)

// Classify compares the mean of the second half of values against the first.
// Odd lengths put the extra point in the second half. increase and decrease
// are fractions, e.g. 0.10 for a 10% move.
func Classify(values []float64, increase, decrease float64) (domain.Trend, error) {
	if len(values) < 2 {
		return "", fmt.Errorf("%w: got %d points", domain.ErrHorizonTooShort, len(values))
	}

	mid := len(values) / 2
	first := mean(values[:mid])
	second := mean(values[mid:])

	switch {
	case second > first*(1+increase):
		return domain.TrendIncreasing, nil
	case second < first*(1-decrease):
		return domain.TrendDecreasing, nil
	default:
		return domain.TrendStable, nil
	}
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
