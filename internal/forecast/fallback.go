package forecast

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
)

// Fallback is a closed-form forecaster used when no model can be trained.
// It never fails.
type Fallback struct {
	cal *calendar.Calendar
	cfg config.ForecastConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallback builds a fallback forecaster. A nil rng seeds from the clock.
func NewFallback(cal *calendar.Calendar, cfg config.ForecastConfig, rng *rand.Rand) *Fallback {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Fallback{cal: cal, cfg: cfg, rng: rng}
}

// Forecast produces horizon days starting at start from the current stock.
func (f *Fallback) Forecast(product domain.Product, item domain.InventoryItem, start domain.Date, horizon int) []domain.ForecastPoint {
	if horizon <= 0 {
		return []domain.ForecastPoint{}
	}

	base := item.Stock * f.cfg.FallbackBaseDemandFactor
	festival, hasFestival := f.cal.ActiveForCategory(start, horizon, product.Category)

	points := make([]domain.ForecastPoint, horizon)
	for i := range points {
		d := start.AddDays(i)

		multiplier := 1.0
		if d.IsWeekend() {
			multiplier *= f.cfg.FallbackWeekendMultiplier
		}
		if f.cal.IsPayday(d.Day()) {
			multiplier *= f.cfg.FallbackPaydayMultiplier
		}
		if hasFestival {
			multiplier *= festivalRamp(festival.Festival, d, horizon)
		}

		predicted := floorZero(base * multiplier * (1 + f.noise()))
		points[i] = domain.ForecastPoint{
			Date:      d,
			Predicted: domain.Round(predicted, 2),
			Lower:     domain.Round(floorZero(predicted*(1-f.cfg.FallbackConfidenceInterval)), 2),
			Upper:     domain.Round(floorZero(predicted*(1+f.cfg.FallbackConfidenceInterval)), 2),
		}
	}
	return points
}

// festivalRamp rises linearly to the full multiplier on the festival day,
// holds through the post-window and returns to 1 afterwards.
func festivalRamp(f domain.Festival, d domain.Date, horizon int) float64 {
	daysTo := d.DaysUntil(f.Date)
	switch {
	case daysTo > 0:
		progress := 1 - float64(daysTo)/float64(horizon)
		if progress < 0 {
			progress = 0
		}
		return 1 + (f.Multiplier-1)*progress
	case daysTo >= -f.Window.After:
		return f.Multiplier
	default:
		return 1
	}
}

func (f *Fallback) noise() float64 {
	spread := f.cfg.FallbackNoiseFraction
	if spread <= 0 {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return (f.rng.Float64()*2 - 1) * spread
}
