package forecast

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/rs/zerolog/log"
)

// Target pairs a product with its current stock.
type Target struct {
	Product domain.Product
	Item    domain.InventoryItem
}

// Forecaster picks the trained model when one exists and the fallback
// otherwise, then annotates trend and festival impact.
type Forecaster struct {
	trainer  *Trainer
	fallback *Fallback
	cal      *calendar.Calendar
	cfg      config.ForecastConfig
}

func NewForecaster(trainer *Trainer, fallback *Fallback, cal *calendar.Calendar, cfg config.ForecastConfig) *Forecaster {
	return &Forecaster{trainer: trainer, fallback: fallback, cal: cal, cfg: cfg}
}

func (f *Forecaster) DefaultHorizon() int {
	if f.cfg.DefaultHorizonDays < 2 {
		return 14
	}
	return f.cfg.DefaultHorizonDays
}

// MaxHorizon is the longest horizon served. It never drops below the default.
func (f *Forecaster) MaxHorizon() int {
	if f.cfg.MaxHorizonDays < f.DefaultHorizon() {
		return max(f.DefaultHorizon(), 365)
	}
	return f.cfg.MaxHorizonDays
}

func (f *Forecaster) checkHorizon(horizon int) error {
	if horizon < 2 {
		return fmt.Errorf("%w: got %d", domain.ErrHorizonTooShort, horizon)
	}
	if limit := f.MaxHorizon(); horizon > limit {
		return fmt.Errorf("%w: got %d, limit %d", domain.ErrHorizonTooLong, horizon, limit)
	}
	return nil
}

// Forecast builds a forecast for horizon days starting today, or the day after
// training history ends if that is later.
func (f *Forecaster) Forecast(ctx context.Context, target Target, today domain.Date, horizon int) (domain.Forecast, error) {
	if err := f.checkHorizon(horizon); err != nil {
		return domain.Forecast{}, err
	}

	p := target.Product
	out := domain.Forecast{
		ProductID:   p.ID,
		ProductName: p.Name,
		Category:    p.Category,
	}

	model, err := f.trainer.Train(ctx, p.ID)
	switch {
	case err == nil:
		start := model.LastDate().AddDays(1)
		if today.After(start) {
			start = today
		}
		out.Points = roundPoints(model.PredictFrom(start, horizon))
		out.Source = domain.SourceModel
	default:
		if !errors.Is(err, domain.ErrModelUnavailable) {
			log.Warn().Err(err).Str("product_id", p.ID).Msg("forecast: model failed, using fallback")
		}
		out.Points = f.fallback.Forecast(p, target.Item, today, horizon)
		out.Source = domain.SourceFallback
	}

	trend, err := Classify(out.Predictions(), f.cfg.TrendIncreaseThreshold, f.cfg.TrendDecreaseThreshold)
	if err != nil {
		return domain.Forecast{}, err
	}
	out.Trend = trend

	if u, ok := f.cal.NextForCategory(today, horizon, p.Category); ok {
		out.FestiveImpact = &domain.FestiveImpact{
			Festival:   u.Name,
			DaysUntil:  u.DaysUntil,
			Multiplier: u.Multiplier,
		}
	}

	forecastsTotal.WithLabelValues(string(out.Source)).Inc()
	return out, nil
}

// ForecastAll forecasts every target. A product that errors or panics is
// logged and left out so the rest of the catalog is still served.
func (f *Forecaster) ForecastAll(ctx context.Context, targets []Target, today domain.Date, horizon int) ([]domain.Forecast, error) {
	if err := f.checkHorizon(horizon); err != nil {
		return nil, err
	}

	out := make([]domain.Forecast, 0, len(targets))
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		fc, err := f.safeForecast(ctx, target, today, horizon)
		if err != nil {
			forecastFailures.Inc()
			log.Error().Err(err).Str("product_id", target.Product.ID).Msg("forecast: product skipped")
			continue
		}
		out = append(out, fc)
	}
	return out, nil
}

func (f *Forecaster) safeForecast(ctx context.Context, target Target, today domain.Date, horizon int) (fc domain.Forecast, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic forecasting %s: %v", target.Product.ID, r)
		}
	}()
	return f.Forecast(ctx, target, today, horizon)
}

// ModelStatus summarises which products are served by a trained model.
func (f *Forecaster) ModelStatus() domain.ModelStatus {
	trained := f.trainer.Trained()
	status := domain.ModelStatus{
		Status:             "fallback",
		ModelType:          "heuristic",
		TrainedProducts:    trained,
		SeasonalityMode:    string(parseMode(f.cfg.SeasonalityMode)),
		MinTrainingSamples: f.cfg.MinTrainingSamples,
		Features:           []string{"weekend_multiplier", "payday_multiplier", "festival_ramp"},
	}
	if len(trained) == 0 {
		status.UnavailableReason = "no product has enough sales history"
		return status
	}

	status.Status = "active"
	status.ModelType = "seasonal_ridge_regression"
	if m, ok := f.trainer.cached(trained[0]); ok {
		status.Features = m.Features()
	}
	return status
}

func roundPoints(points []domain.ForecastPoint) []domain.ForecastPoint {
	for i := range points {
		points[i].Predicted = domain.Round(points[i].Predicted, 2)
		points[i].Lower = domain.Round(points[i].Lower, 2)
		points[i].Upper = domain.Round(points[i].Upper, 2)
	}
	return points
}
