package service

import (
	"context"

	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/andresuchdata/freshpredict/internal/forecast"
)

// ForecastService forecasts demand for stocked products.
type ForecastService struct {
	inventory   *InventoryService
	forecaster  *forecast.Forecaster
	salesSource string
}

func NewForecastService(inv *InventoryService, forecaster *forecast.Forecaster, salesSource string) *ForecastService {
	return &ForecastService{inventory: inv, forecaster: forecaster, salesSource: salesSource}
}

// horizon maps an absent value (0) to the default.
func (s *ForecastService) horizon(days int) int {
	if days == 0 {
		return s.forecaster.DefaultHorizon()
	}
	return days
}

// MaxHorizon is the longest ?days value accepted.
func (s *ForecastService) MaxHorizon() int {
	return s.forecaster.MaxHorizon()
}

func (s *ForecastService) All(ctx context.Context, days int) ([]domain.Forecast, error) {
	return s.forecaster.ForecastAll(ctx, s.inventory.Targets(), s.inventory.Today(), s.horizon(days))
}

func (s *ForecastService) Get(ctx context.Context, productID string, days int) (domain.Forecast, error) {
	target, err := s.inventory.Target(productID)
	if err != nil {
		return domain.Forecast{}, err
	}
	return s.forecaster.Forecast(ctx, target, s.inventory.Today(), s.horizon(days))
}

// Predict summarises the default-horizon forecast for the product matching name.
func (s *ForecastService) Predict(ctx context.Context, name string) (domain.PredictionSummary, error) {
	p, err := s.inventory.Catalog().FindByName(name)
	if err != nil {
		return domain.PredictionSummary{}, err
	}
	target, err := s.inventory.Target(p.ID)
	if err != nil {
		return domain.PredictionSummary{}, err
	}

	today := s.inventory.Today()
	fc, err := s.forecaster.Forecast(ctx, target, today, s.forecaster.DefaultHorizon())
	if err != nil {
		return domain.PredictionSummary{}, err
	}

	risk := domain.RiskLow
	if target.Item.DaysUntilExpiry(today) <= 3 {
		risk = domain.RiskHigh
	}

	return domain.PredictionSummary{
		Product:         p.Name,
		ProductID:       p.ID,
		PredictedDemand: domain.Round(fc.TotalPredicted(), 2),
		Trend:           fc.Trend,
		WasteRisk:       risk,
		Horizon:         len(fc.Points),
		Source:          string(fc.Source),
	}, nil
}

func (s *ForecastService) ModelStatus(ctx context.Context) domain.ModelStatus {
	status := s.forecaster.ModelStatus()
	status.SalesSource = s.salesSource
	return status
}
