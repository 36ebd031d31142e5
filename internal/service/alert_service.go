package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/freshpredict/internal/alerts"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/rs/zerolog/log"
)

type AlertService struct {
	inventory *InventoryService
	forecasts *ForecastService
	rules     alerts.Rules
}

func NewAlertService(inv *InventoryService, forecasts *ForecastService, rules alerts.Rules) *AlertService {
	return &AlertService{inventory: inv, forecasts: forecasts, rules: rules}
}

// ParseSeverity reads an optional severity filter.
func ParseSeverity(raw string) (*domain.Severity, error) {
	if raw == "" {
		return nil, nil
	}
	s, err := domain.ParseSeverity(raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Preparation returns demand and stock-out alerts, high severity first.
func (s *AlertService) Preparation(ctx context.Context, severity *domain.Severity) ([]domain.PreparationAlert, error) {
	inputs, err := s.inputs(ctx, true)
	if err != nil {
		return nil, err
	}
	list := alerts.Preparation(inputs, s.inventory.Today(), s.rules)
	alerts.SortPreparation(list)
	return alerts.FilterPreparation(list, severity), nil
}

// Sustainability returns expiry and overstock alerts, soonest expiry first.
func (s *AlertService) Sustainability(ctx context.Context, severity *domain.Severity) ([]domain.SustainabilityAlert, error) {
	inputs, err := s.inputs(ctx, false)
	if err != nil {
		return nil, err
	}
	list := alerts.Sustainability(inputs, s.inventory.Today(), s.rules)
	alerts.SortSustainability(list)
	return alerts.FilterSustainability(list, severity), nil
}

func (s *AlertService) inputs(ctx context.Context, withForecasts bool) ([]alerts.Input, error) {
	targets := s.inventory.Targets()
	inputs := make([]alerts.Input, 0, len(targets))
	for _, t := range targets {
		inputs = append(inputs, alerts.Input{Product: t.Product, Item: t.Item})
	}
	if !withForecasts {
		return inputs, nil
	}

	forecasts, err := s.forecasts.All(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("forecast for alerts: %w", err)
	}
	byID := make(map[string]domain.Forecast, len(forecasts))
	for _, fc := range forecasts {
		byID[fc.ProductID] = fc
	}
	for i := range inputs {
		if fc, ok := byID[inputs[i].Product.ID]; ok {
			inputs[i].Forecast = &fc
		} else {
			log.Warn().Str("product_id", inputs[i].Product.ID).Msg("alerts: no forecast, using stock rules only")
		}
	}
	return inputs, nil
}
