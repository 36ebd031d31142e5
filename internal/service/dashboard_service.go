package service

import (
	"context"

	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
)

type DashboardService struct {
	inventory *InventoryService
	alerts    *AlertService
	esg       *ESGService
	cal       *calendar.Calendar
	cfg       config.InventoryConfig
}

func NewDashboardService(inv *InventoryService, alerts *AlertService, esg *ESGService, cal *calendar.Calendar, cfg config.InventoryConfig) *DashboardService {
	return &DashboardService{inventory: inv, alerts: alerts, esg: esg, cal: cal, cfg: cfg}
}

func (s *DashboardService) Summary(ctx context.Context) (domain.DashboardSummary, error) {
	today := s.inventory.Today()
	targets := s.inventory.Targets()

	summary := domain.DashboardSummary{TotalProducts: len(targets)}
	values := make([]float64, 0, len(targets))
	for _, t := range targets {
		if t.Item.Stock <= t.Product.ReorderPoint {
			summary.LowStockCount++
		}
		if t.Item.DaysUntilExpiry(today) <= s.cfg.ExpiryAlertDays {
			summary.ExpiryRiskCount++
		}
		values = append(values, t.Item.Stock*t.Product.UnitCost)
	}
	summary.TotalInventoryValue = domain.SumMoney(values...)

	prep, err := s.alerts.Preparation(ctx, nil)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	sustain, err := s.alerts.Sustainability(ctx, nil)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	summary.PreparationAlertCount = len(prep)
	summary.SustainabilityAlertCount = len(sustain)
	for _, a := range prep {
		if a.Severity == domain.SeverityHigh {
			summary.HighSeverityAlertCount++
		}
	}
	for _, a := range sustain {
		if a.Severity == domain.SeverityHigh {
			summary.HighSeverityAlertCount++
		}
	}

	if upcoming := s.cal.Upcoming(today, -1); len(upcoming) > 0 {
		summary.UpcomingFestival = &upcoming[0]
	}
	summary.ESGMetrics = s.esg.Metrics(ctx)
	return summary, nil
}

// Festivals lists festivals from today through the end of next year, nearest first.
func (s *DashboardService) Festivals(ctx context.Context) []domain.UpcomingFestival {
	upcoming := s.cal.Upcoming(s.inventory.Today(), -1)
	if upcoming == nil {
		return []domain.UpcomingFestival{}
	}
	return upcoming
}
