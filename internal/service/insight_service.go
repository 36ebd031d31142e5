package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
)

// noDemandCoverage stands in for infinite coverage when no demand is expected.
const noDemandCoverage = 999.0

// InsightService checks a planned order against expected demand and shelf life.
type InsightService struct {
	inventory *InventoryService
	cal       *calendar.Calendar
	forecast  config.ForecastConfig
	stock     config.InventoryConfig
}

func NewInsightService(inv *InventoryService, cal *calendar.Calendar, forecastCfg config.ForecastConfig, inventoryCfg config.InventoryConfig) *InsightService {
	return &InsightService{inventory: inv, cal: cal, forecast: forecastCfg, stock: inventoryCfg}
}

func (s *InsightService) horizon() int {
	if s.forecast.DefaultHorizonDays < 2 {
		return 14
	}
	return s.forecast.DefaultHorizonDays
}

// StockInsight evaluates ordering quantity more units of productID today.
func (s *InsightService) StockInsight(ctx context.Context, productID string, quantity float64) (domain.StockInsight, error) {
	if quantity < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return domain.StockInsight{}, fmt.Errorf("%w: quantity %v", domain.ErrInvalidQuantity, quantity)
	}

	p, err := s.inventory.Catalog().Get(productID)
	if err != nil {
		return domain.StockInsight{}, err
	}

	var stock float64
	if target, err := s.inventory.Target(p.ID); err == nil {
		stock = target.Item.Stock
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.StockInsight{}, err
	}

	today := s.inventory.Today()
	horizon := s.horizon()

	multiplier := 1.0
	var festival *domain.UpcomingFestival
	if f, ok := s.cal.NextForCategory(today, horizon, p.Category); ok {
		festival = &f
		multiplier = f.Multiplier
	}

	daily := p.ReorderPoint / 7 * multiplier
	payday := s.cal.IsPayday(today.Day())
	if payday {
		daily *= s.forecast.FallbackPaydayMultiplier
	}

	demand := daily * float64(horizon)
	suggested := math.Max(0, math.Round(demand-stock))

	coverage := noDemandCoverage
	if daily > 0 {
		coverage = (stock + quantity) / daily
	}

	out := domain.StockInsight{
		ProductID:         p.ID,
		ProductName:       p.Name,
		CurrentStock:      stock,
		PlannedQuantity:   quantity,
		ExpectedDaily:     domain.Round(daily, 1),
		ForecastDemand:    domain.Round(demand, 1),
		HorizonDays:       horizon,
		SuggestedQuantity: suggested,
		CoverageDays:      domain.Round(coverage, 1),
		ShelfLifeDays:     p.ShelfLifeDays,
		IsPayday:          payday,
	}
	if festival != nil {
		out.Festival = fmt.Sprintf("%s in %d days", festival.Name, festival.DaysUntil)
	}

	switch {
	case coverage > float64(p.ShelfLifeDays+s.stock.ShelfLifeBufferDays):
		out.RiskLevel = domain.RiskHigh
		out.Insight = fmt.Sprintf("Stock may expire before it sells: ordering %.0f %s but only about %.0f %s is needed for the next %d days",
			quantity, p.Unit, suggested, p.Unit, p.ShelfLifeDays)
	case coverage < s.stock.MinCoverageDays:
		out.RiskLevel = domain.RiskMedium
		out.Insight = fmt.Sprintf("Consider ordering more: %.0f %s covers only %.0f days", quantity, p.Unit, coverage)
	case festival != nil:
		out.RiskLevel = domain.RiskLow
		out.Insight = fmt.Sprintf("Good order quantity. %s, demand expected to rise %.0f%%", out.Festival, (multiplier-1)*100)
	default:
		out.RiskLevel = domain.RiskLow
		out.Insight = fmt.Sprintf("Good order quantity, covering about %.0f days of expected demand", coverage)
	}
	return out, nil
}
