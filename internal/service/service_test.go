package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/andresuchdata/freshpredict/internal/alerts"
	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/catalog"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/andresuchdata/freshpredict/internal/esg"
	"github.com/andresuchdata/freshpredict/internal/forecast"
	"github.com/andresuchdata/freshpredict/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedDay = domain.NewDate(2026, time.February, 8)

type stack struct {
	inventory *InventoryService
	forecasts *ForecastService
	alerts    *AlertService
	esg       *ESGService
	insight   *InsightService
	dashboard *DashboardService
}

func newStack(t *testing.T, today domain.Date, store *inventory.Store) *stack {
	t.Helper()
	cfg := config.New()
	cat := catalog.Default()
	cal := calendar.New(cfg.Calendar)

	if store == nil {
		var err error
		store, err = inventory.Seed(cat, catalog.Scenarios(), today)
		require.NoError(t, err)
	}

	clock := FixedClock(today)
	inv := NewInventoryService(cat, store, clock)
	trainer := forecast.NewTrainer(nil, cal, cfg.Forecast)
	fallback := forecast.NewFallback(cal, cfg.Forecast, rand.New(rand.NewPCG(1, 2)))
	forecasts := NewForecastService(inv, forecast.NewForecaster(trainer, fallback, cal, cfg.Forecast), "csv")
	alertSvc := NewAlertService(inv, forecasts, alerts.Rules{Inventory: cfg.Inventory, Pricing: cfg.Pricing})
	esgSvc := NewESGService(esg.NewTracker(cfg.ESG), cat, cfg.ESG)

	return &stack{
		inventory: inv,
		forecasts: forecasts,
		alerts:    alertSvc,
		esg:       esgSvc,
		insight:   NewInsightService(inv, cal, cfg.Forecast, cfg.Inventory),
		dashboard: NewDashboardService(inv, alertSvc, esgSvc, cal, cfg.Inventory),
	}
}

func TestInventoryListAndFilter(t *testing.T) {
	s := newStack(t, seedDay, nil)
	ctx := context.Background()

	all, err := s.inventory.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.Nil(t, all[0].DaysUntilExpiry)

	dairy, err := s.inventory.List(ctx, "Dairy")
	require.NoError(t, err)
	require.Len(t, dairy, 2)
	for _, v := range dairy {
		assert.Equal(t, domain.CategoryDairy, v.Category)
	}

	_, err = s.inventory.List(ctx, "frozen")
	assert.True(t, errors.Is(err, domain.ErrInvalidCategory))
}

func TestInventoryGetAddsDaysUntilExpiry(t *testing.T) {
	s := newStack(t, seedDay, nil)

	view, err := s.inventory.Get(context.Background(), "prd001")
	require.NoError(t, err)
	assert.Equal(t, "PRD001", view.ProductID)
	require.NotNil(t, view.DaysUntilExpiry)
	assert.Equal(t, 1, *view.DaysUntilExpiry)

	_, err = s.inventory.Get(context.Background(), "XXX999")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestInventoryAddStock(t *testing.T) {
	store, err := inventory.NewStore([]domain.InventoryItem{
		{ProductID: "PRD001", Stock: 12, ExpiryDate: seedDay.AddDays(1), Supplier: "Local Supplier"},
	})
	require.NoError(t, err)
	s := newStack(t, seedDay, store)
	ctx := context.Background()

	view, err := s.inventory.AddStock(ctx, domain.StockAddition{ProductID: "prd001", Quantity: 8, ExpiryDate: seedDay.AddDays(4)})
	require.NoError(t, err)
	assert.Equal(t, 20.0, view.CurrentStock)
	assert.Equal(t, "Local Supplier", view.Supplier)
	assert.Equal(t, 4, *view.DaysUntilExpiry)

	created, err := s.inventory.AddStock(ctx, domain.StockAddition{ProductID: "DRY002", Quantity: 10, ExpiryDate: seedDay.AddDays(21)})
	require.NoError(t, err)
	assert.Equal(t, "Lay Hong", created.Supplier, "new items take the default supplier")

	_, err = s.inventory.AddStock(ctx, domain.StockAddition{ProductID: "NOPE", Quantity: 1, ExpiryDate: seedDay})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = s.inventory.AddStock(ctx, domain.StockAddition{ProductID: "PRD001", Quantity: -1, ExpiryDate: seedDay})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
}

func TestProductsAndSuppliers(t *testing.T) {
	s := newStack(t, seedDay, nil)
	ctx := context.Background()

	products := s.inventory.Products(ctx)
	require.Len(t, products, 6)
	for _, p := range products {
		assert.Equal(t, seedDay.AddDays(p.ShelfLifeDays), p.SuggestedExpiry)
	}

	assert.Contains(t, s.inventory.Suppliers(ctx, "poultry"), "QL Resources")
	assert.Empty(t, s.inventory.Suppliers(ctx, "frozen"))
}

func TestForecastService(t *testing.T) {
	s := newStack(t, seedDay, nil)
	ctx := context.Background()

	all, err := s.forecasts.All(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 6)
	for _, fc := range all {
		assert.Len(t, fc.Points, 14)
		assert.Equal(t, domain.SourceFallback, fc.Source)
	}

	one, err := s.forecasts.Get(ctx, "PLT001", 10)
	require.NoError(t, err)
	assert.Len(t, one.Points, 10)
	require.NotNil(t, one.FestiveImpact)
	assert.Equal(t, "Chinese New Year", one.FestiveImpact.Festival)

	_, err = s.forecasts.Get(ctx, "PLT001", 1)
	assert.True(t, errors.Is(err, domain.ErrHorizonTooShort))

	_, err = s.forecasts.Get(ctx, "XXX", 7)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPredictSummary(t *testing.T) {
	s := newStack(t, seedDay, nil)
	ctx := context.Background()

	got, err := s.forecasts.Predict(ctx, "kang")
	require.NoError(t, err)
	assert.Equal(t, "PRD001", got.ProductID)
	assert.Equal(t, domain.RiskHigh, got.WasteRisk)
	assert.Equal(t, 14, got.Horizon)
	assert.Greater(t, got.PredictedDemand, 0.0)

	eggs, err := s.forecasts.Predict(ctx, "Eggs (30 pack)")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskLow, eggs.WasteRisk)

	_, err = s.forecasts.Predict(ctx, "durian")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	status := s.forecasts.ModelStatus(ctx)
	assert.Equal(t, "fallback", status.Status)
	assert.Equal(t, "csv", status.SalesSource)
}

func TestAlertServiceSortsAndFilters(t *testing.T) {
	s := newStack(t, seedDay, nil)
	ctx := context.Background()

	sustain, err := s.alerts.Sustainability(ctx, nil)
	require.NoError(t, err)
	require.Len(t, sustain, 4)
	assert.Equal(t, "PRD001", sustain[0].ProductID)
	for i := 1; i < len(sustain); i++ {
		assert.LessOrEqual(t, sustain[i-1].DaysUntilExpiry, sustain[i].DaysUntilExpiry)
	}

	medium := domain.SeverityMedium
	filtered, err := s.alerts.Sustainability(ctx, &medium)
	require.NoError(t, err)
	for _, a := range filtered {
		assert.Equal(t, domain.SeverityMedium, a.Severity)
	}

	prep, err := s.alerts.Preparation(ctx, nil)
	require.NoError(t, err)
	reorder := map[string]bool{}
	for i, a := range prep {
		if i > 0 {
			assert.LessOrEqual(t, prep[i-1].Severity, a.Severity)
		}
		if a.AlertType == domain.AlertStockOutRisk {
			reorder[a.ProductID] = true
		}
	}
	assert.Equal(t, map[string]bool{"PLT002": true, "PRD001": true}, reorder)
}

func TestParseSeverityFilter(t *testing.T) {
	got, err := ParseSeverity("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseSeverity("HIGH")
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityHigh, *got)

	_, err = ParseSeverity("urgent")
	assert.True(t, errors.Is(err, domain.ErrInvalidSeverity))
}

func TestMarkSoldUpdatesMetrics(t *testing.T) {
	s := newStack(t, seedDay, nil)
	ctx := context.Background()

	res, err := s.esg.MarkSold(ctx, domain.MarkSoldRequest{ProductID: "prd001", QuantityKg: 2, Cost: 9, AlertID: "SA-PRD001-20260209"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "PRD001", res.Record.ProductID)
	assert.NotEmpty(t, res.Record.ID)
	assert.Equal(t, 152.0, res.UpdatedMetrics.WasteSavedKg)
	assert.Equal(t, 43, res.UpdatedMetrics.ItemsRescued)
	assert.Equal(t, 2259.0, res.UpdatedMetrics.CostSaved)
	assert.Equal(t, res.UpdatedMetrics, s.esg.Metrics(ctx))

	_, err = s.esg.MarkSold(ctx, domain.MarkSoldRequest{ProductID: "NOPE", QuantityKg: 1})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = s.esg.MarkSold(ctx, domain.MarkSoldRequest{ProductID: "PRD001", QuantityKg: 0})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
}

func TestStockInsightBeforeFestival(t *testing.T) {
	s := newStack(t, seedDay, nil)
	ctx := context.Background()

	short, err := s.insight.StockInsight(ctx, "PRD001", 0)
	require.NoError(t, err)
	assert.Equal(t, 5.4, short.ExpectedDaily)
	assert.Equal(t, 75.0, short.ForecastDemand)
	assert.Equal(t, 63.0, short.SuggestedQuantity)
	assert.Equal(t, domain.RiskMedium, short.RiskLevel)
	assert.Equal(t, "Chinese New Year in 9 days", short.Festival)
	assert.False(t, short.IsPayday)

	good, err := s.insight.StockInsight(ctx, "PRD001", 20)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskLow, good.RiskLevel)
	assert.Contains(t, good.Insight, "150%")

	over, err := s.insight.StockInsight(ctx, "PRD001", 100)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskHigh, over.RiskLevel)
}

func TestStockInsightQuietPeriodAndPayday(t *testing.T) {
	quiet := domain.NewDate(2026, time.June, 10)
	s := newStack(t, quiet, nil)

	got, err := s.insight.StockInsight(context.Background(), "PRD001", 10)
	require.NoError(t, err)
	assert.Empty(t, got.Festival)
	assert.Equal(t, 30.0, got.ForecastDemand)
	assert.Equal(t, 18.0, got.SuggestedQuantity)
	assert.Equal(t, 10.3, got.CoverageDays)
	assert.Equal(t, domain.RiskHigh, got.RiskLevel)

	payday := newStack(t, domain.NewDate(2026, time.June, 27), nil)
	paid, err := payday.insight.StockInsight(context.Background(), "PRD001", 0)
	require.NoError(t, err)
	assert.True(t, paid.IsPayday)
	assert.Equal(t, 39.0, paid.ForecastDemand)

	_, err = s.insight.StockInsight(context.Background(), "PRD001", -3)
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
}

func TestDashboardSummary(t *testing.T) {
	s := newStack(t, seedDay, nil)
	ctx := context.Background()

	sum, err := s.dashboard.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, sum.TotalProducts)
	assert.Equal(t, 2, sum.LowStockCount)
	assert.Equal(t, 4, sum.ExpiryRiskCount)
	assert.Equal(t, 4, sum.SustainabilityAlertCount)
	assert.GreaterOrEqual(t, sum.PreparationAlertCount, 2)
	assert.Equal(t, 2135.5, sum.TotalInventoryValue)
	require.NotNil(t, sum.UpcomingFestival)
	assert.Equal(t, "Chinese New Year", sum.UpcomingFestival.Name)
	assert.Equal(t, 150.0, sum.ESGMetrics.WasteSavedKg)

	festivals := s.dashboard.Festivals(ctx)
	require.NotEmpty(t, festivals)
	assert.Equal(t, 9, festivals[0].DaysUntil)
}
