package forecast

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	chicken = domain.Product{ID: "PLT001", Name: "Whole Chicken", Category: domain.CategoryPoultry, Unit: "kg", ReorderPoint: 30, ShelfLifeDays: 4}
	tomato  = domain.Product{ID: "PRD002", Name: "Tomatoes", Category: domain.CategoryProduce, Unit: "kg", ReorderPoint: 20, ShelfLifeDays: 6}
)

func testDeps() (*calendar.Calendar, config.ForecastConfig) {
	cfg := config.New()
	return calendar.New(cfg.Calendar), cfg.Forecast
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(42, 7))
}

type memorySource struct {
	calls   atomic.Int32
	records map[string][]domain.SalesRecord
	panicOn string
}

func (m *memorySource) DailySales(_ context.Context, productID string) ([]domain.SalesRecord, error) {
	m.calls.Add(1)
	if productID == m.panicOn {
		panic("corrupt history")
	}
	return m.records[productID], nil
}

// weekendSeries is additive: level + uplift on weekends + bounded wobble.
func weekendSeries(productID string, start domain.Date, days int, level, uplift float64) []domain.SalesRecord {
	out := make([]domain.SalesRecord, days)
	for i := range out {
		d := start.AddDays(i)
		q := level + math.Sin(float64(i)*2.3)
		if d.IsWeekend() {
			q += uplift
		}
		out[i] = domain.SalesRecord{Date: d, ProductID: productID, Quantity: q}
	}
	return out
}

func TestFallbackLengthAndNonNegative(t *testing.T) {
	cal, cfg := testDeps()
	fb := NewFallback(cal, cfg, seeded())
	start := domain.NewDate(2026, time.February, 1)

	for _, stock := range []float64{0, 1, 12, 45, 500} {
		for horizon := 1; horizon <= 45; horizon++ {
			item := domain.InventoryItem{ProductID: chicken.ID, Stock: stock}
			points := fb.Forecast(chicken, item, start, horizon)
			require.Len(t, points, horizon)
			for i, p := range points {
				assert.Equal(t, start.AddDays(i), p.Date)
				assert.GreaterOrEqual(t, p.Predicted, 0.0)
				assert.GreaterOrEqual(t, p.Lower, 0.0)
				assert.GreaterOrEqual(t, p.Upper, 0.0)
				assert.LessOrEqual(t, p.Lower, p.Predicted)
				assert.GreaterOrEqual(t, p.Upper, p.Predicted)
			}
		}
	}
}

func TestFallbackMultipliers(t *testing.T) {
	cal, cfg := testDeps()
	cfg.FallbackNoiseFraction = 0
	fb := NewFallback(cal, cfg, seeded())

	// 2025-07-14 is a Monday mid-month, far from any poultry festival.
	monday := domain.NewDate(2025, time.July, 14)
	item := domain.InventoryItem{ProductID: chicken.ID, Stock: 100}
	points := fb.Forecast(chicken, item, monday, 14)

	assert.InDelta(t, 15.0, points[0].Predicted, 1e-9)
	assert.InDelta(t, 18.0, points[5].Predicted, 1e-9, "saturday")
	assert.InDelta(t, 12.0, points[0].Lower, 1e-9)
	assert.InDelta(t, 18.0, points[0].Upper, 1e-9)

	// 2025-07-26 is a Saturday inside the payday window.
	assert.InDelta(t, 15*1.2*1.3, points[12].Predicted, 1e-9)
}

func TestFallbackFestivalRamp(t *testing.T) {
	cal, cfg := testDeps()
	cfg.FallbackNoiseFraction = 0
	cfg.FallbackWeekendMultiplier = 1
	cfg.FallbackPaydayMultiplier = 1
	fb := NewFallback(cal, cfg, seeded())

	// Christmas 2025 falls 10 days after the start date.
	start := domain.NewDate(2025, time.December, 15)
	item := domain.InventoryItem{ProductID: chicken.ID, Stock: 100}
	points := fb.Forecast(chicken, item, start, 14)

	for i := 1; i < 10; i++ {
		assert.Greater(t, points[i].Predicted, points[i-1].Predicted, "ramp rises before the festival")
	}
	assert.InDelta(t, 15*1.8, points[10].Predicted, 1e-9, "festival day")
	assert.InDelta(t, 15*1.8, points[11].Predicted, 1e-9, "post window")
	assert.InDelta(t, 15.0, points[12].Predicted, 1e-9, "after window")

	produce := fb.Forecast(tomato, domain.InventoryItem{Stock: 100}, start, 14)
	assert.InDelta(t, 15.0, produce[10].Predicted, 1e-9, "christmas does not affect produce")
}

func TestFallbackNoiseStaysWithinBand(t *testing.T) {
	cal, cfg := testDeps()
	cfg.FallbackWeekendMultiplier = 1
	cfg.FallbackPaydayMultiplier = 1
	fb := NewFallback(cal, cfg, seeded())

	start := domain.NewDate(2025, time.July, 7)
	points := fb.Forecast(tomato, domain.InventoryItem{Stock: 100}, start, 14)
	for _, p := range points {
		assert.InDelta(t, 15.0, p.Predicted, 1.5+1e-9)
	}
}

func TestFitUnavailableWithShortHistory(t *testing.T) {
	cal, cfg := testDeps()
	records := weekendSeries("PLT001", domain.NewDate(2025, time.June, 2), cfg.MinTrainingSamples-1, 20, 8)

	_, err := Fit("PLT001", records, cal, cfg)
	assert.True(t, errors.Is(err, domain.ErrModelUnavailable))
}

func TestFitRoundTripAdditive(t *testing.T) {
	cal, cfg := testDeps()
	cfg.SeasonalityMode = string(Additive)
	records := weekendSeries("PLT001", domain.NewDate(2025, time.June, 2), 120, 20, 8)

	model, err := Fit("PLT001", records, cal, cfg)
	require.NoError(t, err)

	fitted := model.Fitted()
	require.Len(t, fitted, len(records))

	var absErr float64
	for i, p := range fitted {
		assert.Equal(t, records[i].Date, p.Date)
		absErr += math.Abs(p.Predicted - records[i].Quantity)
	}
	assert.LessOrEqual(t, absErr/float64(len(records)), model.Residual()+1e-9)

	dates := make([]domain.Date, len(records))
	for i, r := range records {
		dates[i] = r.Date
	}
	assert.Equal(t, fitted, model.PredictAt(dates))
	assert.Empty(t, model.Predict(0))
}

func TestFitRoundTripMultiplicative(t *testing.T) {
	cal, cfg := testDeps()
	require.Equal(t, string(Multiplicative), cfg.SeasonalityMode)
	records := weekendSeries("PLT001", domain.NewDate(2025, time.June, 2), 120, 20, 8)

	model, err := Fit("PLT001", records, cal, cfg)
	require.NoError(t, err)

	fitted := model.Fitted()
	require.Len(t, fitted, len(records))

	// Residual is measured in log1p space.
	var absErr float64
	for i, p := range fitted {
		assert.Equal(t, records[i].Date, p.Date)
		assert.GreaterOrEqual(t, p.Predicted, 0.0)
		absErr += math.Abs(math.Log1p(p.Predicted) - math.Log1p(records[i].Quantity))
	}
	assert.LessOrEqual(t, absErr/float64(len(records)), model.Residual()+1e-9)

	for i, p := range fitted {
		assert.InDelta(t, records[i].Quantity, p.Predicted, 0.35*records[i].Quantity, "day %d", i)
		assert.LessOrEqual(t, p.Lower, p.Predicted)
		assert.GreaterOrEqual(t, p.Upper, p.Predicted)
	}
}

func TestPredictShapeAndWeekendEffect(t *testing.T) {
	cal, cfg := testDeps()
	records := weekendSeries("PLT001", domain.NewDate(2025, time.June, 2), 120, 20, 8)

	model, err := Fit("PLT001", records, cal, cfg)
	require.NoError(t, err)

	points := model.Predict(14)
	require.Len(t, points, 14)
	assert.Equal(t, model.LastDate().AddDays(1), points[0].Date)

	var weekend, weekday []float64
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Lower, 0.0)
		assert.LessOrEqual(t, p.Lower, p.Predicted)
		assert.GreaterOrEqual(t, p.Upper, p.Predicted)
		if p.Date.IsWeekend() {
			weekend = append(weekend, p.Predicted)
		} else {
			weekday = append(weekday, p.Predicted)
		}
	}
	assert.InDelta(t, 8.0, mean(weekend)-mean(weekday), 1.5)
}

func TestPredictFloorsAtZero(t *testing.T) {
	cal, cfg := testDeps()
	cfg.SeasonalityMode = string(Additive)
	records := make([]domain.SalesRecord, 60)
	start := domain.NewDate(2025, time.June, 2)
	for i := range records {
		// steep decline extrapolates below zero
		records[i] = domain.SalesRecord{Date: start.AddDays(i), ProductID: "X", Quantity: float64(60 - i)}
	}

	model, err := Fit("X", records, cal, cfg)
	require.NoError(t, err)
	for _, p := range model.PredictFrom(start.AddDays(200), 10) {
		assert.Equal(t, 0.0, p.Predicted)
		assert.Equal(t, 0.0, p.Lower)
		assert.GreaterOrEqual(t, p.Upper, 0.0)
	}
}

func TestTrainerTrainsOnceAndCaches(t *testing.T) {
	cal, cfg := testDeps()
	src := &memorySource{records: map[string][]domain.SalesRecord{
		"PLT001": weekendSeries("PLT001", domain.NewDate(2025, time.June, 2), 90, 20, 8),
	}}
	trainer := NewTrainer(src, cal, cfg)

	var wg sync.WaitGroup
	models := make([]*Model, 8)
	for i := range models {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := trainer.Train(context.Background(), "PLT001")
			assert.NoError(t, err)
			models[i] = m
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, m := range models {
		assert.Same(t, models[0], m)
	}
	assert.Equal(t, []string{"PLT001"}, trainer.Trained())
}

func TestTrainerDoesNotCacheUnavailable(t *testing.T) {
	cal, cfg := testDeps()
	src := &memorySource{records: map[string][]domain.SalesRecord{}}
	trainer := NewTrainer(src, cal, cfg)

	for i := 0; i < 2; i++ {
		_, err := trainer.Train(context.Background(), "PRD001")
		assert.True(t, errors.Is(err, domain.ErrModelUnavailable))
	}
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Empty(t, trainer.Trained())
}

func TestPrewarmSkipsShortHistories(t *testing.T) {
	cal, cfg := testDeps()
	start := domain.NewDate(2025, time.June, 2)
	src := &memorySource{records: map[string][]domain.SalesRecord{
		"PLT001": weekendSeries("PLT001", start, 90, 20, 8),
		"PRD002": weekendSeries("PRD002", start, 90, 10, 2),
		"DRY001": weekendSeries("DRY001", start, 5, 10, 2),
	}}
	trainer := NewTrainer(src, cal, cfg)

	n := trainer.Prewarm(context.Background(), []string{"PLT001", "PRD002", "DRY001"}, 2)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"PLT001", "PRD002"}, trainer.Trained())
}

func TestForecasterUsesFallbackWhenUnavailable(t *testing.T) {
	cal, cfg := testDeps()
	trainer := NewTrainer(&memorySource{records: map[string][]domain.SalesRecord{}}, cal, cfg)
	fc := NewForecaster(trainer, NewFallback(cal, cfg, seeded()), cal, cfg)

	today := domain.NewDate(2025, time.December, 15)
	got, err := fc.Forecast(context.Background(), Target{Product: chicken, Item: domain.InventoryItem{Stock: 45}}, today, 14)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFallback, got.Source)
	assert.Len(t, got.Points, 14)
	assert.Equal(t, today, got.Points[0].Date)
	require.NotNil(t, got.FestiveImpact)
	assert.Equal(t, "Christmas", got.FestiveImpact.Festival)
	assert.Equal(t, 10, got.FestiveImpact.DaysUntil)
	assert.Equal(t, domain.TrendIncreasing, got.Trend)

	_, err = fc.Forecast(context.Background(), Target{Product: chicken}, today, 1)
	assert.True(t, errors.Is(err, domain.ErrHorizonTooShort))
}

func TestForecasterRejectsHorizonAboveLimit(t *testing.T) {
	cal, cfg := testDeps()
	fc := NewForecaster(NewTrainer(&memorySource{records: map[string][]domain.SalesRecord{}}, cal, cfg), NewFallback(cal, cfg, seeded()), cal, cfg)
	require.Equal(t, 365, fc.MaxHorizon())

	today := domain.NewDate(2025, time.July, 7)
	targets := []Target{{Product: chicken}, {Product: tomato}}

	_, err := fc.Forecast(context.Background(), targets[0], today, 366)
	assert.True(t, errors.Is(err, domain.ErrHorizonTooLong))

	_, err = fc.ForecastAll(context.Background(), targets, today, 100000)
	assert.True(t, errors.Is(err, domain.ErrHorizonTooLong))

	got, err := fc.Forecast(context.Background(), targets[0], today, 365)
	require.NoError(t, err)
	assert.Len(t, got.Points, 365)
}

func TestForecasterStartsModelForecastAtToday(t *testing.T) {
	cal, cfg := testDeps()
	src := &memorySource{records: map[string][]domain.SalesRecord{
		"PLT001": weekendSeries("PLT001", domain.NewDate(2025, time.June, 2), 90, 20, 8),
	}}
	fc := NewForecaster(NewTrainer(src, cal, cfg), NewFallback(cal, cfg, seeded()), cal, cfg)

	today := domain.NewDate(2026, time.January, 5)
	got, err := fc.Forecast(context.Background(), Target{Product: chicken}, today, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceModel, got.Source)
	assert.Equal(t, today, got.Points[0].Date)

	status := fc.ModelStatus()
	assert.Equal(t, "active", status.Status)
	assert.Contains(t, status.Features, "is_payday")
}

func TestForecastAllIsolatesFailingProduct(t *testing.T) {
	cal, cfg := testDeps()
	src := &memorySource{records: map[string][]domain.SalesRecord{}, panicOn: "PLT001"}
	fc := NewForecaster(NewTrainer(src, cal, cfg), NewFallback(cal, cfg, seeded()), cal, cfg)

	targets := []Target{
		{Product: chicken, Item: domain.InventoryItem{Stock: 45}},
		{Product: tomato, Item: domain.InventoryItem{Stock: 35}},
	}
	got, err := fc.ForecastAll(context.Background(), targets, domain.NewDate(2025, time.July, 7), 14)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tomato.ID, got[0].ProductID)
}
