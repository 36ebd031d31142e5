// Package esg tracks rescued waste and derives sustainability metrics.
package esg

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/google/uuid"
)

// Tracker holds the cumulative waste counters. It only grows.
type Tracker struct {
	mu       sync.Mutex
	snapshot domain.WasteSnapshot
	sold     []domain.SoldRecord
	now      func() time.Time
}

func NewTracker(cfg config.ESGConfig) *Tracker {
	return &Tracker{
		snapshot: domain.WasteSnapshot{
			WasteSavedKg: cfg.InitialWasteSavedKg,
			ItemsRescued: cfg.InitialItemsRescued,
			CostSaved:    cfg.InitialCostSaved,
		},
		now: time.Now,
	}
}

// MarkSold records rescued stock and returns the updated counters.
func (t *Tracker) MarkSold(req domain.MarkSoldRequest) (domain.SoldRecord, domain.WasteSnapshot, error) {
	if req.QuantityKg <= 0 || math.IsNaN(req.QuantityKg) || math.IsInf(req.QuantityKg, 0) {
		return domain.SoldRecord{}, domain.WasteSnapshot{}, fmt.Errorf("%w: quantity_kg %v", domain.ErrInvalidQuantity, req.QuantityKg)
	}
	if req.Cost < 0 || math.IsNaN(req.Cost) || math.IsInf(req.Cost, 0) {
		return domain.SoldRecord{}, domain.WasteSnapshot{}, fmt.Errorf("%w: cost %v", domain.ErrInvalidQuantity, req.Cost)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	record := domain.SoldRecord{
		ID:         uuid.NewString(),
		ProductID:  req.ProductID,
		AlertID:    req.AlertID,
		QuantityKg: req.QuantityKg,
		Cost:       req.Cost,
		SoldAt:     t.now(),
	}
	t.sold = append(t.sold, record)
	t.snapshot.WasteSavedKg += req.QuantityKg
	t.snapshot.ItemsRescued++
	t.snapshot.CostSaved += req.Cost

	return record, t.snapshot, nil
}

func (t *Tracker) Snapshot() domain.WasteSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

func (t *Tracker) History() []domain.SoldRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.SoldRecord(nil), t.sold...)
}

// Compute derives ESG metrics from a tracker snapshot.
func Compute(s domain.WasteSnapshot, cfg config.ESGConfig, trend []domain.ESGTrendPoint) domain.ESGMetrics {
	reduction := 0.0
	if cfg.BaselineMonthlyWasteKg > 0 {
		reduction = s.WasteSavedKg / cfg.BaselineMonthlyWasteKg * 100
	}

	compliance := cfg.ComplianceBase + float64(s.ItemsRescued)*cfg.CompliancePerItem
	if compliance > cfg.ComplianceMax {
		compliance = cfg.ComplianceMax
	}

	if trend == nil {
		trend = []domain.ESGTrendPoint{}
	}

	return domain.ESGMetrics{
		WasteSavedKg:          domain.Round(s.WasteSavedKg, 1),
		MethaneReducedKg:      domain.Round(s.WasteSavedKg*cfg.MethaneFactor, 2),
		ItemsRescued:          s.ItemsRescued,
		CostSaved:             domain.Money(s.CostSaved),
		WasteReductionPercent: domain.Round(reduction, 1),
		ComplianceScore:       domain.Round(compliance, 1),
		MonthlyTrend:          trend,
	}
}
