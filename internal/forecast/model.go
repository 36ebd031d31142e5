package forecast

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// HistorySource supplies daily sales for a product, oldest first.
type HistorySource interface {
	DailySales(ctx context.Context, productID string) ([]domain.SalesRecord, error)
}

// Trainer fits and caches one model per product for the process lifetime.
// Concurrent first requests for a product share a single fit.
type Trainer struct {
	source HistorySource
	cal    *calendar.Calendar
	cfg    config.ForecastConfig

	mu     sync.RWMutex
	models map[string]*Model
	group  singleflight.Group
}

func NewTrainer(source HistorySource, cal *calendar.Calendar, cfg config.ForecastConfig) *Trainer {
	return &Trainer{
		source: source,
		cal:    cal,
		cfg:    cfg,
		models: make(map[string]*Model),
	}
}

// Train returns the cached model for productID, fitting it on first use.
// Insufficient history yields domain.ErrModelUnavailable and is not cached.
func (t *Trainer) Train(ctx context.Context, productID string) (*Model, error) {
	if m, ok := t.cached(productID); ok {
		return m, nil
	}

	v, err, _ := t.group.Do(productID, func() (interface{}, error) {
		if m, ok := t.cached(productID); ok {
			return m, nil
		}

		if t.source == nil {
			return nil, fmt.Errorf("%w: no sales history configured", domain.ErrModelUnavailable)
		}

		records, err := t.source.DailySales(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("%w: load history for %s: %v", domain.ErrModelUnavailable, productID, err)
		}

		start := time.Now()
		m, err := Fit(productID, records, t.cal, t.cfg)
		trainingDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			trainingsTotal.WithLabelValues("unavailable").Inc()
			return nil, err
		}
		trainingsTotal.WithLabelValues("trained").Inc()

		t.mu.Lock()
		t.models[productID] = m
		t.mu.Unlock()

		log.Info().
			Str("product_id", productID).
			Int("samples", m.Samples).
			Float64("residual", m.Residual()).
			Dur("took", time.Since(start)).
			Msg("forecast: model trained")
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Model), nil
}

func (t *Trainer) cached(productID string) (*Model, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.models[productID]
	return m, ok
}

// Trained lists products with a cached model.
func (t *Trainer) Trained() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.models))
	for id := range t.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reset drops every cached model so the next request refits from fresh
// history. It returns how many models were dropped.
func (t *Trainer) Reset() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.models)
	t.models = make(map[string]*Model)
	return n
}

// Prewarm trains every product up front. Products without enough history
// are skipped; other failures are logged and do not stop the rest.
func (t *Trainer) Prewarm(ctx context.Context, productIDs []string, concurrency int) int {
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, id := range productIDs {
		id := id
		g.Go(func() error {
			if _, err := t.Train(gctx, id); err != nil {
				if errors.Is(err, domain.ErrModelUnavailable) {
					log.Info().Str("product_id", id).Err(err).Msg("forecast: prewarm skipped, fallback will be used")
				} else {
					log.Warn().Str("product_id", id).Err(err).Msg("forecast: prewarm failed")
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return len(t.Trained())
}
