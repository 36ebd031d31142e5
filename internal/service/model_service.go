package service

import (
	"context"

	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/andresuchdata/freshpredict/internal/forecast"
	"github.com/rs/zerolog/log"
)

// ModelService lets operators pick up a new sales export without a restart.
type ModelService struct {
	history     *SalesHistoryService
	trainer     *forecast.Trainer
	productIDs  func() []string
	concurrency int
}

func NewModelService(history *SalesHistoryService, trainer *forecast.Trainer, productIDs func() []string, concurrency int) *ModelService {
	return &ModelService{history: history, trainer: trainer, productIDs: productIDs, concurrency: concurrency}
}

// Reload drops cached history and models. With retrain set, every product is
// fitted again before returning.
func (s *ModelService) Reload(ctx context.Context, retrain bool) (domain.HistoryReload, error) {
	if err := s.history.Reload(ctx); err != nil {
		return domain.HistoryReload{}, err
	}

	result := domain.HistoryReload{
		SalesSource:   s.history.Source(),
		DroppedModels: s.trainer.Reset(),
	}
	if retrain && s.productIDs != nil {
		result.Retrained = s.trainer.Prewarm(ctx, s.productIDs(), s.concurrency)
	}

	log.Info().
		Str("sales_source", result.SalesSource).
		Int("dropped_models", result.DroppedModels).
		Int("retrained", result.Retrained).
		Msg("sales history reloaded")
	return result, nil
}
