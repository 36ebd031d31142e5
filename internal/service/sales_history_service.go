package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/freshpredict/internal/cache"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/andresuchdata/freshpredict/internal/repository"
	"github.com/rs/zerolog/log"
)

// SalesHistoryService fronts the configured sales repository with the
// sales-history cache.
type SalesHistoryService struct {
	repo  repository.SalesRepository
	cache cache.SalesHistoryCache
}

func NewSalesHistoryService(repo repository.SalesRepository, cacheImpl cache.SalesHistoryCache) *SalesHistoryService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSalesHistoryCache()
	}
	return &SalesHistoryService{repo: repo, cache: cacheImpl}
}

func (s *SalesHistoryService) Source() string {
	return s.repo.Source()
}

func (s *SalesHistoryService) DailySales(ctx context.Context, productID string) ([]domain.SalesRecord, error) {
	source := s.repo.Source()
	if records, ok, err := s.cache.Get(ctx, source, productID); err == nil && ok {
		return records, nil
	} else if err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("sales history: cache get failed")
	}

	records, err := s.repo.DailySales(ctx, productID)
	if err != nil {
		return nil, err
	}

	if len(records) > 0 {
		if err := s.cache.Set(ctx, source, productID, records); err != nil {
			log.Warn().Err(err).Str("product_id", productID).Msg("sales history: cache set failed")
		}
	}

	return records, nil
}

// Reload clears cached series and asks the repository to re-read its source
// when it keeps one in memory.
func (s *SalesHistoryService) Reload(ctx context.Context) error {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidate sales cache: %w", err)
	}
	if r, ok := s.repo.(interface{ Invalidate() }); ok {
		r.Invalidate()
	}
	return nil
}
