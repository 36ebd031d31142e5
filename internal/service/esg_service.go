package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/freshpredict/internal/catalog"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/andresuchdata/freshpredict/internal/esg"
	"github.com/rs/zerolog/log"
)

type ESGService struct {
	tracker *esg.Tracker
	catalog *catalog.Catalog
	cfg     config.ESGConfig
}

func NewESGService(tracker *esg.Tracker, cat *catalog.Catalog, cfg config.ESGConfig) *ESGService {
	return &ESGService{tracker: tracker, catalog: cat, cfg: cfg}
}

func (s *ESGService) Metrics(ctx context.Context) domain.ESGMetrics {
	return esg.Compute(s.tracker.Snapshot(), s.cfg, catalog.ESGTrend())
}

// MarkSold records stock rescued from waste for a catalog product.
func (s *ESGService) MarkSold(ctx context.Context, req domain.MarkSoldRequest) (domain.MarkSoldResult, error) {
	p, err := s.catalog.Get(req.ProductID)
	if err != nil {
		return domain.MarkSoldResult{}, err
	}
	req.ProductID = p.ID

	record, snapshot, err := s.tracker.MarkSold(req)
	if err != nil {
		return domain.MarkSoldResult{}, err
	}

	log.Info().
		Str("product_id", p.ID).
		Str("alert_id", req.AlertID).
		Float64("quantity_kg", req.QuantityKg).
		Float64("waste_saved_kg", snapshot.WasteSavedKg).
		Msg("esg: stock marked sold")

	return domain.MarkSoldResult{
		Success:        true,
		Message:        fmt.Sprintf("Marked %.2f kg of %s as sold, waste prevented", req.QuantityKg, p.Name),
		Record:         record,
		UpdatedMetrics: esg.Compute(snapshot, s.cfg, catalog.ESGTrend()),
	}, nil
}
