package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/freshpredict/internal/catalog"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/andresuchdata/freshpredict/internal/forecast"
	"github.com/andresuchdata/freshpredict/internal/inventory"
	"github.com/rs/zerolog/log"
)

type InventoryService struct {
	catalog *catalog.Catalog
	store   *inventory.Store
	today   Clock
}

func NewInventoryService(cat *catalog.Catalog, store *inventory.Store, today Clock) *InventoryService {
	return &InventoryService{catalog: cat, store: store, today: today}
}

// List returns every stocked product, optionally restricted to one category.
func (s *InventoryService) List(ctx context.Context, category string) ([]domain.InventoryView, error) {
	var filter domain.Category
	if strings.TrimSpace(category) != "" {
		c, err := domain.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		filter = c
	}

	views := make([]domain.InventoryView, 0)
	for _, target := range s.Targets() {
		if filter != "" && target.Product.Category != filter {
			continue
		}
		views = append(views, domain.NewInventoryView(target.Product, target.Item))
	}
	return views, nil
}

// Get returns one product's stock with days until expiry.
func (s *InventoryService) Get(ctx context.Context, productID string) (domain.InventoryView, error) {
	p, err := s.catalog.Get(productID)
	if err != nil {
		return domain.InventoryView{}, err
	}
	item, err := s.store.Get(p.ID)
	if err != nil {
		return domain.InventoryView{}, err
	}

	view := domain.NewInventoryView(p, item)
	days := item.DaysUntilExpiry(s.today())
	view.DaysUntilExpiry = &days
	return view, nil
}

// AddStock receives a batch for a catalog product. New items take the
// product's default supplier when none is given.
func (s *InventoryService) AddStock(ctx context.Context, add domain.StockAddition) (domain.InventoryView, error) {
	if err := add.Validate(); err != nil {
		return domain.InventoryView{}, err
	}
	p, err := s.catalog.Get(add.ProductID)
	if err != nil {
		return domain.InventoryView{}, err
	}

	add.ProductID = p.ID
	add.Supplier = strings.TrimSpace(add.Supplier)
	if _, err := s.store.Get(p.ID); err != nil && add.Supplier == "" {
		add.Supplier = p.DefaultSupplier
	}

	item, err := s.store.AddStock(add)
	if err != nil {
		return domain.InventoryView{}, fmt.Errorf("add stock %s: %w", p.ID, err)
	}

	log.Info().
		Str("product_id", p.ID).
		Float64("quantity", add.Quantity).
		Float64("stock", item.Stock).
		Str("expiry_date", item.ExpiryDate.String()).
		Msg("stock added")

	view := domain.NewInventoryView(p, item)
	days := item.DaysUntilExpiry(s.today())
	view.DaysUntilExpiry = &days
	return view, nil
}

// Products lists the catalog with the expiry a batch received today would get.
func (s *InventoryService) Products(ctx context.Context) []domain.ProductView {
	today := s.today()
	products := s.catalog.Products()
	out := make([]domain.ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, domain.ProductView{Product: p, SuggestedExpiry: today.AddDays(p.ShelfLifeDays)})
	}
	return out
}

// Suppliers lists known suppliers for a category; unknown categories have none.
func (s *InventoryService) Suppliers(ctx context.Context, category string) []string {
	c, err := domain.ParseCategory(category)
	if err != nil {
		return []string{}
	}
	return catalog.Suppliers(c)
}

// Targets pairs every stocked item with its catalog product.
func (s *InventoryService) Targets() []forecast.Target {
	items := s.store.List()
	out := make([]forecast.Target, 0, len(items))
	for _, item := range items {
		p, err := s.catalog.Get(item.ProductID)
		if err != nil {
			log.Warn().Str("product_id", item.ProductID).Msg("inventory item has no catalog entry")
			continue
		}
		out = append(out, forecast.Target{Product: p, Item: item})
	}
	return out
}

// Target returns one product's pairing.
func (s *InventoryService) Target(productID string) (forecast.Target, error) {
	p, err := s.catalog.Get(productID)
	if err != nil {
		return forecast.Target{}, err
	}
	item, err := s.store.Get(p.ID)
	if err != nil {
		return forecast.Target{}, err
	}
	return forecast.Target{Product: p, Item: item}, nil
}

// Catalog exposes the read-only product index.
func (s *InventoryService) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *InventoryService) Today() domain.Date {
	return s.today()
}
