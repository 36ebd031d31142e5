// Package inventory keeps current stock levels in memory.
package inventory

import (
	"fmt"
	"sync"

	"github.com/andresuchdata/freshpredict/internal/catalog"
	"github.com/andresuchdata/freshpredict/internal/domain"
)

// Store owns the inventory list. Writes hold the lock across the whole
// read-modify-write so concurrent stock additions never lose updates.
type Store struct {
	mu    sync.RWMutex
	items map[string]domain.InventoryItem
	order []string
}

func NewStore(items []domain.InventoryItem) (*Store, error) {
	s := &Store{items: make(map[string]domain.InventoryItem, len(items))}
	for _, item := range items {
		validated, err := domain.NewInventoryItem(item.ProductID, item.Stock, item.ExpiryDate, item.Supplier)
		if err != nil {
			return nil, err
		}
		if _, dup := s.items[item.ProductID]; dup {
			return nil, fmt.Errorf("duplicate inventory item %s", item.ProductID)
		}
		s.items[item.ProductID] = validated
		s.order = append(s.order, item.ProductID)
	}
	return s, nil
}

// Seed builds the demo inventory with expiry dates relative to today.
func Seed(cat *catalog.Catalog, scenarios []catalog.Scenario, today domain.Date) (*Store, error) {
	items := make([]domain.InventoryItem, 0, len(scenarios))
	for _, sc := range scenarios {
		p, err := cat.Get(sc.ProductID)
		if err != nil {
			return nil, fmt.Errorf("seed inventory: %w", err)
		}
		items = append(items, domain.InventoryItem{
			ProductID:  p.ID,
			Stock:      sc.Stock,
			ExpiryDate: today.AddDays(sc.ExpiryOffsetDays),
			Supplier:   p.DefaultSupplier,
		})
	}
	return NewStore(items)
}

func (s *Store) Get(productID string) (domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[productID]
	if !ok {
		return domain.InventoryItem{}, fmt.Errorf("inventory item %q: %w", productID, domain.ErrNotFound)
	}
	return item, nil
}

// List returns a snapshot in insertion order.
func (s *Store) List() []domain.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.InventoryItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// AddStock receives a batch. Quantity accumulates; the expiry date only moves
// later; a non-empty supplier replaces the current one. Unknown products get
// a new item.
func (s *Store) AddStock(add domain.StockAddition) (domain.InventoryItem, error) {
	if err := add.Validate(); err != nil {
		return domain.InventoryItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[add.ProductID]
	if !ok {
		created, err := domain.NewInventoryItem(add.ProductID, add.Quantity, add.ExpiryDate, add.Supplier)
		if err != nil {
			return domain.InventoryItem{}, err
		}
		s.items[add.ProductID] = created
		s.order = append(s.order, add.ProductID)
		return created, nil
	}

	item.Stock += add.Quantity
	if add.ExpiryDate.After(item.ExpiryDate) {
		item.ExpiryDate = add.ExpiryDate
	}
	if add.Supplier != "" {
		item.Supplier = add.Supplier
	}
	s.items[add.ProductID] = item
	return item, nil
}
