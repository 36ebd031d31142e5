// Package catalog holds the static reference data the store starts with.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/freshpredict/internal/domain"
)

var products = []domain.Product{
	{ID: "PLT001", Name: "Whole Chicken", Category: domain.CategoryPoultry, Unit: "kg", UnitCost: 12.50, ShelfLifeDays: 4, ReorderPoint: 30, DefaultSupplier: "QL Resources"},
	{ID: "PLT002", Name: "Chicken Wings", Category: domain.CategoryPoultry, Unit: "kg", UnitCost: 15.50, ShelfLifeDays: 4, ReorderPoint: 20, DefaultSupplier: "QL Resources"},
	{ID: "PRD001", Name: "Kangkung", Category: domain.CategoryProduce, Unit: "kg", UnitCost: 4.50, ShelfLifeDays: 4, ReorderPoint: 15, DefaultSupplier: "Cameron Highlands Farm"},
	{ID: "PRD002", Name: "Tomatoes", Category: domain.CategoryProduce, Unit: "kg", UnitCost: 6.50, ShelfLifeDays: 6, ReorderPoint: 20, DefaultSupplier: "Cameron Highlands Farm"},
	{ID: "DRY001", Name: "Fresh Milk 1L", Category: domain.CategoryDairy, Unit: "units", UnitCost: 7.50, ShelfLifeDays: 10, ReorderPoint: 40, DefaultSupplier: "Dutch Lady Malaysia"},
	{ID: "DRY002", Name: "Eggs (30 pack)", Category: domain.CategoryDairy, Unit: "packs", UnitCost: 15.00, ShelfLifeDays: 21, ReorderPoint: 25, DefaultSupplier: "Lay Hong"},
}

var suppliers = map[domain.Category][]string{
	domain.CategoryPoultry: {"QL Resources", "Leong Hup", "Kee Song"},
	domain.CategoryProduce: {"Cameron Highlands Farm", "Local Supplier", "Sime Darby Plantation"},
	domain.CategoryDairy:   {"Dutch Lady Malaysia", "Nestle Malaysia", "Farm Fresh"},
}

// Scenario seeds one inventory item relative to the start date.
type Scenario struct {
	ProductID        string
	Stock            float64
	ExpiryOffsetDays int
}

var scenarios = []Scenario{
	{ProductID: "PLT001", Stock: 45, ExpiryOffsetDays: 2},
	{ProductID: "PLT002", Stock: 18, ExpiryOffsetDays: 4},
	{ProductID: "PRD001", Stock: 12, ExpiryOffsetDays: 1},
	{ProductID: "PRD002", Stock: 35, ExpiryOffsetDays: 5},
	{ProductID: "DRY001", Stock: 55, ExpiryOffsetDays: 8},
	{ProductID: "DRY002", Stock: 40, ExpiryOffsetDays: 18},
}

var esgTrend = []domain.ESGTrendPoint{
	{Month: "Sep 2025", WasteKg: 180, SavedKg: 45},
	{Month: "Oct 2025", WasteKg: 165, SavedKg: 62},
	{Month: "Nov 2025", WasteKg: 142, SavedKg: 85},
	{Month: "Dec 2025", WasteKg: 128, SavedKg: 110},
	{Month: "Jan 2026", WasteKg: 105, SavedKg: 150},
}

// Catalog is a read-only product index.
type Catalog struct {
	products []domain.Product
	byID     map[string]domain.Product
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(products)
}

func New(list []domain.Product) *Catalog {
	c := &Catalog{
		products: append([]domain.Product(nil), list...),
		byID:     make(map[string]domain.Product, len(list)),
	}
	for _, p := range c.products {
		c.byID[p.ID] = p
	}
	return c
}

func (c *Catalog) Products() []domain.Product {
	return append([]domain.Product(nil), c.products...)
}

func (c *Catalog) Get(id string) (domain.Product, error) {
	p, ok := c.byID[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %q: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// FindByName matches a product by case-insensitive name, then by prefix.
func (c *Catalog) FindByName(name string) (domain.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return domain.Product{}, fmt.Errorf("product name is empty: %w", domain.ErrNotFound)
	}
	for _, p := range c.products {
		if strings.ToLower(p.Name) == needle {
			return p, nil
		}
	}
	for _, p := range c.products {
		if strings.HasPrefix(strings.ToLower(p.Name), needle) {
			return p, nil
		}
	}
	return c.Get(name)
}

func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.products))
	for _, p := range c.products {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	return ids
}

func Suppliers(category domain.Category) []string {
	return append([]string(nil), suppliers[category]...)
}

func Scenarios() []Scenario {
	return append([]Scenario(nil), scenarios...)
}

func ESGTrend() []domain.ESGTrendPoint {
	return append([]domain.ESGTrendPoint(nil), esgTrend...)
}
