package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Category string

const (
	CategoryPoultry Category = "poultry"
	CategoryProduce Category = "produce"
	CategoryDairy   Category = "dairy"
)

var categories = map[string]Category{
	"poultry": CategoryPoultry,
	"produce": CategoryProduce,
	"dairy":   CategoryDairy,
}

// ParseCategory returns the category for a given label (case-insensitive).
func ParseCategory(label string) (Category, error) {
	c, ok := categories[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, label)
	}
	return c, nil
}

// Product is an immutable catalog entry.
type Product struct {
	ID              string   `json:"id" db:"product_id"`
	Name            string   `json:"name" db:"product_name"`
	Category        Category `json:"category" db:"category"`
	Unit            string   `json:"unit" db:"unit"`
	UnitCost        float64  `json:"unit_cost" db:"unit_cost"`
	ShelfLifeDays   int      `json:"shelf_life_days" db:"shelf_life_days"`
	ReorderPoint    float64  `json:"reorder_point" db:"reorder_point"`
	DefaultSupplier string   `json:"supplier" db:"supplier"`
}

// SoldByMass reports whether quantities of this product are already in kg.
func (p Product) SoldByMass() bool {
	return strings.EqualFold(p.Unit, "kg")
}

// InventoryItem is the current batch of a product on hand. Only the
// latest-expiring batch is tracked.
type InventoryItem struct {
	ProductID  string  `json:"product_id"`
	Stock      float64 `json:"current_stock"`
	ExpiryDate Date    `json:"expiry_date"`
	Supplier   string  `json:"supplier"`
}

func NewInventoryItem(productID string, stock float64, expiry Date, supplier string) (InventoryItem, error) {
	if strings.TrimSpace(productID) == "" {
		return InventoryItem{}, errors.New("inventory item requires a product id")
	}
	if stock < 0 {
		return InventoryItem{}, fmt.Errorf("%w: %s has %.2f", ErrInvalidStock, productID, stock)
	}
	return InventoryItem{
		ProductID:  productID,
		Stock:      stock,
		ExpiryDate: expiry,
		Supplier:   supplier,
	}, nil
}

func (i InventoryItem) DaysUntilExpiry(today Date) int {
	return today.DaysUntil(i.ExpiryDate)
}

// StockAddition is a received batch.
type StockAddition struct {
	ProductID  string  `json:"product_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required"`
	ExpiryDate Date    `json:"expiry_date"`
	Supplier   string  `json:"supplier,omitempty"`
}

func (a StockAddition) Validate() error {
	if strings.TrimSpace(a.ProductID) == "" {
		return errors.New("product_id is required")
	}
	if a.Quantity <= 0 {
		return fmt.Errorf("%w: got %.2f", ErrInvalidQuantity, a.Quantity)
	}
	if a.ExpiryDate.IsZero() {
		return fmt.Errorf("%w: expiry_date is required", ErrInvalidDate)
	}
	return nil
}

// InventoryView joins an item with its catalog entry for API responses.
type InventoryView struct {
	ProductID       string   `json:"product_id"`
	ProductName     string   `json:"product_name"`
	Category        Category `json:"category"`
	CurrentStock    float64  `json:"current_stock"`
	Unit            string   `json:"unit"`
	ExpiryDate      Date     `json:"expiry_date"`
	Supplier        string   `json:"supplier"`
	UnitCost        float64  `json:"unit_cost"`
	ReorderPoint    float64  `json:"reorder_point"`
	ShelfLifeDays   int      `json:"shelf_life_days"`
	DaysUntilExpiry *int     `json:"days_until_expiry,omitempty"`
}

func NewInventoryView(p Product, item InventoryItem) InventoryView {
	return InventoryView{
		ProductID:     p.ID,
		ProductName:   p.Name,
		Category:      p.Category,
		CurrentStock:  item.Stock,
		Unit:          p.Unit,
		ExpiryDate:    item.ExpiryDate,
		Supplier:      item.Supplier,
		UnitCost:      p.UnitCost,
		ReorderPoint:  p.ReorderPoint,
		ShelfLifeDays: p.ShelfLifeDays,
	}
}

// ProductView is a catalog entry with the expiry a batch received today would get.
type ProductView struct {
	Product
	SuggestedExpiry Date `json:"suggested_expiry"`
}

// SalesRecord is one day of sales for a product.
type SalesRecord struct {
	Date      Date    `json:"date"`
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity_sold"`
}
