// Package alerts turns inventory state and forecasts into actionable alerts.
// Every function here is pure.
package alerts

import (
	"fmt"
	"math"
	"sort"

	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
)

// Input is one product's current state. Forecast may be nil when none could
// be produced; only stock-based rules then apply.
type Input struct {
	Product  domain.Product
	Item     domain.InventoryItem
	Forecast *domain.Forecast
}

type Rules struct {
	Inventory config.InventoryConfig
	Pricing   config.PricingConfig
}

// Preparation emits demand spike or festive surge alerts when an increasing
// forecast outruns stock, and stock-out alerts at or below the reorder point.
// The two rules are independent.
func Preparation(inputs []Input, today domain.Date, rules Rules) []domain.PreparationAlert {
	var out []domain.PreparationAlert
	for _, in := range inputs {
		p, item := in.Product, in.Item

		if fc := in.Forecast; fc != nil {
			total := fc.TotalPredicted()
			if fc.Trend == domain.TrendIncreasing && total > item.Stock {
				out = append(out, demandAlert(p, item, fc, total, today, rules))
			}
		}

		if item.Stock <= p.ReorderPoint {
			out = append(out, stockOutAlert(p, item, in.Forecast, rules))
		}
	}
	return out
}

func demandAlert(p domain.Product, item domain.InventoryItem, fc *domain.Forecast, total float64, today domain.Date, rules Rules) domain.PreparationAlert {
	severity := domain.SeverityMedium
	if total > item.Stock*rules.Inventory.DemandSpikeFactor {
		severity = domain.SeverityHigh
	}

	increase := 100.0
	if item.Stock > 0 {
		increase = (total/item.Stock - 1) * 100
	}

	shortfall := math.Ceil(total - item.Stock)
	alert := domain.PreparationAlert{
		AlertID:                 fmt.Sprintf("PA-%s-%s", p.ID, today.Format("20060102")),
		ProductID:               p.ID,
		ProductName:             p.Name,
		Category:                p.Category,
		AlertType:               domain.AlertDemandSpike,
		Severity:                severity,
		CurrentStock:            item.Stock,
		PredictedDemand:         domain.Round(total, 2),
		PredictedDemandIncrease: domain.Round(increase, 1),
		DaysUntilEvent:          len(fc.Points) / 2,
		SuggestedOrderQuantity:  shortfall,
		Supplier:                supplierOf(p, item),
	}

	if fc.FestiveImpact != nil {
		alert.AlertType = domain.AlertFestiveSurge
		alert.Festival = fc.FestiveImpact.Festival
		alert.DaysUntilEvent = fc.FestiveImpact.DaysUntil
		alert.RecommendedAction = fmt.Sprintf("Order %.0f %s of %s from %s before %s (in %d days)",
			shortfall, p.Unit, p.Name, alert.Supplier, alert.Festival, alert.DaysUntilEvent)
	} else {
		alert.RecommendedAction = fmt.Sprintf("Demand rising: order %.0f %s of %s from %s within %d days",
			shortfall, p.Unit, p.Name, alert.Supplier, alert.DaysUntilEvent)
	}
	return alert
}

func stockOutAlert(p domain.Product, item domain.InventoryItem, fc *domain.Forecast, rules Rules) domain.PreparationAlert {
	severity := domain.SeverityMedium
	if item.Stock < p.ReorderPoint*rules.Inventory.LowStockCriticalFactor {
		severity = domain.SeverityHigh
	}

	var predicted float64
	if fc != nil {
		predicted = domain.Round(fc.TotalPredicted(), 2)
	}

	order := math.Ceil(p.ReorderPoint*2 - item.Stock)
	supplier := supplierOf(p, item)
	return domain.PreparationAlert{
		AlertID:                fmt.Sprintf("PA-REORDER-%s", p.ID),
		ProductID:              p.ID,
		ProductName:            p.Name,
		Category:               p.Category,
		AlertType:              domain.AlertStockOutRisk,
		Severity:               severity,
		CurrentStock:           item.Stock,
		PredictedDemand:        predicted,
		DaysUntilEvent:         rules.Pricing.ImmediateReorderDays,
		SuggestedOrderQuantity: order,
		Supplier:               supplier,
		RecommendedAction: fmt.Sprintf("Stock at or below reorder point (%.0f %s): reorder %.0f %s from %s",
			p.ReorderPoint, p.Unit, order, p.Unit, supplier),
	}
}

// Sustainability emits expiry-risk alerts for stock close to or past expiry,
// and overstock alerts for large stock close to expiry. The two rules are
// independent.
func Sustainability(inputs []Input, today domain.Date, rules Rules) []domain.SustainabilityAlert {
	inv := rules.Inventory
	var out []domain.SustainabilityAlert
	for _, in := range inputs {
		p, item := in.Product, in.Item
		days := item.DaysUntilExpiry(today)

		if days <= inv.ExpiryAlertDays {
			out = append(out, expiryAlert(p, item, days, rules))
		}

		if item.Stock > p.ReorderPoint*inv.OverstockFactor && days <= inv.OverstockExpiryWindowDays {
			out = append(out, overstockAlert(p, item, days, rules))
		}
	}
	return out
}

func expiryAlert(p domain.Product, item domain.InventoryItem, days int, rules Rules) domain.SustainabilityAlert {
	inv, pricing := rules.Inventory, rules.Pricing

	alert := domain.SustainabilityAlert{
		AlertID:         fmt.Sprintf("SA-%s-%s", p.ID, item.ExpiryDate.Format("20060102")),
		ProductID:       p.ID,
		ProductName:     p.Name,
		Category:        p.Category,
		AlertType:       domain.AlertExpiryRisk,
		CurrentStock:    item.Stock,
		Unit:            p.Unit,
		ExpiryDate:      item.ExpiryDate,
		DaysUntilExpiry: days,
		WasteRiskKg:     domain.Round(wasteKg(p, item.Stock, inv.NonKgUnitWeight), 2),
		PotentialLoss:   domain.Money(item.Stock * p.UnitCost),
	}

	switch {
	case days < 0:
		alert.Severity = domain.SeverityHigh
		alert.RecommendedAction = fmt.Sprintf("Expired %d days ago: remove %s from sale and log as waste", -days, p.Name)
	case days <= inv.ExpiryCriticalDays:
		alert.Severity = domain.SeverityHigh
		alert.DiscountPercent = pricing.CriticalMarkdownPercent
		alert.RecommendedAction = fmt.Sprintf("Mark down %s by %.0f%% today or donate to a food bank", p.Name, pricing.CriticalMarkdownPercent)
	case days <= inv.ExpiryWarningDays:
		alert.Severity = domain.SeverityMedium
		alert.DiscountPercent = pricing.WarningDiscountPercent
		alert.RecommendedAction = fmt.Sprintf("Discount %s by %.0f%% and move to front display", p.Name, pricing.WarningDiscountPercent)
	default:
		alert.Severity = domain.SeverityLow
		alert.RecommendedAction = fmt.Sprintf("Monitor %s and feature it in bundles", p.Name)
	}
	return alert
}

func overstockAlert(p domain.Product, item domain.InventoryItem, days int, rules Rules) domain.SustainabilityAlert {
	excess := item.Stock - p.ReorderPoint*2
	if excess < 0 {
		excess = 0
	}
	return domain.SustainabilityAlert{
		AlertID:           fmt.Sprintf("SA-OVER-%s", p.ID),
		ProductID:         p.ID,
		ProductName:       p.Name,
		Category:          p.Category,
		AlertType:         domain.AlertOverstock,
		Severity:          domain.SeverityMedium,
		CurrentStock:      item.Stock,
		Unit:              p.Unit,
		ExpiryDate:        item.ExpiryDate,
		DaysUntilExpiry:   days,
		WasteRiskKg:       domain.Round(wasteKg(p, excess, rules.Inventory.NonKgUnitWeight), 2),
		PotentialLoss:     domain.Money(excess * p.UnitCost),
		DiscountPercent:   rules.Pricing.WarningDiscountPercent,
		RecommendedAction: fmt.Sprintf("Overstocked by %.0f %s: run a %.0f%% promotion and pause orders", excess, p.Unit, rules.Pricing.WarningDiscountPercent),
	}
}

// wasteKg converts a quantity to kilograms using an approximate per-unit
// weight for products not sold by mass.
func wasteKg(p domain.Product, qty, unitWeight float64) float64 {
	if p.SoldByMass() {
		return qty
	}
	return qty * unitWeight
}

func supplierOf(p domain.Product, item domain.InventoryItem) string {
	if item.Supplier != "" {
		return item.Supplier
	}
	return p.DefaultSupplier
}

// SortPreparation orders by severity, high first.
func SortPreparation(list []domain.PreparationAlert) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Severity < list[j].Severity
	})
}

// SortSustainability orders by days until expiry, soonest first.
func SortSustainability(list []domain.SustainabilityAlert) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].DaysUntilExpiry == list[j].DaysUntilExpiry {
			return list[i].Severity < list[j].Severity
		}
		return list[i].DaysUntilExpiry < list[j].DaysUntilExpiry
	})
}

func FilterPreparation(list []domain.PreparationAlert, severity *domain.Severity) []domain.PreparationAlert {
	out := make([]domain.PreparationAlert, 0, len(list))
	for _, a := range list {
		if severity == nil || a.Severity == *severity {
			out = append(out, a)
		}
	}
	return out
}

func FilterSustainability(list []domain.SustainabilityAlert, severity *domain.Severity) []domain.SustainabilityAlert {
	out := make([]domain.SustainabilityAlert, 0, len(list))
	for _, a := range list {
		if severity == nil || a.Severity == *severity {
			out = append(out, a)
		}
	}
	return out
}
