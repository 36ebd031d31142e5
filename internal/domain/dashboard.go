package domain

import "time"

// WasteSnapshot is the cumulative rescued-waste counter at a point in time.
type WasteSnapshot struct {
	WasteSavedKg float64 `json:"waste_saved_kg"`
	ItemsRescued int     `json:"items_rescued"`
	CostSaved    float64 `json:"cost_saved_rm"`
}

// SoldRecord is one mark-sold event.
type SoldRecord struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	AlertID    string    `json:"alert_id,omitempty"`
	QuantityKg float64   `json:"quantity_kg"`
	Cost       float64   `json:"cost"`
	SoldAt     time.Time `json:"sold_at"`
}

// MarkSoldResult echoes a recorded sale with the metrics it produced.
type MarkSoldResult struct {
	Success        bool       `json:"success"`
	Message        string     `json:"message"`
	Record         SoldRecord `json:"record"`
	UpdatedMetrics ESGMetrics `json:"updated_metrics"`
}

type ESGTrendPoint struct {
	Month   string  `json:"month"`
	WasteKg float64 `json:"waste_kg"`
	SavedKg float64 `json:"saved_kg"`
}

type ESGMetrics struct {
	WasteSavedKg          float64         `json:"waste_saved_kg"`
	MethaneReducedKg      float64         `json:"methane_reduced_kg"`
	ItemsRescued          int             `json:"items_rescued"`
	CostSaved             float64         `json:"cost_saved_rm"`
	WasteReductionPercent float64         `json:"waste_reduction_percent"`
	ComplianceScore       float64         `json:"compliance_score"`
	MonthlyTrend          []ESGTrendPoint `json:"monthly_trend"`
}

// DashboardSummary aggregates the headline numbers for the home screen.
type DashboardSummary struct {
	TotalProducts            int               `json:"total_products"`
	LowStockCount            int               `json:"low_stock_count"`
	ExpiryRiskCount          int               `json:"expiry_risk_count"`
	PreparationAlertCount    int               `json:"preparation_alerts_count"`
	SustainabilityAlertCount int               `json:"sustainability_alerts_count"`
	HighSeverityAlertCount   int               `json:"high_severity_alerts_count"`
	TotalInventoryValue      float64           `json:"total_inventory_value"`
	UpcomingFestival         *UpcomingFestival `json:"upcoming_festival,omitempty"`
	ESGMetrics               ESGMetrics        `json:"esg_metrics"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// StockInsight evaluates a planned order against expected demand.
type StockInsight struct {
	ProductID         string    `json:"product_id"`
	ProductName       string    `json:"product_name"`
	CurrentStock      float64   `json:"current_stock"`
	PlannedQuantity   float64   `json:"planned_quantity"`
	ExpectedDaily     float64   `json:"expected_daily_demand"`
	ForecastDemand    float64   `json:"forecast_demand"`
	HorizonDays       int       `json:"horizon_days"`
	SuggestedQuantity float64   `json:"suggested_quantity"`
	CoverageDays      float64   `json:"coverage_days"`
	ShelfLifeDays     int       `json:"shelf_life_days"`
	RiskLevel         RiskLevel `json:"risk_level"`
	IsPayday          bool      `json:"is_payday"`
	Festival          string    `json:"festival,omitempty"`
	Insight           string    `json:"insight"`
}
