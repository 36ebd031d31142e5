package domain

// PreparationAlert warns that demand will outrun stock.
type PreparationAlert struct {
	AlertID                 string    `json:"alert_id"`
	ProductID               string    `json:"product_id"`
	ProductName             string    `json:"product_name"`
	Category                Category  `json:"category"`
	AlertType               AlertType `json:"alert_type"`
	Severity                Severity  `json:"severity"`
	CurrentStock            float64   `json:"current_stock"`
	PredictedDemand         float64   `json:"predicted_demand"`
	PredictedDemandIncrease float64   `json:"predicted_demand_increase"`
	DaysUntilEvent          int       `json:"days_until_event"`
	Festival                string    `json:"festival,omitempty"`
	RecommendedAction       string    `json:"recommended_action"`
	SuggestedOrderQuantity  float64   `json:"suggested_order_quantity"`
	Supplier                string    `json:"supplier"`
}

// SustainabilityAlert flags stock at risk of becoming waste.
type SustainabilityAlert struct {
	AlertID           string    `json:"alert_id"`
	ProductID         string    `json:"product_id"`
	ProductName       string    `json:"product_name"`
	Category          Category  `json:"category"`
	AlertType         AlertType `json:"alert_type"`
	Severity          Severity  `json:"severity"`
	CurrentStock      float64   `json:"current_stock"`
	Unit              string    `json:"unit"`
	ExpiryDate        Date      `json:"expiry_date"`
	DaysUntilExpiry   int       `json:"days_until_expiry"`
	WasteRiskKg       float64   `json:"waste_risk_kg"`
	PotentialLoss     float64   `json:"potential_loss_rm"`
	DiscountPercent   float64   `json:"recommended_discount"`
	RecommendedAction string    `json:"recommended_action"`
}

// MarkSoldRequest records rescued stock sold at a markdown.
type MarkSoldRequest struct {
	ProductID  string  `json:"product_id"`
	QuantityKg float64 `json:"quantity_kg"`
	Cost       float64 `json:"cost"`
	AlertID    string  `json:"alert_id,omitempty"`
}
