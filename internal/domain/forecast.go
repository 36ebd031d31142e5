package domain

type ForecastSource string

const (
	SourceModel    ForecastSource = "model"
	SourceFallback ForecastSource = "fallback"
)

// HolidayWindow is the span around a festival over which its effect is felt.
type HolidayWindow struct {
	Before int `json:"days_before"`
	After  int `json:"days_after"`
}

type Festival struct {
	Name       string        `json:"name"`
	Date       Date          `json:"date"`
	Categories []Category    `json:"affected_categories"`
	Multiplier float64       `json:"demand_multiplier"`
	Window     HolidayWindow `json:"window"`
}

func (f Festival) Affects(c Category) bool {
	for _, fc := range f.Categories {
		if fc == c {
			return true
		}
	}
	return false
}

// Covers reports whether d falls inside the festival's holiday window.
func (f Festival) Covers(d Date) bool {
	offset := f.Date.DaysUntil(d)
	return offset >= -f.Window.Before && offset <= f.Window.After
}

// UpcomingFestival is a festival with its distance from today.
type UpcomingFestival struct {
	Festival
	DaysUntil int `json:"days_until"`
}

type ForecastPoint struct {
	Date      Date    `json:"date"`
	Predicted float64 `json:"predicted_demand"`
	Lower     float64 `json:"lower_bound"`
	Upper     float64 `json:"upper_bound"`
}

type FestiveImpact struct {
	Festival   string  `json:"festival"`
	DaysUntil  int     `json:"days_until"`
	Multiplier float64 `json:"expected_multiplier"`
}

type Forecast struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Category      Category        `json:"category"`
	Points        []ForecastPoint `json:"forecast"`
	Trend         Trend           `json:"trend"`
	FestiveImpact *FestiveImpact  `json:"festive_impact,omitempty"`
	Source        ForecastSource  `json:"source"`
}

func (f Forecast) Predictions() []float64 {
	out := make([]float64, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Predicted
	}
	return out
}

func (f Forecast) TotalPredicted() float64 {
	var total float64
	for _, p := range f.Points {
		total += p.Predicted
	}
	return total
}

// ModelStatus describes the forecasting backend for operators.
type ModelStatus struct {
	Status             string   `json:"status"`
	ModelType          string   `json:"model_type"`
	TrainedProducts    []string `json:"trained_products"`
	UnavailableReason  string   `json:"unavailable_reason,omitempty"`
	Features           []string `json:"features"`
	SeasonalityMode    string   `json:"seasonality_mode"`
	MinTrainingSamples int      `json:"min_training_samples"`
	SalesSource        string   `json:"sales_source"`
}

// HistoryReload reports what a sales-history reload discarded.
type HistoryReload struct {
	SalesSource   string `json:"sales_source"`
	DroppedModels int    `json:"dropped_models"`
	Retrained     int    `json:"retrained"`
}

// PredictionSummary is the condensed forecast served to older clients.
type PredictionSummary struct {
	Product         string    `json:"product"`
	ProductID       string    `json:"product_id"`
	PredictedDemand float64   `json:"predicted_demand"`
	Trend           Trend     `json:"trend"`
	WasteRisk       RiskLevel `json:"waste_risk"`
	Horizon         int       `json:"horizon_days"`
	Source          string    `json:"source"`
}
