package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity orders alerts; lower values are more urgent.
type Severity int

const (
	SeverityHigh Severity = iota
	SeverityMedium
	SeverityLow
)

var severityLabels = map[Severity]string{
	SeverityHigh:   "high",
	SeverityMedium: "medium",
	SeverityLow:    "low",
}

var severityCodes = map[string]Severity{
	"high":   SeverityHigh,
	"medium": SeverityMedium,
	"low":    SeverityLow,
}

func (s Severity) String() string {
	if label, ok := severityLabels[s]; ok {
		return label
	}
	return "unknown"
}

// ParseSeverity returns the severity for a given label (case-insensitive).
func ParseSeverity(label string) (Severity, error) {
	s, ok := severityCodes[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeverity, label)
	}
	return s, nil
}

func (s Severity) Valid() bool {
	_, ok := severityLabels[s]
	return ok
}

func (s Severity) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSeverity, int(s))
	}
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSeverity, string(data))
	}
	parsed, err := ParseSeverity(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

type AlertType string

const (
	AlertDemandSpike  AlertType = "demand_spike"
	AlertFestiveSurge AlertType = "festive_surge"
	AlertStockOutRisk AlertType = "stock_out_risk"
	AlertExpiryRisk   AlertType = "expiry_risk"
	AlertOverstock    AlertType = "overstock"
)
