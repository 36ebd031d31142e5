package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidStock     = errors.New("stock must not be negative")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrInvalidSeverity  = errors.New("severity must be one of high, medium, low")
	ErrInvalidCategory  = errors.New("category must be one of poultry, produce, dairy")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrHorizonTooShort  = errors.New("forecast horizon must cover at least 2 days")
	ErrHorizonTooLong   = errors.New("forecast horizon exceeds the configured maximum")
	ErrModelUnavailable = errors.New("demand model unavailable")
)
