package service

import (
	"time"

	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/rs/zerolog/log"
)

// Clock returns the store's current calendar day.
type Clock func() domain.Date

// NewClock reads the wall clock in the named timezone, falling back to UTC.
func NewClock(timezone string) Clock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", timezone).Msg("clock: unknown timezone, using UTC")
		loc = time.UTC
	}
	return func() domain.Date {
		return domain.DateOf(time.Now().In(loc))
	}
}

// FixedClock always returns d.
func FixedClock(d domain.Date) Clock {
	return func() domain.Date { return d }
}
