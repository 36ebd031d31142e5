package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "csv", cfg.Sales.Source)
	assert.Equal(t, 30, cfg.Forecast.MinTrainingSamples)
	assert.Equal(t, 14, cfg.Forecast.DefaultHorizonDays)
	assert.Equal(t, 365, cfg.Forecast.MaxHorizonDays)
	assert.Equal(t, "multiplicative", cfg.Forecast.SeasonalityMode)
	assert.Equal(t, 2, cfg.Inventory.ExpiryCriticalDays)
	assert.Equal(t, 0.918, cfg.ESG.MethaneFactor)
	assert.Equal(t, []DayRange{{From: 25, To: 31}, {From: 1, To: 5}}, cfg.Calendar.PaydayRanges)
	assert.Equal(t, "Asia/Kuala_Lumpur", cfg.Calendar.Timezone)
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("MIN_TRAINING_SAMPLES", "60")
	t.Setenv("SALES_SOURCE", "Postgres")
	t.Setenv("OVERSTOCK_FACTOR", "2.5")
	t.Setenv("PAYDAY_RANGES", "28-31")
	t.Setenv("MAX_FORECAST_DAYS", "90")

	cfg := New()
	assert.Equal(t, 60, cfg.Forecast.MinTrainingSamples)
	assert.Equal(t, "postgres", cfg.Sales.Source)
	assert.Equal(t, 2.5, cfg.Inventory.OverstockFactor)
	assert.Equal(t, []DayRange{{From: 28, To: 31}}, cfg.Calendar.PaydayRanges)
	assert.Equal(t, 90, cfg.Forecast.MaxHorizonDays)
}

func TestInvalidPaydayRangesFallBack(t *testing.T) {
	t.Setenv("PAYDAY_RANGES", "31-25")

	cfg := New()
	assert.Equal(t, []DayRange{{From: 25, To: 31}, {From: 1, To: 5}}, cfg.Calendar.PaydayRanges)
}

func TestParseDayRanges(t *testing.T) {
	ranges, err := ParseDayRanges(" 25-31 , 1-5,")
	require.NoError(t, err)
	assert.Equal(t, []DayRange{{From: 25, To: 31}, {From: 1, To: 5}}, ranges)

	for _, raw := range []string{"25", "a-5", "1-b", "0-5", "20-32", "10-3"} {
		_, err := ParseDayRanges(raw)
		assert.Error(t, err, raw)
	}
}

func TestDayRangeContains(t *testing.T) {
	r := DayRange{From: 25, To: 31}
	assert.True(t, r.Contains(25))
	assert.True(t, r.Contains(31))
	assert.False(t, r.Contains(24))
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "fp", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=fp sslmode=disable", d.DSN())
}
