package forecast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	forecastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freshpredict_forecasts_total",
			Help: "Forecasts produced, by source",
		},
		[]string{"source"},
	)

	forecastFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "freshpredict_forecast_failures_total",
			Help: "Per-product forecasts dropped after an error or panic",
		},
	)

	trainingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freshpredict_model_trainings_total",
			Help: "Demand model fits, by outcome",
		},
		[]string{"outcome"},
	)

	trainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "freshpredict_model_training_duration_seconds",
			Help:    "Time spent fitting a demand model",
			Buckets: prometheus.DefBuckets,
		},
	)
)
