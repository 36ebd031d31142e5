package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/andresuchdata/freshpredict/internal/alerts"
	"github.com/andresuchdata/freshpredict/internal/api"
	"github.com/andresuchdata/freshpredict/internal/cache"
	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/catalog"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/esg"
	"github.com/andresuchdata/freshpredict/internal/forecast"
	"github.com/andresuchdata/freshpredict/internal/inventory"
	"github.com/andresuchdata/freshpredict/internal/repository"
	"github.com/andresuchdata/freshpredict/internal/repository/postgres"
	"github.com/andresuchdata/freshpredict/internal/service"
	"github.com/andresuchdata/freshpredict/internal/storage"
	"github.com/andresuchdata/freshpredict/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.UseJSON()
	}

	salesRepo, closeRepo, err := newSalesRepository(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("source", cfg.Sales.Source).Msg("Failed to initialise sales history")
	}
	defer closeRepo()

	salesCache, err := cache.NewSalesHistoryCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Sales history cache unavailable, continuing without it")
		salesCache = cache.NewNoopSalesHistoryCache()
	}
	history := service.NewSalesHistoryService(salesRepo, salesCache)

	clock := service.NewClock(cfg.Calendar.Timezone)
	cat := catalog.Default()
	cal := calendar.New(cfg.Calendar)

	store, err := inventory.Seed(cat, catalog.Scenarios(), clock())
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to seed inventory")
	}

	trainer := forecast.NewTrainer(history, cal, cfg.Forecast)
	forecaster := forecast.NewForecaster(trainer, forecast.NewFallback(cal, cfg.Forecast, nil), cal, cfg.Forecast)

	inventoryService := service.NewInventoryService(cat, store, clock)
	forecastService := service.NewForecastService(inventoryService, forecaster, history.Source())
	alertService := service.NewAlertService(inventoryService, forecastService, alerts.Rules{Inventory: cfg.Inventory, Pricing: cfg.Pricing})
	esgService := service.NewESGService(esg.NewTracker(cfg.ESG), cat, cfg.ESG)

	router := api.NewRouter(&api.Services{
		Inventory: inventoryService,
		Insight:   service.NewInsightService(inventoryService, cal, cfg.Forecast, cfg.Inventory),
		Forecast:  forecastService,
		Alerts:    alertService,
		ESG:       esgService,
		Dashboard: service.NewDashboardService(inventoryService, alertService, esgService, cal, cfg.Inventory),
		Models:    service.NewModelService(history, trainer, cat.IDs, cfg.Server.PrewarmConcurrency),
	}, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        cfg.Server.MetricsEnabled,
	})

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.Server.PrewarmModels {
		go func() {
			start := time.Now()
			trained := trainer.Prewarm(rootCtx, cat.IDs(), cfg.Server.PrewarmConcurrency)
			logger.Log.Info().
				Int("trained", trained).
				Int("products", len(cat.IDs())).
				Dur("elapsed", time.Since(start)).
				Msg("Model pre-warm finished")
		}()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("sales_source", history.Source()).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// newSalesRepository builds the history source named by SALES_SOURCE. The
// returned func releases any connection it opened.
func newSalesRepository(cfg *config.Config) (repository.SalesRepository, func(), error) {
	noop := func() {}
	switch cfg.Sales.Source {
	case "", "csv":
		return repository.NewFileSalesRepository(cfg.Sales.CSVPath), noop, nil
	case "s3":
		client, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			return nil, noop, err
		}
		return repository.NewObjectSalesRepository(client, cfg.Storage.SalesObjectKey), noop, nil
	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to database: %w", err)
		}
		return postgres.NewSalesRepository(db), func() { db.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown sales source %q (want csv, s3 or postgres)", cfg.Sales.Source)
	}
}
