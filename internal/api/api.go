package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/freshpredict/internal/api/handlers"
	"github.com/andresuchdata/freshpredict/internal/api/middleware"
	"github.com/andresuchdata/freshpredict/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Inventory *service.InventoryService
	Insight   *service.InsightService
	Forecast  *service.ForecastService
	Alerts    *service.AlertService
	ESG       *service.ESGService
	Dashboard *service.DashboardService
	Models    *service.ModelService
}

type Options struct {
	AllowedOrigins []string
	Metrics        bool
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if opts.Metrics {
		router.Use(middleware.Metrics())
	}

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	apiGroup := router.Group("/api/v1")

	if services == nil {
		return router
	}

	if services.Inventory != nil {
		inventoryHandler := handlers.NewInventoryHandler(services.Inventory, services.Insight)
		inventoryGroup := apiGroup.Group("/inventory")
		{
			inventoryGroup.GET("", inventoryHandler.ListInventory)
			inventoryGroup.POST("/add", inventoryHandler.AddStock)
			inventoryGroup.GET("/:id", inventoryHandler.GetItem)
			if services.Insight != nil {
				inventoryGroup.GET("/insight/:id", inventoryHandler.GetInsight)
			}
		}
		apiGroup.GET("/products", inventoryHandler.ListProducts)
		apiGroup.GET("/suppliers/:category", inventoryHandler.ListSuppliers)
	}

	if services.Forecast != nil {
		forecastHandler := handlers.NewForecastHandler(services.Forecast)
		apiGroup.GET("/forecast", forecastHandler.ListForecasts)
		apiGroup.GET("/forecast/:id", forecastHandler.GetForecast)
		apiGroup.GET("/predict/:name", forecastHandler.Predict)
		apiGroup.GET("/model/status", forecastHandler.ModelStatus)
	}

	if services.Models != nil {
		apiGroup.POST("/model/reload", handlers.NewModelHandler(services.Models).Reload)
	}

	if services.Alerts != nil && services.ESG != nil {
		alertHandler := handlers.NewAlertHandler(services.Alerts, services.ESG)
		alertGroup := apiGroup.Group("/alerts")
		{
			alertGroup.GET("/preparation", alertHandler.Preparation)
			alertGroup.GET("/sustainability", alertHandler.Sustainability)
			alertGroup.POST("/mark-sold", alertHandler.MarkSold)
		}
	}

	if services.Dashboard != nil && services.ESG != nil {
		dashboardHandler := handlers.NewDashboardHandler(services.Dashboard, services.ESG)
		apiGroup.GET("/dashboard", dashboardHandler.GetSummary)
		apiGroup.GET("/esg", dashboardHandler.GetESG)
		apiGroup.GET("/festivals", dashboardHandler.GetFestivals)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
