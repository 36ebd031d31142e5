package handlers

import (
	"net/http"

	"github.com/andresuchdata/freshpredict/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	forecasts *service.ForecastService
}

func NewForecastHandler(forecasts *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecasts: forecasts}
}

func (h *ForecastHandler) ListForecasts(c *gin.Context) {
	days, ok := queryDays(c, h.forecasts.MaxHorizon())
	if !ok {
		return
	}
	forecasts, err := h.forecasts.All(c.Request.Context(), days)
	if err != nil {
		respondError(c, err, "failed to build forecasts")
		return
	}
	c.JSON(http.StatusOK, forecasts)
}

func (h *ForecastHandler) GetForecast(c *gin.Context) {
	days, ok := queryDays(c, h.forecasts.MaxHorizon())
	if !ok {
		return
	}
	fc, err := h.forecasts.Get(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		respondError(c, err, "failed to build forecast")
		return
	}
	c.JSON(http.StatusOK, fc)
}

// Predict serves the condensed summary older clients expect.
func (h *ForecastHandler) Predict(c *gin.Context) {
	summary, err := h.forecasts.Predict(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err, "product not found")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ForecastHandler) ModelStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.forecasts.ModelStatus(c.Request.Context()))
}
