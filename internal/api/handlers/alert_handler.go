package handlers

import (
	"net/http"

	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/andresuchdata/freshpredict/internal/service"
	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	alerts *service.AlertService
	esg    *service.ESGService
}

func NewAlertHandler(alerts *service.AlertService, esg *service.ESGService) *AlertHandler {
	return &AlertHandler{alerts: alerts, esg: esg}
}

func (h *AlertHandler) Preparation(c *gin.Context) {
	severity, err := service.ParseSeverity(c.Query("severity"))
	if err != nil {
		respondError(c, err, "invalid severity")
		return
	}
	list, err := h.alerts.Preparation(c.Request.Context(), severity)
	if err != nil {
		respondError(c, err, "failed to build preparation alerts")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AlertHandler) Sustainability(c *gin.Context) {
	severity, err := service.ParseSeverity(c.Query("severity"))
	if err != nil {
		respondError(c, err, "invalid severity")
		return
	}
	list, err := h.alerts.Sustainability(c.Request.Context(), severity)
	if err != nil {
		respondError(c, err, "failed to build sustainability alerts")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AlertHandler) MarkSold(c *gin.Context) {
	var req domain.MarkSoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.esg.MarkSold(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "failed to mark stock as sold")
		return
	}
	c.JSON(http.StatusOK, result)
}
