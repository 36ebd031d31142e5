package handlers

import (
	"net/http"

	"github.com/andresuchdata/freshpredict/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
	esg       *service.ESGService
}

func NewDashboardHandler(dashboard *service.DashboardService, esg *service.ESGService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, esg: esg}
}

func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch dashboard summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) GetESG(c *gin.Context) {
	c.JSON(http.StatusOK, h.esg.Metrics(c.Request.Context()))
}

func (h *DashboardHandler) GetFestivals(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Festivals(c.Request.Context()))
}
