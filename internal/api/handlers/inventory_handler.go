package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/andresuchdata/freshpredict/internal/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventory *service.InventoryService
	insight   *service.InsightService
}

func NewInventoryHandler(inventory *service.InventoryService, insight *service.InsightService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, insight: insight}
}

// ListInventory returns stock, optionally filtered by ?category=.
func (h *InventoryHandler) ListInventory(c *gin.Context) {
	items, err := h.inventory.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err, "failed to list inventory")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.inventory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "item not found")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) AddStock(c *gin.Context) {
	var req domain.StockAddition
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	item, err := h.inventory.AddStock(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "failed to add stock")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "stock added",
		"item":    item,
	})
}

// GetInsight evaluates a planned order of ?quantity= units.
func (h *InventoryHandler) GetInsight(c *gin.Context) {
	quantity := 0.0
	if raw := strings.TrimSpace(c.Query("quantity")); raw != "" {
		q, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a number", "details": err.Error()})
			return
		}
		quantity = q
	}

	insight, err := h.insight.StockInsight(c.Request.Context(), c.Param("id"), quantity)
	if err != nil {
		respondError(c, err, "failed to build stock insight")
		return
	}
	c.JSON(http.StatusOK, insight)
}

func (h *InventoryHandler) ListProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.inventory.Products(c.Request.Context()))
}

func (h *InventoryHandler) ListSuppliers(c *gin.Context) {
	c.JSON(http.StatusOK, h.inventory.Suppliers(c.Request.Context(), c.Param("category")))
}
