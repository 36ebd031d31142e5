package handlers

import (
	"net/http"
	"strconv"

	"github.com/andresuchdata/freshpredict/internal/service"
	"github.com/gin-gonic/gin"
)

type ModelHandler struct {
	models *service.ModelService
}

func NewModelHandler(models *service.ModelService) *ModelHandler {
	return &ModelHandler{models: models}
}

// Reload handles POST /model/reload?retrain=true.
func (h *ModelHandler) Reload(c *gin.Context) {
	retrain := false
	if raw := c.Query("retrain"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid retrain flag", "details": err.Error()})
			return
		}
		retrain = v
	}

	result, err := h.models.Reload(c.Request.Context(), retrain)
	if err != nil {
		respondError(c, err, "failed to reload sales history")
		return
	}
	c.JSON(http.StatusOK, result)
}
