package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500 without details.
func respondError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStock),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidSeverity),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrHorizonTooShort),
		errors.Is(err, domain.ErrHorizonTooLong):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

// queryDays reads ?days=, returning 0 when absent. Values above limit are
// rejected before any forecast is allocated.
func queryDays(c *gin.Context, limit int) (int, bool) {
	raw := strings.TrimSpace(c.Query("days"))
	if raw == "" {
		return 0, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer", "details": err.Error()})
		return 0, false
	}
	if days < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid forecast horizon", "details": domain.ErrHorizonTooShort.Error()})
		return 0, false
	}
	if days > limit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid forecast horizon", "details": fmt.Sprintf("%s: limit %d", domain.ErrHorizonTooLong, limit)})
		return 0, false
	}
	return days, true
}
