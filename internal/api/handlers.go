package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tillpoint/revenue-forecast/internal/analytics"
	"github.com/tillpoint/revenue-forecast/internal/services"
)

// ForecastGenerator is the service operation the API exposes.
type ForecastGenerator interface {
	GenerateForecast(ctx context.Context, orgID string, start, end *time.Time) (*analytics.ForecastResult, error)
}

// Handlers contains the API handlers with their dependencies
type Handlers struct {
	forecasts ForecastGenerator
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(forecasts ForecastGenerator, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{forecasts: forecasts, logger: logger.Named("api")}
}

// RegisterRoutes mounts the forecast API on the router.
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/organizations/:org_id/forecast", h.GetForecast)
	}
}

// Health is a liveness probe.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetForecast generates a revenue forecast for an organization. start_date and
// end_date are optional 2006-01-02 query parameters; when omitted the window
// defaults to today through today+30 days.
func (h *Handlers) GetForecast(c *gin.Context) {
	orgID := c.Param("org_id")
	if orgID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization id is required"})
		return
	}

	var start, end *time.Time
	if startStr := c.Query("start_date"); startStr != "" {
		parsed, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be formatted as 2006-01-02"})
			return
		}
		start = &parsed
	}
	if endStr := c.Query("end_date"); endStr != "" {
		parsed, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be formatted as 2006-01-02"})
			return
		}
		end = &parsed
	}

	result, err := h.forecasts.GenerateForecast(c.Request.Context(), orgID, start, end)
	if err != nil {
		if errors.Is(err, services.ErrMissingOrganization) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("forecast generation failed", zap.String("org_id", orgID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate forecast"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"forecast": result.Forecast,
		"metadata": result.Summary,
	})
}
