// Package handlers provides HTTP handlers for analytics endpoints
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/havenwellness/haven-go/internal/application/services"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
)

// AnalyticsHandlers contains the admin analytics HTTP handlers
type AnalyticsHandlers struct {
	analyticsService *services.AnalyticsService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies
func NewAnalyticsHandlers(analyticsService *services.AnalyticsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		analyticsService: analyticsService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// GetDashboard handles GET /api/v1/analytics/dashboard - returns event
// rollups, variant split, and conversion rates for the last N days
// (days query param, default 30).
func (h *AnalyticsHandlers) GetDashboard(c *gin.Context) {
	marker := h.perfTracker.StartOperation("analytics_dashboard_request")
	defer marker.Complete()

	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days parameter"})
			return
		}
		days = parsed
	}

	start, end := services.ParseRange(days)
	dashboard, err := h.analyticsService.GetDashboard(start, end)
	if err != nil {
		h.logger.Analytics().Error("Dashboard build failed", "error", err.Error())
		marker.SetSuccess(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, dashboard)
}
