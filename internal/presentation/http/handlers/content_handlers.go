package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/havenwellness/haven-go/internal/application/services"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
)

// ContentHandlers contains the treatment and category HTTP handlers
type ContentHandlers struct {
	contentService *services.ContentService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewContentHandlers creates content handlers with injected dependencies
func NewContentHandlers(contentService *services.ContentService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ContentHandlers {
	return &ContentHandlers{
		contentService: contentService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// GetTreatments handles GET /api/v1/treatments - lists all treatments,
// optionally filtered by the category query param.
func (h *ContentHandlers) GetTreatments(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_treatments_request")
	defer marker.Complete()

	category := c.Query("category")
	if category != "" {
		treatments := h.contentService.GetTreatmentsByCategory(category)
		marker.SetSuccess(true)
		c.JSON(http.StatusOK, gin.H{"treatments": treatments})
		return
	}

	treatments := h.contentService.GetAllTreatments()
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"treatments": treatments})
}

// GetTreatmentBySlug handles GET /api/v1/treatments/:slug
func (h *ContentHandlers) GetTreatmentBySlug(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_treatment_request")
	defer marker.Complete()

	treatment := h.contentService.GetTreatmentBySlug(c.Param("slug"))
	if treatment == nil {
		marker.SetSuccess(true)
		c.JSON(http.StatusNotFound, gin.H{"error": "treatment not found"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, treatment)
}

// GetCategories handles GET /api/v1/categories
func (h *ContentHandlers) GetCategories(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_categories_request")
	defer marker.Complete()

	categories := h.contentService.GetAllCategories()
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
