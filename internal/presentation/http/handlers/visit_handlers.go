// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/havenwellness/haven-go/internal/application/services"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/internal/presentation/http/middleware"
	"github.com/havenwellness/haven-go/pkg/config"
)

// VisitHandlers contains the visit and session-related HTTP handlers
type VisitHandlers struct {
	sessionService *services.SessionService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewVisitHandlers creates visit handlers with injected dependencies
func NewVisitHandlers(sessionService *services.SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *VisitHandlers {
	return &VisitHandlers{
		sessionService: sessionService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// PostVisit handles POST /api/v1/auth/visit - establishes visitor identity,
// the session, and the variant assignment. The visitor cookie is refreshed
// on every visit so an active visitor never expires.
func (h *VisitHandlers) PostVisit(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_visit_request")
	defer marker.Complete()

	var req services.VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Auth().Error("Visit request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if identity, ok := middleware.GetRequestIdentity(c); ok {
		req.VisitorID = identity.VisitorID
		if req.SessionID == nil && identity.SessionID != "" {
			sessionID := identity.SessionID
			req.SessionID = &sessionID
		}
		if req.Consent == nil && identity.Consent != "" {
			consent := identity.Consent
			req.Consent = &consent
		}
	}

	result := h.sessionService.ProcessVisit(&req)
	if !result.Success {
		marker.SetSuccess(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.VisitorCookieName, result.VisitorID, config.VisitorCookieMaxAge, "/", "", false, false)

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, result)
}
