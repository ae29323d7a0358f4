package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/havenwellness/haven-go/internal/application/services"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/types"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/internal/presentation/http/middleware"
)

// PromoHandlers contains the promotional dialog HTTP handlers
type PromoHandlers struct {
	sessionService    *services.SessionService
	experimentService *services.ExperimentService
	promoService      *services.PromoService
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewPromoHandlers creates promo handlers with injected dependencies
func NewPromoHandlers(sessionService *services.SessionService, experimentService *services.ExperimentService, promoService *services.PromoService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PromoHandlers {
	return &PromoHandlers{
		sessionService:    sessionService,
		experimentService: experimentService,
		promoService:      promoService,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// GetActive handles GET /api/v1/promo/active - returns whether and how the
// promotional dialog should show for this visitor.
func (h *PromoHandlers) GetActive(c *gin.Context) {
	marker := h.perfTracker.StartOperation("promo_active_request")
	defer marker.Complete()

	visitorID := ""
	if identity, ok := middleware.GetRequestIdentity(c); ok {
		visitorID = identity.VisitorID
	}

	decision, err := h.promoService.Decide(visitorID)
	if err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve promotion"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, decision)
}

// PromoLifecycleRequest is the body for promo lifecycle reports.
type PromoLifecycleRequest struct {
	PagePath string `json:"pagePath"`
}

// promoLifecycle bundles the resolved request context shared by the
// lifecycle endpoints. A missing session is fine; the dismissal record
// still matters even when event tracking cannot happen.
type promoLifecycle struct {
	sess      *types.SessionState
	visitorID string
	variant   string
	pagePath  string
}

// PostShown handles POST /api/v1/promo/:id/shown
func (h *PromoHandlers) PostShown(c *gin.Context) {
	lc, ok := h.lifecycleContext(c)
	if !ok {
		return
	}

	h.promoService.MarkShown(lc.sess, c.Param("id"), lc.pagePath, lc.variant)
	h.sessionService.SaveSession(lc.sess)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PostDismiss handles POST /api/v1/promo/:id/dismiss
func (h *PromoHandlers) PostDismiss(c *gin.Context) {
	lc, ok := h.lifecycleContext(c)
	if !ok {
		return
	}

	h.promoService.Dismiss(lc.sess, lc.visitorID, c.Param("id"), lc.pagePath, lc.variant)
	h.sessionService.SaveSession(lc.sess)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PostCTA handles POST /api/v1/promo/:id/cta
func (h *PromoHandlers) PostCTA(c *gin.Context) {
	lc, ok := h.lifecycleContext(c)
	if !ok {
		return
	}

	h.promoService.ConvertCTA(lc.sess, lc.visitorID, c.Param("id"), lc.pagePath, lc.variant)
	h.sessionService.SaveSession(lc.sess)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PromoHandlers) lifecycleContext(c *gin.Context) (*promoLifecycle, bool) {
	var req PromoLifecycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Analytics().Error("Promo lifecycle JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return nil, false
	}

	lc := &promoLifecycle{pagePath: req.PagePath}
	if identity, ok := middleware.GetRequestIdentity(c); ok {
		lc.visitorID = identity.VisitorID
		lc.sess = h.sessionService.GetSession(identity.SessionID)
	}
	lc.variant = string(h.experimentService.Assign(lc.visitorID))

	return lc, true
}
