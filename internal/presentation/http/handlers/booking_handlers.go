package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/havenwellness/haven-go/internal/application/services"
	"github.com/havenwellness/haven-go/internal/domain/experiment"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/types"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/internal/presentation/http/middleware"
)

// BookingHandlers contains the booking funnel HTTP handlers
type BookingHandlers struct {
	sessionService    *services.SessionService
	experimentService *services.ExperimentService
	bookingService    *services.BookingService
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewBookingHandlers creates booking handlers with injected dependencies
func NewBookingHandlers(sessionService *services.SessionService, experimentService *services.ExperimentService, bookingService *services.BookingService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *BookingHandlers {
	return &BookingHandlers{
		sessionService:    sessionService,
		experimentService: experimentService,
		bookingService:    bookingService,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// GetResolve handles GET /api/v1/booking/resolve - resolves where a booking
// control should point for this visitor and records the click. Works
// without a session too; the resolution is deterministic either way.
func (h *BookingHandlers) GetResolve(c *gin.Context) {
	marker := h.perfTracker.StartOperation("booking_resolve_request")
	defer marker.Complete()

	placement := experiment.Placement(c.Query("placement"))
	if !placement.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid placement"})
		return
	}

	bctx := experiment.BookingContext{
		Placement:     placement,
		TreatmentSlug: c.Query("treatment"),
		PagePath:      c.Query("pagePath"),
	}

	identity, _ := middleware.GetRequestIdentity(c)
	visitorID := ""
	var sess *types.SessionState
	if identity != nil {
		visitorID = identity.VisitorID
		sess = h.sessionService.GetSession(identity.SessionID)
	}

	variant := h.experimentService.Assign(visitorID)
	resolution := h.bookingService.ResolveAndTrack(sess, bctx, variant)
	h.sessionService.SaveSession(sess)

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, resolution)
}

// ConfirmationRequest is the thank-you page report of a completed booking.
type ConfirmationRequest struct {
	TreatmentName string `json:"treatmentName"`
	TreatmentID   string `json:"treatmentId"`
	Price         string `json:"price"`
	Category      string `json:"category"`
	Source        string `json:"source"`
	PagePath      string `json:"pagePath"`
}

// PostConfirmation handles POST /api/v1/booking/confirmation - records a
// purchase event, deduplicated per session and param set.
func (h *BookingHandlers) PostConfirmation(c *gin.Context) {
	marker := h.perfTracker.StartOperation("booking_confirmation_request")
	defer marker.Complete()

	var req ConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Analytics().Error("Confirmation JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	identity, _ := middleware.GetRequestIdentity(c)
	if identity == nil || identity.SessionID == "" {
		marker.SetSuccess(true)
		c.JSON(http.StatusOK, gin.H{"tracked": false})
		return
	}

	sess := h.sessionService.GetSession(identity.SessionID)
	if sess == nil {
		marker.SetSuccess(true)
		c.JSON(http.StatusOK, gin.H{"tracked": false})
		return
	}

	variant := h.experimentService.Assign(sess.Visitor())
	tracked := h.bookingService.TrackConfirmation(sess, variant, services.ConfirmationParams{
		TreatmentName: req.TreatmentName,
		TreatmentID:   req.TreatmentID,
		Price:         req.Price,
		Category:      req.Category,
		Source:        req.Source,
		PagePath:      req.PagePath,
	})
	h.sessionService.SaveSession(sess)

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"tracked": tracked})
}
