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

// ContactHandlers contains the contact form HTTP handlers
type ContactHandlers struct {
	sessionService    *services.SessionService
	experimentService *services.ExperimentService
	contactService    *services.ContactService
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewContactHandlers creates contact handlers with injected dependencies
func NewContactHandlers(sessionService *services.SessionService, experimentService *services.ExperimentService, contactService *services.ContactService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ContactHandlers {
	return &ContactHandlers{
		sessionService:    sessionService,
		experimentService: experimentService,
		contactService:    contactService,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// PostContact handles POST /api/v1/contact - stores the lead, notifies
// staff, and records the conversion.
func (h *ContactHandlers) PostContact(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_contact_request")
	defer marker.Complete()

	var submission services.ContactSubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		h.logger.Email().Error("Contact JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	identity, _ := middleware.GetRequestIdentity(c)
	var sess *types.SessionState
	visitorID := ""
	if identity != nil {
		visitorID = identity.VisitorID
		sess = h.sessionService.GetSession(identity.SessionID)
	}

	if err := submission.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	variant := string(h.experimentService.Assign(visitorID))
	lead, err := h.contactService.SubmitLead(sess, variant, &submission)
	if err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit enquiry"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"success": true, "leadId": lead.ID})
}
