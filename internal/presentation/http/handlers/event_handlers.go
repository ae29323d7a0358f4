package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/havenwellness/haven-go/internal/application/services"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/internal/presentation/http/middleware"
)

// EventHandlers receives batched interaction reports from the page and
// dispatches them to the interaction service by type.
type EventHandlers struct {
	sessionService     *services.SessionService
	experimentService  *services.ExperimentService
	interactionService *services.InteractionService
	logger             *logging.ChanneledLogger
	perfTracker        *performance.Tracker
}

// NewEventHandlers creates event handlers with injected dependencies
func NewEventHandlers(sessionService *services.SessionService, experimentService *services.ExperimentService, interactionService *services.InteractionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EventHandlers {
	return &EventHandlers{
		sessionService:     sessionService,
		experimentService:  experimentService,
		interactionService: interactionService,
		logger:             logger,
		perfTracker:        perfTracker,
	}
}

// EventReport is one interaction report inside a batch. Exactly one of the
// payload fields should be set, matching Type.
type EventReport struct {
	Type   string                   `json:"type"` // "scroll", "form", "outbound_click", "treatment_view"
	Scroll *services.ScrollReport   `json:"scroll,omitempty"`
	Form   *services.FormReport     `json:"form,omitempty"`
	Click  *services.ClickReport    `json:"click,omitempty"`
	View   *services.ViewReport     `json:"view,omitempty"`
}

// EventBatchRequest is the batched report payload.
type EventBatchRequest struct {
	Events []EventReport `json:"events"`
}

// PostEvents handles POST /api/v1/events - processes a batch of interaction
// reports. An unknown session yields 200 with nothing processed; the page
// re-establishes identity on its next visit call.
func (h *EventHandlers) PostEvents(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_events_request")
	defer marker.Complete()

	var req EventBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Analytics().Error("Event batch JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	identity, _ := middleware.GetRequestIdentity(c)
	if identity == nil || identity.SessionID == "" {
		marker.SetSuccess(true)
		c.JSON(http.StatusOK, gin.H{"processed": 0})
		return
	}

	sess := h.sessionService.GetSession(identity.SessionID)
	if sess == nil {
		marker.SetSuccess(true)
		c.JSON(http.StatusOK, gin.H{"processed": 0})
		return
	}

	variant := string(h.experimentService.Assign(sess.Visitor()))

	processed := 0
	for _, report := range req.Events {
		switch report.Type {
		case "scroll":
			if report.Scroll != nil {
				h.interactionService.ProcessScroll(sess, variant, *report.Scroll)
				processed++
			}
		case "form":
			if report.Form != nil {
				h.interactionService.ProcessForm(sess, variant, *report.Form)
				processed++
			}
		case "outbound_click":
			if report.Click != nil {
				h.interactionService.ProcessOutboundClick(sess, variant, *report.Click)
				processed++
			}
		case "treatment_view":
			if report.View != nil {
				h.interactionService.ProcessTreatmentView(sess, variant, *report.View)
				processed++
			}
		default:
			h.logger.Analytics().Debug("Unknown event report type ignored", "type", report.Type)
		}
	}

	h.sessionService.SaveSession(sess)

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"processed": processed})
}
