package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/events"
	"github.com/havenwellness/haven-go/internal/domain/user"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/types"
	"github.com/havenwellness/haven-go/internal/infrastructure/email"
	"github.com/havenwellness/haven-go/internal/infrastructure/email/templates"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/internal/infrastructure/security"
)

// ContactService handles contact form submissions: validates, stores the
// lead, notifies staff by email, and records the conversion event. The
// email is best-effort; a delivery failure never loses the lead.
type ContactService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	leadRepo    user.LeadRepository
	emailSvc    email.Service
	tracker     *EventTrackingService
}

// NewContactService creates a new contact service
func NewContactService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, leadRepo user.LeadRepository, emailSvc email.Service, tracker *EventTrackingService) *ContactService {
	return &ContactService{
		logger:      logger,
		perfTracker: perfTracker,
		leadRepo:    leadRepo,
		emailSvc:    emailSvc,
		tracker:     tracker,
	}
}

// ContactSubmission is a contact form submission from the page.
type ContactSubmission struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone,omitempty"`
	Message       string  `json:"message"`
	TreatmentSlug string  `json:"treatmentSlug,omitempty"`
	PagePath      string  `json:"pagePath"`
}

// Validate checks the required fields. Phone and treatment slug are
// optional.
func (c *ContactSubmission) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	addr := strings.TrimSpace(c.Email)
	if addr == "" {
		return fmt.Errorf("email is required")
	}
	at := strings.Index(addr, "@")
	if at < 1 || at == len(addr)-1 {
		return fmt.Errorf("email is invalid")
	}
	if strings.TrimSpace(c.Message) == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}

// SubmitLead stores the lead, sends the notification email, and fires
// booking_form_submitted. Returns the stored lead.
func (s *ContactService) SubmitLead(sess *types.SessionState, variant string, submission *ContactSubmission) (*user.Lead, error) {
	marker := s.perfTracker.StartOperation("contact:submit_lead")
	defer marker.Complete()

	if err := submission.Validate(); err != nil {
		marker.SetSuccess(false)
		return nil, err
	}

	lead := &user.Lead{
		ID:        security.GenerateULID(),
		Name:      strings.TrimSpace(submission.Name),
		Email:     strings.TrimSpace(submission.Email),
		Phone:     submission.Phone,
		Message:   strings.TrimSpace(submission.Message),
		CreatedAt: time.Now().UTC(),
	}
	if slug := strings.TrimSpace(submission.TreatmentSlug); slug != "" {
		lead.TreatmentSlug = &slug
	}
	if sess != nil {
		sess.Lock()
		visitorID := sess.VisitorID
		sess.Unlock()
		if visitorID != "" {
			lead.VisitorID = &visitorID
		}
	}

	if err := s.leadRepo.Store(lead); err != nil {
		s.logger.Email().Error("Lead storage failed", "error", err.Error())
		marker.SetSuccess(false)
		return nil, fmt.Errorf("failed to store lead: %w", err)
	}

	s.sendNotification(lead)

	params := map[string]any{}
	if lead.TreatmentSlug != nil {
		params["treatment"] = *lead.TreatmentSlug
	}
	s.tracker.Track(sess, events.BookingFormSubmitted, submission.PagePath, variant, params)

	marker.SetSuccess(true)
	s.logger.Email().Info("Lead captured", "leadId", lead.ID)
	return lead, nil
}

func (s *ContactService) sendNotification(lead *user.Lead) {
	phone := ""
	if lead.Phone != nil {
		phone = *lead.Phone
	}
	treatmentSlug := ""
	if lead.TreatmentSlug != nil {
		treatmentSlug = *lead.TreatmentSlug
	}

	props := templates.LeadNotificationProps{
		Name:          lead.Name,
		Email:         lead.Email,
		Phone:         phone,
		Message:       lead.Message,
		TreatmentSlug: treatmentSlug,
	}
	if err := s.emailSvc.SendLeadNotificationEmail(props); err != nil {
		s.logger.Email().Error("Lead notification email failed", "error", err.Error(), "leadId", lead.ID)
	}
}
