package services

import (
	"strings"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/events"
	"github.com/havenwellness/haven-go/internal/domain/experiment"
	"github.com/havenwellness/haven-go/internal/domain/user"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/stores"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/types"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/internal/infrastructure/security"
)

// SessionService handles visitor identity and per-tab session management.
type SessionService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	sessions    *stores.SessionsStore
	visitorRepo user.VisitorRepository
	experiments *ExperimentService
	tracker     *EventTrackingService
}

// NewSessionService creates a new session service
func NewSessionService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, sessions *stores.SessionsStore, visitorRepo user.VisitorRepository, experiments *ExperimentService, tracker *EventTrackingService) *SessionService {
	return &SessionService{
		logger:      logger,
		perfTracker: perfTracker,
		sessions:    sessions,
		visitorRepo: visitorRepo,
		experiments: experiments,
		tracker:     tracker,
	}
}

// VisitRequest represents the structure for visit creation requests
type VisitRequest struct {
	SessionID *string `json:"sessionId,omitempty"`
	VisitorID string  `json:"visitorId"` // From the identity cookie; empty when absent
	Consent   *string `json:"consent,omitempty"`
	PagePath  string  `json:"pagePath"`
}

// SessionResult holds the result of visit processing
type SessionResult struct {
	VisitorID  string                `json:"visitorId"`
	SessionID  string                `json:"sessionId"`
	NewVisitor bool                  `json:"newVisitor"`
	Assignment experiment.Assignment `json:"assignment"`
	Consent    string                `json:"consent"`
	Success    bool                  `json:"success"`
	Error      string                `json:"error,omitempty"`
}

// ProcessVisit handles the complete visit workflow: resolve or mint the
// visitor identity, establish the session, assign the variant, and emit
// the one-time assignment event.
//
// Two tabs racing on a first visit may each mint an identity; the last
// cookie write wins and the stale identity simply goes unused.
func (s *SessionService) ProcessVisit(req *VisitRequest) *SessionResult {
	marker := s.perfTracker.StartOperation("session:process_visit")
	defer marker.Complete()

	visitorID := req.VisitorID
	newVisitor := false

	if !isPlausibleVisitorID(visitorID) {
		visitorID = security.GenerateULID()
		newVisitor = true
	}

	visitor, err := s.visitorRepo.FindByID(visitorID)
	if err != nil {
		s.logger.Auth().Error("Visitor lookup failed", "error", err.Error())
		marker.SetSuccess(false)
		return &SessionResult{Success: false, Error: "failed to resolve visitor"}
	}
	if visitor == nil {
		visitor = &user.Visitor{ID: visitorID, CreatedAt: time.Now().UTC()}
		if err := s.visitorRepo.Create(visitor); err != nil {
			if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
				s.logger.Auth().Error("Visitor creation failed", "error", err.Error())
				marker.SetSuccess(false)
				return &SessionResult{Success: false, Error: "failed to create visitor"}
			}
		}
	}

	sessionID := ""
	if req.SessionID != nil {
		sessionID = *req.SessionID
	}

	var sess *types.SessionState
	if sessionID != "" {
		if existing, found := s.sessions.GetSession(sessionID); found {
			sess = existing
		}
	}
	if sess == nil {
		if sessionID == "" {
			sessionID = security.GenerateULID()
		}
		sess = s.sessions.NewSessionState(sessionID, visitorID)
	}
	consentValue := "unknown"
	if req.Consent != nil {
		consentValue = *req.Consent
	}

	sess.Lock()
	sess.VisitorID = visitorID
	sess.ConsentGranted = consentValue == "true"
	sess.Unlock()
	s.sessions.SetSession(sess)

	assignment := s.experiments.Assignment(visitorID, false)

	if s.experiments.Enabled() {
		s.emitAssignmentEvent(visitor, sess, req.PagePath, &assignment)
	}

	marker.SetSuccess(true)
	s.logger.Auth().Debug("Visit processed",
		"visitorId", visitorID,
		"sessionId", logging.SanitizeSessionID(sess.SessionID),
		"newVisitor", newVisitor,
		"variant", string(assignment.Variant))

	return &SessionResult{
		VisitorID:  visitorID,
		SessionID:  sess.SessionID,
		NewVisitor: newVisitor,
		Assignment: assignment,
		Consent:    consentValue,
		Success:    true,
	}
}

// emitAssignmentEvent fires ab_variant_assigned at most once per visitor.
// The durable flag flips regardless of consent: a visitor who declined
// consent on first visit never retroactively emits the event later.
func (s *SessionService) emitAssignmentEvent(visitor *user.Visitor, sess *types.SessionState, pagePath string, assignment *experiment.Assignment) {
	if visitor.VariantEventSent {
		return
	}

	flipped, err := s.visitorRepo.MarkVariantEventSent(visitor.ID)
	if err != nil {
		s.logger.Auth().Error("Variant event flag update failed", "error", err.Error(), "visitorId", visitor.ID)
		return
	}
	if !flipped {
		return
	}
	visitor.VariantEventSent = true
	assignment.FirstAssignment = true

	s.tracker.Track(sess, events.ABVariantAssigned, pagePath, string(assignment.Variant), map[string]any{
		"cohort": string(assignment.Cohort),
	})
}

// GetSession returns the live session state for a session id, or nil.
func (s *SessionService) GetSession(sessionID string) *types.SessionState {
	if sessionID == "" {
		return nil
	}
	sess, found := s.sessions.GetSession(sessionID)
	if !found {
		return nil
	}
	return sess
}

// SaveSession writes mutated session state back to the store.
func (s *SessionService) SaveSession(sess *types.SessionState) {
	if sess == nil {
		return
	}
	s.sessions.SetSession(sess)
}

// isPlausibleVisitorID accepts ULIDs and legacy identity tokens. Anything
// malformed is treated as absent, never as an error.
func isPlausibleVisitorID(id string) bool {
	if len(id) < 8 || len(id) > 64 {
		return false
	}
	for _, r := range id {
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}
