package services

import (
	"testing"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/events"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/stores"
	"github.com/havenwellness/haven-go/pkg/config"
)

func newSessionFixture(t *testing.T) (*SessionService, *fakeVisitorRepo, *fakeEventRepo) {
	t.Helper()
	logger := newTestLogger(t)
	visitorRepo := newFakeVisitorRepo()
	eventRepo := &fakeEventRepo{}
	tracker := NewEventTrackingService(logger, newTestTracker(), &fakeSink{}, eventRepo)
	experiments := NewExperimentService(logger)
	sessions := stores.NewSessionsStore(time.Hour, logger)
	svc := NewSessionService(logger, newTestTracker(), sessions, visitorRepo, experiments, tracker)
	return svc, visitorRepo, eventRepo
}

func visitRequest(visitorID, consent, pagePath string) *VisitRequest {
	req := &VisitRequest{VisitorID: visitorID, PagePath: pagePath}
	if consent != "" {
		req.Consent = &consent
	}
	return req
}

func TestProcessVisitMintsIdentity(t *testing.T) {
	svc, visitorRepo, _ := newSessionFixture(t)

	result := svc.ProcessVisit(visitRequest("", "true", "/"))
	if !result.Success {
		t.Fatalf("ProcessVisit failed: %s", result.Error)
	}
	if result.VisitorID == "" || result.SessionID == "" {
		t.Fatalf("expected minted ids, got %+v", result)
	}
	if !result.NewVisitor {
		t.Fatal("missing cookie should mint a new visitor")
	}
	if exists, _ := visitorRepo.Exists(result.VisitorID); !exists {
		t.Fatal("minted visitor should be persisted")
	}
}

func TestProcessVisitRejectsImplausibleIdentity(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	result := svc.ProcessVisit(visitRequest("a!", "true", "/"))
	if !result.Success {
		t.Fatalf("ProcessVisit failed: %s", result.Error)
	}
	if !result.NewVisitor || result.VisitorID == "a!" {
		t.Fatalf("malformed identity should be replaced, got %+v", result)
	}
}

func TestProcessVisitKeepsExistingIdentity(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	first := svc.ProcessVisit(visitRequest("", "true", "/"))
	second := svc.ProcessVisit(visitRequest(first.VisitorID, "true", "/about"))

	if second.NewVisitor {
		t.Fatal("a returning visitor is not new")
	}
	if second.VisitorID != first.VisitorID {
		t.Fatalf("identity changed across visits: %s vs %s", first.VisitorID, second.VisitorID)
	}
}

func TestProcessVisitAssignmentEventFiresOnce(t *testing.T) {
	config.ABBookingExperiment = true
	defer func() { config.ABBookingExperiment = false }()

	svc, _, eventRepo := newSessionFixture(t)

	first := svc.ProcessVisit(visitRequest("", "true", "/"))
	svc.ProcessVisit(visitRequest(first.VisitorID, "true", "/about"))
	svc.ProcessVisit(visitRequest(first.VisitorID, "true", "/treatments"))

	assigned := eventRepo.byName(events.ABVariantAssigned)
	if len(assigned) != 1 {
		t.Fatalf("expected exactly 1 assignment event, got %d", len(assigned))
	}
	if assigned[0].Params["cohort"] == "" {
		t.Fatal("assignment event should carry the cohort")
	}
}

func TestProcessVisitNoConsentNeverEmitsAssignment(t *testing.T) {
	config.ABBookingExperiment = true
	defer func() { config.ABBookingExperiment = false }()

	svc, visitorRepo, eventRepo := newSessionFixture(t)

	// First visit declines consent. The durable flag still flips, so a
	// later consent grant must not retroactively emit the event.
	first := svc.ProcessVisit(visitRequest("", "false", "/"))
	svc.ProcessVisit(visitRequest(first.VisitorID, "true", "/about"))

	if got := len(eventRepo.byName(events.ABVariantAssigned)); got != 0 {
		t.Fatalf("assignment event should never fire for this visitor, got %d", got)
	}

	visitor, _ := visitorRepo.FindByID(first.VisitorID)
	if visitor == nil || !visitor.VariantEventSent {
		t.Fatal("the one-time flag should flip on first assignment regardless of consent")
	}
}

func TestProcessVisitDisabledExperimentEmitsNothing(t *testing.T) {
	config.ABBookingExperiment = false

	svc, _, eventRepo := newSessionFixture(t)
	svc.ProcessVisit(visitRequest("", "true", "/"))

	if got := len(eventRepo.byName(events.ABVariantAssigned)); got != 0 {
		t.Fatalf("disabled experiment should emit no assignment events, got %d", got)
	}
}

func TestProcessVisitConsentStates(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	granted := svc.ProcessVisit(visitRequest("", "true", "/"))
	sess := svc.GetSession(granted.SessionID)
	if sess == nil || !sess.ConsentGranted {
		t.Fatal("consent cookie true should grant consent")
	}

	declined := svc.ProcessVisit(visitRequest("", "false", "/"))
	sess = svc.GetSession(declined.SessionID)
	if sess == nil || sess.ConsentGranted {
		t.Fatal("consent cookie false should not grant consent")
	}

	unknown := svc.ProcessVisit(visitRequest("", "", "/"))
	sess = svc.GetSession(unknown.SessionID)
	if sess == nil || sess.ConsentGranted {
		t.Fatal("absent consent cookie should not grant consent")
	}
	if unknown.Consent != "unknown" {
		t.Fatalf("absent consent should report unknown, got %q", unknown.Consent)
	}
}
