package services

import (
	"testing"

	"github.com/havenwellness/haven-go/internal/domain/events"
	"github.com/havenwellness/haven-go/internal/infrastructure/email"
)

func TestContactSubmissionValidate(t *testing.T) {
	valid := ContactSubmission{Name: "Jo Bloggs", Email: "jo@example.com", Message: "Hello"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid submission rejected: %v", err)
	}

	tests := []struct {
		name       string
		submission ContactSubmission
	}{
		{"missing name", ContactSubmission{Email: "jo@example.com", Message: "Hi"}},
		{"missing email", ContactSubmission{Name: "Jo", Message: "Hi"}},
		{"malformed email", ContactSubmission{Name: "Jo", Email: "not-an-email", Message: "Hi"}},
		{"missing message", ContactSubmission{Name: "Jo", Email: "jo@example.com"}},
		{"whitespace only message", ContactSubmission{Name: "Jo", Email: "jo@example.com", Message: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.submission.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSubmitLeadStoresAndTracks(t *testing.T) {
	leadRepo := &fakeLeadRepo{}
	eventRepo := &fakeEventRepo{}
	tracker := NewEventTrackingService(newTestLogger(t), newTestTracker(), &fakeSink{}, eventRepo)
	svc := NewContactService(newTestLogger(t), newTestTracker(), leadRepo, email.NewNoopService(), tracker)

	sess := newConsentedSession("sess-1", "visitor-1")
	lead, err := svc.SubmitLead(sess, "booking_form", &ContactSubmission{
		Name:          "  Jo Bloggs  ",
		Email:         "jo@example.com",
		Message:       "I'd like to book a massage",
		TreatmentSlug: "swedish-massage",
		PagePath:      "/contact",
	})
	if err != nil {
		t.Fatalf("SubmitLead failed: %v", err)
	}
	if lead.Name != "Jo Bloggs" {
		t.Fatalf("name should be trimmed, got %q", lead.Name)
	}
	if lead.VisitorID == nil || *lead.VisitorID != "visitor-1" {
		t.Fatal("lead should link to the visitor")
	}
	if lead.TreatmentSlug == nil || *lead.TreatmentSlug != "swedish-massage" {
		t.Fatalf("lead should carry the treatment slug, got %v", lead.TreatmentSlug)
	}

	if got := len(leadRepo.stored()); got != 1 {
		t.Fatalf("expected 1 stored lead, got %d", got)
	}

	submitted := eventRepo.byName(events.BookingFormSubmitted)
	if len(submitted) != 1 {
		t.Fatalf("expected 1 booking_form_submitted event, got %d", len(submitted))
	}
	if submitted[0].Params["treatment"] != "swedish-massage" {
		t.Fatalf("event should carry the treatment, got %v", submitted[0].Params)
	}
	if submitted[0].Variant != "booking_form" {
		t.Fatalf("event variant = %q", submitted[0].Variant)
	}
}

func TestSubmitLeadSurvivesEmailFailure(t *testing.T) {
	leadRepo := &fakeLeadRepo{}
	eventRepo := &fakeEventRepo{}
	tracker := NewEventTrackingService(newTestLogger(t), newTestTracker(), &fakeSink{}, eventRepo)
	svc := NewContactService(newTestLogger(t), newTestTracker(), leadRepo, &failingEmail{}, tracker)

	sess := newConsentedSession("sess-1", "visitor-1")
	_, err := svc.SubmitLead(sess, "booking_form", &ContactSubmission{
		Name: "Jo", Email: "jo@example.com", Message: "Hi", PagePath: "/contact",
	})
	if err != nil {
		t.Fatalf("email failure must not fail the submission: %v", err)
	}
	if got := len(leadRepo.stored()); got != 1 {
		t.Fatalf("lead should be stored despite the email failure, got %d", got)
	}
}

func TestSubmitLeadWithoutSession(t *testing.T) {
	leadRepo := &fakeLeadRepo{}
	eventRepo := &fakeEventRepo{}
	tracker := NewEventTrackingService(newTestLogger(t), newTestTracker(), &fakeSink{}, eventRepo)
	svc := NewContactService(newTestLogger(t), newTestTracker(), leadRepo, email.NewNoopService(), tracker)

	lead, err := svc.SubmitLead(nil, "booking_form", &ContactSubmission{
		Name: "Jo", Email: "jo@example.com", Message: "Hi",
	})
	if err != nil {
		t.Fatalf("SubmitLead failed: %v", err)
	}
	if lead.VisitorID != nil {
		t.Fatal("no session means no visitor link")
	}
	if lead.TreatmentSlug != nil {
		t.Fatal("no treatment of interest means a nil slug")
	}
	if got := len(leadRepo.stored()); got != 1 {
		t.Fatalf("lead should be stored, got %d", got)
	}
	if got := len(eventRepo.stored()); got != 0 {
		t.Fatal("no session means no tracked event")
	}
}
