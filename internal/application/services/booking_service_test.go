package services

import (
	"sync"
	"testing"

	"github.com/havenwellness/haven-go/internal/domain/entities/content"
	"github.com/havenwellness/haven-go/internal/domain/events"
	"github.com/havenwellness/haven-go/internal/domain/experiment"
	"github.com/havenwellness/haven-go/pkg/config"
)

func TestResolveBookingURL(t *testing.T) {
	originalExternal := config.ExternalBookingURL
	config.ExternalBookingURL = "https://booking.example.com/haven"
	defer func() { config.ExternalBookingURL = originalExternal }()

	treatmentWithURL := &content.Treatment{
		ID:                 "t1",
		Slug:               "swedish-massage",
		ExternalBookingURL: strPtr("https://booking.example.com/haven/swedish-massage"),
	}
	treatmentWithoutURL := &content.Treatment{ID: "t2", Slug: "hot-stone-massage"}

	tests := []struct {
		name      string
		bctx      experiment.BookingContext
		variant   experiment.Variant
		treatment *content.Treatment
		want      string
	}{
		{
			name:      "control goes to contact form with treatment",
			bctx:      experiment.BookingContext{Placement: experiment.PlacementDetail, TreatmentSlug: "swedish-massage"},
			variant:   experiment.VariantBookingForm,
			treatment: treatmentWithURL,
			want:      "/contact?treatment=swedish-massage",
		},
		{
			name:    "control without treatment goes to bare form",
			bctx:    experiment.BookingContext{Placement: experiment.PlacementNavbar},
			variant: experiment.VariantBookingForm,
			want:    "/contact",
		},
		{
			name:      "test variant prefers treatment booking url",
			bctx:      experiment.BookingContext{Placement: experiment.PlacementDetail, TreatmentSlug: "swedish-massage"},
			variant:   experiment.VariantExternalBooking,
			treatment: treatmentWithURL,
			want:      "https://booking.example.com/haven/swedish-massage",
		},
		{
			name:      "test variant falls back to site-wide url",
			bctx:      experiment.BookingContext{Placement: experiment.PlacementDetail, TreatmentSlug: "hot-stone-massage"},
			variant:   experiment.VariantExternalBooking,
			treatment: treatmentWithoutURL,
			want:      "https://booking.example.com/haven",
		},
		{
			name:    "test variant unknown treatment falls back to site-wide url",
			bctx:    experiment.BookingContext{Placement: experiment.PlacementNavbar},
			variant: experiment.VariantExternalBooking,
			want:    "https://booking.example.com/haven",
		},
		{
			name:    "slug with special characters is escaped",
			bctx:    experiment.BookingContext{Placement: experiment.PlacementCard, TreatmentSlug: "mum & baby"},
			variant: experiment.VariantBookingForm,
			want:    "/contact?treatment=mum+%26+baby",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveBookingURL(tt.bctx, tt.variant, tt.treatment)
			if got != tt.want {
				t.Fatalf("ResolveBookingURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveBookingURLNoExternalConfigured(t *testing.T) {
	originalExternal := config.ExternalBookingURL
	config.ExternalBookingURL = ""
	defer func() { config.ExternalBookingURL = originalExternal }()

	bctx := experiment.BookingContext{Placement: experiment.PlacementNavbar}
	got := ResolveBookingURL(bctx, experiment.VariantExternalBooking, nil)
	if got != "/contact" {
		t.Fatalf("with no external url configured the form is the last resort, got %q", got)
	}
}

func TestTrackConfirmationDedup(t *testing.T) {
	repo := &fakeEventRepo{}
	tracker := NewEventTrackingService(newTestLogger(t), newTestTracker(), &fakeSink{}, repo)
	svc := NewBookingService(newTestLogger(t), newTestTracker(), nil, tracker)

	sess := newConsentedSession("sess-1", "visitor-1")
	params := ConfirmationParams{
		TreatmentName: "Swedish Massage",
		TreatmentID:   "t1",
		Price:         "£65",
		Category:      "massage",
		PagePath:      "/thank-you",
	}

	if !svc.TrackConfirmation(sess, experiment.VariantBookingForm, params) {
		t.Fatal("first confirmation should track")
	}
	if svc.TrackConfirmation(sess, experiment.VariantBookingForm, params) {
		t.Fatal("repeated identical confirmation should be ignored")
	}

	purchases := repo.byName(events.Purchase)
	if len(purchases) != 1 {
		t.Fatalf("expected exactly 1 purchase event, got %d", len(purchases))
	}
	if purchases[0].Params["value"] != 65.0 {
		t.Fatalf("purchase value = %v, want 65", purchases[0].Params["value"])
	}
	if purchases[0].Params["booking_source"] != "website" {
		t.Fatalf("empty source should default to website, got %v", purchases[0].Params["booking_source"])
	}

	// Different params are a different booking and track separately.
	other := params
	other.TreatmentID = "t2"
	other.TreatmentName = "Hot Stone Massage"
	if !svc.TrackConfirmation(sess, experiment.VariantBookingForm, other) {
		t.Fatal("a different confirmation should track")
	}
	if got := len(repo.byName(events.Purchase)); got != 2 {
		t.Fatalf("expected 2 purchase events, got %d", got)
	}
}

func TestResolveAndTrackEmitsFunnelEvents(t *testing.T) {
	originalExternal := config.ExternalBookingURL
	config.ExternalBookingURL = "https://booking.example.com/haven"
	defer func() { config.ExternalBookingURL = originalExternal }()

	repo := &fakeEventRepo{}
	tracker := NewEventTrackingService(newTestLogger(t), newTestTracker(), &fakeSink{}, repo)
	contentSvc := newContentFixture(t, []*content.Treatment{
		{
			ID:                 "t1",
			Slug:               "swedish-massage",
			Title:              "Swedish Massage",
			Price:              "£65",
			ExternalBookingURL: strPtr("https://booking.example.com/haven/swedish-massage"),
		},
	}, nil, nil)
	svc := NewBookingService(newTestLogger(t), newTestTracker(), contentSvc, tracker)

	sess := newConsentedSession("sess-1", "visitor-1")
	bctx := experiment.BookingContext{
		Placement:     experiment.PlacementDetail,
		TreatmentSlug: "swedish-massage",
		PagePath:      "/treatments/swedish-massage",
	}

	resolution := svc.ResolveAndTrack(sess, bctx, experiment.VariantExternalBooking)
	if !resolution.External || resolution.Destination != "external" {
		t.Fatalf("unexpected resolution: %+v", resolution)
	}
	if resolution.URL != "https://booking.example.com/haven/swedish-massage" {
		t.Fatalf("resolution url = %q", resolution.URL)
	}

	clicks := repo.byName(events.BookingButtonClicked)
	if len(clicks) != 1 {
		t.Fatalf("expected 1 click event, got %d", len(clicks))
	}
	if clicks[0].Params["placement"] != "detail" {
		t.Fatalf("click placement = %v", clicks[0].Params["placement"])
	}

	checkouts := repo.byName(events.BeginCheckout)
	if len(checkouts) != 1 {
		t.Fatalf("expected 1 begin_checkout event, got %d", len(checkouts))
	}
	if checkouts[0].Params["item_name"] != "Swedish Massage" {
		t.Fatalf("begin_checkout item_name = %v", checkouts[0].Params["item_name"])
	}
	if checkouts[0].Params["value"] != 65.0 {
		t.Fatalf("begin_checkout value = %v, want 65", checkouts[0].Params["value"])
	}

	redirects := repo.byName(events.BookingRedirect)
	if len(redirects) != 1 {
		t.Fatalf("expected 1 redirect event, got %d", len(redirects))
	}
	if redirects[0].Params["destination"] != "external" {
		t.Fatalf("redirect destination = %v", redirects[0].Params["destination"])
	}

	// Control variant resolves to the form and reports accordingly.
	formRes := svc.ResolveAndTrack(sess, bctx, experiment.VariantBookingForm)
	if formRes.External || formRes.Destination != "form" {
		t.Fatalf("unexpected control resolution: %+v", formRes)
	}
}

func TestTrackConfirmationGuardScopedToSession(t *testing.T) {
	repo := &fakeEventRepo{}
	tracker := NewEventTrackingService(newTestLogger(t), newTestTracker(), &fakeSink{}, repo)
	svc := NewBookingService(newTestLogger(t), newTestTracker(), nil, tracker)

	params := ConfirmationParams{TreatmentName: "Swedish Massage", TreatmentID: "t1", Price: "£65", PagePath: "/thank-you"}

	first := newConsentedSession("sess-1", "visitor-1")
	if !svc.TrackConfirmation(first, experiment.VariantBookingForm, params) {
		t.Fatal("first confirmation should track")
	}

	// A fresh session carries no guard state from the old one.
	replacement := newConsentedSession("sess-1", "visitor-1")
	if !svc.TrackConfirmation(replacement, experiment.VariantBookingForm, params) {
		t.Fatal("the guard lives on the session, a replacement session tracks again")
	}
}

func TestTrackConfirmationConcurrentDuplicatesCollapse(t *testing.T) {
	repo := &fakeEventRepo{}
	tracker := NewEventTrackingService(newTestLogger(t), newTestTracker(), &fakeSink{}, repo)
	svc := NewBookingService(newTestLogger(t), newTestTracker(), nil, tracker)

	sess := newConsentedSession("sess-1", "visitor-1")
	params := ConfirmationParams{TreatmentName: "Swedish Massage", TreatmentID: "t1", Price: "£65", PagePath: "/thank-you"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.TrackConfirmation(sess, experiment.VariantBookingForm, params)
		}()
	}
	wg.Wait()

	if got := len(repo.byName(events.Purchase)); got != 1 {
		t.Fatalf("racing duplicate confirmations must collapse to 1 purchase, got %d", got)
	}
}

func TestTrackConfirmationNilSession(t *testing.T) {
	repo := &fakeEventRepo{}
	tracker := NewEventTrackingService(newTestLogger(t), newTestTracker(), &fakeSink{}, repo)
	svc := NewBookingService(newTestLogger(t), newTestTracker(), nil, tracker)

	if svc.TrackConfirmation(nil, experiment.VariantBookingForm, ConfirmationParams{}) {
		t.Fatal("nil session should not track")
	}
}
