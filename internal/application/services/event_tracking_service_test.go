package services

import (
	"strings"
	"testing"

	"github.com/havenwellness/haven-go/internal/domain/events"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain pounds", "£65", 65, true},
		{"decimal", "£49.99", 49.99, true},
		{"thousands separator", "£1,200", 1200, true},
		{"from prefix", "from £40", 40, true},
		{"bare number", "85", 85, true},
		{"empty", "", 0, false},
		{"no digits", "free", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParsePrice(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrackRequiresConsent(t *testing.T) {
	repo := &fakeEventRepo{}
	sink := &fakeSink{}
	svc := NewEventTrackingService(newTestLogger(t), newTestTracker(), sink, repo)

	sess := newConsentedSession("sess-1", "visitor-1")
	sess.ConsentGranted = false

	svc.Track(sess, events.ScrollDepth, "/treatments", "booking_form", map[string]any{"percent_scrolled": 50})

	if len(repo.stored()) != 0 {
		t.Fatal("event without consent should not be stored")
	}
	if sink.callCount() != 0 {
		t.Fatal("event without consent should not reach the sink")
	}
}

func TestTrackRejectsUnknownEventName(t *testing.T) {
	repo := &fakeEventRepo{}
	sink := &fakeSink{}
	svc := NewEventTrackingService(newTestLogger(t), newTestTracker(), sink, repo)

	sess := newConsentedSession("sess-1", "visitor-1")
	svc.Track(sess, events.Name("made_up_event"), "/", "booking_form", nil)

	if len(repo.stored()) != 0 || sink.callCount() != 0 {
		t.Fatal("unknown event name should be dropped")
	}
}

func TestTrackStoresAndForwards(t *testing.T) {
	repo := &fakeEventRepo{}
	sink := &fakeSink{}
	svc := NewEventTrackingService(newTestLogger(t), newTestTracker(), sink, repo)

	sess := newConsentedSession("sess-1", "visitor-1")
	svc.Track(sess, events.OutboundClick, "/treatments/massage", "external_booking", map[string]any{
		"link_domain": "fresha.com",
		"nil_param":   nil,
	})

	stored := repo.stored()
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(stored))
	}
	if stored[0].VisitorID != "visitor-1" || stored[0].SessionID != "sess-1" {
		t.Fatalf("event identity mismatch: %+v", stored[0])
	}
	if _, present := stored[0].Params["nil_param"]; present {
		t.Fatal("nil-valued params should be stripped, not stored as null")
	}

	call := sink.lastCall()
	if call == nil {
		t.Fatal("expected the event to reach the sink")
	}
	if call.ClientID != "visitor-1" {
		t.Fatalf("sink client id = %q, want visitor id", call.ClientID)
	}
	if call.Params["page_path"] != "/treatments/massage" {
		t.Fatalf("sink params missing page_path: %v", call.Params)
	}
	if call.Params["variant"] != "external_booking" {
		t.Fatalf("sink params missing variant: %v", call.Params)
	}
}

func TestTrackSurvivesSinkPanic(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewEventTrackingService(newTestLogger(t), newTestTracker(), &panicSink{}, repo)

	sess := newConsentedSession("sess-1", "visitor-1")
	svc.Track(sess, events.ScrollDepth, "/", "booking_form", map[string]any{"percent_scrolled": 25})

	if len(repo.stored()) != 1 {
		t.Fatal("a panicking sink must not lose the stored event")
	}
}

func TestTrackOutboundClickTruncatesLinkText(t *testing.T) {
	repo := &fakeEventRepo{}
	sink := &fakeSink{}
	svc := NewEventTrackingService(newTestLogger(t), newTestTracker(), sink, repo)

	sess := newConsentedSession("sess-1", "visitor-1")
	longText := strings.Repeat("a", 250)
	svc.TrackOutboundClick(sess, "/", "booking_form", "https://fresha.com/x", longText, "fresha.com")

	stored := repo.stored()
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(stored))
	}
	text, _ := stored[0].Params["link_text"].(string)
	if len(text) != 100 {
		t.Fatalf("link text should be truncated to 100 chars, got %d", len(text))
	}
}

func TestTrackFormInteractionParamPresence(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewEventTrackingService(newTestLogger(t), newTestTracker(), &fakeSink{}, repo)

	sess := newConsentedSession("sess-1", "visitor-1")

	empty := ""
	svc.TrackFormInteraction(sess, "/contact", "booking_form", "error", "contact", "email", nil, &empty)

	stored := repo.stored()
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(stored))
	}
	if stored[0].Params["interaction_type"] != "error" {
		t.Fatalf("interaction_type = %v, want error", stored[0].Params["interaction_type"])
	}
	if _, present := stored[0].Params["error_message"]; !present {
		t.Fatal("error action should carry error_message even when empty")
	}
	if _, present := stored[0].Params["has_value"]; present {
		t.Fatal("has_value should be absent when not supplied")
	}
}

func TestTrackScrollDepthCarriesPageTitle(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewEventTrackingService(newTestLogger(t), newTestTracker(), &fakeSink{}, repo)

	sess := newConsentedSession("sess-1", "visitor-1")
	svc.TrackScrollDepth(sess, "/treatments", "Treatments", "booking_form", 50)

	stored := repo.stored()
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(stored))
	}
	if stored[0].Params["page_title"] != "Treatments" {
		t.Fatalf("page_title = %v, want Treatments", stored[0].Params["page_title"])
	}
	if stored[0].Params["percent_scrolled"] != 50 {
		t.Fatalf("percent_scrolled = %v, want 50", stored[0].Params["percent_scrolled"])
	}
}

func TestGenerateTransactionIDPrefix(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateTransactionID()
		if !strings.HasPrefix(id, "booking_") {
			t.Fatalf("transaction id %q missing booking_ prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate transaction id %q", id)
		}
		seen[id] = true
	}
}
