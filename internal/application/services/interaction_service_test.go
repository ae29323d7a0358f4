package services

import (
	"reflect"
	"sync"
	"testing"

	"github.com/havenwellness/haven-go/internal/domain/events"
)

func newInteractionFixture(t *testing.T) (*InteractionService, *fakeEventRepo) {
	t.Helper()
	repo := &fakeEventRepo{}
	tracker := NewEventTrackingService(newTestLogger(t), newTestTracker(), &fakeSink{}, repo)
	return NewInteractionService(newTestLogger(t), newTestTracker(), tracker), repo
}

func TestProcessScrollFiresEachThresholdOnce(t *testing.T) {
	svc, repo := newInteractionFixture(t)
	sess := newConsentedSession("sess-1", "visitor-1")

	report := ScrollReport{PagePath: "/treatments", PageTitle: "Treatments", DocumentHeight: 3000, ViewportHeight: 1000}

	report.ScrollY = 600 // 30%
	fired := svc.ProcessScroll(sess, "booking_form", report)
	if !reflect.DeepEqual(fired, []int{25}) {
		t.Fatalf("at 30%% expected [25], got %v", fired)
	}
	if first := repo.byName(events.ScrollDepth)[0]; first.Params["page_title"] != "Treatments" {
		t.Fatalf("scroll event should carry the page title, got %v", first.Params["page_title"])
	}

	// Scrolling back up and crossing again must not re-fire.
	report.ScrollY = 100
	if fired := svc.ProcessScroll(sess, "booking_form", report); fired != nil {
		t.Fatalf("no new thresholds expected, got %v", fired)
	}
	report.ScrollY = 650
	if fired := svc.ProcessScroll(sess, "booking_form", report); fired != nil {
		t.Fatalf("re-crossing 25%% must not re-fire, got %v", fired)
	}

	// A fast jump to the bottom fires everything remaining at once.
	report.ScrollY = 2000 // 100%
	fired = svc.ProcessScroll(sess, "booking_form", report)
	if !reflect.DeepEqual(fired, []int{50, 75, 90}) {
		t.Fatalf("expected [50 75 90], got %v", fired)
	}

	if got := len(repo.byName(events.ScrollDepth)); got != 4 {
		t.Fatalf("expected 4 scroll events total, got %d", got)
	}
}

func TestProcessScrollResetsOnNavigation(t *testing.T) {
	svc, repo := newInteractionFixture(t)
	sess := newConsentedSession("sess-1", "visitor-1")

	report := ScrollReport{PagePath: "/treatments", ScrollY: 2000, DocumentHeight: 3000, ViewportHeight: 1000}
	svc.ProcessScroll(sess, "booking_form", report)

	report.PagePath = "/about"
	report.ScrollY = 600
	fired := svc.ProcessScroll(sess, "booking_form", report)
	if !reflect.DeepEqual(fired, []int{25}) {
		t.Fatalf("new pathname should reset fired thresholds, got %v", fired)
	}

	if got := len(repo.byName(events.ScrollDepth)); got != 5 {
		t.Fatalf("expected 5 scroll events total, got %d", got)
	}
}

func TestProcessScrollUnscrollablePage(t *testing.T) {
	svc, repo := newInteractionFixture(t)
	sess := newConsentedSession("sess-1", "visitor-1")

	report := ScrollReport{PagePath: "/", ScrollY: 0, DocumentHeight: 800, ViewportHeight: 900}
	if fired := svc.ProcessScroll(sess, "booking_form", report); fired != nil {
		t.Fatalf("a page shorter than the viewport fires nothing, got %v", fired)
	}
	if len(repo.stored()) != 0 {
		t.Fatal("no events expected")
	}
}

func TestProcessFormStartOncePerInstance(t *testing.T) {
	svc, repo := newInteractionFixture(t)
	sess := newConsentedSession("sess-1", "visitor-1")

	focus := FormReport{PagePath: "/contact", FormName: "contact", FormInstance: "contact-1", Action: "focus", FieldName: "name"}
	svc.ProcessForm(sess, "booking_form", focus)
	focus.FieldName = "email"
	svc.ProcessForm(sess, "booking_form", focus)

	forms := repo.byName(events.FormInteraction)
	starts := 0
	for _, e := range forms {
		if e.Params["interaction_type"] == "start" {
			starts++
		}
	}
	if starts != 1 {
		t.Fatalf("expected exactly 1 start event, got %d", starts)
	}
	if len(forms) != 3 {
		t.Fatalf("expected start + 2 focus events, got %d", len(forms))
	}
}

func TestProcessFormBlurOnlyWithValue(t *testing.T) {
	svc, repo := newInteractionFixture(t)
	sess := newConsentedSession("sess-1", "visitor-1")

	hasValue := true
	noValue := false
	blur := FormReport{PagePath: "/contact", FormName: "contact", FormInstance: "contact-1", Action: "blur", FieldName: "name"}

	blur.HasValue = &noValue
	svc.ProcessForm(sess, "booking_form", blur)
	blur.HasValue = nil
	svc.ProcessForm(sess, "booking_form", blur)
	blur.HasValue = &hasValue
	svc.ProcessForm(sess, "booking_form", blur)

	if got := len(repo.byName(events.FormInteraction)); got != 1 {
		t.Fatalf("only the blur with a value should track, got %d events", got)
	}
}

func TestProcessOutboundClick(t *testing.T) {
	tests := []struct {
		name   string
		report ClickReport
		want   bool
	}{
		{
			name:   "external link tracks",
			report: ClickReport{PagePath: "/", PageHost: "havenwellness.co.uk", Href: "https://fresha.com/haven", LinkText: " Book on Fresha "},
			want:   true,
		},
		{
			name:   "same host ignored",
			report: ClickReport{PagePath: "/", PageHost: "havenwellness.co.uk", Href: "https://havenwellness.co.uk/about"},
			want:   false,
		},
		{
			name:   "same host different case ignored",
			report: ClickReport{PagePath: "/", PageHost: "HavenWellness.co.uk", Href: "https://havenwellness.co.uk/about"},
			want:   false,
		},
		{
			name:   "relative link ignored",
			report: ClickReport{PagePath: "/", PageHost: "havenwellness.co.uk", Href: "/treatments"},
			want:   false,
		},
		{
			name:   "javascript href ignored",
			report: ClickReport{PagePath: "/", PageHost: "havenwellness.co.uk", Href: "javascript:void(0)"},
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newInteractionFixture(t)
			sess := newConsentedSession("sess-1", "visitor-1")

			got := svc.ProcessOutboundClick(sess, "booking_form", tt.report)
			if got != tt.want {
				t.Fatalf("ProcessOutboundClick() = %v, want %v", got, tt.want)
			}

			clicks := repo.byName(events.OutboundClick)
			if tt.want {
				if len(clicks) != 1 {
					t.Fatalf("expected 1 outbound click event, got %d", len(clicks))
				}
				if clicks[0].Params["link_domain"] != "fresha.com" {
					t.Fatalf("link_domain = %v", clicks[0].Params["link_domain"])
				}
				if clicks[0].Params["link_text"] != "Book on Fresha" {
					t.Fatalf("link text should be trimmed, got %q", clicks[0].Params["link_text"])
				}
				if clicks[0].Params["outbound"] != true {
					t.Fatalf("outbound click should carry outbound=true, got %v", clicks[0].Params["outbound"])
				}
			} else if len(clicks) != 0 {
				t.Fatalf("expected no outbound click events, got %d", len(clicks))
			}
		})
	}
}

func TestProcessTreatmentViewDedup(t *testing.T) {
	svc, repo := newInteractionFixture(t)
	sess := newConsentedSession("sess-1", "visitor-1")

	view := ViewReport{PagePath: "/treatments/swedish-massage", TreatmentID: "t1", TreatmentName: "Swedish Massage", Category: "massage", Price: "£65"}

	if !svc.ProcessTreatmentView(sess, "booking_form", view) {
		t.Fatal("first view should track")
	}
	if svc.ProcessTreatmentView(sess, "booking_form", view) {
		t.Fatal("repeat view of the same treatment should not track")
	}

	// A different treatment re-arms the first one.
	other := view
	other.TreatmentID = "t2"
	if !svc.ProcessTreatmentView(sess, "booking_form", other) {
		t.Fatal("view of a different treatment should track")
	}
	if !svc.ProcessTreatmentView(sess, "booking_form", view) {
		t.Fatal("returning to the first treatment should track again")
	}

	views := repo.byName(events.ViewItem)
	if len(views) != 3 {
		t.Fatalf("expected 3 view_item events, got %d", len(views))
	}
	if views[0].Params["price"] != 65.0 {
		t.Fatalf("price = %v, want 65", views[0].Params["price"])
	}
	if views[0].Params["currency"] != "GBP" {
		t.Fatalf("currency = %v, want GBP", views[0].Params["currency"])
	}
}

func TestConcurrentReportsKeepDedupExact(t *testing.T) {
	svc, repo := newInteractionFixture(t)
	sess := newConsentedSession("sess-1", "visitor-1")

	scroll := ScrollReport{PagePath: "/treatments", ScrollY: 2000, DocumentHeight: 3000, ViewportHeight: 1000}
	focus := FormReport{PagePath: "/contact", FormName: "contact", FormInstance: "contact-1", Action: "focus", FieldName: "name"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.ProcessScroll(sess, "booking_form", scroll)
		}()
		go func() {
			defer wg.Done()
			svc.ProcessForm(sess, "booking_form", focus)
		}()
	}
	wg.Wait()

	// Every threshold still fires exactly once across all racing reports.
	if got := len(repo.byName(events.ScrollDepth)); got != 4 {
		t.Fatalf("expected 4 scroll events across racing reports, got %d", got)
	}

	starts := 0
	for _, e := range repo.byName(events.FormInteraction) {
		if e.Params["interaction_type"] == "start" {
			starts++
		}
	}
	if starts != 1 {
		t.Fatalf("expected exactly 1 form start across racing reports, got %d", starts)
	}
}

func TestProcessTreatmentViewEmptyID(t *testing.T) {
	svc, repo := newInteractionFixture(t)
	sess := newConsentedSession("sess-1", "visitor-1")

	if svc.ProcessTreatmentView(sess, "booking_form", ViewReport{PagePath: "/x"}) {
		t.Fatal("empty treatment id should not track")
	}
	if len(repo.stored()) != 0 {
		t.Fatal("no events expected")
	}
}
