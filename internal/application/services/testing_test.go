package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/analytics"
	"github.com/havenwellness/haven-go/internal/domain/entities/content"
	"github.com/havenwellness/haven-go/internal/domain/events"
	"github.com/havenwellness/haven-go/internal/domain/user"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/stores"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/types"
	"github.com/havenwellness/haven-go/internal/infrastructure/email/templates"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
)

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		JSONFormat:      true,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

func newTestTracker() *performance.Tracker {
	return performance.NewTracker(nil)
}

// sinkCall records one delivery to the fake sink.
type sinkCall struct {
	Name     string
	ClientID string
	Params   map[string]any
}

// fakeSink records every delivery for assertions.
type fakeSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (f *fakeSink) Send(ctx context.Context, name, clientID string, params map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sinkCall{Name: name, ClientID: clientID, Params: params})
	return nil
}

func (f *fakeSink) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSink) lastCall() *sinkCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	call := f.calls[len(f.calls)-1]
	return &call
}

// panicSink always panics, for verifying the tracker isolates sink faults.
type panicSink struct{}

func (p *panicSink) Send(ctx context.Context, name, clientID string, params map[string]any) error {
	panic("sink exploded")
}

// fakeEventRepo collects stored events in memory.
type fakeEventRepo struct {
	mu     sync.Mutex
	events []*events.Tracked
}

func (f *fakeEventRepo) Store(event *events.Tracked) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventRepo) stored() []*events.Tracked {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*events.Tracked, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeEventRepo) byName(name events.Name) []*events.Tracked {
	var out []*events.Tracked
	for _, e := range f.stored() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeEventRepo) CountByNameAndDay(start, end time.Time) ([]*analytics.DailyCount, error) {
	return nil, nil
}

func (f *fakeEventRepo) VariantSplit(start, end time.Time) ([]*analytics.VariantSplit, error) {
	return nil, nil
}

func (f *fakeEventRepo) ConversionByCohort(start, end time.Time) ([]*analytics.CohortConversion, error) {
	return nil, nil
}

func (f *fakeEventRepo) TopOutboundDomains(start, end time.Time, limit int) ([]*analytics.OutboundDomain, error) {
	return nil, nil
}

// fakeDismissalRepo keeps dismissal records in memory.
type fakeDismissalRepo struct {
	mu      sync.Mutex
	records map[string]*user.Dismissal
	findErr error
}

func newFakeDismissalRepo() *fakeDismissalRepo {
	return &fakeDismissalRepo{records: make(map[string]*user.Dismissal)}
}

func (f *fakeDismissalRepo) Find(visitorID, offerID string) (*user.Dismissal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	d, found := f.records[visitorID+"|"+offerID]
	if !found {
		return nil, nil
	}
	return d, nil
}

func (f *fakeDismissalRepo) Upsert(dismissal *user.Dismissal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[dismissal.VisitorID+"|"+dismissal.OfferID] = dismissal
	return nil
}

func (f *fakeDismissalRepo) Delete(visitorID, offerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, visitorID+"|"+offerID)
	return nil
}

// fakeVisitorRepo keeps visitors in memory.
type fakeVisitorRepo struct {
	mu       sync.Mutex
	visitors map[string]*user.Visitor
}

func newFakeVisitorRepo() *fakeVisitorRepo {
	return &fakeVisitorRepo{visitors: make(map[string]*user.Visitor)}
}

func (f *fakeVisitorRepo) FindByID(id string) (*user.Visitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, found := f.visitors[id]
	if !found {
		return nil, nil
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVisitorRepo) Create(visitor *user.Visitor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *visitor
	f.visitors[visitor.ID] = &copied
	return nil
}

func (f *fakeVisitorRepo) Exists(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, found := f.visitors[id]
	return found, nil
}

func (f *fakeVisitorRepo) MarkVariantEventSent(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, found := f.visitors[id]
	if !found || v.VariantEventSent {
		return false, nil
	}
	v.VariantEventSent = true
	return true, nil
}

// fakeLeadRepo keeps leads in memory.
type fakeLeadRepo struct {
	mu    sync.Mutex
	leads []*user.Lead
	err   error
}

func (f *fakeLeadRepo) FindByID(id string) (*user.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeLeadRepo) Store(lead *user.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakeLeadRepo) stored() []*user.Lead {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*user.Lead, len(f.leads))
	copy(out, f.leads)
	return out
}

// failingEmail always errors, for verifying email failures never lose leads.
type failingEmail struct{}

func (f *failingEmail) SendLeadNotificationEmail(lead templates.LeadNotificationProps) error {
	return errors.New("provider unavailable")
}

// fakeTreatmentRepo serves a fixed treatment list.
type fakeTreatmentRepo struct {
	treatments []*content.Treatment
	err        error
}

func (f *fakeTreatmentRepo) FindByID(id string) (*content.Treatment, error) {
	for _, t := range f.treatments {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTreatmentRepo) FindBySlug(slug string) (*content.Treatment, error) {
	for _, t := range f.treatments {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTreatmentRepo) FindByCategory(categorySlug string) ([]*content.Treatment, error) {
	var out []*content.Treatment
	for _, t := range f.treatments {
		if t.CategorySlug != nil && *t.CategorySlug == categorySlug {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTreatmentRepo) FindAll() ([]*content.Treatment, error) {
	return f.treatments, f.err
}

func (f *fakeTreatmentRepo) Store(treatment *content.Treatment) error  { return nil }
func (f *fakeTreatmentRepo) Update(treatment *content.Treatment) error { return nil }
func (f *fakeTreatmentRepo) Delete(id string) error                    { return nil }

// fakeCategoryRepo serves a fixed category list.
type fakeCategoryRepo struct {
	categories []*content.Category
}

func (f *fakeCategoryRepo) FindBySlug(slug string) (*content.Category, error) {
	for _, c := range f.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryRepo) FindAll() ([]*content.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryRepo) Store(category *content.Category) error  { return nil }
func (f *fakeCategoryRepo) Update(category *content.Category) error { return nil }
func (f *fakeCategoryRepo) Delete(id string) error                  { return nil }

// fakeOfferRepo serves a fixed offer list.
type fakeOfferRepo struct {
	offers []*content.PromotionalOffer
}

func (f *fakeOfferRepo) FindByID(id string) (*content.PromotionalOffer, error) {
	for _, o := range f.offers {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOfferRepo) FindAll() ([]*content.PromotionalOffer, error) {
	return f.offers, nil
}

func (f *fakeOfferRepo) Store(offer *content.PromotionalOffer) error  { return nil }
func (f *fakeOfferRepo) Update(offer *content.PromotionalOffer) error { return nil }
func (f *fakeOfferRepo) Delete(id string) error                       { return nil }

// newContentFixture wires a content service over fakes with a warm cache.
func newContentFixture(t *testing.T, treatments []*content.Treatment, categories []*content.Category, offers []*content.PromotionalOffer) *ContentService {
	t.Helper()
	store := stores.NewContentStore(time.Hour)
	svc := NewContentService(newTestLogger(t), newTestTracker(), store,
		&fakeTreatmentRepo{treatments: treatments},
		&fakeCategoryRepo{categories: categories},
		&fakeOfferRepo{offers: offers})
	if err := svc.Warm(); err != nil {
		t.Fatalf("failed to warm content cache: %v", err)
	}
	return svc
}

// newConsentedSession builds a session with consent granted and all dedup
// guards initialized, the way the sessions store does.
func newConsentedSession(sessionID, visitorID string) *types.SessionState {
	now := time.Now().UTC()
	return &types.SessionState{
		SessionID:       sessionID,
		VisitorID:       visitorID,
		ConsentGranted:  true,
		FiredThresholds: make(map[int]bool),
		StartedForms:    make(map[string]bool),
		TrackedBookings: make(map[string]bool),
		PromoStates:     make(map[string]string),
		CreatedAt:       now,
		LastActivity:    now,
		ExpiresAt:       now.Add(time.Hour),
	}
}

func strPtr(s string) *string { return &s }

func timePtr(ts time.Time) *time.Time { return &ts }

func offerFixture(id string, created time.Time) *content.PromotionalOffer {
	return &content.PromotionalOffer{
		ID:                  id,
		Title:               "Autumn glow facial",
		Description:         "20% off through October",
		CTAText:             "Book now",
		CTALink:             "/contact",
		DismissDurationDays: 7,
		DisplayDelaySeconds: 5,
		Active:              true,
		Created:             created,
	}
}
