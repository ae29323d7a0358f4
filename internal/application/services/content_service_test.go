package services

import (
	"testing"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/entities/content"
)

func treatmentFixture(id, slug, title, category string, featured bool) *content.Treatment {
	t := &content.Treatment{
		ID:       id,
		Title:    title,
		Slug:     slug,
		Price:    "£65",
		Featured: featured,
		Created:  time.Now().UTC(),
	}
	if category != "" {
		t.CategorySlug = &category
	}
	return t
}

func TestGetTreatmentBySlug(t *testing.T) {
	svc := newContentFixture(t,
		[]*content.Treatment{treatmentFixture("t1", "swedish-massage", "Swedish Massage", "massage", false)},
		nil, nil)

	if got := svc.GetTreatmentBySlug("swedish-massage"); got == nil || got.ID != "t1" {
		t.Fatalf("GetTreatmentBySlug() = %+v", got)
	}
	if got := svc.GetTreatmentBySlug("no-such-treatment"); got != nil {
		t.Fatalf("unknown slug should yield nil, got %+v", got)
	}
}

func TestGetAllTreatmentsFeaturedFirst(t *testing.T) {
	svc := newContentFixture(t, []*content.Treatment{
		treatmentFixture("t1", "aromatherapy", "Aromatherapy", "massage", false),
		treatmentFixture("t2", "hot-stone", "Hot Stone", "massage", true),
		treatmentFixture("t3", "deep-tissue", "Deep Tissue", "massage", false),
	}, nil, nil)

	treatments := svc.GetAllTreatments()
	if len(treatments) != 3 {
		t.Fatalf("expected 3 treatments, got %d", len(treatments))
	}
	if treatments[0].ID != "t2" {
		t.Fatalf("featured treatment should sort first, got %s", treatments[0].ID)
	}
	if treatments[1].Title != "Aromatherapy" || treatments[2].Title != "Deep Tissue" {
		t.Fatalf("remaining treatments should sort by title: %s, %s", treatments[1].Title, treatments[2].Title)
	}
}

func TestGetTreatmentsByCategory(t *testing.T) {
	svc := newContentFixture(t, []*content.Treatment{
		treatmentFixture("t1", "swedish-massage", "Swedish Massage", "massage", false),
		treatmentFixture("t2", "classic-facial", "Classic Facial", "facials", false),
	}, nil, nil)

	massages := svc.GetTreatmentsByCategory("massage")
	if len(massages) != 1 || massages[0].ID != "t1" {
		t.Fatalf("unexpected category result: %+v", massages)
	}
	if got := svc.GetTreatmentsByCategory("no-such-category"); len(got) != 0 {
		t.Fatalf("unknown category should be empty, got %d", len(got))
	}
}

func TestGetAllCategoriesSorted(t *testing.T) {
	svc := newContentFixture(t, nil, []*content.Category{
		{ID: "c1", Title: "Facials", Slug: "facials", SortOrder: 2},
		{ID: "c2", Title: "Massage", Slug: "massage", SortOrder: 1},
	}, nil)

	categories := svc.GetAllCategories()
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Slug != "massage" || categories[1].Slug != "facials" {
		t.Fatalf("categories out of order: %s, %s", categories[0].Slug, categories[1].Slug)
	}
}

func TestGetActiveOffer(t *testing.T) {
	now := time.Now().UTC()

	inactive := offerFixture("inactive", now)
	inactive.Active = false

	expired := offerFixture("expired", now)
	expired.EndsAt = timePtr(now.Add(-time.Hour))

	upcoming := offerFixture("upcoming", now)
	upcoming.StartsAt = timePtr(now.Add(time.Hour))

	older := offerFixture("older", now.Add(-48*time.Hour))
	newest := offerFixture("newest", now.Add(-time.Hour))

	svc := newContentFixture(t, nil, nil,
		[]*content.PromotionalOffer{inactive, expired, upcoming, older, newest})

	got := svc.GetActiveOffer()
	if got == nil {
		t.Fatal("expected an active offer")
	}
	if got.ID != "newest" {
		t.Fatalf("newest qualifying offer should win, got %s", got.ID)
	}
}

func TestGetActiveOfferNoneQualify(t *testing.T) {
	now := time.Now().UTC()
	inactive := offerFixture("inactive", now)
	inactive.Active = false

	svc := newContentFixture(t, nil, nil, []*content.PromotionalOffer{inactive})
	if got := svc.GetActiveOffer(); got != nil {
		t.Fatalf("no qualifying offer expected, got %+v", got)
	}
}

func TestGetActiveOfferInsideWindow(t *testing.T) {
	now := time.Now().UTC()
	windowed := offerFixture("windowed", now)
	windowed.StartsAt = timePtr(now.Add(-time.Hour))
	windowed.EndsAt = timePtr(now.Add(time.Hour))

	svc := newContentFixture(t, nil, nil, []*content.PromotionalOffer{windowed})
	if got := svc.GetActiveOffer(); got == nil || got.ID != "windowed" {
		t.Fatalf("offer inside its window should qualify, got %+v", got)
	}
}
