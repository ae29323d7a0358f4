package services

import (
	"sort"
	"sync"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/entities/content"
	"github.com/havenwellness/haven-go/internal/domain/repositories"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/stores"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
)

// ContentService serves treatments, categories, and promotional offers
// cache-first. Reads come from the content store; a stale store triggers
// a full reload from the repositories. A failed reload keeps serving the
// previous snapshot rather than erroring the request.
type ContentService struct {
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
	store         *stores.ContentStore
	treatmentRepo repositories.TreatmentRepository
	categoryRepo  repositories.CategoryRepository
	offerRepo     repositories.OfferRepository

	refreshMu sync.Mutex
}

// NewContentService creates a new content service
func NewContentService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, store *stores.ContentStore, treatmentRepo repositories.TreatmentRepository, categoryRepo repositories.CategoryRepository, offerRepo repositories.OfferRepository) *ContentService {
	return &ContentService{
		logger:        logger,
		perfTracker:   perfTracker,
		store:         store,
		treatmentRepo: treatmentRepo,
		categoryRepo:  categoryRepo,
		offerRepo:     offerRepo,
	}
}

// Warm populates the content cache from the database. Called at startup
// so the first request never pays the load cost.
func (s *ContentService) Warm() error {
	marker := s.perfTracker.StartOperation("content:warm")
	defer marker.Complete()

	err := s.reload()
	marker.SetSuccess(err == nil)
	return err
}

// refreshIfStale reloads the cache when the TTL has lapsed. Only one
// goroutine reloads at a time; others serve the existing snapshot.
func (s *ContentService) refreshIfStale() {
	if !s.store.IsStale() {
		return
	}

	if !s.refreshMu.TryLock() {
		return
	}
	defer s.refreshMu.Unlock()

	if !s.store.IsStale() {
		return
	}
	if err := s.reload(); err != nil {
		s.logger.Content().Error("Content cache refresh failed, serving stale data", "error", err.Error())
	}
}

func (s *ContentService) reload() error {
	treatments, err := s.treatmentRepo.FindAll()
	if err != nil {
		return err
	}
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return err
	}
	offers, err := s.offerRepo.FindAll()
	if err != nil {
		return err
	}

	s.store.ReplaceAll(treatments, categories, offers)
	s.logger.Cache().Info("Content cache reloaded",
		"treatments", len(treatments),
		"categories", len(categories),
		"offers", len(offers))
	return nil
}

// Invalidate drops the cache so the next read reloads.
func (s *ContentService) Invalidate() {
	s.store.Invalidate()
}

// GetTreatment returns a treatment by id, or nil when unknown.
func (s *ContentService) GetTreatment(id string) *content.Treatment {
	s.refreshIfStale()
	t, found := s.store.GetTreatment(id)
	if !found {
		return nil
	}
	return t
}

// GetTreatmentBySlug returns a treatment by slug, or nil when unknown.
func (s *ContentService) GetTreatmentBySlug(slug string) *content.Treatment {
	s.refreshIfStale()
	t, found := s.store.GetTreatmentBySlug(slug)
	if !found {
		return nil
	}
	return t
}

// GetAllTreatments returns all treatments, featured first, then by title.
func (s *ContentService) GetAllTreatments() []*content.Treatment {
	s.refreshIfStale()
	treatments := s.store.GetAllTreatments()
	sortTreatments(treatments)
	return treatments
}

// GetTreatmentsByCategory returns the treatments in a category, sorted the
// same way as the full listing.
func (s *ContentService) GetTreatmentsByCategory(categorySlug string) []*content.Treatment {
	s.refreshIfStale()
	treatments := s.store.GetTreatmentsByCategory(categorySlug)
	sortTreatments(treatments)
	return treatments
}

// GetCategory returns a category by slug, or nil when unknown.
func (s *ContentService) GetCategory(slug string) *content.Category {
	s.refreshIfStale()
	c, found := s.store.GetCategory(slug)
	if !found {
		return nil
	}
	return c
}

// GetAllCategories returns all categories in display order.
func (s *ContentService) GetAllCategories() []*content.Category {
	s.refreshIfStale()
	categories := s.store.GetAllCategories()
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Title < categories[j].Title
	})
	return categories
}

// GetOffer returns a promotional offer by id, or nil when unknown.
func (s *ContentService) GetOffer(id string) *content.PromotionalOffer {
	s.refreshIfStale()
	o, found := s.store.GetOffer(id)
	if !found {
		return nil
	}
	return o
}

// GetActiveOffer returns the promotional offer to show right now: active
// flag set, inside its schedule window, newest created wins when several
// qualify. Nil when nothing is running.
func (s *ContentService) GetActiveOffer() *content.PromotionalOffer {
	s.refreshIfStale()

	now := time.Now().UTC()
	var best *content.PromotionalOffer
	for _, offer := range s.store.GetAllOffers() {
		if !offer.Active || !offer.ActiveWithin(now) {
			continue
		}
		if best == nil || offer.Created.After(best.Created) {
			best = offer
		}
	}
	return best
}

func sortTreatments(treatments []*content.Treatment) {
	sort.Slice(treatments, func(i, j int) bool {
		if treatments[i].Featured != treatments[j].Featured {
			return treatments[i].Featured
		}
		return treatments[i].Title < treatments[j].Title
	})
}
