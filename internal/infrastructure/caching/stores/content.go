// Package stores provides concrete cache store implementations
package stores

import (
	"time"

	"github.com/havenwellness/haven-go/internal/domain/entities/content"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/types"
)

// ContentStore implements content caching operations
type ContentStore struct {
	cache *types.ContentCache
	ttl   time.Duration
}

// NewContentStore creates a new content cache store
func NewContentStore(ttl time.Duration) *ContentStore {
	return &ContentStore{
		cache: &types.ContentCache{
			Treatments:             make(map[string]*content.Treatment),
			Categories:             make(map[string]*content.Category),
			Offers:                 make(map[string]*content.PromotionalOffer),
			TreatmentSlugToID:      make(map[string]string),
			CategoryToTreatmentIDs: make(map[string][]string),
			LastUpdated:            time.Time{},
		},
		ttl: ttl,
	}
}

// IsStale reports whether the cache needs repopulating from the database
func (cs *ContentStore) IsStale() bool {
	cs.cache.Mu.RLock()
	defer cs.cache.Mu.RUnlock()
	return cs.cache.LastUpdated.IsZero() || time.Since(cs.cache.LastUpdated) > cs.ttl
}

// ReplaceAll atomically swaps in a full content set
func (cs *ContentStore) ReplaceAll(treatments []*content.Treatment, categories []*content.Category, offers []*content.PromotionalOffer) {
	cs.cache.Mu.Lock()
	defer cs.cache.Mu.Unlock()

	cs.cache.Treatments = make(map[string]*content.Treatment, len(treatments))
	cs.cache.TreatmentSlugToID = make(map[string]string, len(treatments))
	cs.cache.CategoryToTreatmentIDs = make(map[string][]string)
	for _, t := range treatments {
		cs.cache.Treatments[t.ID] = t
		cs.cache.TreatmentSlugToID[t.Slug] = t.ID
		if t.CategorySlug != nil {
			cs.cache.CategoryToTreatmentIDs[*t.CategorySlug] = append(cs.cache.CategoryToTreatmentIDs[*t.CategorySlug], t.ID)
		}
	}

	cs.cache.Categories = make(map[string]*content.Category, len(categories))
	for _, c := range categories {
		cs.cache.Categories[c.Slug] = c
	}

	cs.cache.Offers = make(map[string]*content.PromotionalOffer, len(offers))
	for _, o := range offers {
		cs.cache.Offers[o.ID] = o
	}

	cs.cache.LastUpdated = time.Now().UTC()
}

// GetTreatment retrieves a treatment by id
func (cs *ContentStore) GetTreatment(id string) (*content.Treatment, bool) {
	cs.cache.Mu.RLock()
	defer cs.cache.Mu.RUnlock()
	t, found := cs.cache.Treatments[id]
	return t, found
}

// GetTreatmentBySlug retrieves a treatment by slug
func (cs *ContentStore) GetTreatmentBySlug(slug string) (*content.Treatment, bool) {
	cs.cache.Mu.RLock()
	defer cs.cache.Mu.RUnlock()
	id, found := cs.cache.TreatmentSlugToID[slug]
	if !found {
		return nil, false
	}
	t, found := cs.cache.Treatments[id]
	return t, found
}

// GetAllTreatments returns all cached treatments
func (cs *ContentStore) GetAllTreatments() []*content.Treatment {
	cs.cache.Mu.RLock()
	defer cs.cache.Mu.RUnlock()
	treatments := make([]*content.Treatment, 0, len(cs.cache.Treatments))
	for _, t := range cs.cache.Treatments {
		treatments = append(treatments, t)
	}
	return treatments
}

// GetTreatmentsByCategory returns all treatments in a category
func (cs *ContentStore) GetTreatmentsByCategory(categorySlug string) []*content.Treatment {
	cs.cache.Mu.RLock()
	defer cs.cache.Mu.RUnlock()
	ids := cs.cache.CategoryToTreatmentIDs[categorySlug]
	treatments := make([]*content.Treatment, 0, len(ids))
	for _, id := range ids {
		if t, found := cs.cache.Treatments[id]; found {
			treatments = append(treatments, t)
		}
	}
	return treatments
}

// GetCategory retrieves a category by slug
func (cs *ContentStore) GetCategory(slug string) (*content.Category, bool) {
	cs.cache.Mu.RLock()
	defer cs.cache.Mu.RUnlock()
	c, found := cs.cache.Categories[slug]
	return c, found
}

// GetAllCategories returns all cached categories
func (cs *ContentStore) GetAllCategories() []*content.Category {
	cs.cache.Mu.RLock()
	defer cs.cache.Mu.RUnlock()
	categories := make([]*content.Category, 0, len(cs.cache.Categories))
	for _, c := range cs.cache.Categories {
		categories = append(categories, c)
	}
	return categories
}

// GetOffer retrieves an offer by id
func (cs *ContentStore) GetOffer(id string) (*content.PromotionalOffer, bool) {
	cs.cache.Mu.RLock()
	defer cs.cache.Mu.RUnlock()
	o, found := cs.cache.Offers[id]
	return o, found
}

// GetAllOffers returns all cached offers
func (cs *ContentStore) GetAllOffers() []*content.PromotionalOffer {
	cs.cache.Mu.RLock()
	defer cs.cache.Mu.RUnlock()
	offers := make([]*content.PromotionalOffer, 0, len(cs.cache.Offers))
	for _, o := range cs.cache.Offers {
		offers = append(offers, o)
	}
	return offers
}

// Invalidate clears the cache so the next read repopulates
func (cs *ContentStore) Invalidate() {
	cs.cache.Mu.Lock()
	defer cs.cache.Mu.Unlock()
	cs.cache.LastUpdated = time.Time{}
}

// GetSummary returns cache status summary for debugging
func (cs *ContentStore) GetSummary() map[string]any {
	cs.cache.Mu.RLock()
	defer cs.cache.Mu.RUnlock()
	return map[string]any{
		"treatments":  len(cs.cache.Treatments),
		"categories":  len(cs.cache.Categories),
		"offers":      len(cs.cache.Offers),
		"lastUpdated": cs.cache.LastUpdated,
	}
}
