package types

import (
	"sync"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/entities/content"
)

// ContentCache holds the in-memory view of all site content. Reads are
// cache-first; repositories repopulate it on miss or expiry.
type ContentCache struct {
	Treatments map[string]*content.Treatment       // id -> treatment
	Categories map[string]*content.Category        // slug -> category
	Offers     map[string]*content.PromotionalOffer // id -> offer

	// TreatmentSlugToID resolves slugs without scanning.
	TreatmentSlugToID map[string]string
	// CategoryToTreatmentIDs groups treatment ids by category slug.
	CategoryToTreatmentIDs map[string][]string

	LastUpdated time.Time
	Mu          sync.RWMutex // Exported for access
}
