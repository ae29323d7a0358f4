// Package user defines the interfaces for accessing visitor, lead, and
// dismissal entities. These repositories abstract the data persistence
// details, ensuring the core application is clean and decoupled from the
// database.
// Note: Sessions are handled by the cache layer, not persistence.
package user

import "time"

// Visitor represents a unique visitor tracking identifier backed by the
// identity cookie.
type Visitor struct {
	ID string `json:"id"`
	// VariantEventSent is set once the one-time assignment event has been
	// emitted for this visitor, so it never repeats.
	VariantEventSent bool      `json:"variantEventSent"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Lead represents a contact-form submission.
type Lead struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         *string   `json:"phone,omitempty"`
	Message       string    `json:"message"`
	TreatmentSlug *string   `json:"treatmentSlug,omitempty"`
	VisitorID     *string   `json:"visitorId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Dismissal records that a visitor dismissed (or converted on) a
// promotional offer, suppressing it for the offer's dismissal window.
type Dismissal struct {
	VisitorID   string    `json:"visitorId"`
	OfferID     string    `json:"offerId"`
	DismissedAt time.Time `json:"dismissedAt"`
}

// VisitorRepository defines the operations for persisting Visitor entities.
type VisitorRepository interface {
	FindByID(id string) (*Visitor, error)
	Create(visitor *Visitor) error
	Exists(id string) (bool, error)
	// MarkVariantEventSent flips the one-time flag; returns true if this
	// call performed the flip, false if the flag was already set.
	MarkVariantEventSent(id string) (bool, error)
}

// LeadRepository defines the operations for persisting Lead entities.
type LeadRepository interface {
	FindByID(id string) (*Lead, error)
	Store(lead *Lead) error
}

// DismissalRepository defines the operations for persisting Dismissal records.
type DismissalRepository interface {
	// Find returns the dismissal for (visitor, offer), or (nil, nil) when
	// no usable record exists. Corrupt records are purged and reported absent.
	Find(visitorID, offerID string) (*Dismissal, error)
	Upsert(dismissal *Dismissal) error
	Delete(visitorID, offerID string) error
}
