// Package content defines the application's core content-related domain entities.
package content

import "time"

// Treatment represents a bookable spa treatment.
type Treatment struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Slug               string     `json:"slug"`
	CategorySlug       *string    `json:"categorySlug,omitempty"`
	Description        string     `json:"description"`
	Price              string     `json:"price"` // Display text, e.g. "£65" or "from £40"
	DurationMinutes    *int       `json:"durationMinutes,omitempty"`
	ImagePath          *string    `json:"imagePath,omitempty"`
	ExternalBookingURL *string    `json:"externalBookingUrl,omitempty"`
	Featured           bool       `json:"featured"`
	Created            time.Time  `json:"created"`
	Changed            *time.Time `json:"changed,omitempty"`
}

// Category groups treatments on the site.
type Category struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
}

// PromotionalOffer is a time-limited promotion shown in a dialog.
type PromotionalOffer struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	ImagePath            *string    `json:"imagePath,omitempty"`
	ImageAlt             *string    `json:"imageAlt,omitempty"`
	CTAText              string     `json:"ctaText"`
	CTALink              string     `json:"ctaLink"`
	DismissDurationDays  int        `json:"dismissDurationDays"`
	DisplayDelaySeconds  int        `json:"displayDelaySeconds"`
	Active               bool       `json:"active"`
	StartsAt             *time.Time `json:"startsAt,omitempty"`
	EndsAt               *time.Time `json:"endsAt,omitempty"`
	Created              time.Time  `json:"created"`
}

// ActiveWithin reports whether the offer is live at the given instant:
// the active flag is set and now falls inside the optional start/end window.
func (o *PromotionalOffer) ActiveWithin(now time.Time) bool {
	if !o.Active {
		return false
	}
	if o.StartsAt != nil && now.Before(*o.StartsAt) {
		return false
	}
	if o.EndsAt != nil && now.After(*o.EndsAt) {
		return false
	}
	return true
}
