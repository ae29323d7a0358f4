// Package experiment defines the booking experiment's variants and
// assignment types.
package experiment

// Variant identifies which booking flow a visitor sees.
type Variant string

const (
	// VariantBookingForm routes booking clicks to the on-site contact form.
	VariantBookingForm Variant = "booking_form"
	// VariantExternalBooking routes booking clicks to the external booking platform.
	VariantExternalBooking Variant = "external_booking"
)

// Cohort labels a variant for analytics reporting.
type Cohort string

const (
	CohortControl Cohort = "control"
	CohortTest    Cohort = "test"
)

// Cohort returns the analytics cohort label for the variant.
func (v Variant) Cohort() Cohort {
	if v == VariantExternalBooking {
		return CohortTest
	}
	return CohortControl
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == VariantBookingForm || v == VariantExternalBooking
}

// Assignment is the result of assigning a visitor to a variant.
type Assignment struct {
	VisitorID string  `json:"visitorId"`
	Variant   Variant `json:"variant"`
	Cohort    Cohort  `json:"cohort"`
	// FirstAssignment is true the first time this visitor was assigned,
	// which is when the assignment event fires.
	FirstAssignment bool `json:"firstAssignment"`
}

// Placement identifies where on the site a booking control lives.
type Placement string

const (
	PlacementNavbar   Placement = "navbar"
	PlacementCard     Placement = "card"
	PlacementDetail   Placement = "detail"
	PlacementLocation Placement = "location"
)

// Valid reports whether p is a known placement.
func (p Placement) Valid() bool {
	switch p {
	case PlacementNavbar, PlacementCard, PlacementDetail, PlacementLocation:
		return true
	}
	return false
}

// BookingContext carries everything the booking URL resolver needs about
// the control being resolved.
type BookingContext struct {
	Placement     Placement `json:"placement"`
	TreatmentSlug string    `json:"treatmentSlug,omitempty"`
	PagePath      string    `json:"pagePath"`
}
