// Package events defines the analytics event taxonomy.
package events

import "time"

// Name identifies an analytics event. The set of names is closed; the
// tracking pipeline rejects anything outside it.
type Name string

const (
	// Experiment lifecycle
	ABVariantAssigned Name = "ab_variant_assigned"

	// Booking funnel
	BookingButtonClicked Name = "booking_button_clicked"
	BookingRedirect      Name = "booking_redirect"
	BookingFormSubmitted Name = "booking_form_submitted"

	// Ecommerce-style funnel
	ViewItem      Name = "view_item"
	BeginCheckout Name = "begin_checkout"
	Purchase      Name = "purchase"

	// Page interactions
	ScrollDepth     Name = "scroll_depth"
	OutboundClick   Name = "outbound_click"
	FormInteraction Name = "form_interaction"

	// Promotional dialogs
	PromoDialogView     Name = "promo_dialog_view"
	PromoDialogDismiss  Name = "promo_dialog_dismiss"
	PromoDialogCTAClick Name = "promo_dialog_cta_click"
)

var validNames = map[Name]bool{
	ABVariantAssigned:    true,
	BookingButtonClicked: true,
	BookingRedirect:      true,
	BookingFormSubmitted: true,
	ViewItem:             true,
	BeginCheckout:        true,
	Purchase:             true,
	ScrollDepth:          true,
	OutboundClick:        true,
	FormInteraction:      true,
	PromoDialogView:      true,
	PromoDialogDismiss:   true,
	PromoDialogCTAClick:  true,
}

// Valid reports whether the name belongs to the event taxonomy.
func (n Name) Valid() bool {
	return validNames[n]
}

// Tracked is an event accepted by the tracking pipeline, ready for the
// sink and the events table.
type Tracked struct {
	ID        string         `json:"id"`
	VisitorID string         `json:"visitorId"`
	SessionID string         `json:"sessionId"`
	Name      Name           `json:"name"`
	PagePath  string         `json:"pagePath"`
	Variant   string         `json:"variant"`
	Params    map[string]any `json:"params,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
