package events

import "testing"

func TestNameValid(t *testing.T) {
	known := []Name{
		ABVariantAssigned, BookingButtonClicked, BookingRedirect,
		BookingFormSubmitted, ViewItem, BeginCheckout, Purchase,
		ScrollDepth, OutboundClick, FormInteraction,
		PromoDialogView, PromoDialogDismiss, PromoDialogCTAClick,
	}
	for _, name := range known {
		if !name.Valid() {
			t.Errorf("%q should be a valid event name", name)
		}
	}

	for _, name := range []Name{"", "page_view", "Purchase", "scroll-depth"} {
		if name.Valid() {
			t.Errorf("%q should not be a valid event name", name)
		}
	}
}
