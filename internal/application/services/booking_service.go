package services

import (
	"net/url"
	"sort"
	"strings"

	"github.com/havenwellness/haven-go/internal/domain/entities/content"
	"github.com/havenwellness/haven-go/internal/domain/events"
	"github.com/havenwellness/haven-go/internal/domain/experiment"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/types"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/pkg/config"
)

// BookingService resolves booking destinations per variant and tracks the
// booking funnel, including confirmation dedup.
type BookingService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	content     *ContentService
	tracker     *EventTrackingService
}

// NewBookingService creates a new booking service
func NewBookingService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, contentService *ContentService, tracker *EventTrackingService) *BookingService {
	return &BookingService{
		logger:      logger,
		perfTracker: perfTracker,
		content:     contentService,
		tracker:     tracker,
	}
}

// ResolveBookingURL decides where a booking control points. Test-variant
// visitors go to the treatment's external booking page when it has one,
// falling back to the site-wide external URL; everyone else gets the
// contact form, carrying the treatment slug when known. The result is
// never empty.
func ResolveBookingURL(bctx experiment.BookingContext, variant experiment.Variant, treatment *content.Treatment) string {
	if variant == experiment.VariantExternalBooking {
		if treatment != nil && treatment.ExternalBookingURL != nil && *treatment.ExternalBookingURL != "" {
			return *treatment.ExternalBookingURL
		}
		if config.ExternalBookingURL != "" {
			return config.ExternalBookingURL
		}
	}

	if bctx.TreatmentSlug != "" {
		return config.ContactFormPath + "?treatment=" + url.QueryEscape(bctx.TreatmentSlug)
	}
	return config.ContactFormPath
}

// BookingResolution is the resolved destination returned to the page.
type BookingResolution struct {
	URL         string `json:"url"`
	Destination string `json:"destination"` // "external" or "form"
	External    bool   `json:"external"`
}

// ResolveAndTrack resolves the booking URL for a click and emits the
// booking funnel events.
func (s *BookingService) ResolveAndTrack(sess *types.SessionState, bctx experiment.BookingContext, variant experiment.Variant) BookingResolution {
	marker := s.perfTracker.StartOperation("booking:resolve")
	defer marker.Complete()

	var treatment *content.Treatment
	if bctx.TreatmentSlug != "" {
		treatment = s.content.GetTreatmentBySlug(bctx.TreatmentSlug)
	}

	resolved := ResolveBookingURL(bctx, variant, treatment)
	external := strings.HasPrefix(resolved, "http://") || strings.HasPrefix(resolved, "https://")
	destination := "form"
	if external {
		destination = "external"
	}

	clickParams := map[string]any{
		"placement": string(bctx.Placement),
	}
	if bctx.TreatmentSlug != "" {
		clickParams["treatment"] = bctx.TreatmentSlug
	}
	s.tracker.Track(sess, events.BookingButtonClicked, bctx.PagePath, string(variant), clickParams)

	if treatment != nil {
		var price *float64
		if parsed, ok := ParsePrice(treatment.Price); ok {
			price = &parsed
		}
		category := ""
		if treatment.CategorySlug != nil {
			category = *treatment.CategorySlug
		}
		s.tracker.TrackBeginCheckout(sess, bctx.PagePath, string(variant),
			treatment.ID, treatment.Title, category, price)
	}

	s.tracker.Track(sess, events.BookingRedirect, bctx.PagePath, string(variant), map[string]any{
		"destination": destination,
		"url":         resolved,
	})

	marker.SetSuccess(true)
	return BookingResolution{URL: resolved, Destination: destination, External: external}
}

// ConfirmationParams are the booking confirmation query params reported by
// the thank-you page.
type ConfirmationParams struct {
	TreatmentName string `json:"treatmentName"`
	TreatmentID   string `json:"treatmentId"`
	Price         string `json:"price"`
	Category      string `json:"category"`
	Source        string `json:"source"`
	PagePath      string `json:"pagePath"`
}

// TrackConfirmation emits exactly one purchase event per unique param set
// per session. A repeat of the same params (reload, back navigation) is
// ignored; different params track separately.
func (s *BookingService) TrackConfirmation(sess *types.SessionState, variant experiment.Variant, params ConfirmationParams) bool {
	if sess == nil {
		return false
	}

	marker := s.perfTracker.StartOperation("booking:confirmation")
	defer marker.Complete()

	// The guard lives on the session, so it expires with it. Check-and-set
	// happens under the session lock so racing duplicates collapse to one.
	key := serializeConfirmation(params)
	sess.Lock()
	already := sess.TrackedBookings[key]
	sess.TrackedBookings[key] = true
	sess.Unlock()

	if already {
		s.logger.Analytics().Debug("Duplicate booking confirmation ignored", "sessionId", logging.SanitizeSessionID(sess.SessionID))
		marker.SetSuccess(true)
		return false
	}

	value := 0.0
	if parsed, ok := ParsePrice(params.Price); ok {
		value = parsed
	}

	source := params.Source
	if source == "" {
		source = "website"
	}

	s.tracker.TrackPurchase(sess, params.PagePath, string(variant),
		GenerateTransactionID(), params.TreatmentID, params.TreatmentName,
		params.Category, source, value)

	marker.SetSuccess(true)
	return true
}

// serializeConfirmation builds a stable key from the param set. Key order
// is fixed so equal param sets always collide.
func serializeConfirmation(params ConfirmationParams) string {
	parts := []string{
		"category=" + params.Category,
		"id=" + params.TreatmentID,
		"name=" + params.TreatmentName,
		"price=" + params.Price,
		"source=" + params.Source,
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}
