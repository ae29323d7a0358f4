package services

import (
	"strings"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/entities/content"
	"github.com/havenwellness/haven-go/internal/domain/events"
	"github.com/havenwellness/haven-go/internal/domain/user"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/types"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
)

// PromoService drives the promotional dialog lifecycle:
// Pending -> Shown -> Dismissed or ConvertedViaCTA. Dismissals and CTA
// conversions both suppress the dialog for the offer's dismissal window.
type PromoService struct {
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
	content       *ContentService
	dismissalRepo user.DismissalRepository
	tracker       *EventTrackingService
}

// NewPromoService creates a new promo service
func NewPromoService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, contentService *ContentService, dismissalRepo user.DismissalRepository, tracker *EventTrackingService) *PromoService {
	return &PromoService{
		logger:        logger,
		perfTracker:   perfTracker,
		content:       contentService,
		dismissalRepo: dismissalRepo,
		tracker:       tracker,
	}
}

// PromoDecision tells the page whether and how to show the dialog.
type PromoDecision struct {
	Show                bool                      `json:"show"`
	Offer               *content.PromotionalOffer `json:"offer,omitempty"`
	DisplayDelaySeconds int                       `json:"displayDelaySeconds,omitempty"`
	CTAExternal         bool                      `json:"ctaExternal,omitempty"`
	Suppressed          bool                      `json:"suppressed,omitempty"`
}

// Decide picks the active offer and checks the visitor's dismissal record.
// The CTA link is sanitized before the offer leaves the server.
func (s *PromoService) Decide(visitorID string) (*PromoDecision, error) {
	marker := s.perfTracker.StartOperation("promo:decide")
	defer marker.Complete()

	offer := s.content.GetActiveOffer()
	if offer == nil {
		marker.SetSuccess(true)
		return &PromoDecision{Show: false}, nil
	}

	suppressed, err := s.isSuppressed(visitorID, offer)
	if err != nil {
		// A failed lookup counts as no record; storage trouble must not
		// hide the dialog from everyone.
		s.logger.Content().Error("Dismissal lookup failed", "error", err.Error(), "offerId", offer.ID)
		suppressed = false
	}
	if suppressed {
		marker.SetSuccess(true)
		return &PromoDecision{Show: false, Suppressed: true}, nil
	}

	sanitized := *offer
	sanitized.CTALink = SanitizeCTALink(offer.CTALink)

	marker.SetSuccess(true)
	return &PromoDecision{
		Show:                true,
		Offer:               &sanitized,
		DisplayDelaySeconds: offer.DisplayDelaySeconds,
		CTAExternal:         IsExternalLink(sanitized.CTALink),
	}, nil
}

// isSuppressed reports whether an unexpired dismissal exists. The window
// is dismissDurationDays counted in wall-clock days from the dismissal.
func (s *PromoService) isSuppressed(visitorID string, offer *content.PromotionalOffer) (bool, error) {
	if visitorID == "" {
		return false, nil
	}

	dismissal, err := s.dismissalRepo.Find(visitorID, offer.ID)
	if err != nil {
		return false, err
	}
	if dismissal == nil {
		return false, nil
	}

	window := time.Duration(offer.DismissDurationDays) * 24 * time.Hour
	return time.Since(dismissal.DismissedAt) < window, nil
}

// MarkShown records the Pending -> Shown transition and fires the view event.
func (s *PromoService) MarkShown(sess *types.SessionState, offerID, pagePath, variant string) {
	if sess == nil {
		return
	}
	sess.Lock()
	if sess.PromoStates[offerID] == types.PromoShown {
		sess.Unlock()
		return
	}
	sess.PromoStates[offerID] = types.PromoShown
	sess.Unlock()

	s.tracker.Track(sess, events.PromoDialogView, pagePath, variant, s.offerParams(offerID))
}

// Dismiss records a dismissal: writes the suppression record and fires
// the dismiss event.
func (s *PromoService) Dismiss(sess *types.SessionState, visitorID, offerID, pagePath, variant string) {
	if sess != nil {
		sess.Lock()
		if state := sess.PromoStates[offerID]; state == types.PromoDismissed || state == types.PromoConverted {
			sess.Unlock()
			return
		}
		sess.PromoStates[offerID] = types.PromoDismissed
		sess.Unlock()
	}

	s.writeDismissal(visitorID, offerID)
	s.tracker.Track(sess, events.PromoDialogDismiss, pagePath, variant, s.offerParams(offerID))
}

// ConvertCTA records a CTA conversion: the suppression record is written
// exactly as for a dismissal, but only the CTA event fires, never the
// dismiss event.
func (s *PromoService) ConvertCTA(sess *types.SessionState, visitorID, offerID, pagePath, variant string) {
	if sess != nil {
		sess.Lock()
		if sess.PromoStates[offerID] == types.PromoConverted {
			sess.Unlock()
			return
		}
		sess.PromoStates[offerID] = types.PromoConverted
		sess.Unlock()
	}

	params := map[string]any{
		"offer_id": offerID,
	}
	if offer := s.content.GetOffer(offerID); offer != nil {
		params["offer_title"] = offer.Title
		params["cta_text"] = offer.CTAText
		params["cta_link"] = SanitizeCTALink(offer.CTALink)
	}

	s.writeDismissal(visitorID, offerID)
	s.tracker.Track(sess, events.PromoDialogCTAClick, pagePath, variant, params)
}

// offerParams carries the offer identity every dialog event reports.
func (s *PromoService) offerParams(offerID string) map[string]any {
	params := map[string]any{
		"offer_id": offerID,
	}
	if offer := s.content.GetOffer(offerID); offer != nil {
		params["offer_title"] = offer.Title
	}
	return params
}

func (s *PromoService) writeDismissal(visitorID, offerID string) {
	if visitorID == "" {
		return
	}
	dismissal := &user.Dismissal{
		VisitorID:   visitorID,
		OfferID:     offerID,
		DismissedAt: time.Now().UTC(),
	}
	if err := s.dismissalRepo.Upsert(dismissal); err != nil {
		s.logger.Content().Error("Dismissal write failed", "error", err.Error(), "offerId", offerID)
	}
}

// SanitizeCTALink neutralizes script-scheme links. The check is
// case-insensitive on the trimmed value; anything dangerous becomes "#".
func SanitizeCTALink(link string) string {
	trimmed := strings.TrimSpace(link)
	lowered := strings.ToLower(trimmed)
	for _, scheme := range []string{"javascript:", "data:", "vbscript:"} {
		if strings.HasPrefix(lowered, scheme) {
			return "#"
		}
	}
	if trimmed == "" {
		return "#"
	}
	return trimmed
}

// IsExternalLink reports whether a CTA link leaves the site, which the
// page renders with target=_blank and rel=noopener noreferrer.
func IsExternalLink(link string) bool {
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}
