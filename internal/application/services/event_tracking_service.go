package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/havenwellness/haven-go/internal/domain/analytics"
	"github.com/havenwellness/haven-go/internal/domain/events"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/types"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/internal/infrastructure/security"
	"github.com/havenwellness/haven-go/internal/infrastructure/sink"
	"github.com/havenwellness/haven-go/pkg/config"
)

// EventTrackingService is the single gate every analytics event passes
// through. It validates the event name, applies the consent gate, persists
// the event, and forwards it to the sink. Sink failures never propagate.
type EventTrackingService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	sink        sink.Sink
	eventRepo   analytics.EventRepository
}

// NewEventTrackingService creates a new event tracking service
func NewEventTrackingService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, eventSink sink.Sink, eventRepo analytics.EventRepository) *EventTrackingService {
	return &EventTrackingService{
		logger:      logger,
		perfTracker: perfTracker,
		sink:        eventSink,
		eventRepo:   eventRepo,
	}
}

// Track records one event. A nil session or missing consent silently drops
// it; callers never need to re-check consent themselves. Params with nil
// values are stripped so optional fields stay absent rather than null.
func (s *EventTrackingService) Track(sess *types.SessionState, name events.Name, pagePath, variant string, params map[string]any) {
	if sess == nil {
		return
	}
	if !name.Valid() {
		s.logger.Analytics().Warn("Rejected unknown event name", "name", string(name))
		return
	}

	sess.Lock()
	consented := sess.ConsentGranted
	visitorID := sess.VisitorID
	sessionID := sess.SessionID
	sess.Unlock()

	if !consented {
		s.logger.Analytics().Debug("Event dropped, no consent", "name", string(name))
		return
	}

	cleaned := make(map[string]any, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		cleaned[k] = v
	}

	event := &events.Tracked{
		ID:        security.GenerateULID(),
		VisitorID: visitorID,
		SessionID: sessionID,
		Name:      name,
		PagePath:  pagePath,
		Variant:   variant,
		Params:    cleaned,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.eventRepo.Store(event); err != nil {
		s.logger.Analytics().Error("Event persistence failed", "name", string(name), "error", err.Error())
	}

	s.forward(event)
}

// forward delivers the event to the sink, swallowing errors and panics.
// Tracking must never break the request that triggered it.
func (s *EventTrackingService) forward(event *events.Tracked) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Analytics().Error("Sink panicked", "name", string(event.Name), "panic", fmt.Sprintf("%v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), config.SinkTimeout)
	defer cancel()

	params := make(map[string]any, len(event.Params)+2)
	for k, v := range event.Params {
		params[k] = v
	}
	if event.PagePath != "" {
		params["page_path"] = event.PagePath
	}
	if event.Variant != "" {
		params["variant"] = event.Variant
	}

	if err := s.sink.Send(ctx, string(event.Name), event.VisitorID, params); err != nil {
		s.logger.Analytics().Error("Sink delivery failed", "name", string(event.Name), "error", err.Error())
	}
}

// TrackViewItem records a treatment detail view.
func (s *EventTrackingService) TrackViewItem(sess *types.SessionState, pagePath, variant, itemID, itemName, category string, price *float64) {
	params := map[string]any{
		"item_id":   itemID,
		"item_name": itemName,
	}
	if category != "" {
		params["item_category"] = category
	}
	if price != nil {
		params["price"] = *price
		params["currency"] = "GBP"
	}
	s.Track(sess, events.ViewItem, pagePath, variant, params)
}

// TrackBeginCheckout records the start of a booking flow.
func (s *EventTrackingService) TrackBeginCheckout(sess *types.SessionState, pagePath, variant, itemID, itemName, category string, price *float64) {
	params := map[string]any{
		"item_id":   itemID,
		"item_name": itemName,
	}
	if category != "" {
		params["item_category"] = category
	}
	if price != nil {
		params["value"] = *price
		params["currency"] = "GBP"
	}
	s.Track(sess, events.BeginCheckout, pagePath, variant, params)
}

// TrackPurchase records a completed booking.
func (s *EventTrackingService) TrackPurchase(sess *types.SessionState, pagePath, variant, transactionID, itemID, itemName, category, source string, value float64) {
	params := map[string]any{
		"transaction_id": transactionID,
		"value":          value,
		"currency":       "GBP",
		"item_name":      itemName,
		"booking_source": source,
	}
	if itemID != "" {
		params["item_id"] = itemID
	}
	if category != "" {
		params["item_category"] = category
	}
	s.Track(sess, events.Purchase, pagePath, variant, params)
}

// TrackScrollDepth records a scroll threshold crossing.
func (s *EventTrackingService) TrackScrollDepth(sess *types.SessionState, pagePath, pageTitle, variant string, percent int) {
	params := map[string]any{
		"percent_scrolled": percent,
	}
	if pageTitle != "" {
		params["page_title"] = pageTitle
	}
	s.Track(sess, events.ScrollDepth, pagePath, variant, params)
}

// TrackOutboundClick records a click to an external site. Link text is
// truncated here; upstream callers pass it through untouched.
func (s *EventTrackingService) TrackOutboundClick(sess *types.SessionState, pagePath, variant, linkURL, linkText, linkDomain string) {
	s.Track(sess, events.OutboundClick, pagePath, variant, map[string]any{
		"link_url":    linkURL,
		"link_text":   truncate(linkText, config.LinkTextMaxLength),
		"link_domain": linkDomain,
		"outbound":    true,
	})
}

// TrackFormInteraction records a form lifecycle event. The error message
// key is always present for error actions, even when empty; the field name
// only when known.
func (s *EventTrackingService) TrackFormInteraction(sess *types.SessionState, pagePath, variant, action, formName, fieldName string, hasValue *bool, errorMessage *string) {
	params := map[string]any{
		"interaction_type": action,
		"form_name":        formName,
	}
	if fieldName != "" {
		params["field_name"] = fieldName
	}
	if hasValue != nil {
		params["has_value"] = *hasValue
	}
	if errorMessage != nil {
		params["error_message"] = *errorMessage
	}
	s.Track(sess, events.FormInteraction, pagePath, variant, params)
}

var priceRe = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)

// ParsePrice extracts a numeric price from display text like "£65",
// "£1,200", or "from £40". Returns false when no number is present.
func ParsePrice(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(text, ",", "")
	match := priceRe.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// GenerateTransactionID mints a unique booking transaction id. Falls back
// to a timestamp-and-random form if UUID generation fails.
func GenerateTransactionID() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return "booking_" + id.String()
	}

	buf := make([]byte, 6)
	if _, randErr := rand.Read(buf); randErr != nil {
		return fmt.Sprintf("booking_%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("booking_%d_%s", time.Now().Unix(), hex.EncodeToString(buf))
}

func truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
