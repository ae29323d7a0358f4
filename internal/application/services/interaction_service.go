package services

import (
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/havenwellness/haven-go/internal/infrastructure/caching/types"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/pkg/config"
)

// InteractionService applies per-class dedup policy to raw interaction
// reports before handing them to the event tracker.
type InteractionService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	tracker     *EventTrackingService
}

// NewInteractionService creates a new interaction service
func NewInteractionService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, tracker *EventTrackingService) *InteractionService {
	return &InteractionService{
		logger:      logger,
		perfTracker: perfTracker,
		tracker:     tracker,
	}
}

// ScrollReport is a raw scroll position report from the page.
type ScrollReport struct {
	PagePath       string  `json:"pagePath"`
	PageTitle      string  `json:"pageTitle"`
	ScrollY        float64 `json:"scrollY"`
	DocumentHeight float64 `json:"documentHeight"`
	ViewportHeight float64 `json:"viewportHeight"`
}

// ProcessScroll computes the scroll percentage and fires each configured
// threshold at most once per (session, pathname). Navigating to a new
// pathname resets the fired set. A document no taller than the viewport
// fires nothing. Thresholds compare with >= so a fast scroll that skips
// past one still fires it.
func (s *InteractionService) ProcessScroll(sess *types.SessionState, variant string, report ScrollReport) []int {
	if sess == nil {
		return nil
	}

	scrollable := report.DocumentHeight - report.ViewportHeight
	if scrollable <= 0 {
		return nil
	}

	percent := int(math.Round(report.ScrollY / scrollable * 100))

	// The dedup decision happens under the session lock; the lock is
	// released before tracking so the tracker can take it itself.
	sess.Lock()
	if sess.ScrollPath != report.PagePath {
		sess.ScrollPath = report.PagePath
		sess.FiredThresholds = make(map[int]bool)
	}

	var fired []int
	for _, threshold := range config.ScrollDepthThresholds {
		if percent >= threshold && !sess.FiredThresholds[threshold] {
			sess.FiredThresholds[threshold] = true
			fired = append(fired, threshold)
		}
	}
	sess.Unlock()
	sort.Ints(fired)

	for _, threshold := range fired {
		s.tracker.TrackScrollDepth(sess, report.PagePath, report.PageTitle, variant, threshold)
	}
	return fired
}

// FormReport is a raw form lifecycle report from the page.
type FormReport struct {
	PagePath     string  `json:"pagePath"`
	FormName     string  `json:"formName"`
	FormInstance string  `json:"formInstance"` // Unique per rendered form
	Action       string  `json:"action"`       // "focus", "blur", "error", "submit"
	FieldName    string  `json:"fieldName"`
	HasValue     *bool   `json:"hasValue,omitempty"`
	ErrorMessage *string `json:"errorMessage,omitempty"`
}

// ProcessForm applies the form tracking policy: a start event once per
// form instance on first focus, blur only when the field holds a value,
// errors always (empty message allowed), submit always with no field name.
func (s *InteractionService) ProcessForm(sess *types.SessionState, variant string, report FormReport) {
	if sess == nil {
		return
	}

	switch report.Action {
	case "focus":
		sess.Lock()
		firstFocus := !sess.StartedForms[report.FormInstance]
		sess.StartedForms[report.FormInstance] = true
		sess.Unlock()

		if firstFocus {
			s.tracker.TrackFormInteraction(sess, report.PagePath, variant, "start", report.FormName, "", nil, nil)
		}
		s.tracker.TrackFormInteraction(sess, report.PagePath, variant, "focus", report.FormName, report.FieldName, nil, nil)

	case "blur":
		if report.HasValue != nil && *report.HasValue {
			s.tracker.TrackFormInteraction(sess, report.PagePath, variant, "blur", report.FormName, report.FieldName, report.HasValue, nil)
		}

	case "error":
		message := ""
		if report.ErrorMessage != nil {
			message = *report.ErrorMessage
		}
		s.tracker.TrackFormInteraction(sess, report.PagePath, variant, "error", report.FormName, report.FieldName, nil, &message)

	case "submit":
		s.tracker.TrackFormInteraction(sess, report.PagePath, variant, "submit", report.FormName, "", nil, nil)

	default:
		s.logger.Analytics().Debug("Unknown form action ignored", "action", report.Action)
	}
}

// ClickReport is a raw link click report from the page.
type ClickReport struct {
	PagePath string `json:"pagePath"`
	PageHost string `json:"pageHost"`
	Href     string `json:"href"`
	LinkText string `json:"linkText"`
}

// ProcessOutboundClick fires outbound_click for links leaving the site.
// Unparseable hrefs (javascript:, malformed) and same-host links are
// silently ignored. Link text truncation is the tracker's job.
func (s *InteractionService) ProcessOutboundClick(sess *types.SessionState, variant string, report ClickReport) bool {
	if sess == nil {
		return false
	}

	parsed, err := url.Parse(report.Href)
	if err != nil {
		return false
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return false
	}
	if strings.EqualFold(hostname, report.PageHost) {
		return false
	}

	s.tracker.TrackOutboundClick(sess, report.PagePath, variant,
		report.Href, strings.TrimSpace(report.LinkText), hostname)
	return true
}

// ViewReport is a treatment detail view report.
type ViewReport struct {
	PagePath      string `json:"pagePath"`
	TreatmentID   string `json:"treatmentId"`
	TreatmentName string `json:"treatmentName"`
	Category      string `json:"category"`
	Price         string `json:"price"`
}

// ProcessTreatmentView fires view_item once per treatment id until a
// different id arrives, which re-arms the previous one.
func (s *InteractionService) ProcessTreatmentView(sess *types.SessionState, variant string, report ViewReport) bool {
	if sess == nil || report.TreatmentID == "" {
		return false
	}

	sess.Lock()
	repeated := sess.LastViewedTreatment == report.TreatmentID
	sess.LastViewedTreatment = report.TreatmentID
	sess.Unlock()
	if repeated {
		return false
	}

	var price *float64
	if parsed, ok := ParsePrice(report.Price); ok {
		price = &parsed
	}

	s.tracker.TrackViewItem(sess, report.PagePath, variant,
		report.TreatmentID, report.TreatmentName, report.Category, price)
	return true
}
