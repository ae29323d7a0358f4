// Package services provides application-level services that orchestrate
// business logic and coordinate between repositories and domain entities.
package services

import (
	"fmt"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/analytics"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
)

// AnalyticsService builds the admin dashboard rollups from stored events.
type AnalyticsService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	eventRepo   analytics.EventRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, eventRepo analytics.EventRepository) *AnalyticsService {
	return &AnalyticsService{
		logger:      logger,
		perfTracker: perfTracker,
		eventRepo:   eventRepo,
	}
}

// Dashboard is the full rollup served to the admin UI.
type Dashboard struct {
	RangeStart      string                        `json:"rangeStart"`
	RangeEnd        string                        `json:"rangeEnd"`
	DailyCounts     []*analytics.DailyCount       `json:"dailyCounts"`
	VariantSplit    []*analytics.VariantSplit     `json:"variantSplit"`
	Conversions     []*analytics.CohortConversion `json:"conversions"`
	OutboundDomains []*analytics.OutboundDomain   `json:"outboundDomains"`
}

// ParseRange resolves a day-count query param into a UTC time range ending
// now. Out-of-range values clamp to the 1 to 90 day window.
func ParseRange(days int) (time.Time, time.Time) {
	if days < 1 {
		days = 1
	}
	if days > 90 {
		days = 90
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	return start, end
}

// GetDashboard assembles the rollup for a time range.
func (s *AnalyticsService) GetDashboard(start, end time.Time) (*Dashboard, error) {
	marker := s.perfTracker.StartOperation("analytics:dashboard")
	defer marker.Complete()

	daily, err := s.eventRepo.CountByNameAndDay(start, end)
	if err != nil {
		marker.SetSuccess(false)
		return nil, fmt.Errorf("failed to load daily counts: %w", err)
	}

	split, err := s.eventRepo.VariantSplit(start, end)
	if err != nil {
		marker.SetSuccess(false)
		return nil, fmt.Errorf("failed to load variant split: %w", err)
	}

	conversions, err := s.eventRepo.ConversionByCohort(start, end)
	if err != nil {
		marker.SetSuccess(false)
		return nil, fmt.Errorf("failed to load conversions: %w", err)
	}

	domains, err := s.eventRepo.TopOutboundDomains(start, end, 10)
	if err != nil {
		marker.SetSuccess(false)
		return nil, fmt.Errorf("failed to load outbound domains: %w", err)
	}

	marker.SetSuccess(true)
	return &Dashboard{
		RangeStart:      start.Format("2006-01-02"),
		RangeEnd:        end.Format("2006-01-02"),
		DailyCounts:     daily,
		VariantSplit:    split,
		Conversions:     conversions,
		OutboundDomains: domains,
	}, nil
}
