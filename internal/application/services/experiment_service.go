// Package services provides application-level orchestration services
package services

import (
	"github.com/havenwellness/haven-go/internal/domain/experiment"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/pkg/config"
	"github.com/zeebo/xxh3"
)

// ExperimentService owns variant assignment for the booking experiment.
type ExperimentService struct {
	logger *logging.ChanneledLogger
}

// NewExperimentService creates a new experiment service
func NewExperimentService(logger *logging.ChanneledLogger) *ExperimentService {
	return &ExperimentService{logger: logger}
}

// Enabled reports whether the booking experiment is running.
func (s *ExperimentService) Enabled() bool {
	return config.ABBookingExperiment
}

// Assign deterministically maps a visitor identity to a variant. The same
// identity always yields the same variant, across requests and restarts.
// A disabled experiment or an empty identity yields the control variant.
func (s *ExperimentService) Assign(visitorID string) experiment.Variant {
	if !s.Enabled() || visitorID == "" {
		return experiment.VariantBookingForm
	}

	if xxh3.HashString(visitorID)%2 == 0 {
		return experiment.VariantBookingForm
	}
	return experiment.VariantExternalBooking
}

// Assignment builds the full assignment record for a visitor.
func (s *ExperimentService) Assignment(visitorID string, first bool) experiment.Assignment {
	variant := s.Assign(visitorID)
	return experiment.Assignment{
		VisitorID:       visitorID,
		Variant:         variant,
		Cohort:          variant.Cohort(),
		FirstAssignment: first,
	}
}
