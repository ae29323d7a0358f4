// Package analytics defines the interfaces for accessing analytics data.
package analytics

import (
	"time"

	"github.com/havenwellness/haven-go/internal/domain/events"
)

// DailyCount is an event count bucketed by name and day.
type DailyCount struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// VariantSplit reports how many distinct visitors landed in each variant.
type VariantSplit struct {
	Variant  string `json:"variant"`
	Visitors int    `json:"visitors"`
}

// CohortConversion pairs a variant with its booking conversion numbers.
type CohortConversion struct {
	Variant     string  `json:"variant"`
	Visitors    int     `json:"visitors"`
	Conversions int     `json:"conversions"`
	Rate        float64 `json:"rate"`
}

// OutboundDomain is a click count for a single external hostname.
type OutboundDomain struct {
	Hostname string `json:"hostname"`
	Clicks   int    `json:"clicks"`
}

// EventRepository defines the contract for storing and retrieving analytics events.
type EventRepository interface {
	// Store saves a tracked event to the persistence layer.
	Store(event *events.Tracked) error

	// CountByNameAndDay aggregates event counts per name per day in a range.
	CountByNameAndDay(start, end time.Time) ([]*DailyCount, error)

	// VariantSplit counts distinct visitors per assigned variant.
	VariantSplit(start, end time.Time) ([]*VariantSplit, error)

	// ConversionByCohort computes booking conversion per variant.
	ConversionByCohort(start, end time.Time) ([]*CohortConversion, error)

	// TopOutboundDomains ranks external hostnames by click count.
	TopOutboundDomains(start, end time.Time, limit int) ([]*OutboundDomain, error)
}
