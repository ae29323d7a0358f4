package performance

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers map[string]*Marker
	mu      sync.RWMutex
	started time.Time
	config  *TrackerConfig
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers            int           `json:"maxMarkers"`            // Maximum number of markers to retain
	SlowResponseThreshold time.Duration `json:"slowResponseThreshold"` // Duration above which operations are logged
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:            10000,
		SlowResponseThreshold: 500 * time.Millisecond,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}

	return &Tracker{
		markers: make(map[string]*Marker),
		started: time.Now(),
		config:  config,
	}
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation string) *Marker {
	marker := &Marker{
		Operation: operation,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
	}

	markerID := fmt.Sprintf("%s_%d", operation, time.Now().UnixNano())

	t.mu.Lock()
	if len(t.markers) >= t.config.MaxMarkers {
		t.evictOldestLocked()
	}
	t.markers[markerID] = marker
	t.mu.Unlock()

	return marker
}

// StartOperationWithContext creates a performance marker with context cancellation support
func (t *Tracker) StartOperationWithContext(ctx context.Context, operation string) *Marker {
	marker := t.StartOperation(operation)

	go func() {
		<-ctx.Done()
		if !marker.Completed {
			marker.SetError(ctx.Err())
			marker.Complete()
		}
	}()

	return marker
}

// evictOldestLocked removes the oldest marker. Caller must hold t.mu.
func (t *Tracker) evictOldestLocked() {
	var oldestID string
	var oldestStart time.Time
	for id, m := range t.markers {
		if oldestID == "" || m.StartTime.Before(oldestStart) {
			oldestID = id
			oldestStart = m.StartTime
		}
	}
	if oldestID != "" {
		delete(t.markers, oldestID)
	}
}

// Stats summarizes tracked operations since startup
type Stats struct {
	Uptime              time.Duration `json:"uptime"`
	ActiveOperations    int           `json:"activeOperations"`
	CompletedOperations int           `json:"completedOperations"`
	FailedOperations    int           `json:"failedOperations"`
	SlowOperations      int           `json:"slowOperations"`
}

// GetStats returns aggregate statistics across all retained markers
func (t *Tracker) GetStats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := Stats{Uptime: time.Since(t.started)}
	for _, m := range t.markers {
		if !m.Completed {
			stats.ActiveOperations++
			continue
		}
		stats.CompletedOperations++
		if !m.Success {
			stats.FailedOperations++
		}
		if m.Duration > t.config.SlowResponseThreshold {
			stats.SlowOperations++
		}
	}
	return stats
}

// GetRecentMarkers returns up to limit completed markers, most recent first
func (t *Tracker) GetRecentMarkers(limit int) []*Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	markers := make([]*Marker, 0, limit)
	for _, m := range t.markers {
		if !m.Completed {
			continue
		}
		markers = append(markers, m)
		if len(markers) >= limit {
			break
		}
	}
	return markers
}
