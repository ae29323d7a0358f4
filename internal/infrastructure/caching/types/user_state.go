// Package types defines user state and session data structures.
package types

import (
	"sync"
	"time"
)

// SessionState holds all per-session tracking state. One session maps to
// one browser tab lifetime; sessions expire after the configured TTL.
//
// The store hands out the shared pointer, so concurrent requests carrying
// the same session id mutate the same state. All reads and writes of the
// mutable fields go through Lock/Unlock.
type SessionState struct {
	mu sync.Mutex

	SessionID string `json:"sessionId"`
	VisitorID string `json:"visitorId"`

	// ConsentGranted mirrors the consent cookie at last contact. Only the
	// exact cookie value "true" sets it.
	ConsentGranted bool `json:"consentGranted"`

	// ScrollPath is the pathname the fired thresholds belong to. A new
	// pathname resets FiredThresholds.
	ScrollPath      string       `json:"scrollPath"`
	FiredThresholds map[int]bool `json:"firedThresholds"`

	// StartedForms records form instances that already fired their start
	// event this session.
	StartedForms map[string]bool `json:"startedForms"`

	// LastViewedTreatment arms the view_item dedup. Only a different
	// treatment id re-arms it.
	LastViewedTreatment string `json:"lastViewedTreatment"`

	// TrackedBookings dedups purchase events by serialized confirmation
	// param set.
	TrackedBookings map[string]bool `json:"trackedBookings"`

	// PromoStates holds the dialog state per offer id: "shown",
	// "dismissed", or "converted".
	PromoStates map[string]string `json:"promoStates"`

	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Promo dialog states stored in SessionState.PromoStates.
const (
	PromoShown     = "shown"
	PromoDismissed = "dismissed"
	PromoConverted = "converted"
)

// Lock serializes access to the session's mutable tracking state.
func (s *SessionState) Lock() {
	s.mu.Lock()
}

// Unlock releases the session lock.
func (s *SessionState) Unlock() {
	s.mu.Unlock()
}

// Visitor returns the visitor id under the session lock.
func (s *SessionState) Visitor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.VisitorID
}

// IsExpired reports whether the session has passed its expiry.
func (s *SessionState) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().UTC().After(s.ExpiresAt)
}

// Touch extends the session's lifetime by the given TTL.
func (s *SessionState) Touch(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = time.Now().UTC()
	s.ExpiresAt = s.LastActivity.Add(ttl)
}

// UserStateCache is the mutex-guarded container for all session state.
type UserStateCache struct {
	SessionStates map[string]*SessionState // sessionId -> state
	// VisitorToSessions is an inverted index from visitor id to session ids.
	VisitorToSessions map[string][]string

	// Cache metadata
	LastLoaded time.Time
	Mu         sync.RWMutex // Exported for access
}
