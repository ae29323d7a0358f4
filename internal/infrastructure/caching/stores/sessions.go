// Package stores provides concrete cache store implementations
package stores

import (
	"time"

	"github.com/havenwellness/haven-go/internal/infrastructure/caching/types"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
)

// SessionsStore implements session state caching operations
type SessionsStore struct {
	cache      *types.UserStateCache
	sessionTTL time.Duration
	logger     *logging.ChanneledLogger
}

// NewSessionsStore creates a new sessions cache store
func NewSessionsStore(sessionTTL time.Duration, logger *logging.ChanneledLogger) *SessionsStore {
	if logger != nil {
		logger.Cache().Info("Initializing sessions cache store", "sessionTTL", sessionTTL)
	}
	return &SessionsStore{
		cache: &types.UserStateCache{
			SessionStates:     make(map[string]*types.SessionState),
			VisitorToSessions: make(map[string][]string),
			LastLoaded:        time.Now().UTC(),
		},
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// NewSessionState builds a fresh session state with all dedup guards empty
func (ss *SessionsStore) NewSessionState(sessionID, visitorID string) *types.SessionState {
	now := time.Now().UTC()
	return &types.SessionState{
		SessionID:       sessionID,
		VisitorID:       visitorID,
		FiredThresholds: make(map[int]bool),
		StartedForms:    make(map[string]bool),
		TrackedBookings: make(map[string]bool),
		PromoStates:     make(map[string]string),
		CreatedAt:       now,
		LastActivity:    now,
		ExpiresAt:       now.Add(ss.sessionTTL),
	}
}

// GetSession retrieves session state by session ID. Expired sessions are
// reported as misses.
func (ss *SessionsStore) GetSession(sessionID string) (*types.SessionState, bool) {
	start := time.Now()

	ss.cache.Mu.RLock()
	session, found := ss.cache.SessionStates[sessionID]
	ss.cache.Mu.RUnlock()

	if found && session.IsExpired() {
		ss.RemoveSession(sessionID)
		found = false
		session = nil
	}

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "get", "type", "session", "sessionId", logging.SanitizeSessionID(sessionID), "hit", found, "duration", time.Since(start))
	}
	return session, found
}

// SetSession stores session state and maintains the inverted index
func (ss *SessionsStore) SetSession(session *types.SessionState) {
	start := time.Now()

	ss.cache.Mu.Lock()
	defer ss.cache.Mu.Unlock()

	if existing, exists := ss.cache.SessionStates[session.SessionID]; exists {
		if existing.VisitorID != session.VisitorID {
			ss.removeSessionFromVisitorIndex(existing.VisitorID, session.SessionID)
		}
	}

	session.Touch(ss.sessionTTL)
	ss.cache.SessionStates[session.SessionID] = session
	ss.addSessionToVisitorIndex(session.VisitorID, session.SessionID)
	ss.cache.LastLoaded = time.Now().UTC()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "set", "type", "session", "sessionId", logging.SanitizeSessionID(session.SessionID), "duration", time.Since(start))
	}
}

// RemoveSession removes a session and updates the inverted index
func (ss *SessionsStore) RemoveSession(sessionID string) {
	ss.cache.Mu.Lock()
	defer ss.cache.Mu.Unlock()

	if session, exists := ss.cache.SessionStates[sessionID]; exists {
		ss.removeSessionFromVisitorIndex(session.VisitorID, sessionID)
		delete(ss.cache.SessionStates, sessionID)
		ss.cache.LastLoaded = time.Now().UTC()
	}
}

// GetSessionsByVisitor returns all session IDs for a given visitor
func (ss *SessionsStore) GetSessionsByVisitor(visitorID string) []string {
	ss.cache.Mu.RLock()
	defer ss.cache.Mu.RUnlock()

	sessionIDs := ss.cache.VisitorToSessions[visitorID]
	result := make([]string, len(sessionIDs))
	copy(result, sessionIDs)
	return result
}

// CleanupExpired removes all expired sessions and returns the count removed
func (ss *SessionsStore) CleanupExpired() int {
	start := time.Now()

	ss.cache.Mu.Lock()
	defer ss.cache.Mu.Unlock()

	removed := 0
	for sessionID, session := range ss.cache.SessionStates {
		if session.IsExpired() {
			ss.removeSessionFromVisitorIndex(session.VisitorID, sessionID)
			delete(ss.cache.SessionStates, sessionID)
			removed++
		}
	}
	ss.cache.LastLoaded = time.Now().UTC()

	if ss.logger != nil && removed > 0 {
		ss.logger.Cache().Info("Expired sessions cleaned up", "removed", removed, "remaining", len(ss.cache.SessionStates), "duration", time.Since(start))
	}
	return removed
}

// Count returns the number of live sessions
func (ss *SessionsStore) Count() int {
	ss.cache.Mu.RLock()
	defer ss.cache.Mu.RUnlock()
	return len(ss.cache.SessionStates)
}

// GetSummary returns cache status summary for debugging
func (ss *SessionsStore) GetSummary() map[string]any {
	ss.cache.Mu.RLock()
	defer ss.cache.Mu.RUnlock()

	return map[string]any{
		"sessionStates":     len(ss.cache.SessionStates),
		"visitorToSessions": len(ss.cache.VisitorToSessions),
		"lastLoaded":        ss.cache.LastLoaded,
	}
}

// addSessionToVisitorIndex adds a session to the visitor's session list
// MUST be called with cache.Mu.Lock() held
func (ss *SessionsStore) addSessionToVisitorIndex(visitorID, sessionID string) {
	sessions := ss.cache.VisitorToSessions[visitorID]
	for _, existing := range sessions {
		if existing == sessionID {
			return
		}
	}
	ss.cache.VisitorToSessions[visitorID] = append(sessions, sessionID)
}

// removeSessionFromVisitorIndex removes a session from the visitor's session list
// MUST be called with cache.Mu.Lock() held
func (ss *SessionsStore) removeSessionFromVisitorIndex(visitorID, sessionID string) {
	sessions := ss.cache.VisitorToSessions[visitorID]
	for i, existing := range sessions {
		if existing == sessionID {
			sessions[i] = sessions[len(sessions)-1]
			ss.cache.VisitorToSessions[visitorID] = sessions[:len(sessions)-1]
			if len(ss.cache.VisitorToSessions[visitorID]) == 0 {
				delete(ss.cache.VisitorToSessions, visitorID)
			}
			break
		}
	}
}
