// Package manager provides centralized cache operations by delegating to
// specialized stores.
package manager

import (
	"time"

	"github.com/havenwellness/haven-go/internal/infrastructure/caching/stores"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/pkg/config"
)

// Manager provides centralized cache operations
type Manager struct {
	sessionsStore *stores.SessionsStore
	contentStore  *stores.ContentStore
	logger        *logging.ChanneledLogger
	stopCleanup   chan struct{}
}

func NewManager(logger *logging.ChanneledLogger) *Manager {
	if logger != nil {
		logger.Cache().Info("Initializing cache manager", "stores", []string{"sessions", "content"})
	}

	return &Manager{
		sessionsStore: stores.NewSessionsStore(config.SessionTTL, logger),
		contentStore:  stores.NewContentStore(config.ContentCacheTTL),
		logger:        logger,
		stopCleanup:   make(chan struct{}),
	}
}

// Sessions returns the session state store
func (m *Manager) Sessions() *stores.SessionsStore {
	return m.sessionsStore
}

// Content returns the content cache store
func (m *Manager) Content() *stores.ContentStore {
	return m.contentStore
}

// StartCleanupWorker launches the background sweep that evicts expired sessions
func (m *Manager) StartCleanupWorker(period time.Duration) {
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sessionsStore.CleanupExpired()
			case <-m.stopCleanup:
				return
			}
		}
	}()
}

// StopCleanupWorker stops the background sweep
func (m *Manager) StopCleanupWorker() {
	close(m.stopCleanup)
}

// GetSummary returns a combined cache summary for debugging
func (m *Manager) GetSummary() map[string]any {
	return map[string]any{
		"sessions": m.sessionsStore.GetSummary(),
		"content":  m.contentStore.GetSummary(),
	}
}
