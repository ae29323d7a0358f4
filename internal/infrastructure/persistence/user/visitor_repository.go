// Package user provides the concrete SQL-based implementations of
// the user domain repositories (Visitor, Lead, Dismissal).
package user

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/user"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/persistence/database"
	"github.com/havenwellness/haven-go/pkg/config"
)

// SQLVisitorRepository is the SQL-based implementation of the VisitorRepository.
type SQLVisitorRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLVisitorRepository creates a new instance of the repository.
func NewSQLVisitorRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLVisitorRepository {
	return &SQLVisitorRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID retrieves a Visitor by its unique identifier.
func (r *SQLVisitorRepository) FindByID(id string) (*user.Visitor, error) {
	const query = `
		SELECT id, variant_event_sent, created_at
		FROM visitors
		WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading visitor by ID", "id", id)

	var visitor user.Visitor
	err := r.db.QueryRow(query, id).Scan(&visitor.ID, &visitor.VariantEventSent, &visitor.CreatedAt)
	if err == sql.ErrNoRows {
		r.logger.Database().Debug("Visitor not found by ID", "id", id)
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load visitor by ID", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to load visitor: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return &visitor, nil
}

// Create persists a new Visitor row.
func (r *SQLVisitorRepository) Create(visitor *user.Visitor) error {
	const query = `
		INSERT INTO visitors (id, variant_event_sent, created_at)
		VALUES (?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing visitor insert", "id", visitor.ID)

	_, err := r.db.Exec(query, visitor.ID, visitor.VariantEventSent, visitor.CreatedAt.UTC())
	if err != nil {
		r.logger.Database().Error("Visitor insert failed", "error", err.Error(), "id", visitor.ID)
		return fmt.Errorf("failed to insert visitor: %w", err)
	}

	r.logger.Database().Info("Visitor insert completed", "id", visitor.ID, "duration", time.Since(start))
	return nil
}

// Exists reports whether a visitor row exists for the given id.
func (r *SQLVisitorRepository) Exists(id string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM visitors WHERE id = ?)`

	var exists bool
	if err := r.db.QueryRow(query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check visitor existence: %w", err)
	}
	return exists, nil
}

// MarkVariantEventSent flips the one-time assignment-event flag. Returns
// true only for the call that performed the flip, so concurrent requests
// cannot both emit the event.
func (r *SQLVisitorRepository) MarkVariantEventSent(id string) (bool, error) {
	const query = `
		UPDATE visitors
		SET variant_event_sent = 1
		WHERE id = ? AND variant_event_sent = 0`

	start := time.Now()
	result, err := r.db.Exec(query, id)
	if err != nil {
		r.logger.Database().Error("Variant event flag update failed", "error", err.Error(), "id", id)
		return false, fmt.Errorf("failed to mark variant event sent: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return affected > 0, nil
}
