package user

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/user"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/persistence/database"
)

// SQLDismissalRepository is the SQL-based implementation of the DismissalRepository.
type SQLDismissalRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLDismissalRepository creates a new instance of the repository.
func NewSQLDismissalRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLDismissalRepository {
	return &SQLDismissalRepository{
		db:     db,
		logger: logger,
	}
}

// Find returns the dismissal for (visitor, offer), or (nil, nil) when no
// usable record exists. A row whose timestamp cannot be interpreted is
// purged and reported absent rather than breaking the dialog decision.
func (r *SQLDismissalRepository) Find(visitorID, offerID string) (*user.Dismissal, error) {
	const query = `
		SELECT dismissed_at_ms
		FROM promo_dismissals
		WHERE visitor_id = ? AND offer_id = ?`

	var dismissedAtMs int64
	err := r.db.QueryRow(query, visitorID, offerID).Scan(&dismissedAtMs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Warn("Corrupt dismissal record, purging", "visitorId", visitorID, "offerId", offerID, "error", err.Error())
		if delErr := r.Delete(visitorID, offerID); delErr != nil {
			return nil, fmt.Errorf("failed to purge corrupt dismissal: %w", delErr)
		}
		return nil, nil
	}

	if dismissedAtMs <= 0 {
		r.logger.Database().Warn("Corrupt dismissal timestamp, purging", "visitorId", visitorID, "offerId", offerID, "dismissedAtMs", dismissedAtMs)
		if delErr := r.Delete(visitorID, offerID); delErr != nil {
			return nil, fmt.Errorf("failed to purge corrupt dismissal: %w", delErr)
		}
		return nil, nil
	}

	return &user.Dismissal{
		VisitorID:   visitorID,
		OfferID:     offerID,
		DismissedAt: time.UnixMilli(dismissedAtMs).UTC(),
	}, nil
}

// Upsert writes the dismissal record, replacing any previous one.
func (r *SQLDismissalRepository) Upsert(dismissal *user.Dismissal) error {
	const query = `
		INSERT INTO promo_dismissals (visitor_id, offer_id, dismissed_at_ms)
		VALUES (?, ?, ?)
		ON CONFLICT(visitor_id, offer_id) DO UPDATE SET dismissed_at_ms = excluded.dismissed_at_ms`

	start := time.Now()
	_, err := r.db.Exec(query, dismissal.VisitorID, dismissal.OfferID, dismissal.DismissedAt.UnixMilli())
	if err != nil {
		r.logger.Database().Error("Dismissal upsert failed", "error", err.Error(), "visitorId", dismissal.VisitorID, "offerId", dismissal.OfferID)
		return fmt.Errorf("failed to upsert dismissal: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}

// Delete removes the dismissal record for (visitor, offer).
func (r *SQLDismissalRepository) Delete(visitorID, offerID string) error {
	const query = `DELETE FROM promo_dismissals WHERE visitor_id = ? AND offer_id = ?`

	_, err := r.db.Exec(query, visitorID, offerID)
	if err != nil {
		return fmt.Errorf("failed to delete dismissal: %w", err)
	}
	return nil
}
