package user

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/user"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/persistence/database"
)

// SQLLeadRepository is the SQL-based implementation of the LeadRepository.
type SQLLeadRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLLeadRepository creates a new instance of the repository.
func NewSQLLeadRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLLeadRepository {
	return &SQLLeadRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID retrieves a Lead by its unique identifier.
func (r *SQLLeadRepository) FindByID(id string) (*user.Lead, error) {
	const query = `
		SELECT id, name, email, phone, message, treatment_slug, visitor_id, created_at
		FROM leads
		WHERE id = ?`

	var lead user.Lead
	var phone, treatmentSlug, visitorID sql.NullString
	err := r.db.QueryRow(query, id).Scan(&lead.ID, &lead.Name, &lead.Email,
		&phone, &lead.Message, &treatmentSlug, &visitorID, &lead.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}

	if phone.Valid {
		lead.Phone = &phone.String
	}
	if treatmentSlug.Valid {
		lead.TreatmentSlug = &treatmentSlug.String
	}
	if visitorID.Valid {
		lead.VisitorID = &visitorID.String
	}
	return &lead, nil
}

// Store persists a new Lead row.
func (r *SQLLeadRepository) Store(lead *user.Lead) error {
	const query = `
		INSERT INTO leads (id, name, email, phone, message, treatment_slug, visitor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing lead insert", "id", lead.ID)

	_, err := r.db.Exec(query, lead.ID, lead.Name, lead.Email, lead.Phone,
		lead.Message, lead.TreatmentSlug, lead.VisitorID, lead.CreatedAt.UTC())
	if err != nil {
		r.logger.Database().Error("Lead insert failed", "error", err.Error(), "id", lead.ID)
		return fmt.Errorf("failed to insert lead: %w", err)
	}

	r.logger.Database().Info("Lead insert completed", "id", lead.ID, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return nil
}
