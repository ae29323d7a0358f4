// Package content provides treatment, category, and offer repositories
package content

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/entities/content"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/pkg/config"
)

type TreatmentRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewTreatmentRepository(db *sql.DB, logger *logging.ChanneledLogger) *TreatmentRepository {
	return &TreatmentRepository{
		db:     db,
		logger: logger,
	}
}

const treatmentColumns = `id, title, slug, category_slug, description, price, duration_minutes, image_path, external_booking_url, featured, created, changed`

func (r *TreatmentRepository) FindByID(id string) (*content.Treatment, error) {
	query := `SELECT ` + treatmentColumns + ` FROM treatments WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id))
}

func (r *TreatmentRepository) FindBySlug(slug string) (*content.Treatment, error) {
	query := `SELECT ` + treatmentColumns + ` FROM treatments WHERE slug = ?`
	return r.scanOne(r.db.QueryRow(query, slug))
}

func (r *TreatmentRepository) FindByCategory(categorySlug string) ([]*content.Treatment, error) {
	query := `SELECT ` + treatmentColumns + ` FROM treatments WHERE category_slug = ? ORDER BY title`
	rows, err := r.db.Query(query, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to query treatments by category: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *TreatmentRepository) FindAll() ([]*content.Treatment, error) {
	query := `SELECT ` + treatmentColumns + ` FROM treatments ORDER BY title`

	start := time.Now()
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query treatments: %w", err)
	}
	defer rows.Close()

	treatments, err := r.scanMany(rows)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return treatments, nil
}

func (r *TreatmentRepository) Store(treatment *content.Treatment) error {
	query := `INSERT INTO treatments (id, title, slug, category_slug, description, price, duration_minutes, image_path, external_booking_url, featured, created)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing treatment insert", "id", treatment.ID)

	_, err := r.db.Exec(query, treatment.ID, treatment.Title, treatment.Slug,
		treatment.CategorySlug, treatment.Description, treatment.Price,
		treatment.DurationMinutes, treatment.ImagePath, treatment.ExternalBookingURL,
		treatment.Featured, treatment.Created.UTC())
	if err != nil {
		r.logger.Database().Error("Treatment insert failed", "error", err.Error(), "id", treatment.ID)
		return fmt.Errorf("failed to insert treatment: %w", err)
	}

	r.logger.Database().Info("Treatment insert completed", "id", treatment.ID, "duration", time.Since(start))
	return nil
}

func (r *TreatmentRepository) Update(treatment *content.Treatment) error {
	query := `UPDATE treatments SET title = ?, slug = ?, category_slug = ?, description = ?, price = ?, duration_minutes = ?, image_path = ?, external_booking_url = ?, featured = ?, changed = ? WHERE id = ?`

	now := time.Now().UTC()
	_, err := r.db.Exec(query, treatment.Title, treatment.Slug, treatment.CategorySlug,
		treatment.Description, treatment.Price, treatment.DurationMinutes,
		treatment.ImagePath, treatment.ExternalBookingURL, treatment.Featured,
		now, treatment.ID)
	if err != nil {
		r.logger.Database().Error("Treatment update failed", "error", err.Error(), "id", treatment.ID)
		return fmt.Errorf("failed to update treatment: %w", err)
	}
	treatment.Changed = &now
	return nil
}

func (r *TreatmentRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM treatments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete treatment: %w", err)
	}
	return nil
}

func (r *TreatmentRepository) scanOne(row *sql.Row) (*content.Treatment, error) {
	var t content.Treatment
	var categorySlug, imagePath, externalURL sql.NullString
	var durationMinutes sql.NullInt64
	var changed sql.NullTime

	err := row.Scan(&t.ID, &t.Title, &t.Slug, &categorySlug, &t.Description,
		&t.Price, &durationMinutes, &imagePath, &externalURL, &t.Featured,
		&t.Created, &changed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan treatment: %w", err)
	}

	applyTreatmentNullables(&t, categorySlug, imagePath, externalURL, durationMinutes, changed)
	return &t, nil
}

func (r *TreatmentRepository) scanMany(rows *sql.Rows) ([]*content.Treatment, error) {
	var treatments []*content.Treatment
	for rows.Next() {
		var t content.Treatment
		var categorySlug, imagePath, externalURL sql.NullString
		var durationMinutes sql.NullInt64
		var changed sql.NullTime

		err := rows.Scan(&t.ID, &t.Title, &t.Slug, &categorySlug, &t.Description,
			&t.Price, &durationMinutes, &imagePath, &externalURL, &t.Featured,
			&t.Created, &changed)
		if err != nil {
			return nil, fmt.Errorf("failed to scan treatment: %w", err)
		}

		applyTreatmentNullables(&t, categorySlug, imagePath, externalURL, durationMinutes, changed)
		treatments = append(treatments, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("treatment rows failed: %w", err)
	}
	return treatments, nil
}

func applyTreatmentNullables(t *content.Treatment, categorySlug, imagePath, externalURL sql.NullString, durationMinutes sql.NullInt64, changed sql.NullTime) {
	if categorySlug.Valid {
		t.CategorySlug = &categorySlug.String
	}
	if imagePath.Valid {
		t.ImagePath = &imagePath.String
	}
	if externalURL.Valid {
		t.ExternalBookingURL = &externalURL.String
	}
	if durationMinutes.Valid {
		minutes := int(durationMinutes.Int64)
		t.DurationMinutes = &minutes
	}
	if changed.Valid {
		t.Changed = &changed.Time
	}
}
