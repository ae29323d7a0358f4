package content

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/entities/content"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
)

type OfferRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewOfferRepository(db *sql.DB, logger *logging.ChanneledLogger) *OfferRepository {
	return &OfferRepository{
		db:     db,
		logger: logger,
	}
}

const offerColumns = `id, title, description, image_path, image_alt, cta_text, cta_link, dismiss_duration_days, display_delay_seconds, active, starts_at, ends_at, created`

func (r *OfferRepository) FindByID(id string) (*content.PromotionalOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = ?`

	o, err := scanOffer(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OfferRepository) FindAll() ([]*content.PromotionalOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers ORDER BY created DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []*content.PromotionalOffer
	for rows.Next() {
		var o content.PromotionalOffer
		var imagePath, imageAlt sql.NullString
		var startsAt, endsAt sql.NullTime

		err := rows.Scan(&o.ID, &o.Title, &o.Description, &imagePath, &imageAlt,
			&o.CTAText, &o.CTALink, &o.DismissDurationDays, &o.DisplayDelaySeconds,
			&o.Active, &startsAt, &endsAt, &o.Created)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}

		applyOfferNullables(&o, imagePath, imageAlt, startsAt, endsAt)
		offers = append(offers, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("offer rows failed: %w", err)
	}
	return offers, nil
}

func (r *OfferRepository) Store(offer *content.PromotionalOffer) error {
	query := `INSERT INTO offers (id, title, description, image_path, image_alt, cta_text, cta_link, dismiss_duration_days, display_delay_seconds, active, starts_at, ends_at, created)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing offer insert", "id", offer.ID)

	_, err := r.db.Exec(query, offer.ID, offer.Title, offer.Description,
		offer.ImagePath, offer.ImageAlt, offer.CTAText, offer.CTALink,
		offer.DismissDurationDays, offer.DisplayDelaySeconds, offer.Active,
		nullableTime(offer.StartsAt), nullableTime(offer.EndsAt), offer.Created.UTC())
	if err != nil {
		r.logger.Database().Error("Offer insert failed", "error", err.Error(), "id", offer.ID)
		return fmt.Errorf("failed to insert offer: %w", err)
	}

	r.logger.Database().Info("Offer insert completed", "id", offer.ID, "duration", time.Since(start))
	return nil
}

func (r *OfferRepository) Update(offer *content.PromotionalOffer) error {
	query := `UPDATE offers SET title = ?, description = ?, image_path = ?, image_alt = ?, cta_text = ?, cta_link = ?, dismiss_duration_days = ?, display_delay_seconds = ?, active = ?, starts_at = ?, ends_at = ? WHERE id = ?`

	_, err := r.db.Exec(query, offer.Title, offer.Description, offer.ImagePath,
		offer.ImageAlt, offer.CTAText, offer.CTALink, offer.DismissDurationDays,
		offer.DisplayDelaySeconds, offer.Active, nullableTime(offer.StartsAt),
		nullableTime(offer.EndsAt), offer.ID)
	if err != nil {
		r.logger.Database().Error("Offer update failed", "error", err.Error(), "id", offer.ID)
		return fmt.Errorf("failed to update offer: %w", err)
	}
	return nil
}

func (r *OfferRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM offers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	return nil
}

func scanOffer(row *sql.Row) (*content.PromotionalOffer, error) {
	var o content.PromotionalOffer
	var imagePath, imageAlt sql.NullString
	var startsAt, endsAt sql.NullTime

	err := row.Scan(&o.ID, &o.Title, &o.Description, &imagePath, &imageAlt,
		&o.CTAText, &o.CTALink, &o.DismissDurationDays, &o.DisplayDelaySeconds,
		&o.Active, &startsAt, &endsAt, &o.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan offer: %w", err)
	}

	applyOfferNullables(&o, imagePath, imageAlt, startsAt, endsAt)
	return &o, nil
}

func applyOfferNullables(o *content.PromotionalOffer, imagePath, imageAlt sql.NullString, startsAt, endsAt sql.NullTime) {
	if imagePath.Valid {
		o.ImagePath = &imagePath.String
	}
	if imageAlt.Valid {
		o.ImageAlt = &imageAlt.String
	}
	if startsAt.Valid {
		o.StartsAt = &startsAt.Time
	}
	if endsAt.Valid {
		o.EndsAt = &endsAt.Time
	}
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
