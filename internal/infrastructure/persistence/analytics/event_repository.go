// Package analytics provides the concrete SQL-based implementations
// for analytics event persistence.
//
// PURPOSE: Store tracked events to the events table as they happen, and
// serve the read-only aggregations behind the admin dashboard.
package analytics

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/havenwellness/haven-go/internal/domain/analytics"
	"github.com/havenwellness/haven-go/internal/domain/events"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/persistence/database"
	"github.com/havenwellness/haven-go/pkg/config"
)

// SQLEventRepository handles event persistence and dashboard aggregation.
type SQLEventRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLEventRepository creates a new instance of the repository.
func NewSQLEventRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLEventRepository {
	return &SQLEventRepository{
		db:     db,
		logger: logger,
	}
}

// Store saves a tracked event to the database.
func (r *SQLEventRepository) Store(event *events.Tracked) error {
	const query = `
		INSERT INTO events (id, visitor_id, session_id, name, page_path, variant, params, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var params sql.NullString
	if len(event.Params) > 0 {
		raw, err := json.Marshal(event.Params)
		if err != nil {
			return fmt.Errorf("failed to serialize event params: %w", err)
		}
		params = sql.NullString{String: string(raw), Valid: true}
	}

	start := time.Now()
	r.logger.Database().Debug("Executing event insert",
		"eventId", event.ID,
		"name", string(event.Name),
		"visitorId", event.VisitorID)

	_, err := r.db.Exec(
		query,
		event.ID,
		event.VisitorID,
		event.SessionID,
		string(event.Name),
		event.PagePath,
		event.Variant,
		params,
		event.CreatedAt.UTC().Format("2006-01-02 15:04:05"), // SQLite format
	)
	if err != nil {
		r.logger.Database().Error("Event insert failed",
			"error", err.Error(),
			"eventId", event.ID,
			"name", string(event.Name))
		return fmt.Errorf("failed to store event: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// CountByNameAndDay aggregates event counts per name per day in a range.
func (r *SQLEventRepository) CountByNameAndDay(startTime, endTime time.Time) ([]*analytics.DailyCount, error) {
	const query = `
		SELECT date(created_at) AS day, name, COUNT(*) AS count
		FROM events
		WHERE created_at >= ? AND created_at < ?
		GROUP BY day, name
		ORDER BY day, name`

	start := time.Now()
	rows, err := r.db.Query(query, formatRange(startTime), formatRange(endTime))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily counts: %w", err)
	}
	defer rows.Close()

	var counts []*analytics.DailyCount
	for rows.Next() {
		dc := &analytics.DailyCount{}
		if err := rows.Scan(&dc.Day, &dc.Name, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		counts = append(counts, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily count rows failed: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return counts, nil
}

// VariantSplit counts distinct visitors per assigned variant.
func (r *SQLEventRepository) VariantSplit(startTime, endTime time.Time) ([]*analytics.VariantSplit, error) {
	const query = `
		SELECT variant, COUNT(DISTINCT visitor_id) AS visitors
		FROM events
		WHERE name = 'ab_variant_assigned' AND created_at >= ? AND created_at < ?
		GROUP BY variant
		ORDER BY variant`

	start := time.Now()
	rows, err := r.db.Query(query, formatRange(startTime), formatRange(endTime))
	if err != nil {
		return nil, fmt.Errorf("failed to query variant split: %w", err)
	}
	defer rows.Close()

	var splits []*analytics.VariantSplit
	for rows.Next() {
		vs := &analytics.VariantSplit{}
		if err := rows.Scan(&vs.Variant, &vs.Visitors); err != nil {
			return nil, fmt.Errorf("failed to scan variant split: %w", err)
		}
		splits = append(splits, vs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("variant split rows failed: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return splits, nil
}

// ConversionByCohort computes booking conversion per variant. A visitor
// converts when they submit the booking form or complete a purchase.
func (r *SQLEventRepository) ConversionByCohort(startTime, endTime time.Time) ([]*analytics.CohortConversion, error) {
	const query = `
		SELECT a.variant,
			COUNT(DISTINCT a.visitor_id) AS visitors,
			COUNT(DISTINCT c.visitor_id) AS conversions
		FROM events a
		LEFT JOIN events c
			ON c.visitor_id = a.visitor_id
			AND c.name IN ('booking_form_submitted', 'purchase')
			AND c.created_at >= ? AND c.created_at < ?
		WHERE a.name = 'ab_variant_assigned' AND a.created_at >= ? AND a.created_at < ?
		GROUP BY a.variant
		ORDER BY a.variant`

	start := time.Now()
	startArg, endArg := formatRange(startTime), formatRange(endTime)
	rows, err := r.db.Query(query, startArg, endArg, startArg, endArg)
	if err != nil {
		return nil, fmt.Errorf("failed to query cohort conversion: %w", err)
	}
	defer rows.Close()

	var conversions []*analytics.CohortConversion
	for rows.Next() {
		cc := &analytics.CohortConversion{}
		if err := rows.Scan(&cc.Variant, &cc.Visitors, &cc.Conversions); err != nil {
			return nil, fmt.Errorf("failed to scan cohort conversion: %w", err)
		}
		if cc.Visitors > 0 {
			cc.Rate = float64(cc.Conversions) / float64(cc.Visitors)
		}
		conversions = append(conversions, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cohort conversion rows failed: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return conversions, nil
}

// TopOutboundDomains ranks external hostnames by click count.
func (r *SQLEventRepository) TopOutboundDomains(startTime, endTime time.Time, limit int) ([]*analytics.OutboundDomain, error) {
	const query = `
		SELECT json_extract(params, '$.link_domain') AS hostname, COUNT(*) AS clicks
		FROM events
		WHERE name = 'outbound_click'
			AND created_at >= ? AND created_at < ?
			AND json_extract(params, '$.link_domain') IS NOT NULL
		GROUP BY hostname
		ORDER BY clicks DESC
		LIMIT ?`

	start := time.Now()
	rows, err := r.db.Query(query, formatRange(startTime), formatRange(endTime), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbound domains: %w", err)
	}
	defer rows.Close()

	var domains []*analytics.OutboundDomain
	for rows.Next() {
		od := &analytics.OutboundDomain{}
		if err := rows.Scan(&od.Hostname, &od.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan outbound domain: %w", err)
		}
		domains = append(domains, od)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outbound domain rows failed: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return domains, nil
}

func formatRange(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
