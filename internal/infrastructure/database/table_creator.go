// Package database provides schema instantiation
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/havenwellness/haven-go/internal/infrastructure/security"
)

// TableCreator handles the creation of the database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the database tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// SeedInitialContent adds the default content required for a fresh install to function.
func (tc *TableCreator) SeedInitialContent(db *sql.DB) error {
	// Idempotently create the default treatment category.
	var categoryID string
	err := db.QueryRow("SELECT id FROM treatment_categories WHERE slug = 'massage'").Scan(&categoryID)
	if err == sql.ErrNoRows {
		categoryID = security.GenerateULID()
		_, err = db.Exec(`INSERT INTO treatment_categories (id, title, slug, description, sort_order) VALUES (?, ?, ?, ?, ?)`,
			categoryID, "Massage", "massage", "Massage treatments", 0)
		if err != nil {
			return fmt.Errorf("failed to insert default category: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check for default category: %w", err)
	}

	// Idempotently create a starter treatment so the site renders out of the box.
	var treatmentExists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM treatments WHERE slug = 'swedish-massage')").Scan(&treatmentExists)
	if err != nil {
		return fmt.Errorf("failed to check for treatment existence: %w", err)
	}

	if !treatmentExists {
		treatmentID := security.GenerateULID()
		now := time.Now().UTC()
		_, err = db.Exec(`INSERT INTO treatments (id, title, slug, category_slug, description, price, duration_minutes, featured, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			treatmentID, "Swedish Massage", "swedish-massage", "massage", "A classic full-body relaxation massage.", "£65", 60, 1, now)
		if err != nil {
			return fmt.Errorf("failed to insert default treatment: %w", err)
		}
	}

	return nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS treatment_categories (id TEXT PRIMARY KEY, title TEXT NOT NULL, slug TEXT NOT NULL UNIQUE, description TEXT NOT NULL DEFAULT '', sort_order INTEGER NOT NULL DEFAULT 0)`,
	`CREATE TABLE IF NOT EXISTS treatments (id TEXT PRIMARY KEY, title TEXT NOT NULL, slug TEXT NOT NULL UNIQUE, category_slug TEXT REFERENCES treatment_categories(slug), description TEXT NOT NULL DEFAULT '', price TEXT NOT NULL DEFAULT '', duration_minutes INTEGER, image_path TEXT, external_booking_url TEXT, featured BOOLEAN DEFAULT 0, created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, changed TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS offers (id TEXT PRIMARY KEY, title TEXT NOT NULL, description TEXT NOT NULL DEFAULT '', image_path TEXT, image_alt TEXT, cta_text TEXT NOT NULL DEFAULT '', cta_link TEXT NOT NULL DEFAULT '', dismiss_duration_days INTEGER NOT NULL DEFAULT 7, display_delay_seconds INTEGER NOT NULL DEFAULT 5, active BOOLEAN DEFAULT 0, starts_at TIMESTAMP, ends_at TIMESTAMP, created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS visitors (id TEXT PRIMARY KEY, variant_event_sent BOOLEAN NOT NULL DEFAULT 0, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS leads (id TEXT PRIMARY KEY, name TEXT NOT NULL, email TEXT NOT NULL, phone TEXT, message TEXT NOT NULL DEFAULT '', treatment_slug TEXT, visitor_id TEXT REFERENCES visitors(id), created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS events (id TEXT PRIMARY KEY, visitor_id TEXT NOT NULL, session_id TEXT NOT NULL, name TEXT NOT NULL, page_path TEXT NOT NULL DEFAULT '', variant TEXT NOT NULL DEFAULT '', params TEXT, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS promo_dismissals (visitor_id TEXT NOT NULL, offer_id TEXT NOT NULL, dismissed_at_ms INTEGER NOT NULL, PRIMARY KEY (visitor_id, offer_id))`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_treatments_category ON treatments(category_slug)`,
	`CREATE INDEX IF NOT EXISTS idx_offers_active ON offers(active, created)`,
	`CREATE INDEX IF NOT EXISTS idx_events_name_created ON events(name, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_visitor ON events(visitor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email)`,
}
