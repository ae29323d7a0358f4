package content

import (
	"database/sql"
	"fmt"

	"github.com/havenwellness/haven-go/internal/domain/entities/content"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
)

type CategoryRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewCategoryRepository(db *sql.DB, logger *logging.ChanneledLogger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CategoryRepository) FindBySlug(slug string) (*content.Category, error) {
	query := `SELECT id, title, slug, description, sort_order FROM treatment_categories WHERE slug = ?`

	var c content.Category
	err := r.db.QueryRow(query, slug).Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.SortOrder)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) FindAll() ([]*content.Category, error) {
	query := `SELECT id, title, slug, description, sort_order FROM treatment_categories ORDER BY sort_order, title`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*content.Category
	for rows.Next() {
		var c content.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category rows failed: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Store(category *content.Category) error {
	query := `INSERT INTO treatment_categories (id, title, slug, description, sort_order) VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query, category.ID, category.Title, category.Slug, category.Description, category.SortOrder)
	if err != nil {
		r.logger.Database().Error("Category insert failed", "error", err.Error(), "id", category.ID)
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Update(category *content.Category) error {
	query := `UPDATE treatment_categories SET title = ?, slug = ?, description = ?, sort_order = ? WHERE id = ?`

	_, err := r.db.Exec(query, category.Title, category.Slug, category.Description, category.SortOrder, category.ID)
	if err != nil {
		r.logger.Database().Error("Category update failed", "error", err.Error(), "id", category.ID)
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM treatment_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
