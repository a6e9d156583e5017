package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/QuanTND2497/expense-tracker/internal/domain"
	"github.com/QuanTND2497/expense-tracker/internal/port"
)

const categoryColumns = `id, name, COALESCE(description, ''), is_default, created_at, updated_at`

func scanCategory(row interface{ Scan(...interface{}) error }) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns all categories, newest first.
func (s *PostgresStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// GetCategoryByID returns a category by its ID.
func (s *PostgresStore) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategoriesByIDs returns the categories matching the given IDs.
func (s *PostgresStore) ListCategoriesByIDs(ctx context.Context, ids []string) ([]domain.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list categories by ids: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a new user-defined category (is_default = false).
func (s *PostgresStore) CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `INSERT INTO categories (id, name, description, is_default)
	          VALUES ($1, $2, NULLIF($3, ''), $4)
	          RETURNING ` + categoryColumns

	created, err := scanCategory(s.db.QueryRowContext(ctx, query, c.ID, c.Name, c.Description, c.IsDefault))
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// UpdateCategory updates name and description of a category.
func (s *PostgresStore) UpdateCategory(ctx context.Context, id, name, description string) (*domain.Category, error) {
	query := `UPDATE categories SET name = $1, description = NULLIF($2, ''), updated_at = NOW()
	          WHERE id = $3
	          RETURNING ` + categoryColumns

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, name, description, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category by ID.
func (s *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrCategoryNotFound
	}
	return nil
}

// CountTransactionsByCategory returns the number of transactions referencing
// a category.
func (s *PostgresStore) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = $1`, categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions by category: %w", err)
	}
	return count, nil
}

// SeedDefaultCategories inserts the default categories when missing.
// An already existing default category is a no-op, not an error.
func (s *PostgresStore) SeedDefaultCategories(ctx context.Context) error {
	for _, c := range domain.DefaultCategories {
		query := `INSERT INTO categories (id, name, description, is_default)
		          SELECT $1, $2, $3, TRUE
		          WHERE NOT EXISTS (
		              SELECT 1 FROM categories WHERE name = $2 AND is_default = TRUE
		          )`

		res, err := s.db.ExecContext(ctx, query, uuid.NewString(), c.Name, c.Description)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			slog.Info("created default category", "name", c.Name)
		}
	}
	return nil
}
