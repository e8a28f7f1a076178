package store

import (
	"context"

	"storefront-api/internal/models"

	"github.com/google/uuid"
)

const categoryColumns = "id, name, description, image, created_at, updated_at"

// ListCategories returns all categories ordered by name
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.SelectContext(ctx, &categories,
		"SELECT "+categoryColumns+" FROM categories ORDER BY name ASC")
	return categories, translateError(err)
}

// GetCategoryByID retrieves a category by ID
func (s *Store) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := s.db.GetContext(ctx, &category,
		"SELECT "+categoryColumns+" FROM categories WHERE id = $1", id)
	if err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// CreateCategory inserts a category
func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (name, description, image)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query, category.Name, category.Description, category.Image).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	return translateError(err)
}

// UpdateCategory applies the non-nil fields
func (s *Store) UpdateCategory(ctx context.Context, id uuid.UUID, name, description, image *string) (*models.Category, error) {
	query := `
		UPDATE categories SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			image       = COALESCE($4, image),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + categoryColumns

	var category models.Category
	err := s.db.GetContext(ctx, &category, query, id, name, description, image)
	if err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// DeleteCategory removes a category; its products keep existing without one
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res)
}
