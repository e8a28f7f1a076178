package store

import (
	"context"
	"fmt"
	"strings"

	"storefront-api/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.original_price, p.image, p.category_id,
	       c.name AS category_name, p.brand, p.rating, p.reviews, p.in_stock, p.stock_quantity,
	       p.features, p.tags, p.is_todays_deals, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListProducts returns one page of products matching the filter plus the total match count
func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	var (
		where []string
		args  []interface{}
	)

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d OR p.brand ILIKE $%d)", n, n, n))
	}
	if filter.DealsOnly {
		where = append(where, "p.is_todays_deals = TRUE")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM products p"+clause, args...); err != nil {
		return nil, 0, translateError(err)
	}

	query := productSelect + clause + " ORDER BY p.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	products := []models.Product{}
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, translateError(err)
	}
	return products, count, nil
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, productSelect+" WHERE p.id = $1", id)
	if err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In(productSelect+" WHERE p.id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, translateError(err)
}

// CreateProduct inserts a product and fills its generated columns
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, original_price, image, category_id, brand,
		                      rating, reviews, in_stock, stock_quantity, features, tags, is_todays_deals)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`

	if p.Features == nil {
		p.Features = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	err := s.db.QueryRowxContext(ctx, query,
		p.Name, p.Description, p.Price, p.OriginalPrice, p.Image, p.CategoryID, p.Brand,
		p.Rating, p.Reviews, p.InStock, p.StockQuantity, p.Features, p.Tags, p.IsTodaysDeals,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translateError(err)
}

// UpdateProduct applies the non-nil fields of the patch
func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, patch models.ProductPatch) (*models.Product, error) {
	query := `
		UPDATE products SET
			name            = COALESCE($2, name),
			description     = COALESCE($3, description),
			price           = COALESCE($4, price),
			original_price  = COALESCE($5, original_price),
			image           = COALESCE($6, image),
			category_id     = COALESCE($7, category_id),
			brand           = COALESCE($8, brand),
			rating          = COALESCE($9, rating),
			reviews         = COALESCE($10, reviews),
			in_stock        = COALESCE($11, in_stock),
			stock_quantity  = COALESCE($12, stock_quantity),
			features        = COALESCE($13, features),
			tags            = COALESCE($14, tags),
			is_todays_deals = COALESCE($15, is_todays_deals),
			updated_at      = NOW()
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id,
		patch.Name, patch.Description, patch.Price, patch.OriginalPrice, patch.Image, patch.CategoryID,
		patch.Brand, patch.Rating, patch.Reviews, patch.InStock, patch.StockQuantity,
		patch.Features, patch.Tags, patch.IsTodaysDeals)
	if err != nil {
		return nil, translateError(err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetProductByID(ctx, id)
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res)
}
