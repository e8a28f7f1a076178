package service

import (
	"context"
	"fmt"
	"strings"

	"storefront-api/internal/models"
	"storefront-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService manages products and categories
type CatalogService struct {
	products   ProductRepository
	categories CategoryRepository
	logger     *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products ProductRepository, categories CategoryRepository) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		logger:     util.GetLogger(),
	}
}

// ListProducts returns one page of products and the total number of matches
func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, 0, invalid("limit and offset must not be negative")
	}
	filter.Search = strings.TrimSpace(filter.Search)

	products, count, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", fromStore(err))
	}
	return products, count, nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	return product, nil
}

// CreateProduct validates and inserts a product
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return invalid("name is required")
	}
	if !product.Price.IsPositive() {
		return invalid("price must be greater than zero")
	}
	if product.OriginalPrice.Valid && product.OriginalPrice.Decimal.IsNegative() {
		return invalid("original_price must not be negative")
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", fromStore(err))
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	return nil
}

// UpdateProduct applies a partial update
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch models.ProductPatch) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalid("name must not be empty")
	}
	if patch.Price != nil && !patch.Price.IsPositive() {
		return nil, invalid("price must be greater than zero")
	}

	product, err := s.products.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, fromStore(err)
	}
	return product, nil
}

// DeleteProduct removes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return fromStore(err)
	}
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// ListCategories returns every category ordered by name
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", fromStore(err))
	}
	return categories, nil
}

// GetCategory retrieves a category by ID
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	return category, nil
}

// CreateCategory validates and inserts a category
func (s *CatalogService) CreateCategory(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return invalid("name is required")
	}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return fromStore(err)
	}
	return nil
}

// UpdateCategory applies a partial update
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalid("name must not be empty")
	}
	category, err := s.categories.UpdateCategory(ctx, id, patch.Name, patch.Description, patch.Image)
	if err != nil {
		return nil, fromStore(err)
	}
	return category, nil
}

// DeleteCategory removes a category; its products keep existing without one
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return fromStore(s.categories.DeleteCategory(ctx, id))
}
