package api

import (
	"errors"
	"net/http"
	"strconv"

	"storefront-api/internal/models"
	"storefront-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type productRequest struct {
	Name          string           `json:"name" binding:"required"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price" binding:"required,gt=0"`
	OriginalPrice *decimal.Decimal `json:"original_price" binding:"omitempty,gte=0"`
	Image         string           `json:"image"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	Brand         string           `json:"brand"`
	Rating        float64          `json:"rating" binding:"gte=0,lte=5"`
	Reviews       int              `json:"reviews" binding:"gte=0"`
	InStock       *bool            `json:"in_stock"`
	StockQuantity int              `json:"stock_quantity" binding:"gte=0"`
	Features      []string         `json:"features"`
	Tags          []string         `json:"tags"`
	IsTodaysDeals bool             `json:"is_todays_deals"`
}

func (r productRequest) toProduct() *models.Product {
	product := &models.Product{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Image:         r.Image,
		Brand:         r.Brand,
		Rating:        r.Rating,
		Reviews:       r.Reviews,
		InStock:       true,
		StockQuantity: r.StockQuantity,
		Features:      pq.StringArray(nonNilStrings(r.Features)),
		Tags:          pq.StringArray(nonNilStrings(r.Tags)),
		IsTodaysDeals: r.IsTodaysDeals,
	}
	if r.OriginalPrice != nil {
		product.OriginalPrice = decimal.NewNullDecimal(*r.OriginalPrice)
	}
	if r.CategoryID != nil {
		product.CategoryID = uuid.NullUUID{UUID: *r.CategoryID, Valid: true}
	}
	if r.InStock != nil {
		product.InStock = *r.InStock
	}
	return product
}

type productPatchRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price" binding:"omitempty,gt=0"`
	OriginalPrice *decimal.Decimal `json:"original_price" binding:"omitempty,gte=0"`
	Image         *string          `json:"image"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	Brand         *string          `json:"brand"`
	Rating        *float64         `json:"rating" binding:"omitempty,gte=0,lte=5"`
	Reviews       *int             `json:"reviews" binding:"omitempty,gte=0"`
	InStock       *bool            `json:"in_stock"`
	StockQuantity *int             `json:"stock_quantity" binding:"omitempty,gte=0"`
	Features      []string         `json:"features"`
	Tags          []string         `json:"tags"`
	IsTodaysDeals *bool            `json:"is_todays_deals"`
}

func (r productPatchRequest) toPatch() models.ProductPatch {
	patch := models.ProductPatch{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Image:         r.Image,
		CategoryID:    r.CategoryID,
		Brand:         r.Brand,
		Rating:        r.Rating,
		Reviews:       r.Reviews,
		InStock:       r.InStock,
		StockQuantity: r.StockQuantity,
		IsTodaysDeals: r.IsTodaysDeals,
	}
	if r.Features != nil {
		features := pq.StringArray(r.Features)
		patch.Features = &features
	}
	if r.Tags != nil {
		tags := pq.StringArray(r.Tags)
		patch.Tags = &tags
	}
	return patch
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type categoryPatchRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// listProducts handles GET /products?category&search&deals&limit&offset
func (h *Handler) listProducts(c *gin.Context) {
	var filter models.ProductFilter

	if raw := c.Query("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid category")
			return
		}
		filter.CategoryID = &id
	}
	filter.Search = c.Query("search")
	filter.DealsOnly = c.Query("deals") == "true"

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = limit
		if rawOffset := c.Query("offset"); rawOffset != "" {
			offset, err := strconv.Atoi(rawOffset)
			if err != nil {
				respondMessage(c, http.StatusBadRequest, "Invalid offset")
				return
			}
			filter.Offset = offset
		}
	}

	products, count, err := h.services.Catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  products,
		"count": count,
	})
}

// getProduct answers null with 200 when the product does not exist
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.services.Catalog.GetProduct(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req productRequest
	if !bindJSON(c, &req) {
		return
	}

	product := req.toProduct()
	if err := h.services.Catalog.CreateProduct(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req productPatchRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.services.Catalog.UpdateProduct(c.Request.Context(), id, req.toPatch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.services.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) getCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	category, err := h.services.Catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) createCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category := &models.Category{Name: req.Name, Description: req.Description, Image: req.Image}
	if err := h.services.Catalog.CreateCategory(c.Request.Context(), category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req categoryPatchRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.services.Catalog.UpdateCategory(c.Request.Context(), id, models.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
