package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type addToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  *int      `json:"quantity" binding:"omitempty,max=2147483647"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"max=2147483647"`
}

type wishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

func (h *Handler) getCart(c *gin.Context) {
	items, err := h.services.Carts.GetCart(c.Request.Context(), caller(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// addToCart answers 201 for a new row and 200 when an existing row was incremented
func (h *Handler) addToCart(c *gin.Context) {
	var req addToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, created, err := h.services.Carts.AddItem(c.Request.Context(), caller(c).UserID, req.ProductID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, item)
}

func (h *Handler) updateCartItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.services.Carts.UpdateQuantity(c.Request.Context(), caller(c).UserID, id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Carts.RemoveItem(c.Request.Context(), caller(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

func (h *Handler) clearCart(c *gin.Context) {
	removed, err := h.services.Carts.Clear(c.Request.Context(), caller(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
		"removed": removed,
	})
}

func (h *Handler) getWishlist(c *gin.Context) {
	items, err := h.services.Wishlists.List(c.Request.Context(), caller(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) addToWishlist(c *gin.Context) {
	var req wishlistRequest
	if !bindJSON(c, &req) {
		return
	}

	item, created, err := h.services.Wishlists.Add(c.Request.Context(), caller(c).UserID, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{
			"message": "Product already in wishlist",
			"data":    item,
		})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) removeWishlistItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Wishlists.Remove(c.Request.Context(), caller(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from wishlist"})
}

func (h *Handler) removeWishlistProduct(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	if err := h.services.Wishlists.RemoveProduct(c.Request.Context(), caller(c).UserID, productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from wishlist"})
}
