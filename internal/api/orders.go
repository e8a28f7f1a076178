package api

import (
	"net/http"
	"strings"

	"storefront-api/internal/models"
	"storefront-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// IdempotencyHeader lets clients retry a checkout safely
const IdempotencyHeader = "Idempotency-Key"

// createOrderRequest ignores any client-sent items; the order is built from the server-side cart
type createOrderRequest struct {
	CustomerName    string           `json:"customer_name" binding:"required"`
	CustomerEmail   string           `json:"customer_email" binding:"required,email"`
	CustomerPhone   string           `json:"customer_phone" binding:"required"`
	DeliveryAddress string           `json:"delivery_address" binding:"required"`
	TotalAmount     *decimal.Decimal `json:"total_amount"`
}

type orderPatchRequest struct {
	Status          *string `json:"status" binding:"omitempty,orderstatus"`
	CustomerName    *string `json:"customer_name" binding:"omitempty,min=1"`
	CustomerEmail   *string `json:"customer_email" binding:"omitempty,email"`
	CustomerPhone   *string `json:"customer_phone" binding:"omitempty,min=1"`
	DeliveryAddress *string `json:"delivery_address" binding:"omitempty,min=1"`
}

type invoiceItemRequest struct {
	Name     string          `json:"name" binding:"required"`
	Quantity int             `json:"quantity" binding:"required,min=1"`
	Price    decimal.Decimal `json:"price" binding:"gte=0"`
}

type invoiceRequest struct {
	OrderNumber     string               `json:"order_number" binding:"required"`
	CustomerName    string               `json:"customer_name" binding:"required"`
	CustomerEmail   string               `json:"customer_email" binding:"required"`
	CustomerPhone   string               `json:"customer_phone" binding:"required"`
	DeliveryAddress string               `json:"delivery_address" binding:"required"`
	Items           []invoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	TotalAmount     decimal.Decimal      `json:"total_amount" binding:"gte=0"`
}

type adminWhatsAppRequest struct {
	Number string `json:"number" binding:"required"`
}

// listOrders returns every order to admins and the caller's own orders otherwise
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.services.Orders.ListOrders(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  orders,
		"count": len(orders),
	})
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.services.Orders.GetOrder(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// createOrder runs checkout for the caller's cart
func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.services.Checkout.Checkout(c.Request.Context(), caller(c), service.CheckoutRequest{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		ClientTotal:     req.TotalAmount,
		IdempotencyKey:  strings.TrimSpace(c.GetHeader(IdempotencyHeader)),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Replayed {
		c.Header("Idempotent-Replayed", "true")
	}
	body := gin.H{"order": result.Order}
	if result.WhatsAppURL != "" {
		body["whatsapp_url"] = result.WhatsAppURL
	}
	c.JSON(http.StatusCreated, body)
}

func (h *Handler) updateOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req orderPatchRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.services.Orders.UpdateOrder(c.Request.Context(), id, models.OrderPatch{
		Status:          req.Status,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Orders.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

// sendInvoice formats an invoice and returns the WhatsApp link that delivers it
func (h *Handler) sendInvoice(c *gin.Context) {
	var req invoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	lines := make([]service.InvoiceLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = service.InvoiceLine{Name: item.Name, Quantity: item.Quantity, Price: item.Price}
	}

	prepared, err := h.services.Notifications.PrepareInvoice(c.Request.Context(), service.Invoice{
		OrderNumber:     req.OrderNumber,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		Items:           lines,
		TotalAmount:     req.TotalAmount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"whatsapp_url": prepared.WhatsAppURL,
		"message":      prepared.Message,
	})
}

func (h *Handler) getAdminWhatsApp(c *gin.Context) {
	number, err := h.services.Notifications.Destination(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin_whatsapp": number})
}

func (h *Handler) putAdminWhatsApp(c *gin.Context) {
	var req adminWhatsAppRequest
	if !bindJSON(c, &req) {
		return
	}

	number, err := h.services.Notifications.SetDestination(c.Request.Context(), req.Number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin_whatsapp": number})
}
