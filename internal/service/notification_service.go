package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"storefront-api/internal/models"
	"storefront-api/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Invoice is the order summary sent to the shop owner
type Invoice struct {
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryAddress string
	Items           []InvoiceLine
	TotalAmount     decimal.Decimal
}

// InvoiceLine is one item of an invoice
type InvoiceLine struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// InvoiceFromOrder builds the invoice of a placed order
func InvoiceFromOrder(order *models.Order) Invoice {
	lines := make([]InvoiceLine, len(order.Items))
	for i, item := range order.Items {
		lines[i] = InvoiceLine{Name: item.Name, Quantity: item.Quantity, Price: item.Price}
	}
	return Invoice{
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		CustomerPhone:   order.CustomerPhone,
		DeliveryAddress: order.DeliveryAddress,
		Items:           lines,
		TotalAmount:     order.TotalAmount,
	}
}

// PreparedInvoice is a formatted invoice and the deep link that delivers it
type PreparedInvoice struct {
	WhatsAppURL string
	Message     string
}

// NotificationService formats invoices and addresses them to the admin's WhatsApp
type NotificationService struct {
	settings       SettingsRepository
	fallbackNumber string
	currency       string
	logger         *zap.Logger
}

// NewNotificationService creates a notification service. fallbackNumber is used
// when no admin number is stored in settings.
func NewNotificationService(settings SettingsRepository, fallbackNumber, currency string) *NotificationService {
	if currency == "" {
		currency = "$"
	}
	return &NotificationService{
		settings:       settings,
		fallbackNumber: fallbackNumber,
		currency:       currency,
		logger:         util.GetLogger(),
	}
}

// Destination returns the admin WhatsApp number, digits only
func (s *NotificationService) Destination(ctx context.Context) (string, error) {
	number, err := s.settings.GetSetting(ctx, models.SettingAdminWhatsApp)
	if err != nil && !errors.Is(fromStore(err), ErrNotFound) {
		return "", fmt.Errorf("failed to read notification settings: %w", err)
	}
	if strings.TrimSpace(number) == "" {
		number = s.fallbackNumber
	}

	digits := digitsOnly(number)
	if digits == "" {
		return "", ErrNotificationNotConfigured
	}
	return digits, nil
}

// SetDestination stores the admin WhatsApp number
func (s *NotificationService) SetDestination(ctx context.Context, number string) (string, error) {
	digits := digitsOnly(number)
	if len(digits) < 7 {
		return "", invalid("whatsapp number must contain at least 7 digits")
	}
	if err := s.settings.PutSetting(ctx, models.SettingAdminWhatsApp, number); err != nil {
		return "", fromStore(err)
	}
	return digits, nil
}

// PrepareInvoice formats the invoice and builds the wa.me link for it
func (s *NotificationService) PrepareInvoice(ctx context.Context, invoice Invoice) (*PreparedInvoice, error) {
	ctx, span := util.StartSpan(ctx, "NotificationService.PrepareInvoice")
	defer span.End()

	if invoice.OrderNumber == "" {
		return nil, invalid("order number is required")
	}

	number, err := s.Destination(ctx)
	if err != nil {
		util.NotificationsTotal.WithLabelValues("not_configured").Inc()
		return nil, err
	}

	message := FormatInvoiceMessage(invoice, s.currency)
	prepared := &PreparedInvoice{
		WhatsAppURL: WhatsAppURL(number, message),
		Message:     message,
	}

	util.NotificationsTotal.WithLabelValues("prepared").Inc()
	s.logger.Info("Invoice prepared",
		zap.String("order_number", invoice.OrderNumber),
		zap.String("customer_email", invoice.CustomerEmail))
	return prepared, nil
}

// FormatInvoiceMessage renders the invoice as a WhatsApp message
func FormatInvoiceMessage(invoice Invoice, currency string) string {
	var b strings.Builder

	b.WriteString("🛍️ *NEW ORDER RECEIVED*\n\n")
	fmt.Fprintf(&b, "📋 Order #: %s\n\n", invoice.OrderNumber)

	b.WriteString("👤 *Customer Information:*\n")
	fmt.Fprintf(&b, "Name: %s\n", invoice.CustomerName)
	fmt.Fprintf(&b, "Email: %s\n", invoice.CustomerEmail)
	fmt.Fprintf(&b, "Phone: %s\n\n", invoice.CustomerPhone)

	b.WriteString("📍 *Delivery Address:*\n")
	fmt.Fprintf(&b, "%s\n\n", invoice.DeliveryAddress)

	b.WriteString("🛒 *Order Items:*\n")
	for _, line := range invoice.Items {
		lineTotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		fmt.Fprintf(&b, "• %s x%d - %s%s\n", line.Name, line.Quantity, currency, lineTotal.StringFixed(2))
	}

	fmt.Fprintf(&b, "\n💰 *Total Amount:* %s%s\n\n", currency, invoice.TotalAmount.StringFixed(2))
	b.WriteString("_This order was placed through your online store._")

	return b.String()
}

// WhatsAppURL builds a wa.me deep link carrying message; spaces are encoded as %20
func WhatsAppURL(number, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digitsOnly(number) + "?text=" + text
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
