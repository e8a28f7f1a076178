package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-api/internal/auth"
	"storefront-api/internal/models"
	"storefront-api/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const orderNumberAttempts = 3

// CheckoutConfig tunes the checkout workflow
type CheckoutConfig struct {
	LockTTL        time.Duration
	IdempotencyTTL time.Duration
}

// CheckoutRequest carries the customer details of a checkout. ClientTotal is
// what the client computed; it is compared with the server total and never stored.
type CheckoutRequest struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryAddress string
	ClientTotal     *decimal.Decimal
	IdempotencyKey  string
}

// CheckoutResult is the placed order and, when the notification step
// succeeded, the WhatsApp link announcing it
type CheckoutResult struct {
	Order       *models.Order
	WhatsAppURL string
	Replayed    bool
}

// CheckoutService turns a user's cart into an order
type CheckoutService struct {
	carts          CartRepository
	orders         OrderRepository
	locker         Locker
	idempotency    IdempotencyStore
	eventPublisher EventPublisher
	notifier       *NotificationService
	cfg            CheckoutConfig
	now            func() time.Time
	logger         *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	carts CartRepository,
	orders OrderRepository,
	locker Locker,
	idempotency IdempotencyStore,
	eventPublisher EventPublisher,
	notifier *NotificationService,
	cfg CheckoutConfig,
) *CheckoutService {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	return &CheckoutService{
		carts:          carts,
		orders:         orders,
		locker:         locker,
		idempotency:    idempotency,
		eventPublisher: eventPublisher,
		notifier:       notifier,
		cfg:            cfg,
		now:            time.Now,
		logger:         util.GetLogger(),
	}
}

// checkoutRun holds the state shared by the steps of one checkout
type checkoutRun struct {
	userID    uuid.UUID
	req       CheckoutRequest
	idemKey   string
	lockName  string
	lockToken string
	cart      []models.CartItem
	items     models.OrderItems
	total     decimal.Decimal
	order     *models.Order
	whatsApp  string
}

// Checkout runs the order creation workflow for the caller's cart:
// lock, load cart, snapshot, persist, then the best-effort tail of
// clearing the cart, publishing ORDER_PLACED, notifying the admin and
// remembering the idempotency key.
func (s *CheckoutService) Checkout(ctx context.Context, identity *auth.Identity, req CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	if identity == nil {
		return nil, ErrForbidden
	}
	if err := validateCheckout(&req); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_request").Inc()
		return nil, err
	}

	run := &checkoutRun{
		userID:   identity.UserID,
		req:      req,
		lockName: "checkout:" + identity.UserID.String(),
	}
	if req.IdempotencyKey != "" {
		run.idemKey = fmt.Sprintf("checkout:%s:%s", identity.UserID, req.IdempotencyKey)
		if order, ok := s.replay(ctx, run); ok {
			s.logger.Info("Duplicate checkout request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("order_number", order.OrderNumber))
			return &CheckoutResult{Order: order, Replayed: true}, nil
		}
	}

	defer func() {
		if err := s.releaseLock(context.WithoutCancel(ctx), run); err != nil {
			s.logger.Warn("Failed to release checkout lock", zap.Error(err))
		}
	}()

	saga := NewSaga("checkout", s.logger).
		AddStep(SagaStep{
			Name:       "acquire-lock",
			Run:        func(ctx context.Context) error { return s.acquireLock(ctx, run) },
			Compensate: func(ctx context.Context) error { return s.releaseLock(ctx, run) },
		}).
		AddStep(SagaStep{
			Name: "load-cart",
			Run:  func(ctx context.Context) error { return s.loadCart(ctx, run) },
		}).
		AddStep(SagaStep{
			Name: "snapshot",
			Run:  func(ctx context.Context) error { return s.snapshot(run) },
		}).
		AddStep(SagaStep{
			Name:       "persist-order",
			Run:        func(ctx context.Context) error { return s.persistOrder(ctx, run) },
			Compensate: func(ctx context.Context) error { return s.orders.DeleteOrder(ctx, run.order.ID) },
		}).
		AddStep(SagaStep{
			Name:       "clear-cart",
			Run:        func(ctx context.Context) error { return s.clearCart(ctx, run) },
			BestEffort: true,
		}).
		AddStep(SagaStep{
			Name:       "publish-event",
			Run:        func(ctx context.Context) error { return s.publishPlaced(ctx, run) },
			BestEffort: true,
		}).
		AddStep(SagaStep{
			Name:       "notify",
			Run:        func(ctx context.Context) error { return s.notify(ctx, run) },
			BestEffort: true,
		})
	if run.idemKey != "" {
		saga.AddStep(SagaStep{
			Name: "remember-idempotency-key",
			Run: func(ctx context.Context) error {
				return s.idempotency.RememberIdempotencyKey(ctx, run.idemKey, run.order.ID.String(), s.cfg.IdempotencyTTL)
			},
			BestEffort: true,
		})
	}

	if err := saga.Execute(ctx); err != nil {
		reason := "error"
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			reason = stepErr.Step
		}
		util.OrdersFailedTotal.WithLabelValues(reason).Inc()
		return nil, err
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("order_number", run.order.OrderNumber),
		zap.String("user_id", run.userID.String()),
		zap.String("total", run.order.TotalAmount.StringFixed(2)))

	return &CheckoutResult{Order: run.order, WhatsAppURL: run.whatsApp}, nil
}

func validateCheckout(req *CheckoutRequest) error {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.DeliveryAddress = strings.TrimSpace(req.DeliveryAddress)

	switch {
	case req.CustomerName == "":
		return invalid("customer_name is required")
	case req.CustomerEmail == "":
		return invalid("customer_email is required")
	case req.CustomerPhone == "":
		return invalid("customer_phone is required")
	case req.DeliveryAddress == "":
		return invalid("delivery_address is required")
	}
	return nil
}

// replay returns the order a previous request with the same idempotency key produced
func (s *CheckoutService) replay(ctx context.Context, run *checkoutRun) (*models.Order, bool) {
	value, found, err := s.idempotency.LookupIdempotencyKey(ctx, run.idemKey)
	if err != nil {
		s.logger.Warn("Failed to look up idempotency key", zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	orderID, err := uuid.Parse(value)
	if err != nil {
		return nil, false
	}
	order, err := s.orders.GetOrderForUser(ctx, orderID, run.userID)
	if err != nil {
		return nil, false
	}
	return order, true
}

func (s *CheckoutService) acquireLock(ctx context.Context, run *checkoutRun) error {
	token, ok, err := s.locker.AcquireLock(ctx, run.lockName, s.cfg.LockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCheckoutInProgress
	}
	run.lockToken = token
	return nil
}

// releaseLock is safe to call more than once
func (s *CheckoutService) releaseLock(ctx context.Context, run *checkoutRun) error {
	if run.lockToken == "" {
		return nil
	}
	token := run.lockToken
	run.lockToken = ""
	return s.locker.ReleaseLock(ctx, run.lockName, token)
}

func (s *CheckoutService) loadCart(ctx context.Context, run *checkoutRun) error {
	cart, err := s.carts.ListCartItems(ctx, run.userID)
	if err != nil {
		return fromStore(err)
	}
	if len(cart) == 0 {
		return ErrEmptyCart
	}
	run.cart = cart
	return nil
}

// snapshot freezes the cart into order items and computes the total
func (s *CheckoutService) snapshot(run *checkoutRun) error {
	items := make(models.OrderItems, 0, len(run.cart))
	for _, row := range run.cart {
		if row.Product == nil {
			return invalid("product %s is no longer available", row.ProductID)
		}
		items = append(items, models.OrderItem{
			ProductID: row.ProductID,
			Name:      row.Product.Name,
			Price:     row.Product.Price,
			Quantity:  row.Quantity,
			Image:     row.Product.Image,
		})
	}

	run.items = items
	run.total = items.Total()

	if run.req.ClientTotal != nil && !run.req.ClientTotal.Equal(run.total) {
		s.logger.Warn("Client total differs from cart total",
			zap.String("user_id", run.userID.String()),
			zap.String("client_total", run.req.ClientTotal.StringFixed(2)),
			zap.String("cart_total", run.total.StringFixed(2)))
	}
	return nil
}

func (s *CheckoutService) persistOrder(ctx context.Context, run *checkoutRun) error {
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		var number string
		number, err = NewOrderNumber(s.now())
		if err != nil {
			return fmt.Errorf("failed to generate order number: %w", err)
		}

		order := &models.Order{
			UserID:          run.userID,
			OrderNumber:     number,
			Items:           run.items,
			TotalAmount:     run.total,
			CustomerName:    run.req.CustomerName,
			CustomerEmail:   run.req.CustomerEmail,
			CustomerPhone:   run.req.CustomerPhone,
			DeliveryAddress: run.req.DeliveryAddress,
			Status:          models.OrderStatusPending,
		}

		err = fromStore(s.orders.CreateOrder(ctx, order))
		if err == nil {
			run.order = order
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return fmt.Errorf("failed to create order: %w", err)
		}
		s.logger.Warn("Order number collision, retrying", zap.String("order_number", number))
	}
	return fmt.Errorf("failed to create order: %w", err)
}

// clearCart removes only the rows that went into the order; items added
// while the checkout ran stay in the cart
func (s *CheckoutService) clearCart(ctx context.Context, run *checkoutRun) error {
	ids := make([]uuid.UUID, len(run.cart))
	for i, row := range run.cart {
		ids[i] = row.ID
	}
	_, err := s.carts.RemoveCartItems(ctx, run.userID, ids)
	return err
}

func (s *CheckoutService) publishPlaced(ctx context.Context, run *checkoutRun) error {
	event := &models.OrderPlacedEvent{
		BaseEvent:   models.NewBaseEvent(models.EventTypeOrderPlaced),
		OrderID:     run.order.ID,
		OrderNumber: run.order.OrderNumber,
		UserID:      run.userID,
		TotalAmount: run.order.TotalAmount,
		Items:       run.order.Items,
	}
	return s.eventPublisher.PublishOrderPlaced(ctx, event)
}

func (s *CheckoutService) notify(ctx context.Context, run *checkoutRun) error {
	prepared, err := s.notifier.PrepareInvoice(ctx, InvoiceFromOrder(run.order))
	if err != nil {
		return err
	}
	run.whatsApp = prepared.WhatsAppURL
	return nil
}
