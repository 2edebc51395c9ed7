package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gnsons/internal/metrics"
	"gnsons/internal/models"
	"gnsons/internal/repositories"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const statusUpdateAttempts = 3

// CreateOrderInput is the checkout payload.
type CreateOrderInput struct {
	UserID          string             `json:"userId"`
	Items           []models.OrderItem `json:"items" validate:"required,min=1,dive"`
	TotalPrice      float64            `json:"totalPrice" validate:"required,gt=0"`
	DiscountAmount  *float64           `json:"discountAmount" validate:"omitempty,gte=0"`
	CouponCode      string             `json:"couponCode"`
	ShippingAddress string             `json:"shippingAddress" validate:"required"`
	CustomerEmail   string             `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone   string             `json:"customerPhone"`
	PaymentMethod   string             `json:"paymentMethod" validate:"required"`
}

// CreateOrderResult is the persisted order plus the outcome of the
// best-effort actions that followed it. The order is authoritative either way.
type CreateOrderResult struct {
	Order        *models.Order `json:"order"`
	Notification SideEffect    `json:"notification"`
	CartReset    SideEffect    `json:"cartReset"`
}

// OrderService owns the order ledger.
type OrderService struct {
	orders      repositories.OrderRepository
	carts       repositories.CartRepository
	notifier    Notifier
	transitions TransitionTable
	log         *zap.Logger
	now         func() time.Time
}

// NewOrderService creates an OrderService with the permissive transition table.
func NewOrderService(orders repositories.OrderRepository, carts repositories.CartRepository, notifier Notifier, log *zap.Logger) *OrderService {
	return &OrderService{
		orders:      orders,
		carts:       carts,
		notifier:    notifier,
		transitions: PermissiveTransitions(),
		log:         log,
		now:         time.Now,
	}
}

// WithTransitions replaces the status transition policy.
func (s *OrderService) WithTransitions(table TransitionTable) *OrderService {
	s.transitions = table
	return s
}

func validateOrderInput(in CreateOrderInput) error {
	if !models.PaymentMethod(in.PaymentMethod).Valid() {
		return fmt.Errorf("%w: invalid payment method %q", ErrValidation, in.PaymentMethod)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity < 1 || item.Price < 0 {
			return fmt.Errorf("%w: invalid order item %q", ErrValidation, item.ProductID)
		}
	}
	if in.TotalPrice <= 0 {
		return fmt.Errorf("%w: totalPrice is required", ErrValidation)
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return fmt.Errorf("%w: shippingAddress is required", ErrValidation)
	}
	if in.DiscountAmount != nil && *in.DiscountAmount < 0 {
		return fmt.Errorf("%w: discountAmount must not be negative", ErrValidation)
	}
	return nil
}

// NewTrackingNumber returns a display tracking number derived from a ULID:
// a millisecond timestamp followed by a random suffix.
func NewTrackingNumber(at time.Time) string {
	return "GN-" + ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
}

// CreateOrder validates and persists a Pending order, then attempts the
// customer notification and the cart reset. Neither follow-up can fail the call.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	discount := decimal.Zero
	if in.DiscountAmount != nil {
		discount = decimal.NewFromFloat(*in.DiscountAmount)
	}
	total := decimal.NewFromFloat(in.TotalPrice)

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = models.GuestUserID
	}

	now := s.now()
	order := &models.Order{
		UserID:          userID,
		Items:           in.Items,
		TotalPrice:      in.TotalPrice,
		DiscountAmount:  discount.InexactFloat64(),
		FinalPrice:      total.Sub(discount).InexactFloat64(),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		PaymentMethod:   models.PaymentMethod(in.PaymentMethod),
		Status:          models.StatusPending,
		TrackingNumber:  NewTrackingNumber(now),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if code := strings.TrimSpace(in.CouponCode); code != "" {
		order.CouponCode = &code
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	metrics.OrdersCreated.Inc()
	s.log.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Float64("final_price", order.FinalPrice))

	result := &CreateOrderResult{Order: order}

	if order.CustomerEmail != "" {
		result.Notification = attempt(func() error {
			return s.notifier.Notify(ctx, orderConfirmationEmail(order))
		})
		if result.Notification.Err != nil {
			metrics.SideEffectFailures.WithLabelValues("order_email").Inc()
			s.log.Warn("Order confirmation email failed",
				zap.String("order_id", order.ID), zap.Error(result.Notification.Err))
		}
	}

	if userID != models.GuestUserID {
		result.CartReset = attempt(func() error {
			return s.carts.Reset(ctx, userID)
		})
		if result.CartReset.Err != nil {
			metrics.SideEffectFailures.WithLabelValues("cart_reset").Inc()
			s.log.Warn("Cart reset after order failed",
				zap.String("order_id", order.ID), zap.String("user_id", userID), zap.Error(result.CartReset.Err))
		}
	}

	return result, nil
}

// UpdateStatus moves an order to status if the transition table allows it.
// The write is conditional on the version read, and is retried on a lost race.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	for i := 0; i < statusUpdateAttempts; i++ {
		order, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !s.transitions.Allows(order.Status, status) {
			return nil, fmt.Errorf("%w: %s to %s", ErrTransitionDenied, order.Status, status)
		}

		err = s.orders.UpdateStatus(ctx, id, order.Version, status)
		if errors.Is(err, repositories.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update order status: %w", err)
		}

		previous := order.Status
		order.Status = status
		order.Version++
		order.UpdatedAt = s.now()
		metrics.OrderStatusChanges.WithLabelValues(string(status)).Inc()
		s.log.Info("order.status_updated",
			zap.String("order_id", order.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(status)))
		return order, nil
	}
	return nil, ErrConflict
}

// GetUserOrders returns a user's orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// GetOrderByID returns one order.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// GetAllOrders returns every order, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListAll(ctx)
}
