package order

import (
	"context"
	"errors"
	"fmt"

	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/models"
)

// OrderWithTickets is an order together with its kitchen tickets.
type OrderWithTickets struct {
	Order   models.Order    `json:"order"`
	Tickets []models.Ticket `json:"tickets"`
}

// Notifier announces new orders to kitchen displays. Publish failures never
// fail the request that triggered them.
type Notifier interface {
	PublishOrderCreated(ctx context.Context, msg interface{}) error
}

// Service creates orders with their kitchen tickets and handles customer
// cancellation. Fulfillment progression and payment settlement are owned by
// their own services.
type Service struct {
	store    Store
	notifier Notifier
	logger   *logger.Logger
}

// NewService creates a new order service.
func NewService(store Store, notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   log,
	}
}

// CreateOrder validates the request and creates the order plus one ticket per
// line item atomically. When verified gateway payment fields are attached
// (payment-before-order flow) the order starts with payment already
// completed.
func (s *Service) CreateOrder(ctx context.Context, req *models.CreateOrderRequest, customerID, requestID string) (*OrderWithTickets, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	order := models.Order{
		CustomerID:          customerID,
		TableNumber:         req.TableNumber,
		Type:                models.OrderType(req.OrderType),
		TotalPrice:          req.CalculateTotalPrice(),
		Status:              models.OrderPending,
		PaymentStatus:       models.PaymentPending,
		PaymentMethod:       models.PaymentMethodRazorpay,
		SpecialInstructions: req.SpecialInstructions,
	}

	if req.RazorpayOrderID != nil && req.RazorpayPaymentID != nil {
		order.PaymentStatus = models.PaymentCompleted
		order.RazorpayOrderID = req.RazorpayOrderID
		order.RazorpayPaymentID = req.RazorpayPaymentID
	}

	created, tickets, err := s.store.CreateOrderWithTickets(ctx, order, req.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	msg := models.NewOrderCreatedMessage(created, tickets)
	if err := s.notifier.PublishOrderCreated(ctx, msg); err != nil {
		s.logger.Error("notification_publish_failed", "Order was created but the kitchen display notification failed", requestID, err, map[string]interface{}{
			"order_id": created.ID,
		})
	}

	s.logger.Info("order_created", fmt.Sprintf("Order %d created with %d tickets", created.ID, len(tickets)), requestID, map[string]interface{}{
		"order_id":       created.ID,
		"customer_id":    customerID,
		"total_price":    created.TotalPrice,
		"ticket_count":   len(tickets),
		"payment_status": created.PaymentStatus,
	})

	return &OrderWithTickets{Order: created, Tickets: tickets}, nil
}

// GetOrder returns an order with its tickets. Customers only see their own
// orders; staff roles pass an empty callerID and see any.
func (s *Service) GetOrder(ctx context.Context, orderID int64, callerID string) (*OrderWithTickets, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if callerID != "" && order.CustomerID != callerID {
		return nil, ErrOrderNotOwned
	}

	tickets, err := s.store.ListTickets(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderWithTickets{Order: order, Tickets: tickets}, nil
}

// CancelOrder moves the order to its terminal cancelled status and cancels
// every ticket still in flight. Orders already served, completed or cancelled
// stay as they are.
func (s *Service) CancelOrder(ctx context.Context, orderID int64, callerID, requestID string) error {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if callerID != "" && order.CustomerID != callerID {
		return ErrOrderNotOwned
	}

	switch order.Status {
	case models.OrderServed, models.OrderCompleted, models.OrderCancelled:
		return fmt.Errorf("%w: status is %s", ErrNotCancellable, order.Status)
	}

	if err := s.store.CancelOrder(ctx, orderID); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info("order_cancelled", fmt.Sprintf("Order %d cancelled", orderID), requestID, map[string]interface{}{
		"order_id":    orderID,
		"customer_id": order.CustomerID,
	})

	return nil
}

// HealthCheck reports whether the backing store is reachable.
func (s *Service) HealthCheck(ctx context.Context) bool {
	_, err := s.store.GetOrder(ctx, 0)
	return err == nil || errors.Is(err, ErrOrderNotFound)
}
