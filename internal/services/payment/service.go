package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"restaurant-orders/internal/config"
	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/models"
)

// Notifier publishes payment events. Publish failures never fail the
// operation itself.
type Notifier interface {
	PublishPaymentEvent(ctx context.Context, msg interface{}) error
}

// VerificationResult is returned by VerifyPayment.
type VerificationResult struct {
	Verified          bool   `json:"verified"`
	OrderID           *int64 `json:"order_id,omitempty"`
	PaymentStatus     string `json:"payment_status,omitempty"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
}

// Service establishes, with cryptographic assurance, that payments claimed by
// clients actually occurred at the gateway before an order is treated as
// paid.
type Service struct {
	store    Store
	gateway  Gateway
	notifier Notifier
	logger   *logger.Logger

	keySecret     string
	webhookSecret string
}

// NewService creates a payment service. Both secrets were validated at
// startup by config.Load.
func NewService(store Store, gateway Gateway, notifier Notifier, cfg config.RazorpayConfig, log *logger.Logger) *Service {
	return &Service{
		store:         store,
		gateway:       gateway,
		notifier:      notifier,
		logger:        log,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
	}
}

// CreateGatewayOrder registers an unpaid local order with the gateway so the
// client can open checkout, and stores the issued gateway order id.
// Idempotent: an order that already has a gateway order id returns it as is.
func (s *Service) CreateGatewayOrder(ctx context.Context, orderID int64, callerID, requestID string) (string, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.CustomerID != callerID {
		return "", ErrOrderNotOwned
	}

	if order.RazorpayOrderID != nil {
		return *order.RazorpayOrderID, nil
	}

	receipt := uuid.NewString()
	gatewayOrderID, err := s.gateway.CreateRemoteOrder(ctx, ToPaise(order.TotalPrice), "INR", receipt)
	if err != nil {
		return "", err
	}

	if err := s.store.SetGatewayOrder(ctx, orderID, gatewayOrderID); err != nil {
		return "", err
	}

	s.logger.Info("gateway_order_created", fmt.Sprintf("Gateway order created for order %d", orderID), requestID, map[string]interface{}{
		"order_id":          orderID,
		"razorpay_order_id": gatewayOrderID,
		"receipt":           receipt,
	})

	return gatewayOrderID, nil
}

// VerifyPayment checks the checkout signature for the given gateway order and
// payment ids. With a local order id it additionally marks that order paid,
// after an ownership check; repeating the identical call is a no-op returning
// the same success.
func (s *Service) VerifyPayment(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string, localOrderID *int64, callerID, requestID string) (*VerificationResult, error) {
	if !checkoutSignatureValid(s.keySecret, gatewayOrderID, gatewayPaymentID, signature) {
		s.logger.Warn("payment_verification_failed", "Checkout signature mismatch", requestID, map[string]interface{}{
			"razorpay_order_id": gatewayOrderID,
		})
		return nil, ErrInvalidSignature
	}

	result := &VerificationResult{
		Verified:          true,
		RazorpayOrderID:   gatewayOrderID,
		RazorpayPaymentID: gatewayPaymentID,
	}

	// Payment-before-order flow: the order record is created afterward with
	// the verified payment fields attached.
	if localOrderID == nil {
		return result, nil
	}

	order, err := s.store.GetOrder(ctx, *localOrderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != callerID {
		return nil, ErrOrderNotOwned
	}

	result.OrderID = localOrderID
	result.PaymentStatus = string(models.PaymentCompleted)

	// Idempotent re-verification of an already-recorded payment
	if order.PaymentStatus == models.PaymentCompleted &&
		order.RazorpayPaymentID != nil && *order.RazorpayPaymentID == gatewayPaymentID {
		return result, nil
	}

	if err := s.store.MarkOrderPaid(ctx, *localOrderID, gatewayOrderID, gatewayPaymentID); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, requestID,
		models.NewPaymentEventMessage(*localOrderID, gatewayOrderID, gatewayPaymentID, models.PaymentCompleted))

	s.logger.Info("payment_verified", fmt.Sprintf("Order %d marked paid", *localOrderID), requestID, map[string]interface{}{
		"order_id":            *localOrderID,
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": gatewayPaymentID,
	})

	return result, nil
}

// webhookEvent models the subset of the gateway's webhook payload this
// service reads.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// webhookStatusByEvent maps trusted gateway events to payment statuses.
var webhookStatusByEvent = map[string]models.PaymentStatus{
	"payment.captured": models.PaymentCompleted,
	"payment.failed":   models.PaymentFailed,
	"payment.refunded": models.PaymentRefunded,
}

// HandleWebhook verifies a raw webhook body against the webhook secret and
// applies the carried payment event. The order is located by the gateway's
// order id; fulfillment status is never touched.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature, requestID string) error {
	if !webhookSignatureValid(s.webhookSecret, body, signature) {
		s.logger.Warn("webhook_verification_failed", "Webhook signature mismatch", requestID, nil)
		return ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to parse webhook event: %w", err)
	}

	status, handled := webhookStatusByEvent[event.Event]
	if !handled {
		s.logger.Debug("webhook_event_ignored", fmt.Sprintf("Ignoring event %s", event.Event), requestID, nil)
		return nil
	}

	entity := event.Payload.Payment.Entity
	if entity.OrderID == "" {
		return fmt.Errorf("webhook event %s carries no order id", event.Event)
	}

	var paymentID *string
	if entity.ID != "" {
		paymentID = &entity.ID
	}

	order, err := s.store.SetPaymentStatusByGatewayOrder(ctx, entity.OrderID, paymentID, status)
	if err != nil {
		return err
	}

	s.publishEvent(ctx, requestID,
		models.NewPaymentEventMessage(order.ID, entity.OrderID, entity.ID, status))

	s.logger.Info("webhook_processed", fmt.Sprintf("Event %s applied to order %d", event.Event, order.ID), requestID, map[string]interface{}{
		"order_id":          order.ID,
		"event":             event.Event,
		"payment_status":    string(status),
		"razorpay_order_id": entity.OrderID,
	})

	return nil
}

// Refund refunds a previously verified payment, optionally partially, and
// marks the order refunded. Fulfillment status is left alone.
func (s *Service) Refund(ctx context.Context, gatewayPaymentID string, amount *float64, requestID string) (string, error) {
	order, err := s.store.GetOrderByGatewayPayment(ctx, gatewayPaymentID)
	if err != nil {
		return "", err
	}
	if order.PaymentStatus != models.PaymentCompleted {
		return "", fmt.Errorf("%w: payment status is %s", ErrNotRefundable, order.PaymentStatus)
	}

	var amountPaise *int64
	if amount != nil {
		paise := ToPaise(*amount)
		amountPaise = &paise
	}

	refundID, err := s.gateway.Refund(ctx, gatewayPaymentID, amountPaise)
	if err != nil {
		return "", err
	}

	if err := s.store.SetPaymentStatus(ctx, order.ID, models.PaymentRefunded); err != nil {
		return "", err
	}

	rzpOrderID := ""
	if order.RazorpayOrderID != nil {
		rzpOrderID = *order.RazorpayOrderID
	}
	s.publishEvent(ctx, requestID,
		models.NewPaymentEventMessage(order.ID, rzpOrderID, gatewayPaymentID, models.PaymentRefunded))

	s.logger.Info("payment_refunded", fmt.Sprintf("Order %d refunded", order.ID), requestID, map[string]interface{}{
		"order_id":            order.ID,
		"razorpay_payment_id": gatewayPaymentID,
		"refund_id":           refundID,
	})

	return refundID, nil
}

func (s *Service) publishEvent(ctx context.Context, requestID string, msg *models.PaymentEventMessage) {
	if err := s.notifier.PublishPaymentEvent(ctx, msg); err != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish payment event", requestID, err, map[string]interface{}{
			"order_id": msg.OrderID,
		})
	}
}
