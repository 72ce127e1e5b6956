package payment

import (
	"context"
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"

	"restaurant-orders/internal/config"
)

// GatewayPayment is the subset of a gateway payment record this service
// needs.
type GatewayPayment struct {
	ID      string
	OrderID string
	Status  string
	Amount  int64
}

// Gateway abstracts the payment provider. Implementations may fail with
// network errors; callers surface those as ErrExternalService.
type Gateway interface {
	CreateRemoteOrder(ctx context.Context, amountPaise int64, currency, receipt string) (string, error)
	FetchPayment(ctx context.Context, paymentID string) (GatewayPayment, error)
	Refund(ctx context.Context, paymentID string, amountPaise *int64) (string, error)
}

// RazorpayGateway implements Gateway on the Razorpay SDK client.
type RazorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway creates a gateway client from the configured
// credentials.
func NewRazorpayGateway(cfg config.RazorpayConfig) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
	}
}

// CreateRemoteOrder registers an order with the gateway and returns its id.
func (g *RazorpayGateway) CreateRemoteOrder(ctx context.Context, amountPaise int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create order: %s", ErrExternalService, err)
	}

	id, ok := body["id"].(string)
	if !ok {
		return "", fmt.Errorf("%w: create order response missing id", ErrExternalService)
	}
	return id, nil
}

// FetchPayment retrieves a payment record from the gateway.
func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (GatewayPayment, error) {
	body, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return GatewayPayment{}, fmt.Errorf("%w: fetch payment: %s", ErrExternalService, err)
	}

	payment := GatewayPayment{ID: paymentID}
	if v, ok := body["order_id"].(string); ok {
		payment.OrderID = v
	}
	if v, ok := body["status"].(string); ok {
		payment.Status = v
	}
	if v, ok := body["amount"].(float64); ok {
		payment.Amount = int64(v)
	}
	return payment, nil
}

// Refund issues a full or partial refund and returns the refund id.
func (g *RazorpayGateway) Refund(ctx context.Context, paymentID string, amountPaise *int64) (string, error) {
	var body map[string]interface{}
	var err error

	if amountPaise != nil {
		body, err = g.client.Payment.Refund(paymentID, int(*amountPaise), nil, nil)
	} else {
		payment, fetchErr := g.FetchPayment(ctx, paymentID)
		if fetchErr != nil {
			return "", fetchErr
		}
		body, err = g.client.Payment.Refund(paymentID, int(payment.Amount), nil, nil)
	}
	if err != nil {
		return "", fmt.Errorf("%w: refund: %s", ErrExternalService, err)
	}

	id, ok := body["id"].(string)
	if !ok {
		return "", fmt.Errorf("%w: refund response missing id", ErrExternalService)
	}
	return id, nil
}

// ToPaise converts a decimal price to the gateway's integer minor unit.
func ToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
