package payment

import (
	"context"

	"restaurant-orders/internal/models"
)

// Store is the payment service's view of order persistence. It only ever
// touches the payment field group; fulfillment status is owned elsewhere.
type Store interface {
	GetOrder(ctx context.Context, id int64) (models.Order, error)
	GetOrderByGatewayPayment(ctx context.Context, gatewayPaymentID string) (models.Order, error)
	SetGatewayOrder(ctx context.Context, orderID int64, gatewayOrderID string) error
	MarkOrderPaid(ctx context.Context, orderID int64, gatewayOrderID, gatewayPaymentID string) error
	SetPaymentStatus(ctx context.Context, orderID int64, status models.PaymentStatus) error
	SetPaymentStatusByGatewayOrder(ctx context.Context, gatewayOrderID string, gatewayPaymentID *string, status models.PaymentStatus) (models.Order, error)
}
