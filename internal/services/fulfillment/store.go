package fulfillment

import (
	"context"

	"restaurant-orders/internal/models"
)

// Store gives the ticket update service transactional access to orders and
// tickets. Transact must run fn as a single atomic unit: either every write
// inside fn lands or none do.
type Store interface {
	Transact(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the per-transaction view of the order and ticket records.
// GetOrderForUpdate must serialize concurrent transactions touching the same
// order; transactions for different orders proceed in parallel.
type Tx interface {
	GetTicket(ctx context.Context, id int64) (models.Ticket, error)
	GetOrderForUpdate(ctx context.Context, id int64) (models.Order, error)
	UpdateTicketStatus(ctx context.Context, id int64, status models.TicketStatus) error
	ListTicketsByOrder(ctx context.Context, orderID int64) ([]models.Ticket, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
}
