package order

import (
	"context"

	"restaurant-orders/internal/models"
)

// Store persists orders and their tickets. CreateOrderWithTickets and
// CancelOrder are atomic: the order and its tickets change together or not at
// all.
type Store interface {
	CreateOrderWithTickets(ctx context.Context, order models.Order, items []models.OrderItemRequest) (models.Order, []models.Ticket, error)
	GetOrder(ctx context.Context, id int64) (models.Order, error)
	ListTickets(ctx context.Context, orderID int64) ([]models.Ticket, error)
	CancelOrder(ctx context.Context, orderID int64) error
}
