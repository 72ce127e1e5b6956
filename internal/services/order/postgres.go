package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"restaurant-orders/internal/database"
	"restaurant-orders/internal/models"
)

// PostgresStore implements Store on the shared connection pool.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a Postgres-backed order store.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateOrderWithTickets inserts the order row and one ticket per line item
// inside a single transaction. Either everything lands or nothing does.
func (s *PostgresStore) CreateOrderWithTickets(ctx context.Context, order models.Order, items []models.OrderItemRequest) (models.Order, []models.Ticket, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Order{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, database.InsertOrderSQL,
		order.CustomerID, order.TableNumber, order.Type, order.TotalPrice,
		order.Status, order.PaymentStatus, order.PaymentMethod,
		order.RazorpayOrderID, order.RazorpayPaymentID, order.SpecialInstructions,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return models.Order{}, nil, fmt.Errorf("failed to insert order: %w", err)
	}
	order.UpdatedAt = order.CreatedAt

	tickets := make([]models.Ticket, 0, len(items))
	for _, item := range items {
		ticket := models.Ticket{
			OrderID:        order.ID,
			ItemName:       item.ItemName,
			Quantity:       item.Quantity,
			Customizations: item.Customizations,
			Status:         models.TicketPending,
			PriorityLevel:  item.PriorityLevel,
		}
		err = tx.QueryRow(ctx, database.InsertTicketSQL,
			ticket.OrderID, ticket.ItemName, ticket.Quantity,
			ticket.Customizations, ticket.Status, ticket.PriorityLevel,
		).Scan(&ticket.ID, &ticket.CreatedAt)
		if err != nil {
			return models.Order{}, nil, fmt.Errorf("failed to insert ticket: %w", err)
		}
		ticket.UpdatedAt = ticket.CreatedAt
		tickets = append(tickets, ticket)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Order{}, nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return order, tickets, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	var order models.Order
	err := s.db.QueryRow(ctx, database.GetOrderSQL, id).Scan(
		&order.ID, &order.CustomerID, &order.StaffID, &order.TableNumber, &order.Type,
		&order.TotalPrice, &order.Status, &order.PaymentStatus, &order.PaymentMethod,
		&order.RazorpayOrderID, &order.RazorpayPaymentID, &order.SpecialInstructions,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *PostgresStore) ListTickets(ctx context.Context, orderID int64) ([]models.Ticket, error) {
	rows, err := s.db.Query(ctx, database.ListTicketsByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var t models.Ticket
		err := rows.Scan(
			&t.ID, &t.OrderID, &t.ItemName, &t.Quantity, &t.Customizations,
			&t.Status, &t.PriorityLevel, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// CancelOrder marks the order cancelled and cancels every ticket that has not
// reached a terminal status, in one transaction.
func (s *PostgresStore) CancelOrder(ctx context.Context, orderID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, database.CancelOrderSQL, orderID); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	if _, err := tx.Exec(ctx, database.CancelActiveTicketsSQL, orderID); err != nil {
		return fmt.Errorf("failed to cancel tickets: %w", err)
	}

	return tx.Commit(ctx)
}
