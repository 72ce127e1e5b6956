package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"restaurant-orders/internal/database"
	"restaurant-orders/internal/models"
)

// PostgresStore implements Store on the shared connection pool. The order row
// lock taken by GetOrderForUpdate serializes the read-aggregate-write sequence
// per order.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a Postgres-backed fulfillment store.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Transact runs fn inside a database transaction.
func (s *PostgresStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	pgxTx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer pgxTx.Rollback(ctx)

	if err := fn(&postgresTx{tx: pgxTx}); err != nil {
		return err
	}

	if err := pgxTx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) GetTicket(ctx context.Context, id int64) (models.Ticket, error) {
	var ticket models.Ticket
	err := t.tx.QueryRow(ctx, database.GetTicketSQL, id).Scan(
		&ticket.ID, &ticket.OrderID, &ticket.ItemName, &ticket.Quantity,
		&ticket.Customizations, &ticket.Status, &ticket.PriorityLevel,
		&ticket.CreatedAt, &ticket.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Ticket{}, ErrTicketNotFound
	}
	if err != nil {
		return models.Ticket{}, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

func (t *postgresTx) GetOrderForUpdate(ctx context.Context, id int64) (models.Order, error) {
	var order models.Order
	err := t.tx.QueryRow(ctx, database.GetOrderForUpdateSQL, id).Scan(
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

func (t *postgresTx) UpdateTicketStatus(ctx context.Context, id int64, status models.TicketStatus) error {
	if _, err := t.tx.Exec(ctx, database.UpdateTicketStatusSQL, status, id); err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	return nil
}

func (t *postgresTx) ListTicketsByOrder(ctx context.Context, orderID int64) ([]models.Ticket, error) {
	rows, err := t.tx.Query(ctx, database.ListTicketsByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var ticket models.Ticket
		if err := rows.Scan(
			&ticket.ID, &ticket.OrderID, &ticket.ItemName, &ticket.Quantity,
			&ticket.Customizations, &ticket.Status, &ticket.PriorityLevel,
			&ticket.CreatedAt, &ticket.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (t *postgresTx) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	if _, err := t.tx.Exec(ctx, database.UpdateOrderStatusSQL, status, id); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}
