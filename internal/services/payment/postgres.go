package payment

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

// NewPostgresStore creates a Postgres-backed payment store.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID, &order.CustomerID, &order.StaffID, &order.TableNumber, &order.Type,
		&order.TotalPrice, &order.Status, &order.PaymentStatus, &order.PaymentMethod,
		&order.RazorpayOrderID, &order.RazorpayPaymentID, &order.SpecialInstructions,
		&order.CreatedAt, &order.UpdatedAt,
	)
	return order, err
}

func (s *PostgresStore) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	order, err := scanOrder(s.db.QueryRow(ctx, database.GetOrderSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *PostgresStore) GetOrderByGatewayPayment(ctx context.Context, gatewayPaymentID string) (models.Order, error) {
	order, err := scanOrder(s.db.QueryRow(ctx, database.GetOrderByGatewayPaymentSQL, gatewayPaymentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, ErrPaymentNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to get order by payment: %w", err)
	}
	return order, nil
}

func (s *PostgresStore) SetGatewayOrder(ctx context.Context, orderID int64, gatewayOrderID string) error {
	if err := s.db.Exec(ctx, database.SetGatewayOrderSQL, gatewayOrderID, models.PaymentMethodRazorpay, orderID); err != nil {
		return fmt.Errorf("failed to store gateway order id: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkOrderPaid(ctx context.Context, orderID int64, gatewayOrderID, gatewayPaymentID string) error {
	if err := s.db.Exec(ctx, database.MarkOrderPaidSQL, models.PaymentMethodRazorpay, gatewayOrderID, gatewayPaymentID, orderID); err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetPaymentStatus(ctx context.Context, orderID int64, status models.PaymentStatus) error {
	if err := s.db.Exec(ctx, database.UpdatePaymentStatusSQL, status, orderID); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetPaymentStatusByGatewayOrder(ctx context.Context, gatewayOrderID string, gatewayPaymentID *string, status models.PaymentStatus) (models.Order, error) {
	if err := s.db.Exec(ctx, database.UpdatePaymentStatusByGatewayOrderSQL, status, gatewayPaymentID, gatewayOrderID); err != nil {
		return models.Order{}, fmt.Errorf("failed to update payment status: %w", err)
	}

	order, err := scanOrder(s.db.QueryRow(ctx, database.GetOrderByGatewayOrderSQL, gatewayOrderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to get order by gateway order: %w", err)
	}
	return order, nil
}
