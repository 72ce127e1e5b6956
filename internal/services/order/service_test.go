package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/models"
)

type fakeStore struct {
	orders  map[int64]models.Order
	tickets map[int64][]models.Ticket
	nextID  int64

	createErr   error
	cancelCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:  make(map[int64]models.Order),
		tickets: make(map[int64][]models.Ticket),
		nextID:  1,
	}
}

func (s *fakeStore) CreateOrderWithTickets(ctx context.Context, order models.Order, items []models.OrderItemRequest) (models.Order, []models.Ticket, error) {
	if s.createErr != nil {
		return models.Order{}, nil, s.createErr
	}

	order.ID = s.nextID
	s.nextID++

	tickets := make([]models.Ticket, 0, len(items))
	for i, item := range items {
		tickets = append(tickets, models.Ticket{
			ID:            order.ID*100 + int64(i),
			OrderID:       order.ID,
			ItemName:      item.ItemName,
			Quantity:      item.Quantity,
			Status:        models.TicketPending,
			PriorityLevel: item.PriorityLevel,
		})
	}

	s.orders[order.ID] = order
	s.tickets[order.ID] = tickets
	return order, tickets, nil
}

func (s *fakeStore) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (s *fakeStore) ListTickets(ctx context.Context, orderID int64) ([]models.Ticket, error) {
	return s.tickets[orderID], nil
}

func (s *fakeStore) CancelOrder(ctx context.Context, orderID int64) error {
	s.cancelCalls++
	order := s.orders[orderID]
	order.Status = models.OrderCancelled
	s.orders[orderID] = order

	tickets := s.tickets[orderID]
	for i, t := range tickets {
		switch t.Status {
		case models.TicketServed, models.TicketCompleted, models.TicketCancelled:
		default:
			tickets[i].Status = models.TicketCancelled
		}
	}
	return nil
}

type fakeNotifier struct {
	published []interface{}
	err       error
}

func (n *fakeNotifier) PublishOrderCreated(ctx context.Context, msg interface{}) error {
	if n.err != nil {
		return n.err
	}
	n.published = append(n.published, msg)
	return nil
}

func validRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		OrderType:   "takeaway",
		TableNumber: 0,
		Items: []models.OrderItemRequest{
			{ItemName: "Margherita", Quantity: 2, Price: 9.50},
			{ItemName: "Garlic Bread", Quantity: 1, Price: 4.00},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewService(store, notifier, logger.New("order-service-test"))

	result, err := svc.CreateOrder(context.Background(), validRequest(), "cust-1", "req-1")
	require.NoError(t, err)

	assert.Equal(t, "cust-1", result.Order.CustomerID)
	assert.Equal(t, models.OrderPending, result.Order.Status)
	assert.Equal(t, models.PaymentPending, result.Order.PaymentStatus)
	assert.InDelta(t, 23.00, result.Order.TotalPrice, 0.001)
	require.Len(t, result.Tickets, 2)
	for _, ticket := range result.Tickets {
		assert.Equal(t, models.TicketPending, ticket.Status)
		assert.Equal(t, result.Order.ID, ticket.OrderID)
	}

	require.Len(t, notifier.published, 1)
	msg, ok := notifier.published[0].(*models.OrderCreatedMessage)
	require.True(t, ok)
	assert.Equal(t, result.Order.ID, msg.OrderID)
	assert.Len(t, msg.Items, 2)
}

func TestCreateOrder_PublishFailureNonFatal(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{err: errors.New("broker unavailable")}
	svc := NewService(store, notifier, logger.New("order-service-test"))

	result, err := svc.CreateOrder(context.Background(), validRequest(), "cust-1", "req-1")
	require.NoError(t, err)
	assert.Contains(t, store.orders, result.Order.ID)
}

func TestCreateOrder_PreVerifiedPayment(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeNotifier{}, logger.New("order-service-test"))

	gwOrder := "order_Hx1"
	gwPayment := "pay_Hx1"
	req := validRequest()
	req.RazorpayOrderID = &gwOrder
	req.RazorpayPaymentID = &gwPayment

	result, err := svc.CreateOrder(context.Background(), req, "cust-1", "req-1")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCompleted, result.Order.PaymentStatus)
	require.NotNil(t, result.Order.RazorpayOrderID)
	assert.Equal(t, gwOrder, *result.Order.RazorpayOrderID)
	require.NotNil(t, result.Order.RazorpayPaymentID)
	assert.Equal(t, gwPayment, *result.Order.RazorpayPaymentID)
}

func TestCreateOrder_ValidationFailures(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeNotifier{}, logger.New("order-service-test"))

	gwOrder := "order_Hx1"

	tests := []struct {
		name   string
		mutate func(*models.CreateOrderRequest)
	}{
		{"no items", func(r *models.CreateOrderRequest) { r.Items = nil }},
		{"bad order type", func(r *models.CreateOrderRequest) { r.OrderType = "drive_through" }},
		{"dine_in without table", func(r *models.CreateOrderRequest) {
			r.OrderType = "dine_in"
			r.TableNumber = 0
		}},
		{"zero quantity", func(r *models.CreateOrderRequest) { r.Items[0].Quantity = 0 }},
		{"free item", func(r *models.CreateOrderRequest) { r.Items[0].Price = 0 }},
		{"gateway order without payment", func(r *models.CreateOrderRequest) { r.RazorpayOrderID = &gwOrder }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := svc.CreateOrder(context.Background(), req, "cust-1", "req-1")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Empty(t, store.orders, "nothing should be stored on validation failure")
		})
	}
}

func TestGetOrder_Ownership(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeNotifier{}, logger.New("order-service-test"))

	created, err := svc.CreateOrder(context.Background(), validRequest(), "cust-1", "req-1")
	require.NoError(t, err)

	t.Run("owner sees order with tickets", func(t *testing.T) {
		got, err := svc.GetOrder(context.Background(), created.Order.ID, "cust-1")
		require.NoError(t, err)
		assert.Equal(t, created.Order.ID, got.Order.ID)
		assert.Len(t, got.Tickets, 2)
	})

	t.Run("other customer is rejected", func(t *testing.T) {
		_, err := svc.GetOrder(context.Background(), created.Order.ID, "cust-2")
		assert.ErrorIs(t, err, ErrOrderNotOwned)
	})

	t.Run("staff sees any order", func(t *testing.T) {
		got, err := svc.GetOrder(context.Background(), created.Order.ID, "")
		require.NoError(t, err)
		assert.Equal(t, created.Order.ID, got.Order.ID)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.GetOrder(context.Background(), 9999, "cust-1")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestCancelOrder(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeNotifier{}, logger.New("order-service-test"))

	created, err := svc.CreateOrder(context.Background(), validRequest(), "cust-1", "req-1")
	require.NoError(t, err)

	err = svc.CancelOrder(context.Background(), created.Order.ID, "cust-1", "req-2")
	require.NoError(t, err)

	order := store.orders[created.Order.ID]
	assert.Equal(t, models.OrderCancelled, order.Status)
	for _, ticket := range store.tickets[created.Order.ID] {
		assert.Equal(t, models.TicketCancelled, ticket.Status)
	}
}

func TestCancelOrder_TerminalStates(t *testing.T) {
	tests := []struct {
		name   string
		status models.OrderStatus
	}{
		{"served order", models.OrderServed},
		{"completed order", models.OrderCompleted},
		{"already cancelled order", models.OrderCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := NewService(store, &fakeNotifier{}, logger.New("order-service-test"))

			created, err := svc.CreateOrder(context.Background(), validRequest(), "cust-1", "req-1")
			require.NoError(t, err)

			order := store.orders[created.Order.ID]
			order.Status = tt.status
			store.orders[created.Order.ID] = order

			err = svc.CancelOrder(context.Background(), created.Order.ID, "cust-1", "req-2")
			assert.ErrorIs(t, err, ErrNotCancellable)
			assert.Zero(t, store.cancelCalls)
		})
	}
}

func TestCancelOrder_Ownership(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeNotifier{}, logger.New("order-service-test"))

	created, err := svc.CreateOrder(context.Background(), validRequest(), "cust-1", "req-1")
	require.NoError(t, err)

	err = svc.CancelOrder(context.Background(), created.Order.ID, "cust-2", "req-2")
	assert.ErrorIs(t, err, ErrOrderNotOwned)
	assert.Equal(t, models.OrderPending, store.orders[created.Order.ID].Status)
}

func TestCreateOrder_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("connection reset")
	svc := NewService(store, &fakeNotifier{}, logger.New("order-service-test"))

	_, err := svc.CreateOrder(context.Background(), validRequest(), "cust-1", "req-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidRequest)
}
