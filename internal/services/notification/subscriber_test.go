package notification

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/models"
)

func newTestSubscriber() *Subscriber {
	return NewSubscriber(nil, logger.New("kitchen-notifier-test"))
}

func TestHandleMessage_Dispatch(t *testing.T) {
	sub := newTestSubscriber()

	tests := []struct {
		name string
		msg  interface{}
	}{
		{"status update", models.NewStatusUpdateMessage(7, 42, models.TicketPending, models.TicketPreparing, models.OrderPreparing, "chef-anna")},
		{"payment event", models.NewPaymentEventMessage(7, "order_Hx1", "pay_Hx1", models.PaymentCompleted)},
		{"order created", models.NewOrderCreatedMessage(
			models.Order{ID: 7, Type: models.DineIn, TableNumber: 4},
			[]models.Ticket{{ID: 42, OrderID: 7, ItemName: "Margherita", Quantity: 1}},
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.msg)
			require.NoError(t, err)
			assert.NoError(t, sub.handleMessage(context.Background(), body))
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		assert.Error(t, sub.handleMessage(context.Background(), []byte("{not json")))
	})

	t.Run("unknown kind is dropped without error", func(t *testing.T) {
		assert.NoError(t, sub.handleMessage(context.Background(), []byte(`{"kind":"mystery"}`)))
	})
}

func TestFormatStatusUpdate(t *testing.T) {
	sub := newTestSubscriber()

	tests := []struct {
		status   models.TicketStatus
		contains string
	}{
		{models.TicketPreparing, "being prepared"},
		{models.TicketPrepared, "ready"},
		{models.TicketServed, "served"},
		{models.TicketCompleted, "completed"},
		{models.TicketCancelled, "cancelled"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			msg := models.NewStatusUpdateMessage(7, 42, models.TicketPending, tt.status, models.OrderPreparing, "chef-anna")
			line := sub.formatStatusUpdate(msg)
			assert.Contains(t, line, tt.contains)
			assert.Contains(t, line, "42")
		})
	}
}
