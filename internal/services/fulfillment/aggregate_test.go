package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"restaurant-orders/internal/models"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []models.TicketStatus
		want     models.OrderStatus
	}{
		{"empty set", nil, models.OrderPending},
		{"all pending", statuses("pending", "pending", "pending"), models.OrderPending},
		{"all served", statuses("served", "served", "served"), models.OrderServed},
		{"all prepared", statuses("prepared", "prepared"), models.OrderPrepared},
		{"all completed", statuses("completed", "completed"), models.OrderCompleted},
		{"escalation dominates pending", statuses("pending", "preparing"), models.OrderPreparing},
		{"escalation dominates prepared", statuses("prepared", "preparing", "pending"), models.OrderPreparing},
		{"single ticket preparing", statuses("preparing"), models.OrderPreparing},
		{"prepared and served mix counts as prepared", statuses("prepared", "served"), models.OrderPrepared},
		{"served with pending straggler blocks served", statuses("served", "served", "pending"), models.OrderPending},
		{"cancelled ticket blocks prepared", statuses("cancelled", "prepared", "prepared"), models.OrderPending},
		{"cancelled ticket blocks served", statuses("cancelled", "served"), models.OrderPending},
		{"completed and served mix", statuses("completed", "served"), models.OrderPending},
		{"all cancelled", statuses("cancelled", "cancelled"), models.OrderPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.statuses))
		})
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	s := statuses("pending", "preparing", "served")
	assert.Equal(t, Aggregate(s), Aggregate(s))
}

func statuses(raw ...string) []models.TicketStatus {
	out := make([]models.TicketStatus, len(raw))
	for i, r := range raw {
		out[i] = models.TicketStatus(r)
	}
	return out
}
