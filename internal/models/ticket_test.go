package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{"pending to preparing", TicketPending, TicketPreparing, true},
		{"preparing to prepared", TicketPreparing, TicketPrepared, true},
		{"prepared to served", TicketPrepared, TicketServed, true},
		{"prepared to completed", TicketPrepared, TicketCompleted, true},
		{"pending to cancelled", TicketPending, TicketCancelled, true},
		{"preparing to cancelled", TicketPreparing, TicketCancelled, true},
		{"prepared to cancelled", TicketPrepared, TicketCancelled, true},
		{"served to cancelled", TicketServed, TicketCancelled, true},

		{"pending to prepared skips preparing", TicketPending, TicketPrepared, false},
		{"pending to served", TicketPending, TicketServed, false},
		{"preparing to pending backward", TicketPreparing, TicketPending, false},
		{"prepared to preparing backward", TicketPrepared, TicketPreparing, false},
		{"served to prepared backward", TicketServed, TicketPrepared, false},
		{"served to completed", TicketServed, TicketCompleted, false},
		{"completed to served", TicketCompleted, TicketServed, false},
		{"cancelled is terminal", TicketCancelled, TicketPreparing, false},
		{"cancelled to cancelled", TicketCancelled, TicketCancelled, false},
		{"same status is not a transition", TicketPreparing, TicketPreparing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := &Ticket{Status: tt.from}
			assert.Equal(t, tt.allowed, ticket.CanTransitionTo(tt.to))
		})
	}
}

func TestParseTicketStatus(t *testing.T) {
	for _, raw := range []string{"pending", "preparing", "prepared", "completed", "served", "cancelled"} {
		s, err := ParseTicketStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, TicketStatus(raw), s)
	}

	_, err := ParseTicketStatus("cooking")
	assert.Error(t, err)

	_, err = ParseTicketStatus("")
	assert.Error(t, err)
}

func TestTicketStatuses(t *testing.T) {
	tickets := []Ticket{
		{Status: TicketPending},
		{Status: TicketServed},
	}
	assert.Equal(t, []TicketStatus{TicketPending, TicketServed}, TicketStatuses(tickets))
	assert.Empty(t, TicketStatuses(nil))
}
