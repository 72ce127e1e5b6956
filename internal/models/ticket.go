package models

import (
	"fmt"
	"time"
)

// TicketStatus represents the status of a single kitchen ticket.
type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketPreparing TicketStatus = "preparing"
	TicketPrepared  TicketStatus = "prepared"
	TicketCompleted TicketStatus = "completed"
	TicketServed    TicketStatus = "served"
	TicketCancelled TicketStatus = "cancelled"
)

// Ticket is one kitchen-routed fulfillment record for a single line item
// within an order. Tickets are created in bulk at order placement and never
// deleted.
type Ticket struct {
	ID             int64        `json:"id" db:"id"`
	OrderID        int64        `json:"order_id" db:"order_id"`
	ItemName       string       `json:"item_name" db:"item_name"`
	Quantity       int          `json:"quantity" db:"quantity"`
	Customizations string       `json:"customizations,omitempty" db:"customizations"`
	Status         TicketStatus `json:"status" db:"status"`
	PriorityLevel  int          `json:"priority_level" db:"priority_level"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// ticketTransitions defines the allowed forward-only status transitions.
// Any status may additionally move to cancelled while the owning order is
// still active.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketPending:   {TicketPreparing},
	TicketPreparing: {TicketPrepared},
	TicketPrepared:  {TicketServed, TicketCompleted},
	TicketCompleted: {},
	TicketServed:    {},
	TicketCancelled: {},
}

// ValidTicketStatus reports whether s is a known ticket status value.
func ValidTicketStatus(s TicketStatus) bool {
	_, ok := ticketTransitions[s]
	return ok
}

// CanTransitionTo reports whether the ticket may move from its current
// status to target.
func (t *Ticket) CanTransitionTo(target TicketStatus) bool {
	if target == TicketCancelled {
		return t.Status != TicketCancelled
	}
	for _, allowed := range ticketTransitions[t.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TicketStatuses extracts the status multiset from a slice of tickets.
func TicketStatuses(tickets []Ticket) []TicketStatus {
	statuses := make([]TicketStatus, len(tickets))
	for i, t := range tickets {
		statuses[i] = t.Status
	}
	return statuses
}

// ParseTicketStatus validates a raw status string from a client.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	s := TicketStatus(raw)
	if !ValidTicketStatus(s) {
		return "", fmt.Errorf("status must be one of: pending, preparing, prepared, completed, served, cancelled")
	}
	return s, nil
}
