package models

import "time"

// StatusUpdateMessage is published on the notifications fanout whenever a
// ticket update changes state, so kitchen displays and notifiers can react.
type StatusUpdateMessage struct {
	OrderID        int64     `json:"order_id"`
	TicketID       int64     `json:"ticket_id"`
	OldTicketState string    `json:"old_ticket_status"`
	NewTicketState string    `json:"new_ticket_status"`
	OrderStatus    string    `json:"order_status"`
	ChangedBy      string    `json:"changed_by"`
	Timestamp      time.Time `json:"timestamp"`
}

// PaymentEventMessage is published when an order's payment status changes.
type PaymentEventMessage struct {
	OrderID           int64     `json:"order_id"`
	RazorpayOrderID   string    `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string    `json:"razorpay_payment_id,omitempty"`
	PaymentStatus     string    `json:"payment_status"`
	Timestamp         time.Time `json:"timestamp"`
}

// OrderCreatedItem is one ticket line in an OrderCreatedMessage.
type OrderCreatedItem struct {
	TicketID       int64  `json:"ticket_id"`
	ItemName       string `json:"item_name"`
	Quantity       int    `json:"quantity"`
	Customizations string `json:"customizations,omitempty"`
	PriorityLevel  int    `json:"priority_level"`
}

// OrderCreatedMessage is published when a new order lands so kitchen displays
// pick up its tickets immediately.
type OrderCreatedMessage struct {
	OrderID             int64              `json:"order_id"`
	OrderType           string             `json:"order_type"`
	TableNumber         int                `json:"table_number,omitempty"`
	Items               []OrderCreatedItem `json:"items"`
	SpecialInstructions string             `json:"special_instructions,omitempty"`
	Timestamp           time.Time          `json:"timestamp"`
}

// NewStatusUpdateMessage creates a StatusUpdateMessage for a ticket change.
func NewStatusUpdateMessage(orderID, ticketID int64, oldStatus, newStatus TicketStatus, orderStatus OrderStatus, changedBy string) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		OrderID:        orderID,
		TicketID:       ticketID,
		OldTicketState: string(oldStatus),
		NewTicketState: string(newStatus),
		OrderStatus:    string(orderStatus),
		ChangedBy:      changedBy,
		Timestamp:      time.Now().UTC(),
	}
}

// NewOrderCreatedMessage creates an OrderCreatedMessage from a stored order
// and its freshly created tickets.
func NewOrderCreatedMessage(order Order, tickets []Ticket) *OrderCreatedMessage {
	items := make([]OrderCreatedItem, len(tickets))
	for i, t := range tickets {
		items[i] = OrderCreatedItem{
			TicketID:       t.ID,
			ItemName:       t.ItemName,
			Quantity:       t.Quantity,
			Customizations: t.Customizations,
			PriorityLevel:  t.PriorityLevel,
		}
	}
	return &OrderCreatedMessage{
		OrderID:             order.ID,
		OrderType:           string(order.Type),
		TableNumber:         order.TableNumber,
		Items:               items,
		SpecialInstructions: order.SpecialInstructions,
		Timestamp:           time.Now().UTC(),
	}
}

// NewPaymentEventMessage creates a PaymentEventMessage.
func NewPaymentEventMessage(orderID int64, rzpOrderID, rzpPaymentID string, status PaymentStatus) *PaymentEventMessage {
	return &PaymentEventMessage{
		OrderID:           orderID,
		RazorpayOrderID:   rzpOrderID,
		RazorpayPaymentID: rzpPaymentID,
		PaymentStatus:     string(status),
		Timestamp:         time.Now().UTC(),
	}
}
