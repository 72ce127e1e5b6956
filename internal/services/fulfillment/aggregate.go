package fulfillment

import "restaurant-orders/internal/models"

// Aggregate derives an order's status from the statuses of its tickets.
// Pure function; it never fails and an empty ticket set yields pending.
//
// A single ticket entering preparing escalates the whole order, while the
// terminal-looking aggregate states require unanimity. A mix of prepared and
// served counts as prepared: the order is not served until literally every
// ticket is. Cancelled tickets stay in the set and block unanimity, so e.g.
// {cancelled, prepared, prepared} falls through to pending.
//
// The terminal cancelled order status overrides aggregation and is guarded by
// the caller; it is not derived here.
func Aggregate(statuses []models.TicketStatus) models.OrderStatus {
	if len(statuses) == 0 {
		return models.OrderPending
	}

	var served, prepared, completed, preparing int
	for _, s := range statuses {
		switch s {
		case models.TicketServed:
			served++
		case models.TicketPrepared:
			prepared++
		case models.TicketCompleted:
			completed++
		case models.TicketPreparing:
			preparing++
		}
	}

	total := len(statuses)
	switch {
	case served == total:
		return models.OrderServed
	case prepared+served == total:
		return models.OrderPrepared
	case preparing > 0:
		return models.OrderPreparing
	case completed == total:
		return models.OrderCompleted
	default:
		return models.OrderPending
	}
}
