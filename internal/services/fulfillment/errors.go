package fulfillment

import "errors"

var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid ticket status transition")
	ErrOrderCancelled    = errors.New("order is cancelled")
)
