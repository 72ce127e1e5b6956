package payment

import "errors"

var (
	ErrInvalidSignature = errors.New("payment signature verification failed")
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderNotOwned    = errors.New("order does not belong to caller")
	ErrPaymentNotFound  = errors.New("no order recorded for payment")
	ErrNotRefundable    = errors.New("payment is not in a refundable state")
	ErrExternalService  = errors.New("payment gateway request failed")
)
