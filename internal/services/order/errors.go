package order

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid order request")
	ErrOrderNotFound  = errors.New("order not found")
	ErrOrderNotOwned  = errors.New("order does not belong to caller")
	ErrNotCancellable = errors.New("order can no longer be cancelled")
)
