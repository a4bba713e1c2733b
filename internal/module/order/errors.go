package order

import "errors"

var (
	// ErrOrderNotFound indicates the order does not exist or belongs to
	// another user.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition indicates a forbidden state change.
	ErrInvalidTransition = errors.New("invalid order state transition")
	// ErrOrderExpired indicates the payment window has passed.
	ErrOrderExpired = errors.New("order has expired")
)
