package payment

import "errors"

var (
	// ErrPaymentNotFound indicates no payment record exists.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrOrderNotPayable indicates the order is not in a payable state.
	ErrOrderNotPayable = errors.New("order is not payable")
	// ErrDuplicateEvent indicates an already processed webhook event.
	ErrDuplicateEvent = errors.New("webhook event already processed")
)
