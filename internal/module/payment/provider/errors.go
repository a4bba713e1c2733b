package provider

import "errors"

var (
	// ErrNotSupported indicates the gateway has no such operation.
	ErrNotSupported = errors.New("operation not supported by provider")
	// ErrInvalidSignature indicates a webhook signature mismatch.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrProviderUnavailable indicates the gateway is down or the
	// circuit breaker is open.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)
