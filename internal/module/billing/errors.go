package billing

import "errors"

var (
	// ErrPlanNotFound indicates an unknown plan id under strict lookup.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrSubscriptionNotFound indicates the user has no subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
