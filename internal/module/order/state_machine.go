package order

import (
	"fmt"

	"github.com/mistcurrent/server/internal/shared/metrics"
)

// StateMachine validates and executes order state transitions.
type StateMachine struct {
	transitions map[Status][]Status
}

// NewStateMachine creates the order state machine. Canceled and
// refunded are terminal; a failed payment can be retried.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[Status][]Status{
			StatusPending:  {StatusPaid, StatusCanceled, StatusFailed},
			StatusPaid:     {StatusRefunded},
			StatusCanceled: {},
			StatusRefunded: {},
			StatusFailed:   {StatusPending},
		},
	}
}

// CanTransition checks if a transition from `from` to `to` is valid.
func (sm *StateMachine) CanTransition(from, to Status) bool {
	allowed, ok := sm.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition attempts to move an order to a new state.
func (sm *StateMachine) Transition(o *Order, to Status) error {
	if !sm.CanTransition(o.Status, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, o.Status, to)
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(o.Status), string(to)).Inc()
	o.Status = to
	return nil
}

// AllowedTransitions returns all allowed transitions from a state.
func (sm *StateMachine) AllowedTransitions(from Status) []Status {
	allowed, ok := sm.transitions[from]
	if !ok {
		return []Status{}
	}
	result := make([]Status, len(allowed))
	copy(result, allowed)
	return result
}
