package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachineTransitions(t *testing.T) {
	sm := NewStateMachine()

	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending to paid", StatusPending, StatusPaid, true},
		{"pending to canceled", StatusPending, StatusCanceled, true},
		{"pending to failed", StatusPending, StatusFailed, true},
		{"paid to refunded", StatusPaid, StatusRefunded, true},
		{"failed retried to pending", StatusFailed, StatusPending, true},
		{"pending to refunded", StatusPending, StatusRefunded, false},
		{"paid to pending", StatusPaid, StatusPending, false},
		{"paid to canceled", StatusPaid, StatusCanceled, false},
		{"canceled is terminal", StatusCanceled, StatusPending, false},
		{"refunded is terminal", StatusRefunded, StatusPaid, false},
		{"unknown state", Status("bogus"), StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, sm.CanTransition(tt.from, tt.to))
		})
	}
}

func TestStateMachineTransitionMutatesOrder(t *testing.T) {
	sm := NewStateMachine()
	o := &Order{Status: StatusPending}

	require.NoError(t, sm.Transition(o, StatusPaid))
	assert.Equal(t, StatusPaid, o.Status)

	err := sm.Transition(o, StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPaid, o.Status)
}

func TestAllowedTransitions(t *testing.T) {
	sm := NewStateMachine()

	assert.ElementsMatch(t,
		[]Status{StatusPaid, StatusCanceled, StatusFailed},
		sm.AllowedTransitions(StatusPending),
	)
	assert.Empty(t, sm.AllowedTransitions(StatusCanceled))
	assert.Empty(t, sm.AllowedTransitions(Status("bogus")))
}
