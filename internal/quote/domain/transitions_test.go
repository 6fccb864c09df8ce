package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []Status{
	StatusDraft, StatusPending, StatusApproved, StatusSent,
	StatusAccepted, StatusRejected, StatusCancelled,
}

func TestStateMachineHappyPath(t *testing.T) {
	m := NewStateMachine(nil)

	path := []Status{StatusDraft, StatusPending, StatusApproved, StatusSent, StatusAccepted}
	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, m.Validate(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
	}
}

func TestStateMachineRejectionFromAnyNonTerminal(t *testing.T) {
	m := NewStateMachine(nil)

	for _, from := range []Status{StatusDraft, StatusPending, StatusApproved, StatusSent} {
		assert.NoError(t, m.Validate(from, StatusRejected), "%s -> rejected", from)
		assert.NoError(t, m.Validate(from, StatusCancelled), "%s -> cancelled", from)
	}
}

func TestStateMachineTotality(t *testing.T) {
	m := NewStateMachine(nil)
	table := DefaultTransitions()

	for _, from := range allStatuses {
		allowed := make(map[Status]bool)
		for _, to := range table[from] {
			allowed[to] = true
		}
		for _, to := range allStatuses {
			err := m.Validate(from, to)
			if allowed[to] {
				assert.NoError(t, err, "%s -> %s should be allowed", from, to)
				continue
			}
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s should be rejected", from, to)

			var transitionErr *InvalidTransitionError
			assert.True(t, errors.As(err, &transitionErr))
			assert.Equal(t, from, transitionErr.From)
			assert.Equal(t, to, transitionErr.To)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	table := DefaultTransitions()
	for _, status := range allStatuses {
		if status.Terminal() {
			assert.Empty(t, table[status], "%s is terminal", status)
		}
	}
}

func TestStateMachineCustomTable(t *testing.T) {
	m := NewStateMachine(TransitionTable{
		StatusDraft: {StatusAccepted},
	})

	assert.NoError(t, m.Validate(StatusDraft, StatusAccepted))
	assert.ErrorIs(t, m.Validate(StatusDraft, StatusPending), ErrInvalidTransition)
}

func TestStatusValid(t *testing.T) {
	for _, status := range allStatuses {
		assert.True(t, status.Valid(), "%s", status)
	}
	assert.False(t, Status("shipped").Valid())
	assert.False(t, Status("").Valid())
}
