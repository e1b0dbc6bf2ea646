package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{
		StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded,
	} {
		assert.True(t, s.Valid(), "expected %s to be valid", s)
	}

	assert.False(t, Status("UNKNOWN").Valid())
	assert.False(t, Status("pending").Valid(), "status values are case sensitive")
	assert.False(t, Status("").Valid())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:    {StatusConfirmed, StatusCancelled},
		StatusConfirmed:  {StatusProcessing, StatusCancelled},
		StatusProcessing: {StatusShipped, StatusCancelled},
		StatusShipped:    {StatusDelivered},
		StatusDelivered:  {StatusRefunded},
		StatusCancelled:  {},
		StatusRefunded:   {},
	}
	all := []Status{
		StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded,
	}

	for from, targets := range allowed {
		legal := map[Status]bool{}
		for _, to := range targets {
			legal[to] = true
		}
		for _, to := range all {
			assert.Equal(t, legal[to], from.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestStatus_TerminalStatesHaveNoExits(t *testing.T) {
	all := []Status{
		StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded,
	}

	for _, to := range all {
		assert.False(t, StatusCancelled.CanTransitionTo(to))
		assert.False(t, StatusRefunded.CanTransitionTo(to))
	}
}
