//go:build unit

package order_test

import (
	"testing"

	"aurelia-commerce/internal/domain/order"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from order.Status
		to   order.Status
		want bool
	}{
		{"pending to confirmed", order.StatusPending, order.StatusConfirmed, true},
		{"pending to cancelled", order.StatusPending, order.StatusCancelled, true},
		{"pending to refunded", order.StatusPending, order.StatusRefunded, true},
		{"pending cannot skip to shipped", order.StatusPending, order.StatusShipped, false},
		{"confirmed to processing", order.StatusConfirmed, order.StatusProcessing, true},
		{"confirmed to cancelled", order.StatusConfirmed, order.StatusCancelled, true},
		{"processing to shipped", order.StatusProcessing, order.StatusShipped, true},
		{"processing cannot cancel", order.StatusProcessing, order.StatusCancelled, false},
		{"shipped to delivered", order.StatusShipped, order.StatusDelivered, true},
		{"shipped to refunded", order.StatusShipped, order.StatusRefunded, true},
		{"delivered is terminal", order.StatusDelivered, order.StatusRefunded, false},
		{"cancelled is terminal", order.StatusCancelled, order.StatusPending, false},
		{"refunded is terminal", order.StatusRefunded, order.StatusPending, false},
		{"no backwards movement", order.StatusShipped, order.StatusProcessing, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, order.CanTransition(tc.from, tc.to))
		})
	}
}

func TestStatus_CanCancel(t *testing.T) {
	assert.True(t, order.StatusPending.CanCancel())
	assert.True(t, order.StatusConfirmed.CanCancel())
	assert.False(t, order.StatusProcessing.CanCancel())
	assert.False(t, order.StatusShipped.CanCancel())
	assert.False(t, order.StatusDelivered.CanCancel())
	assert.False(t, order.StatusCancelled.CanCancel())
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := []order.Status{order.StatusDelivered, order.StatusCancelled, order.StatusRefunded}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), string(s))
	}

	open := []order.Status{order.StatusPending, order.StatusConfirmed, order.StatusProcessing, order.StatusShipped}
	for _, s := range open {
		assert.False(t, s.IsTerminal(), string(s))
	}
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, order.StatusPending.IsValid())
	assert.False(t, order.Status("unknown").IsValid())
	assert.False(t, order.Status("").IsValid())
}
