package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyCallsListenersInRegistrationOrder(t *testing.T) {
	bus := New()
	var calls []string
	bus.Subscribe(func() { calls = append(calls, "a") })
	bus.Subscribe(func() { calls = append(calls, "b") })
	bus.Subscribe(func() { calls = append(calls, "c") })

	bus.Notify()

	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestUnsubscribeRemovesOnlyThatListener(t *testing.T) {
	bus := New()
	var calls []string
	same := func() { calls = append(calls, "same") }
	unsubFirst := bus.Subscribe(same)
	bus.Subscribe(same)

	unsubFirst()
	unsubFirst()
	bus.Notify()

	assert.Equal(t, []string{"same"}, calls)
	assert.Equal(t, 1, bus.Len())
}

func TestNotifyDispatchesSnapshot(t *testing.T) {
	bus := New()
	var calls []string
	var unsubSecond func()

	bus.Subscribe(func() {
		calls = append(calls, "first")
		unsubSecond()
		bus.Subscribe(func() { calls = append(calls, "late") })
	})
	unsubSecond = bus.Subscribe(func() { calls = append(calls, "second") })

	bus.Notify()
	require.Equal(t, []string{"first", "second"}, calls)

	calls = nil
	bus.Notify()
	assert.Equal(t, []string{"first", "late"}, calls)
}

func TestSubscribeNilIsHarmless(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(nil)
	unsub()
	bus.Notify()
	assert.Zero(t, bus.Len())
}
