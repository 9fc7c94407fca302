package moderation

import "testing"

func TestEventBusOnAndOnce(t *testing.T) {
	bus := NewEventBus()

	var onCalls, onceCalls int
	bus.On(EventWarnAdd, func(interface{}) { onCalls++ })
	bus.Once(EventWarnAdd, func(interface{}) { onceCalls++ })

	bus.Emit(EventWarnAdd, nil)
	bus.Emit(EventWarnAdd, nil)

	if onCalls != 2 {
		t.Errorf("On handler calls = %d, want 2", onCalls)
	}
	if onceCalls != 1 {
		t.Errorf("Once handler calls = %d, want 1", onceCalls)
	}
	if got := bus.HandlerCount(EventWarnAdd); got != 1 {
		t.Errorf("HandlerCount = %d, want 1", got)
	}
}

func TestEventBusPanicIsolation(t *testing.T) {
	bus := NewEventBus()

	var after bool
	bus.On(EventMuteMember, func(interface{}) { panic("boom") })
	bus.On(EventMuteMember, func(interface{}) { after = true })

	bus.Emit(EventMuteMember, nil)

	if !after {
		t.Error("handler after the panicking one did not run")
	}
}

func TestEventBusInstancesAreIsolated(t *testing.T) {
	first := NewEventBus()
	second := NewEventBus()

	var calls int
	first.On(EventWarnAdd, func(interface{}) { calls++ })
	second.Emit(EventWarnAdd, nil)

	if calls != 0 {
		t.Errorf("handler on another instance ran %d times", calls)
	}
}

func TestEventBusNoHandlers(t *testing.T) {
	bus := NewEventBus()
	bus.Emit(EventUnmuteMember, nil)

	if got := bus.HandlerCount(EventUnmuteMember); got != 0 {
		t.Errorf("HandlerCount = %d, want 0", got)
	}
}
