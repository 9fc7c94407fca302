package moderation

import (
	"fmt"
	"sync"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
)

// Event names every lifecycle transition the module publishes
type Event string

const (
	EventMuteMember   Event = "muteMember"
	EventUnmuteMember Event = "unmuteMember"
	EventWarnAdd      Event = "warnAdd"
	EventWarnRemove   Event = "warnRemove"
	EventWarnKick     Event = "warnKick"
)

// EventHandler receives the payload of a published event. Mute events carry
// *models.MuteRecord, warn events carry *models.WarnRecord.
type EventHandler func(payload interface{})

type subscription struct {
	handler EventHandler
	once    bool
}

// EventBus is a synchronous in-process publisher. Each Moderation instance
// owns its own bus, so independently configured instances never see each
// other's events. A panicking handler is logged and does not stop the
// remaining handlers or the emitting operation.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[Event][]*subscription
}

// NewEventBus creates an empty bus
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[Event][]*subscription)}
}

// On registers a handler for every future emission of event
func (b *EventBus) On(event Event, handler EventHandler) {
	b.subscribe(event, handler, false)
}

// Once registers a handler that runs for the next emission only
func (b *EventBus) Once(event Event, handler EventHandler) {
	b.subscribe(event, handler, true)
}

func (b *EventBus) subscribe(event Event, handler EventHandler, once bool) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], &subscription{handler: handler, once: once})
}

// Emit delivers payload to every handler of event, in registration order
func (b *EventBus) Emit(event Event, payload interface{}) {
	b.mu.Lock()
	subs := b.handlers[event]
	if len(subs) == 0 {
		b.mu.Unlock()
		return
	}

	run := make([]*subscription, len(subs))
	copy(run, subs)

	kept := subs[:0]
	for _, sub := range subs {
		if !sub.once {
			kept = append(kept, sub)
		}
	}
	b.handlers[event] = kept
	b.mu.Unlock()

	for _, sub := range run {
		b.dispatch(event, sub.handler, payload)
	}
}

func (b *EventBus) dispatch(event Event, handler EventHandler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("Handler de evento '%s' lanzó un panic: %v", event, r), "EventBus")
		}
	}()
	handler(payload)
}

// HandlerCount returns how many handlers are registered for event
func (b *EventBus) HandlerCount(event Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[event])
}
