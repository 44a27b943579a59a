package eventbus

import (
	"context"
	"sync"
)

// Event names a topic on the bus.
type Event string

type envelope struct {
	event   Event
	payload any
}

// EventBus delivers published payloads to subscribers on a single
// dispatch goroutine. Publishing never blocks; a full buffer drops the event.
type EventBus struct {
	ch chan envelope

	subsMu sync.RWMutex
	subs   map[Event][]func(any)

	hooks hooks
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled. Events still buffered at
// cancellation are delivered before Start returns.
func (bus *EventBus) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			bus.drain()
			return nil
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) drain() {
	for {
		select {
		case env := <-bus.ch:
			bus.dispatch(env)
		default:
			return
		}
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.subsMu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.subsMu.Unlock()
}

func (bus *EventBus) dispatch(env envelope) {
	bus.subsMu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.subsMu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.firePanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}

	fire(&bus.hooks.deliver, env.event, env.payload)
}
