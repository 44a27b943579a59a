package eventbus

import "sync"

// hookList is a copy-on-read list of callbacks.
type hookList[F any] struct {
	mu  sync.RWMutex
	fns []F
}

func (h *hookList[F]) add(fn F) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *hookList[F]) snapshot() []F {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]F(nil), h.fns...)
}

type hooks struct {
	publish hookList[func(Event, any)]
	drop    hookList[func(Event, any)]
	deliver hookList[func(Event, any)]
	panics  hookList[func(Event, any, any)]
}

// OnPublish registers fn to run after an event is enqueued.
func (bus *EventBus) OnPublish(fn func(Event, any)) { bus.hooks.publish.add(fn) }

// OnDrop registers fn to run when an event is discarded because the buffer
// is full.
func (bus *EventBus) OnDrop(fn func(Event, any)) { bus.hooks.drop.add(fn) }

// OnDeliver registers fn to run on the dispatch goroutine once every
// subscriber of an event has been called.
func (bus *EventBus) OnDeliver(fn func(Event, any)) { bus.hooks.deliver.add(fn) }

// OnPanic registers fn to run when a subscriber panics. Panics inside fn
// are swallowed.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) { bus.hooks.panics.add(fn) }

// send enqueues an event without blocking. Used by generated Publish* methods.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		fire(&bus.hooks.publish, event, payload)
	default:
		fire(&bus.hooks.drop, event, payload)
	}
}

func fire(h *hookList[func(Event, any)], event Event, payload any) {
	for _, fn := range h.snapshot() {
		fn(event, payload)
	}
}

func (bus *EventBus) firePanic(event Event, payload, recovered any) {
	for _, fn := range bus.hooks.panics.snapshot() {
		func() {
			defer func() { _ = recover() }()
			fn(event, payload, recovered)
		}()
	}
}
