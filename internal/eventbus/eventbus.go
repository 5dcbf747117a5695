// Package eventbus implements the notification bridge between the
// repositories/tracker and whatever surface is currently rendering. It is a
// minimal synchronous publish/subscribe mechanism: handlers run on the
// emitting goroutine, in registration order, with no buffering, persistence,
// or cross-process delivery.
package eventbus

import (
	"slices"
	"sync"
)

// Handler receives every emitted event of the kind it subscribed to.
type Handler func(Event)

// subscription pairs a handler with a stable identity so it can be removed;
// func values are not comparable in Go.
type subscription struct {
	id      uint64
	handler Handler
}

// Bus routes events to subscribed handlers. The zero value is not usable;
// construct one with New.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[Kind][]subscription
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subs: make(map[Kind][]subscription),
	}
}

// On registers handler for events of the given kind and returns a function
// that removes exactly that registration. Handlers are invoked in the order
// they were registered.
func (b *Bus) On(kind Kind, handler Handler) (off func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscription{id: id, handler: handler})

	return func() {
		b.off(kind, id)
	}
}

// off removes the subscription with the given id, keeping order intact.
func (b *Bus) off(kind Kind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[kind] = slices.DeleteFunc(b.subs[kind], func(s subscription) bool {
		return s.id == id
	})
}

// Emit delivers event synchronously to every handler subscribed to its kind,
// in registration order. Handlers registered or removed by a running handler
// take effect for subsequent emissions, not the current one.
func (b *Bus) Emit(event Event) {
	b.mu.Lock()
	subs := slices.Clone(b.subs[event.Kind()])
	b.mu.Unlock()

	for _, s := range subs {
		s.handler(event)
	}
}
