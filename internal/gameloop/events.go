package gameloop

import (
	"expvar"
	"sync"
)

var eventsDropped = expvar.NewInt("loop_events_dropped")

// EventBus fans world events out to subscribers without blocking the loop.
type EventBus struct {
	mu   sync.RWMutex
	subs map[int]chan WorldEvent
	next int
}

// NewEventBus creates a bus with no subscribers.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]chan WorldEvent)}
}

// Subscribe returns a channel of events and a function that closes it.
func (b *EventBus) Subscribe(buffer int) (<-chan WorldEvent, func()) {
	ch := make(chan WorldEvent, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Emit delivers e to every subscriber with room for it; slow subscribers
// miss events.
func (b *EventBus) Emit(e WorldEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			eventsDropped.Add(1)
		}
	}
}

// Subscribers returns the number of open subscriptions.
func (b *EventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
