package events

import "sync"

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers each published event synchronously, in subscription order,
// exactly once to every handler subscribed to its type at publish time.
// Handlers may publish or subscribe from inside a delivery.
type Bus struct {
	subscribers map[string][]subscription
	mutex       sync.RWMutex
	nextID      uint64
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string][]subscription),
	}
}

// Subscribe registers handler for the given event types and returns a
// function that removes it again.
func (b *Bus) Subscribe(handler Handler, eventTypes ...string) func() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.nextID++
	id := b.nextID
	for _, eventType := range eventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], subscription{id: id, handler: handler})
	}

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Bus) unsubscribe(id uint64) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for eventType, subs := range b.subscribers {
		kept := make([]subscription, 0, len(subs))
		for _, s := range subs {
			if s.id != id {
				kept = append(kept, s)
			}
		}
		b.subscribers[eventType] = kept
	}
}

// Publish delivers event to its subscribers before returning.
func (b *Bus) Publish(event Event) {
	b.mutex.RLock()
	subs := append([]subscription(nil), b.subscribers[event.Type()]...)
	b.mutex.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Subscribers returns the number of handlers registered for eventType.
func (b *Bus) Subscribers(eventType string) int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.subscribers[eventType])
}
