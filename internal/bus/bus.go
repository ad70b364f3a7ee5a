// Package bus is an in-process topic-based message layer: the transport
// collaborator that delivers command messages to the controller and carries
// its telemetry out. Handlers run synchronously on the publisher's
// goroutine; per-topic delivery order follows publish order.
package bus

import "sync"

type Handler func(msg any)

type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[int]Handler
	next int
}

func New() *Bus {
	return &Bus{subs: make(map[string]map[int]Handler)}
}

// Subscribe registers a handler for a topic and returns a function that
// removes the subscription. Safe for concurrent use.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish delivers msg to every subscriber of topic, on the caller's
// goroutine.
func (b *Bus) Publish(topic string, msg any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(msg)
	}
}
