package eventbus

import (
	"context"
	"sync"
)

// Handler receives events of the topic it subscribed to.
type Handler func(ctx context.Context, e Event)

type subscription struct {
	id int
	h  Handler
}

// Bus delivers events synchronously to the current subscribers of a topic,
// in subscription order. Nothing is queued or persisted.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic][]subscription
}

func New() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers h for topic and returns a function removing it.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	if b == nil || h == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, h: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(topic, id) })
	}
}

func (b *Bus) unsubscribe(topic Topic, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// On subscribes a handler typed on one event variant.
func On[E Event](b *Bus, fn func(ctx context.Context, e E)) func() {
	var zero E
	return b.Subscribe(zero.Topic(), func(ctx context.Context, e Event) {
		if typed, ok := e.(E); ok {
			fn(ctx, typed)
		}
	})
}

// Publish delivers e to every subscriber of its topic before returning.
// Subscribers added or removed during delivery take effect on the next Publish.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil || e == nil {
		return
	}
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[e.Topic()]...)
	b.mu.RUnlock()
	for _, s := range subs {
		s.h(ctx, e)
	}
}

// Subscribers reports how many handlers listen on topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
