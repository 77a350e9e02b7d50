package bus

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type subscription struct {
	id      uint64
	handler Handler
}

// MemoryBus delivers events synchronously, in subscription order, inside the publishing goroutine.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID uint64
	closed bool
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]subscription)}
}

// Publish stamps e with topic and time (when unset) and hands it to every current subscriber.
func (b *MemoryBus) Publish(ctx context.Context, topic string, e Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	subs := append([]subscription(nil), b.subs[topic]...)
	b.mu.RUnlock()

	e.Topic = topic
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	for _, s := range subs {
		if err := s.handler(ctx, e); err != nil {
			log.Error().
				Err(err).
				Str("topic", topic).
				Str("key", e.Key).
				Msg("event handler failed")
		}
	}
	return nil
}

// Subscribe registers h for topic. The returned func removes it and is safe to call twice.
func (b *MemoryBus) Subscribe(topic string, h Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[topic]
		for i, s := range subs {
			if s.id == id {
				b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}, nil
}

// Ping fails only after Close.
func (b *MemoryBus) Ping(context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

// Close drops all subscribers. Later calls to Publish and Subscribe return ErrClosed.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[string][]subscription)
	return nil
}
