// Package bus carries domain events between FoodLink components, either in process or over Kafka.
package bus

import (
	"context"
	"errors"
	"time"
)

// TopicMessageCreated is published after a chat message is stored.
const TopicMessageCreated = "messages.created"

// ErrClosed is returned by Publish and Subscribe after Close.
var ErrClosed = errors.New("bus: closed")

// Event is a single published record. Key groups related events (Kafka partitions by it).
type Event struct {
	Topic   string
	Key     string
	Payload []byte
	Time    time.Time
}

// Handler processes one event. A returned error is logged; it never stops delivery to other handlers.
type Handler func(ctx context.Context, e Event) error

// Bus publishes events to topics and fans them out to subscribers.
type Bus interface {
	Publish(ctx context.Context, topic string, e Event) error
	Subscribe(topic string, h Handler) (unsubscribe func(), err error)
	Ping(ctx context.Context) error
	Close() error
}
