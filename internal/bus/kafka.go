package bus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	kafka "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaBus publishes through a single kafka-go writer and runs one consumer-group reader per
// subscription. Offsets are committed after the handler returns, so delivery is at-least-once.
type KafkaBus struct {
	writer    messageWriter
	newReader func(topic string) messageReader
	dial      func(ctx context.Context) error

	mu      sync.Mutex
	cancels map[uint64]context.CancelFunc
	nextID  uint64
	closed  bool
	wg      sync.WaitGroup
}

// NewKafkaBus connects a bus to brokers. Subscribers share groupID.
func NewKafkaBus(brokers []string, groupID string) *KafkaBus {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	b := newKafkaBus(writer, func(topic string) messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			Topic:          topic,
			GroupID:        groupID,
			MinBytes:       1,
			MaxBytes:       1 << 20, // 1 MiB
			CommitInterval: 0,       // explicit commits only
			StartOffset:    kafka.LastOffset,
		})
	})
	b.dial = func(ctx context.Context) error {
		var lastErr error
		for _, broker := range brokers {
			conn, err := kafka.DialContext(ctx, "tcp", broker)
			if err != nil {
				lastErr = err
				continue
			}
			return conn.Close()
		}
		if lastErr == nil {
			lastErr = errors.New("no kafka brokers configured")
		}
		return lastErr
	}
	return b
}

func newKafkaBus(w messageWriter, newReader func(topic string) messageReader) *KafkaBus {
	return &KafkaBus{
		writer:    w,
		newReader: newReader,
		cancels:   make(map[uint64]context.CancelFunc),
	}
}

// Publish writes e to topic, keyed by e.Key.
func (b *KafkaBus) Publish(ctx context.Context, topic string, e Event) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	return b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(e.Key),
		Value: e.Payload,
		Time:  e.Time,
	})
}

// Subscribe starts a reader goroutine for topic that runs until unsubscribe or Close.
func (b *KafkaBus) Subscribe(topic string, h Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	b.nextID++
	id := b.nextID
	ctx, cancel := context.WithCancel(context.Background())
	b.cancels[id] = cancel

	reader := b.newReader(topic)
	b.wg.Add(1)
	go b.consume(ctx, reader, topic, h)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.cancels[id]; ok {
			c()
			delete(b.cancels, id)
		}
	}, nil
}

func (b *KafkaBus) consume(ctx context.Context, reader messageReader, topic string, h Handler) {
	defer b.wg.Done()
	defer func() {
		if err := reader.Close(); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("closing kafka reader")
		}
	}()

	log.Info().Str("topic", topic).Msg("consuming events")
	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			log.Error().Err(err).Str("topic", topic).Msg("fetching event")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		e := Event{Topic: m.Topic, Key: string(m.Key), Payload: m.Value, Time: m.Time}
		if err := h(ctx, e); err != nil {
			log.Error().Err(err).Str("topic", topic).Str("key", e.Key).Msg("event handler failed")
		}

		if err := reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Str("topic", topic).Msg("commit failed, event may be redelivered")
		}
	}
}

// Ping reports whether any broker accepts a connection.
func (b *KafkaBus) Ping(ctx context.Context) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if b.dial == nil {
		return nil
	}
	return b.dial(ctx)
}

// Close stops every subscription, waits for the readers to exit and closes the writer.
func (b *KafkaBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for id, cancel := range b.cancels {
		cancel()
		delete(b.cancels, id)
	}
	b.mu.Unlock()

	b.wg.Wait()
	return b.writer.Close()
}
