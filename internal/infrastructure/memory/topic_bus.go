// Package memory provides an in-process TopicBus. Every subscription owns a
// buffered queue; publishes are fanned out to all live subscriptions of the
// topic in publish order. When a subscriber's queue is full the message is
// dropped for that subscriber only.
package memory

import (
	"context"
	"sync"

	"bidding-system/internal/domain"
)

const defaultBufferSize = 64

type TopicBus struct {
	mu         sync.RWMutex
	topics     map[string]map[*subscription]struct{}
	bufferSize int
}

func NewTopicBus() *TopicBus {
	return NewTopicBusWithBuffer(defaultBufferSize)
}

func NewTopicBusWithBuffer(size int) *TopicBus {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &TopicBus{
		topics:     make(map[string]map[*subscription]struct{}),
		bufferSize: size,
	}
}

func (b *TopicBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.topics[topic] {
		msg := &domain.BusMessage{Kind: domain.MessageData, Topic: topic, Payload: append([]byte(nil), payload...)}
		select {
		case sub.queue <- msg:
		default:
		}
	}
	return nil
}

func (b *TopicBus) Subscribe(ctx context.Context, topic string) (domain.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &subscription{
		bus:    b,
		topic:  topic,
		queue:  make(chan *domain.BusMessage, b.bufferSize+1),
		closed: make(chan struct{}),
	}
	// Mirrors the broker's subscribe confirmation.
	sub.queue <- &domain.BusMessage{Kind: domain.MessageControl, Topic: topic}

	b.mu.Lock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[*subscription]struct{})
	}
	b.topics[topic][sub] = struct{}{}
	b.mu.Unlock()

	return sub, nil
}

// Subscribers returns the number of live subscriptions on topic.
func (b *TopicBus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

func (b *TopicBus) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[sub.topic]
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, sub.topic)
	}
}

type subscription struct {
	bus   *TopicBus
	topic string
	queue chan *domain.BusMessage

	unsubscribeOnce sync.Once
	closeOnce       sync.Once
	closed          chan struct{}
}

func (s *subscription) Receive(ctx context.Context) (*domain.BusMessage, error) {
	select {
	case <-s.closed:
		return nil, domain.ErrSubscriptionClosed
	default:
	}

	select {
	case msg := <-s.queue:
		return msg, nil
	case <-s.closed:
		return nil, domain.ErrSubscriptionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *subscription) Unsubscribe(_ context.Context) error {
	s.unsubscribeOnce.Do(func() {
		s.bus.remove(s)
	})
	return nil
}

func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		s.bus.remove(s)
		close(s.closed)
	})
	return nil
}
