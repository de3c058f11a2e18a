package redis

import (
	"context"
	"sync"

	"bidding-system/internal/domain"

	"github.com/go-redis/redis/v8"
)

type subscription struct {
	client *redis.Client
	pubsub *redis.PubSub
	topic  string

	mu           sync.Mutex
	unsubscribed bool
	closed       bool
}

func newSubscription(client *redis.Client, pubsub *redis.PubSub, topic string) *subscription {
	return &subscription{
		client: client,
		pubsub: pubsub,
		topic:  topic,
	}
}

// Receive does not hold the lock so Unsubscribe and Close can interrupt it.
func (s *subscription) Receive(ctx context.Context) (*domain.BusMessage, error) {
	if s.isClosed() {
		return nil, domain.ErrSubscriptionClosed
	}

	msg, err := s.pubsub.Receive(ctx)
	if err != nil {
		if s.isClosed() {
			return nil, domain.ErrSubscriptionClosed
		}
		return nil, err
	}

	switch m := msg.(type) {
	case *redis.Message:
		return &domain.BusMessage{Kind: domain.MessageData, Topic: m.Channel, Payload: []byte(m.Payload)}, nil
	case *redis.Subscription:
		return &domain.BusMessage{Kind: domain.MessageControl, Topic: m.Channel}, nil
	default:
		return &domain.BusMessage{Kind: domain.MessageControl, Topic: s.topic}, nil
	}
}

func (s *subscription) Unsubscribe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribed || s.closed {
		return nil
	}
	s.unsubscribed = true
	return s.pubsub.Unsubscribe(ctx, s.topic)
}

// Close releases the pubsub and then the dedicated client.
func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.pubsub.Close()
	if cerr := s.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
