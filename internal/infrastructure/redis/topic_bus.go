package redis

import (
	"context"
	"fmt"

	"bidding-system/internal/domain"
	"bidding-system/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// TopicBus publishes over a shared client and gives every subscription its
// own dedicated client, so a session's broker connection lives and dies with it.
type TopicBus struct {
	client *redis.Client
	opts   *redis.Options
	log    logger.Logger
}

func NewTopicBus(client *redis.Client, log logger.Logger) *TopicBus {
	opts := *client.Options()
	return &TopicBus{
		client: client,
		opts:   &opts,
		log:    log,
	}
}

func (b *TopicBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, topic, payload).Err()
}

func (b *TopicBus) Subscribe(ctx context.Context, topic string) (domain.Subscription, error) {
	opts := *b.opts
	client := redis.NewClient(&opts)

	pubsub := client.Subscribe(ctx)
	if err := pubsub.Subscribe(ctx, topic); err != nil {
		if cerr := pubsub.Close(); cerr != nil {
			b.log.Warn("Failed to close pubsub after subscribe error", "topic", topic, "error", cerr)
		}
		if cerr := client.Close(); cerr != nil {
			b.log.Warn("Failed to close redis client after subscribe error", "topic", topic, "error", cerr)
		}
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	b.log.Debug("Subscribed to topic", "topic", topic)
	return newSubscription(client, pubsub, topic), nil
}
