package services

import (
	"context"

	"bidding-system/internal/domain"
	"bidding-system/pkg/logger"
)

// NotificationPublisher turns bid events into bus messages. Delivery is
// best effort: a failed publish is logged and dropped.
type NotificationPublisher struct {
	bus domain.TopicBus
	log logger.Logger
}

func NewNotificationPublisher(bus domain.TopicBus, log logger.Logger) *NotificationPublisher {
	return &NotificationPublisher{
		bus: bus,
		log: log,
	}
}

func (p *NotificationPublisher) Publish(ctx context.Context, event domain.BidEvent) {
	topic := domain.ProductBidsTopic(event.ProductID)

	payload, err := domain.NewNotification(event.Message).Encode()
	if err != nil {
		p.log.Error("Failed to encode notification", "product_id", event.ProductID, "message", event.Message, "error", err)
		return
	}

	if err := p.bus.Publish(ctx, topic, payload); err != nil {
		p.log.Error("Failed to publish notification", "product_id", event.ProductID, "message", event.Message, "error", err)
		return
	}

	p.log.Debug("Published notification", "topic", topic)
}
