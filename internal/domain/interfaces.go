package domain

import (
	"context"
)

// Bus interfaces

type MessageKind int

const (
	// MessageData carries a published payload.
	MessageData MessageKind = iota
	// MessageControl is broker bookkeeping such as subscribe confirmations.
	MessageControl
)

type BusMessage struct {
	Kind    MessageKind
	Topic   string
	Payload []byte
}

// TopicBus is the publish/subscribe transport. Topics exist implicitly.
type TopicBus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

// Subscription is one subscriber's exclusive handle on a topic. Receive blocks
// until a message arrives, ctx is done, or the subscription fails or is closed.
// Unsubscribe and Close are idempotent.
type Subscription interface {
	Receive(ctx context.Context) (*BusMessage, error)
	Unsubscribe(ctx context.Context) error
	Close() error
}

// BidNotifier publishes bid events. It never fails the caller.
type BidNotifier interface {
	Publish(ctx context.Context, event BidEvent)
}

// Video room provider interface
type VideoRoomProvider interface {
	CreateRoom(ctx context.Context, name string) (string, error)
	ViewerToken(username, roomName string) (string, error)
}

// Leader election interface
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}
