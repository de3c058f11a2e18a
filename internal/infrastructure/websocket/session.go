package websocket

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"bidding-system/internal/domain"
	"bidding-system/pkg/logger"
	"bidding-system/pkg/utils"

	"github.com/gorilla/websocket"
)

type SessionState int32

const (
	StateConnecting SessionState = iota
	StateValidating
	StateSubscribed
	StateListening
	StateClosing
	StateClosed
	StateRejected
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateValidating:
		return "validating"
	case StateSubscribed:
		return "subscribed"
	case StateListening:
		return "listening"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

const releaseTimeout = 5 * time.Second

// Transport is the client side of a session.
type Transport interface {
	Send(message interface{}) error
	Reject(code int, reason string) error
	Close() error
}

type ProductFinder interface {
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
}

// Session is one client's subscription to the bid notifications of a single
// product. It owns the transport, the bus subscription and the listener
// goroutine, and releases all of them exactly once.
type Session struct {
	id        string
	productID int64
	transport Transport
	bus       domain.TopicBus
	log       logger.Logger

	state atomic.Int32

	// mu orders the lifecycle transitions; Start and Close never interleave.
	mu           sync.Mutex
	sub          domain.Subscription
	cancel       context.CancelFunc
	listenerDone chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func NewSession(transport Transport, bus domain.TopicBus, log logger.Logger) *Session {
	id := utils.GenerateID("session")
	return &Session{
		id:        id,
		transport: transport,
		bus:       bus,
		log:       log.With("session_id", id),
		closed:    make(chan struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) ProductID() int64 {
	return s.productID
}

func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Done is closed once the session is Closed or Rejected.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

func (s *Session) setState(state SessionState) {
	s.state.Store(int32(state))
}

// Validate resolves the raw product id and checks the product exists. On
// failure the session is rejected and the transport closed with a
// policy-violation code; an unparsable id never reaches the store.
func (s *Session) Validate(ctx context.Context, rawProductID string, products ProductFinder) error {
	s.mu.Lock()
	if s.State() != StateConnecting {
		s.mu.Unlock()
		return fmt.Errorf("validate in state %s", s.State())
	}
	s.setState(StateValidating)
	s.mu.Unlock()

	productID, err := strconv.ParseInt(rawProductID, 10, 64)
	if err != nil {
		s.log.Warn("Rejected notification connection - invalid product id", "product_id", rawProductID)
		s.reject(websocket.ClosePolicyViolation, "invalid product id")
		return fmt.Errorf("%w: %q", domain.ErrInvalidProductID, rawProductID)
	}

	if _, err := products.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.log.Warn("Product not found while connecting to notification channel", "product_id", productID)
			s.reject(websocket.ClosePolicyViolation, "product not found")
			return err
		}
		s.log.Error("Failed to look up product", "product_id", productID, "error", err)
		s.reject(websocket.CloseInternalServerErr, "product lookup failed")
		return err
	}

	s.productID = productID
	s.log = s.log.With("product_id", productID)
	return nil
}

// Subscribe opens the session's own subscription to the product topic.
func (s *Session) Subscribe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != StateValidating || s.productID == 0 {
		return fmt.Errorf("subscribe in state %s", s.State())
	}

	topic := domain.ProductBidsTopic(s.productID)
	sub, err := s.bus.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	s.sub = sub
	s.setState(StateSubscribed)
	s.log.Info("Subscribed to bid notifications", "topic", topic)
	return nil
}

// Start runs the listener in its own goroutine and returns immediately.
// When the listener exits for any reason the session closes itself. Start
// fails once the session has begun closing.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != StateSubscribed {
		return fmt.Errorf("start in state %s", s.State())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.listenerDone = done
	s.setState(StateListening)

	go func() {
		s.listen(ctx)
		close(done)
		s.Close()
	}()
	return nil
}

// listen forwards data payloads unchanged and in delivery order until the
// stream or the transport fails, or ctx is cancelled. It never resubscribes.
func (s *Session) listen(ctx context.Context) {
	defer s.log.Info("Notification listener stopped")

	for {
		msg, err := s.sub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, domain.ErrSubscriptionClosed) {
				return
			}
			s.log.Error("Notification stream failed", "error", err)
			return
		}

		if msg.Kind != domain.MessageData {
			continue
		}

		payload, err := domain.DecodePayload(msg.Payload)
		if err != nil {
			s.log.Error("Failed to decode notification", "error", err)
			return
		}

		if err := s.transport.Send(payload); err != nil {
			s.log.Warn("Failed to forward notification", "error", err)
			return
		}
	}
}

func (s *Session) reject(code int, reason string) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.setState(StateRejected)
		s.mu.Unlock()
		if err := s.transport.Reject(code, reason); err != nil {
			s.log.Debug("Failed to close rejected connection", "error", err)
		}
		close(s.closed)
	})
}

// Close releases the subscription, the transport and the listener. It is safe
// to call any number of times from any goroutine, on a session in any state;
// every call returns once the session is Closed. Release faults are logged.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.setState(StateClosing)
		cancel, sub, listenerDone := s.cancel, s.sub, s.listenerDone
		s.mu.Unlock()

		s.release(cancel, sub, listenerDone)
		s.setState(StateClosed)
		close(s.closed)
		s.log.Info("Notification session closed")
	})
	<-s.closed
}

func (s *Session) release(stopListener context.CancelFunc, sub domain.Subscription, listenerDone <-chan struct{}) {
	if stopListener != nil {
		stopListener()
	}

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if sub != nil {
		if err := sub.Unsubscribe(ctx); err != nil {
			s.log.Warn("Failed to unsubscribe", "error", err)
		}
		if err := sub.Close(); err != nil {
			s.log.Warn("Failed to close subscription", "error", err)
		}
	}

	if s.transport != nil {
		if err := s.transport.Close(); err != nil {
			s.log.Debug("Failed to close transport", "error", err)
		}
	}

	if listenerDone != nil {
		<-listenerDone
	}
}
