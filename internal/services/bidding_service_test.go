package services

import (
	"context"
	"errors"
	"testing"

	"bidding-system/internal/domain"
	"bidding-system/pkg/logger"
)

func newTestBiddingService(store *fakeStore, notifier domain.BidNotifier) *BiddingService {
	return NewBiddingService(store, store, store, notifier, logger.NewNop())
}

func TestPlaceBidStoresAndPublishes(t *testing.T) {
	store := newFakeStore()
	notifier := &recordingNotifier{}
	svc := newTestBiddingService(store, notifier)

	info, err := svc.PlaceBid(context.Background(), 1, "alice", 100)
	if err != nil {
		t.Fatalf("PlaceBid: %v", err)
	}
	if info.Amount != 100 || info.Username != "alice" || info.ProductID != 1 {
		t.Fatalf("unexpected bid info %+v", info)
	}
	if info.ID == 0 || info.PlacedAt.IsZero() {
		t.Fatalf("expected stored id and timestamp, got %+v", info)
	}
	if len(store.bids) != 1 || store.bids[0].UserID != 10 {
		t.Fatalf("expected one bid by alice, got %+v", store.bids)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("expected exactly one publish, got %d", len(notifier.events))
	}
	event := notifier.events[0]
	if event.ProductID != 1 || event.Message != "New Bid add by user: alice" {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestPlaceBidNotFound(t *testing.T) {
	tests := []struct {
		name      string
		productID int64
		username  string
		want      error
	}{
		{name: "unknown product", productID: 999, username: "alice", want: domain.ErrProductNotFound},
		{name: "unknown user", productID: 1, username: "mallory", want: domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			notifier := &recordingNotifier{}
			svc := newTestBiddingService(store, notifier)

			_, err := svc.PlaceBid(context.Background(), tt.productID, tt.username, 10)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(store.bids) != 0 || len(notifier.events) != 0 {
				t.Fatalf("expected nothing stored or published")
			}
		})
	}
}

func TestPlaceBidRejectsInvalidInput(t *testing.T) {
	svc := newTestBiddingService(newFakeStore(), &recordingNotifier{})

	if _, err := svc.PlaceBid(context.Background(), 1, "  ", 10); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank username, got %v", err)
	}
	if _, err := svc.PlaceBid(context.Background(), 1, "alice", 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero price, got %v", err)
	}
}

func TestPlaceBidSurvivesPublishFailure(t *testing.T) {
	store := newFakeStore()
	svc := newTestBiddingService(store, NewNotificationPublisher(failingBus{}, logger.NewNop()))

	info, err := svc.PlaceBid(context.Background(), 1, "bob", 75)
	if err != nil {
		t.Fatalf("publish failure must not fail the bid: %v", err)
	}
	if info.Amount != 75 || len(store.bids) != 1 {
		t.Fatalf("expected bid to be stored, got %+v", info)
	}
}

func TestPlaceBidPublishesAfterRequestCancelled(t *testing.T) {
	store := newFakeStore()
	notifier := &recordingNotifier{}
	svc := newTestBiddingService(store, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	info, err := svc.PlaceBid(ctx, 1, "alice", 5)
	cancel()
	if err != nil || info == nil {
		t.Fatalf("PlaceBid: %v", err)
	}
	if len(notifier.events) != 1 {
		t.Fatalf("expected one publish, got %d", len(notifier.events))
	}
}

func TestPlaceBidStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.bidErr = errors.New("deadlock")
	notifier := &recordingNotifier{}
	svc := newTestBiddingService(store, notifier)

	if _, err := svc.PlaceBid(context.Background(), 1, "alice", 5); err == nil {
		t.Fatal("expected store error")
	}
	if len(notifier.events) != 0 {
		t.Fatal("nothing may be published when the bid is not stored")
	}
}

func TestListBids(t *testing.T) {
	store := newFakeStore()
	svc := newTestBiddingService(store, &recordingNotifier{})
	ctx := context.Background()

	if _, err := svc.ListBids(ctx, 1); !errors.Is(err, domain.ErrBidsNotFound) {
		t.Fatalf("expected ErrBidsNotFound, got %v", err)
	}

	for _, bid := range []struct {
		user   string
		amount float64
	}{{"alice", 10}, {"bob", 20}} {
		if _, err := svc.PlaceBid(ctx, 1, bid.user, bid.amount); err != nil {
			t.Fatalf("PlaceBid: %v", err)
		}
	}

	bids, err := svc.ListBids(ctx, 1)
	if err != nil {
		t.Fatalf("ListBids: %v", err)
	}
	if len(bids) != 2 || bids[0].Username != "alice" || bids[1].Username != "bob" {
		t.Fatalf("unexpected bids %+v", bids)
	}
}

func TestHighestBid(t *testing.T) {
	store := newFakeStore()
	svc := newTestBiddingService(store, &recordingNotifier{})
	ctx := context.Background()

	highest, err := svc.HighestBid(ctx, 999)
	if err != nil {
		t.Fatalf("HighestBid: %v", err)
	}
	if highest != nil {
		t.Fatalf("expected nil highest bid, got %v", *highest)
	}

	for _, amount := range []float64{10, 30, 20} {
		if _, err := svc.PlaceBid(ctx, 1, "alice", amount); err != nil {
			t.Fatalf("PlaceBid: %v", err)
		}
	}
	highest, err = svc.HighestBid(ctx, 1)
	if err != nil {
		t.Fatalf("HighestBid: %v", err)
	}
	if highest == nil || *highest != 30 {
		t.Fatalf("expected 30, got %v", highest)
	}
}
