package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"bidding-system/internal/domain"
)

func seedStore(t *testing.T) (*Store, *domain.Product, *domain.User, *domain.User) {
	t.Helper()
	ctx := context.Background()
	store := NewStore()

	product := &domain.Product{Name: "Lamp", Price: 40}
	if err := store.CreateProduct(ctx, product); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	alice := &domain.User{Username: "alice", Email: "alice@example.com"}
	bob := &domain.User{Username: "bob", Email: "bob@example.com"}
	for _, u := range []*domain.User{alice, bob} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}
	return store, product, alice, bob
}

func TestStoreNotFound(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.GetProduct(ctx, 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := store.GetUserByUsername(ctx, "x"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := store.GetRoomDetails(ctx, 1); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	highest, err := store.HighestBid(ctx, 1)
	if err != nil || highest != nil {
		t.Fatalf("expected nil highest bid, got %v %v", highest, err)
	}
}

func TestStoreDuplicateUsername(t *testing.T) {
	store, _, _, _ := seedStore(t)
	err := store.CreateUser(context.Background(), &domain.User{Username: "alice"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStoreBidsAndWinningMarks(t *testing.T) {
	store, product, alice, bob := seedStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	bids := []*domain.Bid{
		{ProductID: product.ID, UserID: alice.ID, Amount: 50, PlacedAt: base},
		{ProductID: product.ID, UserID: bob.ID, Amount: 80, PlacedAt: base.Add(time.Second)},
		{ProductID: product.ID, UserID: alice.ID, Amount: 80, PlacedAt: base.Add(2 * time.Second)},
	}
	for _, b := range bids {
		if err := store.CreateBid(ctx, b); err != nil {
			t.Fatalf("CreateBid: %v", err)
		}
	}

	list, err := store.ListBidsForProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("ListBidsForProduct: %v", err)
	}
	if len(list) != 3 || list[0].Username != "alice" || list[1].Username != "bob" {
		t.Fatalf("unexpected bid list %+v", list)
	}

	highest, err := store.HighestBid(ctx, product.ID)
	if err != nil || highest == nil || *highest != 80 {
		t.Fatalf("expected highest 80, got %v %v", highest, err)
	}

	changed, err := store.MarkWinningBids(ctx)
	if err != nil {
		t.Fatalf("MarkWinningBids: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 change, got %d", changed)
	}
	winner, ok := store.WinningBid(product.ID)
	if !ok || winner.ID != bids[1].ID {
		t.Fatalf("expected earliest top bid to win, got %+v", winner)
	}

	// A higher bid moves the flag.
	top := &domain.Bid{ProductID: product.ID, UserID: alice.ID, Amount: 90, PlacedAt: base.Add(3 * time.Second)}
	if err := store.CreateBid(ctx, top); err != nil {
		t.Fatalf("CreateBid: %v", err)
	}
	changed, err = store.MarkWinningBids(ctx)
	if err != nil {
		t.Fatalf("MarkWinningBids: %v", err)
	}
	if changed != 2 {
		t.Fatalf("expected 2 changes, got %d", changed)
	}
	if winner, _ := store.WinningBid(product.ID); winner.ID != top.ID {
		t.Fatalf("expected new top bid to win, got %+v", winner)
	}
}

func TestStoreRoomDetails(t *testing.T) {
	store, product, alice, _ := seedStore(t)
	ctx := context.Background()

	room := &domain.Room{Name: "Room-Product-1-Owner-alice", ProductID: product.ID, UserID: alice.ID}
	if err := store.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	details, err := store.GetRoomDetails(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoomDetails: %v", err)
	}
	if details.OwnerUsername != "alice" || details.ProductID != product.ID {
		t.Fatalf("unexpected details %+v", details)
	}
}
