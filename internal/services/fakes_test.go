package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"bidding-system/internal/domain"
)

type fakeStore struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	users    map[string]*domain.User
	bids     []*domain.Bid
	rooms    map[int64]*domain.Room
	nextID   int64
	bidErr   error
	marked   int
	markErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[int64]*domain.Product{
			1: {ID: 1, Name: "Vase", Price: 50},
		},
		users: map[string]*domain.User{
			"alice": {ID: 10, Username: "alice", Email: "alice@example.com"},
			"bob":   {ID: 11, Username: "bob", Email: "bob@example.com"},
		},
		rooms: make(map[int64]*domain.Room),
	}
}

func (f *fakeStore) CreateProduct(_ context.Context, product *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	product.ID = 100 + f.nextID
	f.products[product.ID] = product
	return nil
}

func (f *fakeStore) GetProduct(_ context.Context, productID int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeStore) ListProducts(_ context.Context) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) CreateUser(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = 100 + f.nextID
	f.users[user.Username] = user
	return nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateBid(_ context.Context, bid *domain.Bid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bidErr != nil {
		return f.bidErr
	}
	f.nextID++
	bid.ID = f.nextID
	f.bids = append(f.bids, bid)
	return nil
}

func (f *fakeStore) ListBidsForProduct(_ context.Context, productID int64) ([]*domain.BidInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.BidInfo
	for _, b := range f.bids {
		if b.ProductID != productID {
			continue
		}
		var username string
		for _, u := range f.users {
			if u.ID == b.UserID {
				username = u.Username
			}
		}
		out = append(out, &domain.BidInfo{ID: b.ID, ProductID: b.ProductID, Username: username, Amount: b.Amount, PlacedAt: b.PlacedAt})
	}
	return out, nil
}

func (f *fakeStore) HighestBid(_ context.Context, productID int64) (*float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var highest *float64
	for _, b := range f.bids {
		if b.ProductID != productID {
			continue
		}
		if highest == nil || b.Amount > *highest {
			amount := b.Amount
			highest = &amount
		}
	}
	return highest, nil
}

func (f *fakeStore) MarkWinningBids(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked++
	return int64(len(f.bids)), f.markErr
}

func (f *fakeStore) markedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.marked
}

func (f *fakeStore) CreateRoom(_ context.Context, room *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	room.ID = f.nextID
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeStore) GetRoomDetails(_ context.Context, roomID int64) (*domain.RoomDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	details := &domain.RoomDetails{Room: *room}
	for _, u := range f.users {
		if u.ID == room.UserID {
			details.OwnerUsername = u.Username
		}
	}
	return details, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.BidEvent
}

func (n *recordingNotifier) Publish(_ context.Context, event domain.BidEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

type failingBus struct{}

func (failingBus) Publish(context.Context, string, []byte) error {
	return errors.New("dial tcp: connection refused")
}

func (failingBus) Subscribe(context.Context, string) (domain.Subscription, error) {
	return nil, errors.New("dial tcp: connection refused")
}

type fakeProvider struct {
	created   []string
	createErr error
}

func (p *fakeProvider) CreateRoom(_ context.Context, name string) (string, error) {
	if p.createErr != nil {
		return "", p.createErr
	}
	p.created = append(p.created, name)
	return name, nil
}

func (p *fakeProvider) ViewerToken(username, roomName string) (string, error) {
	return "token:" + username + ":" + roomName, nil
}

type fakeLeader struct {
	mu       sync.Mutex
	leader   bool
	attempts int
	released int
	checkErr error
}

func (l *fakeLeader) BecomeLeader(context.Context, string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts++
	return l.leader, nil
}

func (l *fakeLeader) IsLeader(context.Context, string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.leader, l.checkErr
}

func (l *fakeLeader) ReleaseLeadership(context.Context, string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released++
	return nil
}

func (l *fakeLeader) counts() (attempts, released int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attempts, l.released
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
