package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"bidding-system/internal/domain"
)

var ErrDuplicateUsername = errors.New("username already exists")

// Store keeps products, users, bids and rooms in process. It implements every
// repository interface and is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
	users    map[int64]domain.User
	bids     []domain.Bid
	rooms    map[int64]domain.Room
	lastID   int64
}

func NewStore() *Store {
	return &Store{
		products: make(map[int64]domain.Product),
		users:    make(map[int64]domain.User),
		rooms:    make(map[int64]domain.Room),
	}
}

func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

func (s *Store) CreateProduct(_ context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.ID = s.nextID()
	s.products[product.ID] = *product
	return nil
}

func (s *Store) GetProduct(_ context.Context, productID int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, domain.ErrProductNotFound)
	}
	return &product, nil
}

func (s *Store) ListProducts(_ context.Context) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]*domain.Product, 0, len(s.products))
	for _, p := range s.products {
		product := p
		products = append(products, &product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return fmt.Errorf("%w: %s", ErrDuplicateUsername, user.Username)
		}
	}
	user.ID = s.nextID()
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, domain.ErrUserNotFound)
}

func (s *Store) CreateBid(_ context.Context, bid *domain.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[bid.ProductID]; !ok {
		return fmt.Errorf("product %d: %w", bid.ProductID, domain.ErrProductNotFound)
	}
	if _, ok := s.users[bid.UserID]; !ok {
		return fmt.Errorf("user %d: %w", bid.UserID, domain.ErrUserNotFound)
	}
	bid.ID = s.nextID()
	s.bids = append(s.bids, *bid)
	return nil
}

// ListBidsForProduct returns bids oldest first.
func (s *Store) ListBidsForProduct(_ context.Context, productID int64) ([]*domain.BidInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bids []*domain.BidInfo
	for _, b := range s.bids {
		if b.ProductID != productID {
			continue
		}
		bids = append(bids, &domain.BidInfo{
			ID:        b.ID,
			ProductID: b.ProductID,
			Username:  s.users[b.UserID].Username,
			Amount:    b.Amount,
			PlacedAt:  b.PlacedAt,
		})
	}
	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].PlacedAt.Equal(bids[j].PlacedAt) {
			return bids[i].ID < bids[j].ID
		}
		return bids[i].PlacedAt.Before(bids[j].PlacedAt)
	})
	return bids, nil
}

func (s *Store) HighestBid(_ context.Context, productID int64) (*float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var highest *float64
	for _, b := range s.bids {
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

// MarkWinningBids flags the highest bid of each product, the earliest one on
// ties, and clears the flag on every other bid. It returns the number of bids
// whose flag changed.
func (s *Store) MarkWinningBids(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	winners := make(map[int64]int) // productID -> index into bids
	for i, b := range s.bids {
		w, ok := winners[b.ProductID]
		if !ok || b.Amount > s.bids[w].Amount ||
			(b.Amount == s.bids[w].Amount && b.ID < s.bids[w].ID) {
			winners[b.ProductID] = i
		}
	}

	var changed int64
	for i := range s.bids {
		winning := winners[s.bids[i].ProductID] == i
		if s.bids[i].IsWinning != winning {
			s.bids[i].IsWinning = winning
			changed++
		}
	}
	return changed, nil
}

// WinningBid returns the bid currently flagged as winning for a product.
func (s *Store) WinningBid(productID int64) (*domain.Bid, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.bids {
		if b.ProductID == productID && b.IsWinning {
			bid := b
			return &bid, true
		}
	}
	return nil, false
}

func (s *Store) CreateRoom(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room.ID = s.nextID()
	s.rooms[room.ID] = *room
	return nil
}

func (s *Store) GetRoomDetails(_ context.Context, roomID int64) (*domain.RoomDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", roomID, domain.ErrRoomNotFound)
	}
	return &domain.RoomDetails{
		Room:          room,
		OwnerUsername: s.users[room.UserID].Username,
	}, nil
}
