package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bidding-system/internal/domain"
	"bidding-system/internal/domain/repositories"
	"bidding-system/pkg/logger"
)

const publishTimeout = 5 * time.Second

type BiddingService struct {
	products repositories.ProductRepository
	users    repositories.UserRepository
	bids     repositories.BidRepository
	notifier domain.BidNotifier
	log      logger.Logger
}

func NewBiddingService(
	products repositories.ProductRepository,
	users repositories.UserRepository,
	bids repositories.BidRepository,
	notifier domain.BidNotifier,
	log logger.Logger,
) *BiddingService {
	return &BiddingService{
		products: products,
		users:    users,
		bids:     bids,
		notifier: notifier,
		log:      log,
	}
}

func (s *BiddingService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.ListProducts(ctx)
}

func (s *BiddingService) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	return s.products.GetProduct(ctx, productID)
}

// PlaceBid records a bid and then announces it on the product topic. The
// announcement cannot fail the call once the bid is stored.
func (s *BiddingService) PlaceBid(ctx context.Context, productID int64, username string, amount float64) (*domain.BidInfo, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	}

	s.log.Info("Placing bid", "product_id", productID, "username", username, "amount", amount)

	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	bid := &domain.Bid{
		ProductID: productID,
		UserID:    user.ID,
		Amount:    amount,
		PlacedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := s.bids.CreateBid(ctx, bid); err != nil {
		return nil, fmt.Errorf("create bid: %w", err)
	}

	// The request may already be gone; the bid is committed either way.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	s.notifier.Publish(pubCtx, domain.BidEvent{
		ProductID: productID,
		Message:   domain.NewBidMessage(username),
	})

	return &domain.BidInfo{
		ID:        bid.ID,
		ProductID: productID,
		Username:  username,
		Amount:    amount,
		PlacedAt:  bid.PlacedAt,
	}, nil
}

// ListBids returns the bid history of a product, oldest first.
func (s *BiddingService) ListBids(ctx context.Context, productID int64) ([]*domain.BidInfo, error) {
	bids, err := s.bids.ListBidsForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(bids) == 0 {
		return nil, domain.ErrBidsNotFound
	}
	return bids, nil
}

// HighestBid returns nil when the product has no bids.
func (s *BiddingService) HighestBid(ctx context.Context, productID int64) (*float64, error) {
	return s.bids.HighestBid(ctx, productID)
}
