package repositories

import (
	"context"

	"bidding-system/internal/domain"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

type BidRepository interface {
	CreateBid(ctx context.Context, bid *domain.Bid) error
	ListBidsForProduct(ctx context.Context, productID int64) ([]*domain.BidInfo, error)
	HighestBid(ctx context.Context, productID int64) (*float64, error)
	MarkWinningBids(ctx context.Context) (int64, error)
}

type RoomRepository interface {
	CreateRoom(ctx context.Context, room *domain.Room) error
	GetRoomDetails(ctx context.Context, roomID int64) (*domain.RoomDetails, error)
}
