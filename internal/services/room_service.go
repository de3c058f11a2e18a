package services

import (
	"context"
	"fmt"
	"strings"

	"bidding-system/internal/domain"
	"bidding-system/internal/domain/repositories"
	"bidding-system/pkg/logger"
)

// RoomName is the live room name for a product owned by username.
func RoomName(productID int64, ownerUsername string) string {
	return fmt.Sprintf("Room-Product-%d-Owner-%s", productID, ownerUsername)
}

type RoomService struct {
	products repositories.ProductRepository
	users    repositories.UserRepository
	rooms    repositories.RoomRepository
	provider domain.VideoRoomProvider
	log      logger.Logger
}

func NewRoomService(
	products repositories.ProductRepository,
	users repositories.UserRepository,
	rooms repositories.RoomRepository,
	provider domain.VideoRoomProvider,
	log logger.Logger,
) *RoomService {
	return &RoomService{
		products: products,
		users:    users,
		rooms:    rooms,
		provider: provider,
		log:      log,
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, productID int64, username string) (*domain.Room, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	room := &domain.Room{
		Name:      RoomName(product.ID, user.Username),
		ProductID: product.ID,
		UserID:    user.ID,
	}
	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	providerName, err := s.provider.CreateRoom(ctx, room.Name)
	if err != nil {
		return nil, fmt.Errorf("create video room %s: %w", room.Name, err)
	}
	if providerName != "" {
		room.Name = providerName
	}

	s.log.Info("Room created", "room_id", room.ID, "room_name", room.Name, "product_id", product.ID, "owner", user.Username)
	return room, nil
}

// JoinRoom issues a subscribe-only token for the room. The room name is
// rebuilt from the room's product and owner.
func (s *RoomService) JoinRoom(ctx context.Context, roomID int64, username string) (*domain.RoomAccess, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	details, err := s.rooms.GetRoomDetails(ctx, roomID)
	if err != nil {
		return nil, err
	}

	roomName := RoomName(details.ProductID, details.OwnerUsername)
	token, err := s.provider.ViewerToken(username, roomName)
	if err != nil {
		return nil, fmt.Errorf("issue viewer token: %w", err)
	}

	s.log.Info("Viewer joined room", "room_id", roomID, "room_name", roomName, "username", username)
	return &domain.RoomAccess{RoomName: roomName, Token: token}, nil
}
