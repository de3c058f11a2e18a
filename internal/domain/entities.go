package domain

import (
	"time"
)

type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
}

type Bid struct {
	ID        int64
	ProductID int64
	UserID    int64
	Amount    float64
	PlacedAt  time.Time
	IsWinning bool
}

// BidInfo is a bid joined with the bidder's username.
type BidInfo struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Username  string    `json:"username"`
	Amount    float64   `json:"amount"`
	PlacedAt  time.Time `json:"placed_at"`
}

type Room struct {
	ID        int64
	Name      string
	ProductID int64
	UserID    int64
}

// RoomDetails is a room together with the username of its owner.
type RoomDetails struct {
	Room
	OwnerUsername string
}

// RoomAccess is what a viewer needs to join a live room.
type RoomAccess struct {
	RoomName string `json:"room_name"`
	Token    string `json:"token"`
}

// BidEvent is the transient domain event emitted after a bid is committed.
type BidEvent struct {
	ProductID int64
	Message   string
}
