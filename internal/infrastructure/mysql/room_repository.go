package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bidding-system/internal/domain"
)

type MySQLRoomRepository struct {
	db *sql.DB
}

func NewMySQLRoomRepository(db *sql.DB) *MySQLRoomRepository {
	return &MySQLRoomRepository{db: db}
}

func (r *MySQLRoomRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	query := `INSERT INTO room (name, product_id, user_id) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, room.Name, room.ProductID, room.UserID)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = id
	return nil
}

func (r *MySQLRoomRepository) GetRoomDetails(ctx context.Context, roomID int64) (*domain.RoomDetails, error) {
	query := "SELECT r.id, COALESCE(r.name, ''), r.product_id, r.user_id, u.username " +
		"FROM room r JOIN `user` u ON u.id = r.user_id WHERE r.id = ?"

	var room domain.RoomDetails
	err := r.db.QueryRowContext(ctx, query, roomID).Scan(
		&room.ID, &room.Name, &room.ProductID, &room.UserID, &room.OwnerUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("room %d: %w", roomID, domain.ErrRoomNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &room, nil
}
