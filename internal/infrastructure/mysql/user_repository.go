package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bidding-system/internal/domain"
)

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := "INSERT INTO `user` (username, email, password) VALUES (?, ?, ?)"
	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *MySQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := "SELECT id, username, email, password FROM `user` WHERE username = ?"

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
