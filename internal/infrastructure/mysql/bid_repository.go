package mysql

import (
	"context"
	"database/sql"

	"bidding-system/internal/domain"
)

type MySQLBidRepository struct {
	db *sql.DB
}

func NewMySQLBidRepository(db *sql.DB) *MySQLBidRepository {
	return &MySQLBidRepository{db: db}
}

func (r *MySQLBidRepository) CreateBid(ctx context.Context, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (product_id, user_id, amount, placed_at, is_winning)
        VALUES (?, ?, ?, ?, ?)
    `
	result, err := r.db.ExecContext(ctx, query,
		bid.ProductID, bid.UserID, bid.Amount, bid.PlacedAt, bid.IsWinning)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	bid.ID = id
	return nil
}

func (r *MySQLBidRepository) ListBidsForProduct(ctx context.Context, productID int64) ([]*domain.BidInfo, error) {
	query := "SELECT b.id, b.product_id, u.username, b.amount, b.placed_at " +
		"FROM bids b JOIN `user` u ON u.id = b.user_id " +
		"WHERE b.product_id = ? ORDER BY b.placed_at ASC, b.id ASC"

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.BidInfo
	for rows.Next() {
		var bid domain.BidInfo
		err := rows.Scan(&bid.ID, &bid.ProductID, &bid.Username, &bid.Amount, &bid.PlacedAt)
		if err != nil {
			return nil, err
		}
		bids = append(bids, &bid)
	}

	return bids, rows.Err()
}

func (r *MySQLBidRepository) HighestBid(ctx context.Context, productID int64) (*float64, error) {
	query := `SELECT MAX(amount) FROM bids WHERE product_id = ?`

	var highest sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, query, productID).Scan(&highest); err != nil {
		return nil, err
	}
	if !highest.Valid {
		return nil, nil
	}

	return &highest.Float64, nil
}

// MarkWinningBids flags the highest bid of every product as winning, the
// earliest one on ties, and clears the flag on all other bids.
func (r *MySQLBidRepository) MarkWinningBids(ctx context.Context) (int64, error) {
	query := `
        UPDATE bids b
        LEFT JOIN (
            SELECT cand.product_id, MIN(cand.id) AS winning_id
            FROM bids cand
            JOIN (
                SELECT product_id, MAX(amount) AS max_amount
                FROM bids GROUP BY product_id
            ) m ON m.product_id = cand.product_id AND cand.amount = m.max_amount
            GROUP BY cand.product_id
        ) w ON w.winning_id = b.id
        SET b.is_winning = (w.winning_id IS NOT NULL)
    `
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
