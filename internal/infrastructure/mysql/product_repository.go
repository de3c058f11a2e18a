package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bidding-system/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func (r *MySQLProductRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `INSERT INTO product (name, price) VALUES (?, ?)`
	result, err := r.db.ExecContext(ctx, query, product.Name, product.Price)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	product.ID = id
	return nil
}

func (r *MySQLProductRepository) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	query := `SELECT id, COALESCE(name, ''), COALESCE(price, 0) FROM product WHERE id = ?`

	var product domain.Product
	err := r.db.QueryRowContext(ctx, query, productID).Scan(&product.ID, &product.Name, &product.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", productID, domain.ErrProductNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *MySQLProductRepository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT id, COALESCE(name, ''), COALESCE(price, 0) FROM product ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Price); err != nil {
			return nil, err
		}
		products = append(products, &product)
	}

	return products, rows.Err()
}
