package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// OrderStore implements storage.OrderStore using PostgreSQL
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates a new PostgreSQL-backed order store
func NewOrderStore(cfg Config) (*OrderStore, error) {
	pool, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return &OrderStore{pool: pool}, nil
}

const orderColumns = `order_id, user_id, base_token, quote_token, side, order_type,
	limit_price, quantity, filled_quantity, status, reserved, created_at, updated_at`

func (s *OrderStore) Save(order *types.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (order_id) DO UPDATE SET
			filled_quantity = EXCLUDED.filled_quantity,
			status = EXCLUDED.status,
			reserved = EXCLUDED.reserved,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		order.ID, order.UserID, order.Pair.Base, order.Pair.Quote, order.Side,
		order.OrderType, order.LimitPrice, order.Quantity, order.FilledQuantity,
		order.Status, order.Reserved, order.CreatedAt, time.Now().UTC(),
	)
	return err
}

func (s *OrderStore) Get(orderID uint64) (*types.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

	order, err := scanOrder(s.pool.QueryRow(ctx, query, orderID))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", orderID, types.ErrOrderNotFound)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderStore) Update(order *types.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		UPDATE orders
		SET filled_quantity = $2, status = $3, reserved = $4, updated_at = $5
		WHERE order_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		order.ID, order.FilledQuantity, order.Status, order.Reserved, time.Now().UTC())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", order.ID, types.ErrOrderNotFound)
	}
	return nil
}

func (s *OrderStore) Remove(orderID uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	return err
}

func (s *OrderStore) GetByUser(userID string) []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return []*types.Order{}
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (s *OrderStore) GetAll() []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return []*types.Order{}
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (s *OrderStore) Close() error {
	s.pool.Close()
	return nil
}

func scanOrder(row pgx.Row) (*types.Order, error) {
	var order types.Order
	err := row.Scan(
		&order.ID, &order.UserID, &order.Pair.Base, &order.Pair.Quote, &order.Side,
		&order.OrderType, &order.LimitPrice, &order.Quantity, &order.FilledQuantity,
		&order.Status, &order.Reserved, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func collectOrders(rows pgx.Rows) []*types.Order {
	var orders []*types.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, order)
	}
	return orders
}
