package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// BalanceStore implements storage.BalanceStore using PostgreSQL
type BalanceStore struct {
	pool *pgxpool.Pool
}

// NewBalanceStore creates a new PostgreSQL-backed balance store
func NewBalanceStore(cfg Config) (*BalanceStore, error) {
	pool, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return &BalanceStore{pool: pool}, nil
}

func (s *BalanceStore) Save(balance *types.Balance) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO balances (user_id, asset, actual, held)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, asset) DO UPDATE SET
			actual = EXCLUDED.actual,
			held = EXCLUDED.held
	`

	_, err := s.pool.Exec(ctx, query, balance.UserID, balance.Asset, balance.Actual, balance.Held)
	return err
}

func (s *BalanceStore) Get(userID, asset string) (*types.Balance, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT user_id, asset, actual, held FROM balances WHERE user_id = $1 AND asset = $2`

	var balance types.Balance
	err := s.pool.QueryRow(ctx, query, userID, asset).Scan(
		&balance.UserID, &balance.Asset, &balance.Actual, &balance.Held,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("balance %s/%s not found", userID, asset)
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (s *BalanceStore) GetByUser(userID string) []*types.Balance {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `SELECT user_id, asset, actual, held FROM balances WHERE user_id = $1 ORDER BY asset`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return []*types.Balance{}
	}
	defer rows.Close()

	var balances []*types.Balance
	for rows.Next() {
		var balance types.Balance
		if err := rows.Scan(&balance.UserID, &balance.Asset, &balance.Actual, &balance.Held); err != nil {
			continue
		}
		balances = append(balances, &balance)
	}
	return balances
}

func (s *BalanceStore) Close() error {
	s.pool.Close()
	return nil
}
