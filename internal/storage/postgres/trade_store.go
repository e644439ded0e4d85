package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// TradeStore implements storage.TradeStore using PostgreSQL
type TradeStore struct {
	pool *pgxpool.Pool
}

// NewTradeStore creates a new PostgreSQL-backed trade store
func NewTradeStore(cfg Config) (*TradeStore, error) {
	pool, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return &TradeStore{pool: pool}, nil
}

func (s *TradeStore) Save(trade *types.Trade) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO trades (trade_id, symbol, maker_order_id, taker_order_id,
			buy_order_id, sell_order_id, buy_user_id, sell_user_id,
			taker_side, price, quantity, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (trade_id) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query,
		trade.TradeID, trade.Symbol, trade.MakerOrderID, trade.TakerOrderID,
		trade.BuyOrderID, trade.SellOrderID, trade.BuyUserID, trade.SellUserID,
		trade.TakerSide, trade.Price, trade.Quantity, trade.Timestamp,
	)
	return err
}

func (s *TradeStore) GetRecent(symbol string, limit int) ([]*types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT trade_id, symbol, maker_order_id, taker_order_id,
			buy_order_id, sell_order_id, buy_user_id, sell_user_id,
			taker_side, price, quantity, executed_at
		FROM trades
		WHERE symbol = $1
		ORDER BY executed_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*types.Trade
	for rows.Next() {
		var trade types.Trade
		err := rows.Scan(
			&trade.TradeID, &trade.Symbol, &trade.MakerOrderID, &trade.TakerOrderID,
			&trade.BuyOrderID, &trade.SellOrderID, &trade.BuyUserID, &trade.SellUserID,
			&trade.TakerSide, &trade.Price, &trade.Quantity, &trade.Timestamp,
		)
		if err != nil {
			continue
		}
		trades = append(trades, &trade)
	}
	return trades, nil
}

func (s *TradeStore) Close() error {
	s.pool.Close()
	return nil
}
