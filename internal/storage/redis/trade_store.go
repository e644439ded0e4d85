package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

const tradeListPrefix = "trades:"

// TradeStore implements storage.TradeStore using per-symbol Redis lists
// capped at maxTrades entries (LPUSH + LTRIM).
type TradeStore struct {
	client    *redis.Client
	maxTrades int
}

// NewTradeStore creates a new Redis-backed trade store
func NewTradeStore(cfg Config) (*TradeStore, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	max := cfg.MaxTrades
	if max <= 0 {
		max = 1000
	}
	return &TradeStore{client: client, maxTrades: max}, nil
}

func (s *TradeStore) Save(trade *types.Trade) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := json.Marshal(trade)
	if err != nil {
		return err
	}

	key := tradeListPrefix + trade.Symbol
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(s.maxTrades-1))

	_, err = pipe.Exec(ctx)
	return err
}

func (s *TradeStore) GetRecent(symbol string, limit int) ([]*types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = s.maxTrades
	}

	// Head of the list is the newest trade
	rows, err := s.client.LRange(ctx, tradeListPrefix+symbol, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	trades := make([]*types.Trade, 0, len(rows))
	for _, row := range rows {
		var trade types.Trade
		if err := json.Unmarshal([]byte(row), &trade); err != nil {
			continue
		}
		trades = append(trades, &trade)
	}
	return trades, nil
}

func (s *TradeStore) Close() error {
	return s.client.Close()
}
