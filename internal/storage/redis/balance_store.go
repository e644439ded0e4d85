package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

const (
	balanceKeyPrefix   = "balance:"
	userBalancesPrefix = "user_balances:"
)

// BalanceStore implements storage.BalanceStore using Redis. Balances
// have no TTL; the ledger is the source of truth and rewrites them on
// every mutation.
type BalanceStore struct {
	client *redis.Client
}

// NewBalanceStore creates a new Redis-backed balance store
func NewBalanceStore(cfg Config) (*BalanceStore, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &BalanceStore{client: client}, nil
}

func (s *BalanceStore) Save(balance *types.Balance) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := json.Marshal(balance)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s%s:%s", balanceKeyPrefix, balance.UserID, balance.Asset)
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, userBalancesPrefix+balance.UserID, balance.Asset)

	_, err = pipe.Exec(ctx)
	return err
}

func (s *BalanceStore) Get(userID, asset string) (*types.Balance, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf("%s%s:%s", balanceKeyPrefix, userID, asset)
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("balance %s/%s not found", userID, asset)
	}
	if err != nil {
		return nil, err
	}

	var balance types.Balance
	if err := json.Unmarshal(data, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (s *BalanceStore) GetByUser(userID string) []*types.Balance {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assets, err := s.client.SMembers(ctx, userBalancesPrefix+userID).Result()
	if err != nil {
		return []*types.Balance{}
	}

	var balances []*types.Balance
	for _, asset := range assets {
		balance, err := s.Get(userID, asset)
		if err != nil {
			continue
		}
		balances = append(balances, balance)
	}
	return balances
}

func (s *BalanceStore) Close() error {
	return s.client.Close()
}
