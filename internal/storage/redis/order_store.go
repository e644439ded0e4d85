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
	orderKeyPrefix   = "order:"
	userOrdersPrefix = "user_orders:"
)

// OrderStore implements storage.OrderStore using Redis
type OrderStore struct {
	client   *redis.Client
	orderTTL time.Duration
}

// NewOrderStore creates a new Redis-backed order store
func NewOrderStore(cfg Config) (*OrderStore, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	ttl := cfg.OrderTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &OrderStore{client: client, orderTTL: ttl}, nil
}

func (s *OrderStore) Save(order *types.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()

	orderKey := fmt.Sprintf("%s%d", orderKeyPrefix, order.ID)
	pipe.Set(ctx, orderKey, data, s.orderTTL)

	// Add to user index
	userKey := userOrdersPrefix + order.UserID
	pipe.SAdd(ctx, userKey, order.ID)
	pipe.Expire(ctx, userKey, s.orderTTL)

	_, err = pipe.Exec(ctx)
	return err
}

func (s *OrderStore) Get(orderID uint64) (*types.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	orderKey := fmt.Sprintf("%s%d", orderKeyPrefix, orderID)
	data, err := s.client.Get(ctx, orderKey).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("order %d: %w", orderID, types.ErrOrderNotFound)
	}
	if err != nil {
		return nil, err
	}

	var order types.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderStore) Update(order *types.Order) error {
	// For Redis, update is same as save (upsert)
	return s.Save(order)
}

func (s *OrderStore) Remove(orderID uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// Get order first to clean up the user index
	order, err := s.Get(orderID)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, fmt.Sprintf("%s%d", orderKeyPrefix, orderID))
	pipe.SRem(ctx, userOrdersPrefix+order.UserID, orderID)

	_, err = pipe.Exec(ctx)
	return err
}

func (s *OrderStore) GetByUser(userID string) []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	orderIDs, err := s.client.SMembers(ctx, userOrdersPrefix+userID).Result()
	if err != nil {
		return []*types.Order{}
	}

	keys := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		keys[i] = orderKeyPrefix + id
	}
	return s.getOrdersByKeys(ctx, keys)
}

func (s *OrderStore) GetAll() []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Scan for all order keys (note: can be slow with many keys)
	keys, err := s.client.Keys(ctx, orderKeyPrefix+"*").Result()
	if err != nil {
		return []*types.Order{}
	}
	return s.getOrdersByKeys(ctx, keys)
}

func (s *OrderStore) Close() error {
	return s.client.Close()
}

// getOrdersByKeys is a helper to fetch multiple orders by their keys
func (s *OrderStore) getOrdersByKeys(ctx context.Context, keys []string) []*types.Order {
	if len(keys) == 0 {
		return []*types.Order{}
	}

	// Use MGET for efficient batch retrieval
	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return []*types.Order{}
	}

	var orders []*types.Order
	for _, result := range results {
		if result == nil {
			continue
		}
		data, ok := result.(string)
		if !ok {
			continue
		}

		var order types.Order
		if err := json.Unmarshal([]byte(data), &order); err != nil {
			continue
		}
		orders = append(orders, &order)
	}
	return orders
}
