package storage

import "github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"

// Composite stores layer multiple backends: writes go to ALL stores
// (write-through), reads come from the FIRST store that succeeds.
// Example: NewCompositeOrderStore(memory, redis, postgres) writes to
// all three and reads from memory first.

// CompositeOrderStore combines multiple OrderStore implementations
type CompositeOrderStore struct {
	stores []OrderStore
}

// NewCompositeOrderStore creates a composite store from multiple stores
func NewCompositeOrderStore(stores ...OrderStore) *CompositeOrderStore {
	return &CompositeOrderStore{stores: stores}
}

func (c *CompositeOrderStore) Save(order *types.Order) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Save(order); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeOrderStore) Get(orderID uint64) (*types.Order, error) {
	var lastErr error
	for _, store := range c.stores {
		order, err := store.Get(orderID)
		if err == nil && order != nil {
			return order, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *CompositeOrderStore) Update(order *types.Order) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Update(order); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeOrderStore) Remove(orderID uint64) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Remove(orderID); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeOrderStore) GetByUser(userID string) []*types.Order {
	for _, store := range c.stores {
		orders := store.GetByUser(userID)
		if len(orders) > 0 {
			return orders
		}
	}
	return []*types.Order{}
}

func (c *CompositeOrderStore) GetAll() []*types.Order {
	for _, store := range c.stores {
		orders := store.GetAll()
		if len(orders) > 0 {
			return orders
		}
	}
	return []*types.Order{}
}

func (c *CompositeOrderStore) Close() error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// CompositeTradeStore combines multiple TradeStore implementations
type CompositeTradeStore struct {
	stores []TradeStore
}

// NewCompositeTradeStore creates a composite store from multiple stores
func NewCompositeTradeStore(stores ...TradeStore) *CompositeTradeStore {
	return &CompositeTradeStore{stores: stores}
}

func (c *CompositeTradeStore) Save(trade *types.Trade) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Save(trade); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeTradeStore) GetRecent(symbol string, limit int) ([]*types.Trade, error) {
	var lastErr error
	for _, store := range c.stores {
		trades, err := store.GetRecent(symbol, limit)
		if err == nil && len(trades) > 0 {
			return trades, nil
		}
		lastErr = err
	}
	return []*types.Trade{}, lastErr
}

func (c *CompositeTradeStore) Close() error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// CompositeBalanceStore combines multiple BalanceStore implementations
type CompositeBalanceStore struct {
	stores []BalanceStore
}

// NewCompositeBalanceStore creates a composite store from multiple stores
func NewCompositeBalanceStore(stores ...BalanceStore) *CompositeBalanceStore {
	return &CompositeBalanceStore{stores: stores}
}

func (c *CompositeBalanceStore) Save(balance *types.Balance) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Save(balance); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeBalanceStore) Get(userID, asset string) (*types.Balance, error) {
	var lastErr error
	for _, store := range c.stores {
		balance, err := store.Get(userID, asset)
		if err == nil && balance != nil {
			return balance, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *CompositeBalanceStore) GetByUser(userID string) []*types.Balance {
	for _, store := range c.stores {
		balances := store.GetByUser(userID)
		if len(balances) > 0 {
			return balances
		}
	}
	return []*types.Balance{}
}

func (c *CompositeBalanceStore) Close() error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// CompositeEventStore combines multiple EventStore implementations
type CompositeEventStore struct {
	stores []EventStore
}

// NewCompositeEventStore creates a composite store from multiple stores
func NewCompositeEventStore(stores ...EventStore) *CompositeEventStore {
	return &CompositeEventStore{stores: stores}
}

func (c *CompositeEventStore) Append(event *types.Event) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Append(event); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeEventStore) ByUser(userID string, page, perPage int) ([]*types.Event, int, error) {
	var lastErr error
	for _, store := range c.stores {
		events, total, err := store.ByUser(userID, page, perPage)
		if err == nil && total > 0 {
			return events, total, nil
		}
		lastErr = err
	}
	return []*types.Event{}, 0, lastErr
}

func (c *CompositeEventStore) BySymbol(symbol string, page, perPage int) ([]*types.Event, int, error) {
	var lastErr error
	for _, store := range c.stores {
		events, total, err := store.BySymbol(symbol, page, perPage)
		if err == nil && total > 0 {
			return events, total, nil
		}
		lastErr = err
	}
	return []*types.Event{}, 0, lastErr
}

func (c *CompositeEventStore) Close() error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
