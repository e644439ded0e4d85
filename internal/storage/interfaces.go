package storage

import "github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"

// OrderStore abstracts order storage and retrieval operations.
// Implementations can be in-memory (map), Redis, PostgreSQL, etc.
type OrderStore interface {
	// Save stores a new order
	Save(order *types.Order) error

	// Get retrieves an order by ID
	Get(orderID uint64) (*types.Order, error)

	// Update modifies an existing order (fills, status changes)
	Update(order *types.Order) error

	// Remove deletes an order from storage
	Remove(orderID uint64) error

	// GetByUser returns all orders for a specific user
	GetByUser(userID string) []*types.Order

	// GetAll returns all tracked orders
	GetAll() []*types.Order

	// Close releases any resources held by the store
	Close() error
}

// TradeStore abstracts trade storage and retrieval operations.
type TradeStore interface {
	// Save persists a single trade
	Save(trade *types.Trade) error

	// GetRecent retrieves the N most recent trades for a symbol,
	// newest first
	GetRecent(symbol string, limit int) ([]*types.Trade, error)

	// Close releases any resources held by the store
	Close() error
}

// BalanceStore persists ledger balances. The in-memory ledger is
// authoritative; stores are write-through replicas.
type BalanceStore interface {
	// Save upserts a balance row
	Save(balance *types.Balance) error

	// Get retrieves one user/asset balance
	Get(userID, asset string) (*types.Balance, error)

	// GetByUser returns all balances for a user
	GetByUser(userID string) []*types.Balance

	// Close releases any resources held by the store
	Close() error
}

// EventStore is the append-only transaction history backing the
// dashboard's aggregated transaction views.
type EventStore interface {
	// Append adds one record; records are never updated or deleted
	Append(event *types.Event) error

	// ByUser returns a page of a user's records, newest first, plus
	// the total record count for that user
	ByUser(userID string, page, perPage int) ([]*types.Event, int, error)

	// BySymbol returns a page of a pair's records, newest first, plus
	// the total record count for that pair
	BySymbol(symbol string, page, perPage int) ([]*types.Event, int, error)

	// Close releases any resources held by the store
	Close() error
}
