package memory

import (
	"fmt"
	"sync"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// OrderStore implements storage.OrderStore using an in-memory map with
// FIFO eviction once maxSize is reached. Thread-safe via RWMutex.
type OrderStore struct {
	orders   map[uint64]*types.Order
	orderIDs []uint64 // FIFO queue for eviction
	maxSize  int
	mutex    sync.RWMutex
}

// NewOrderStore creates a new in-memory order store with a size limit
func NewOrderStore(maxSize int) *OrderStore {
	return &OrderStore{
		orders:   make(map[uint64]*types.Order),
		orderIDs: make([]uint64, 0, maxSize),
		maxSize:  maxSize,
	}
}

func (s *OrderStore) Save(order *types.Order) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.orders[order.ID]; !exists {
		s.orderIDs = append(s.orderIDs, order.ID)

		// Evict oldest order if size limit exceeded
		if s.maxSize > 0 && len(s.orderIDs) > s.maxSize {
			oldestID := s.orderIDs[0]
			delete(s.orders, oldestID)
			s.orderIDs = s.orderIDs[1:]
		}
	}

	s.orders[order.ID] = order
	return nil
}

func (s *OrderStore) Get(orderID uint64) (*types.Order, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	order, exists := s.orders[orderID]
	if !exists {
		return nil, fmt.Errorf("order %d: %w", orderID, types.ErrOrderNotFound)
	}
	return order, nil
}

func (s *OrderStore) Update(order *types.Order) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.orders[order.ID]; !exists {
		return fmt.Errorf("order %d: %w", order.ID, types.ErrOrderNotFound)
	}
	s.orders[order.ID] = order
	return nil
}

func (s *OrderStore) Remove(orderID uint64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.orders, orderID)
	return nil
}

func (s *OrderStore) GetByUser(userID string) []*types.Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var orders []*types.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders
}

func (s *OrderStore) GetAll() []*types.Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	orders := make([]*types.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, order)
	}
	return orders
}

func (s *OrderStore) Close() error {
	// No cleanup needed for in-memory store
	return nil
}
