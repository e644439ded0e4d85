package memory

import (
	"fmt"
	"sync"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// BalanceStore implements storage.BalanceStore with an in-memory map
// keyed by user and asset.
type BalanceStore struct {
	balances map[string]*types.Balance
	mutex    sync.RWMutex
}

// NewBalanceStore creates a new in-memory balance store
func NewBalanceStore() *BalanceStore {
	return &BalanceStore{
		balances: make(map[string]*types.Balance),
	}
}

func balanceKey(userID, asset string) string {
	return userID + ":" + asset
}

func (s *BalanceStore) Save(balance *types.Balance) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	copied := *balance
	s.balances[balanceKey(balance.UserID, balance.Asset)] = &copied
	return nil
}

func (s *BalanceStore) Get(userID, asset string) (*types.Balance, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	balance, exists := s.balances[balanceKey(userID, asset)]
	if !exists {
		return nil, fmt.Errorf("balance %s/%s not found", userID, asset)
	}
	copied := *balance
	return &copied, nil
}

func (s *BalanceStore) GetByUser(userID string) []*types.Balance {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var balances []*types.Balance
	for _, balance := range s.balances {
		if balance.UserID == userID {
			copied := *balance
			balances = append(balances, &copied)
		}
	}
	return balances
}

func (s *BalanceStore) Close() error {
	return nil
}
