package memory

import (
	"sync"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// TradeStore implements storage.TradeStore using per-symbol circular
// buffers. Keeps only the N most recent trades per symbol in memory.
type TradeStore struct {
	trades  map[string][]*types.Trade
	maxSize int
	mutex   sync.RWMutex
}

// NewTradeStore creates a new in-memory trade store with a per-symbol
// size limit
func NewTradeStore(maxSize int) *TradeStore {
	return &TradeStore{
		trades:  make(map[string][]*types.Trade),
		maxSize: maxSize,
	}
}

func (s *TradeStore) Save(trade *types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	buf := append(s.trades[trade.Symbol], trade)

	// Trim to max size (circular buffer behavior)
	if s.maxSize > 0 && len(buf) > s.maxSize {
		buf = buf[len(buf)-s.maxSize:]
	}
	s.trades[trade.Symbol] = buf
	return nil
}

func (s *TradeStore) GetRecent(symbol string, limit int) ([]*types.Trade, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	buf := s.trades[symbol]
	if limit <= 0 || limit > len(buf) {
		limit = len(buf)
	}

	// Newest first
	result := make([]*types.Trade, limit)
	for i := 0; i < limit; i++ {
		result[i] = buf[len(buf)-1-i]
	}
	return result, nil
}

func (s *TradeStore) Close() error {
	return nil
}
