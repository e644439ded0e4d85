package memory

import (
	"sync"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// EventStore implements storage.EventStore with an append-only slice.
// Records are kept in arrival order; reads page through them newest
// first.
type EventStore struct {
	events []*types.Event
	nextID uint64
	mutex  sync.RWMutex
}

// NewEventStore creates a new in-memory event store
func NewEventStore() *EventStore {
	return &EventStore{nextID: 1}
}

func (s *EventStore) Append(event *types.Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if event.ID == 0 {
		event.ID = s.nextID
	}
	s.nextID = event.ID + 1
	s.events = append(s.events, event)
	return nil
}

func (s *EventStore) ByUser(userID string, page, perPage int) ([]*types.Event, int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return paginate(s.events, page, perPage, func(e *types.Event) bool {
		return e.UserID == userID
	})
}

func (s *EventStore) BySymbol(symbol string, page, perPage int) ([]*types.Event, int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return paginate(s.events, page, perPage, func(e *types.Event) bool {
		return e.Symbol == symbol
	})
}

// paginate walks the append-only log backwards (newest first) and
// returns the requested page plus the total match count.
func paginate(events []*types.Event, page, perPage int, match func(*types.Event) bool) ([]*types.Event, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var matched []*types.Event
	for i := len(events) - 1; i >= 0; i-- {
		if match(events[i]) {
			matched = append(matched, events[i])
		}
	}

	total := len(matched)
	start := (page - 1) * perPage
	if start >= total {
		return []*types.Event{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *EventStore) Close() error {
	return nil
}
