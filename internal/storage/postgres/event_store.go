package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// EventStore implements storage.EventStore using PostgreSQL. The
// transaction_events table is append-only; rows are never updated.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates a new PostgreSQL-backed event store
func NewEventStore(cfg Config) (*EventStore, error) {
	pool, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return &EventStore{pool: pool}, nil
}

func (s *EventStore) Append(event *types.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO transaction_events (event_type, order_id, trade_id, user_id, symbol,
			from_token, to_token, from_amount, to_amount, limit_price, status, order_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	return s.pool.QueryRow(ctx, query,
		event.Type, event.OrderID, event.TradeID, event.UserID, event.Symbol,
		event.FromToken, event.ToToken, event.FromAmount, event.ToAmount,
		event.LimitPrice, event.Status, event.OrderType, event.CreatedAt,
	).Scan(&event.ID)
}

func (s *EventStore) ByUser(userID string, page, perPage int) ([]*types.Event, int, error) {
	return s.query(`user_id = $1`, userID, page, perPage)
}

func (s *EventStore) BySymbol(symbol string, page, perPage int) ([]*types.Event, int, error) {
	return s.query(`symbol = $1`, symbol, page, perPage)
}

func (s *EventStore) query(where, arg string, page, perPage int) ([]*types.Event, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM transaction_events WHERE ` + where
	if err := s.pool.QueryRow(ctx, countQuery, arg).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, event_type, order_id, COALESCE(trade_id, 0), user_id, symbol,
			from_token, to_token, from_amount, to_amount,
			COALESCE(limit_price, 0), COALESCE(status, ''), COALESCE(order_type, ''), created_at
		FROM transaction_events
		WHERE ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, query, arg, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func collectEvents(rows pgx.Rows) ([]*types.Event, error) {
	var events []*types.Event
	for rows.Next() {
		var event types.Event
		err := rows.Scan(
			&event.ID, &event.Type, &event.OrderID, &event.TradeID, &event.UserID,
			&event.Symbol, &event.FromToken, &event.ToToken, &event.FromAmount,
			&event.ToAmount, &event.LimitPrice, &event.Status, &event.OrderType,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

func (s *EventStore) Close() error {
	s.pool.Close()
	return nil
}
