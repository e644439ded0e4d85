package types

import "time"

// EventType identifies an order lifecycle transition or a trade
type EventType string

const (
	EventOrderCreated   EventType = "order_created"
	EventOrderFilled    EventType = "order_filled"
	EventOrderPartial   EventType = "order_partially_filled"
	EventOrderCancelled EventType = "order_cancelled"
	EventOrderRejected  EventType = "order_rejected"
	EventTrade          EventType = "trade"
)

// Event is one append-only record in the transaction history. The
// from/to fields use the dashboard's legacy shape: a buy spends the
// quote token and receives the base token, a sell the reverse.
type Event struct {
	ID         uint64      `json:"id"`
	Type       EventType   `json:"type"`
	OrderID    uint64      `json:"order_id"`
	TradeID    uint64      `json:"trade_id,omitempty"`
	UserID     string      `json:"user_id"`
	Symbol     string      `json:"symbol"`
	FromToken  string      `json:"from_token_id"`
	ToToken    string      `json:"to_token_id"`
	FromAmount float64     `json:"from_amount"`
	ToAmount   float64     `json:"to_amount"`
	LimitPrice float64     `json:"limit_price,omitempty"`
	Status     OrderStatus `json:"status"`
	OrderType  OrderType   `json:"order_type"`
	CreatedAt  time.Time   `json:"creation"`
}

// OrderEvent builds a lifecycle event snapshot from an order. The
// price parameter values the quote leg: a limit order's limit price,
// or the engine's best estimate for market orders, whose LimitPrice
// is always zero.
func OrderEvent(eventType EventType, o *Order, price float64) *Event {
	from, to := o.Pair.Quote, o.Pair.Base
	fromAmount := o.Quantity * price
	toAmount := o.Quantity
	if o.Side == SideSell {
		from, to = o.Pair.Base, o.Pair.Quote
		fromAmount = o.Quantity
		toAmount = o.Quantity * price
	}

	return &Event{
		Type:       eventType,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Symbol:     o.Pair.Symbol(),
		FromToken:  from,
		ToToken:    to,
		FromAmount: fromAmount,
		ToAmount:   toAmount,
		LimitPrice: o.LimitPrice,
		Status:     o.Status,
		OrderType:  o.OrderType,
		CreatedAt:  time.Now().UTC(),
	}
}

// TradeEvents builds one event per counterparty for a trade. The
// status arguments carry each order's state after this fill was
// applied, so history rows show the fill's effect on the order.
func TradeEvents(t *Trade, pair Pair, buyerStatus, sellerStatus OrderStatus) []*Event {
	notional := t.Price * t.Quantity

	buyer := &Event{
		Type:       EventTrade,
		OrderID:    t.BuyOrderID,
		TradeID:    t.TradeID,
		UserID:     t.BuyUserID,
		Symbol:     t.Symbol,
		FromToken:  pair.Quote,
		ToToken:    pair.Base,
		FromAmount: notional,
		ToAmount:   t.Quantity,
		LimitPrice: t.Price,
		Status:     buyerStatus,
		CreatedAt:  t.Timestamp,
	}
	seller := &Event{
		Type:       EventTrade,
		OrderID:    t.SellOrderID,
		TradeID:    t.TradeID,
		UserID:     t.SellUserID,
		Symbol:     t.Symbol,
		FromToken:  pair.Base,
		ToToken:    pair.Quote,
		FromAmount: t.Quantity,
		ToAmount:   notional,
		LimitPrice: t.Price,
		Status:     sellerStatus,
		CreatedAt:  t.Timestamp,
	}
	return []*Event{buyer, seller}
}
