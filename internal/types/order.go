package types

import (
	"strings"
	"time"
)

// Side is the direction of an order relative to the base token
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType selects the execution policy
type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusOpen            OrderStatus = "open"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCancelled       OrderStatus = "cancelled"
)

// Pair is a base/quote trading pair. Token IDs are stored lowercase.
type Pair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// NewPair normalizes token IDs to lowercase
func NewPair(base, quote string) Pair {
	return Pair{
		Base:  strings.ToLower(strings.TrimSpace(base)),
		Quote: strings.ToLower(strings.TrimSpace(quote)),
	}
}

// Symbol returns the canonical "base-quote" form, e.g. "btc-usdt"
func (p Pair) Symbol() string {
	return p.Base + "-" + p.Quote
}

// Order is a request to trade quantity of the base token. LimitPrice
// is zero for market orders. Reserved tracks how much of the funding
// asset is still held against the unfilled remainder.
type Order struct {
	ID             uint64      `json:"order_id"`
	UserID         string      `json:"user_id"`
	Pair           Pair        `json:"pair"`
	Side           Side        `json:"side"`
	OrderType      OrderType   `json:"order_type"`
	LimitPrice     float64     `json:"limit_price,omitempty"`
	Quantity       float64     `json:"quantity"`
	FilledQuantity float64     `json:"filled_quantity"`
	Status         OrderStatus `json:"status"`
	Reserved       float64     `json:"-"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewOrder creates an open order with creation timestamps set
func NewOrder(id uint64, userID string, pair Pair, side Side, orderType OrderType, limitPrice, quantity float64) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:         id,
		UserID:     userID,
		Pair:       pair,
		Side:       side,
		OrderType:  orderType,
		LimitPrice: limitPrice,
		Quantity:   quantity,
		Status:     StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Remaining is the unfilled quantity
func (o *Order) Remaining() float64 {
	return o.Quantity - o.FilledQuantity
}

// FundingAsset is the token a user must hold to place this order:
// the quote token for a buy, the base token for a sell.
func (o *Order) FundingAsset() string {
	if o.Side == SideBuy {
		return o.Pair.Quote
	}
	return o.Pair.Base
}

// IsTerminal reports whether the order can no longer trade or be cancelled
func (o *Order) IsTerminal() bool {
	return o.Status == StatusFilled || o.Status == StatusCancelled
}
