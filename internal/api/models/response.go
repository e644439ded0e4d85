package models

import (
	"time"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// BaseResponse is the base structure for all API responses
type BaseResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

// OK builds a success envelope
func OK(message string) BaseResponse {
	return BaseResponse{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Message:   message,
	}
}

// OrderDTO represents an order in API responses
type OrderDTO struct {
	OrderID           uint64    `json:"order_id"`
	UserID            string    `json:"user_id"`
	Symbol            string    `json:"symbol"`
	BaseTokenID       string    `json:"base_token_id"`
	QuoteTokenID      string    `json:"quote_token_id"`
	Side              string    `json:"side"`
	OrderType         string    `json:"order_type"`
	LimitPrice        float64   `json:"limit_price,omitempty"`
	Quantity          float64   `json:"quantity"`
	FilledQuantity    float64   `json:"filled_quantity"`
	RemainingQuantity float64   `json:"remaining_quantity"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewOrderDTO converts a domain order
func NewOrderDTO(o *types.Order) OrderDTO {
	return OrderDTO{
		OrderID:           o.ID,
		UserID:            o.UserID,
		Symbol:            o.Pair.Symbol(),
		BaseTokenID:       o.Pair.Base,
		QuoteTokenID:      o.Pair.Quote,
		Side:              string(o.Side),
		OrderType:         string(o.OrderType),
		LimitPrice:        o.LimitPrice,
		Quantity:          o.Quantity,
		FilledQuantity:    o.FilledQuantity,
		RemainingQuantity: o.Remaining(),
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// TradeDTO represents a trade in API responses
type TradeDTO struct {
	TradeID     uint64    `json:"trade_id"`
	Symbol      string    `json:"symbol"`
	BuyOrderID  uint64    `json:"buy_order_id"`
	SellOrderID uint64    `json:"sell_order_id"`
	TakerSide   string    `json:"taker_side"`
	Price       float64   `json:"price"`
	Quantity    float64   `json:"quantity"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTradeDTO converts a domain trade
func NewTradeDTO(t *types.Trade) TradeDTO {
	return TradeDTO{
		TradeID:     t.TradeID,
		Symbol:      t.Symbol,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		TakerSide:   string(t.TakerSide),
		Price:       t.Price,
		Quantity:    t.Quantity,
		Timestamp:   t.Timestamp,
	}
}

// CreateOrderResponse represents the response for order submission
type CreateOrderResponse struct {
	BaseResponse
	Order  *OrderDTO  `json:"order,omitempty"`
	Trades []TradeDTO `json:"trades,omitempty"`
}

// CancelOrderResponse represents the response for order cancellation
type CancelOrderResponse struct {
	BaseResponse
	Order *OrderDTO `json:"order,omitempty"`
}

// GetOrderResponse represents the response for getting a single order
type GetOrderResponse struct {
	BaseResponse
	Order *OrderDTO `json:"order,omitempty"`
}

// SortedOrdersResponse lists resting orders for a pair, bids and asks
// each sorted best price first
type SortedOrdersResponse struct {
	BaseResponse
	Symbol string     `json:"symbol"`
	Bids   []OrderDTO `json:"bids"`
	Asks   []OrderDTO `json:"asks"`
}

// RecentTradesResponse is the capped tape for a pair, newest first
type RecentTradesResponse struct {
	BaseResponse
	Symbol string     `json:"symbol"`
	Trades []TradeDTO `json:"trades"`
	Count  int        `json:"count"`
}

// DepthResponse is the aggregated book snapshot for a pair
type DepthResponse struct {
	BaseResponse
	Depth types.DepthSnapshot `json:"depth"`
}

// TransactionDTO is one row of a user's transaction history in the
// dashboard's from/to shape
type TransactionDTO struct {
	ID         uint64    `json:"id"`
	Type       string    `json:"type"`
	OrderID    uint64    `json:"order_id"`
	TradeID    uint64    `json:"trade_id,omitempty"`
	Symbol     string    `json:"symbol"`
	FromToken  string    `json:"from_token_id"`
	ToToken    string    `json:"to_token_id"`
	FromAmount float64   `json:"from_amount"`
	ToAmount   float64   `json:"to_amount"`
	LimitPrice float64   `json:"limit_price,omitempty"`
	Status     string    `json:"status,omitempty"`
	OrderType  string    `json:"order_type,omitempty"`
	CreatedAt  time.Time `json:"creation"`
}

// NewTransactionDTO converts a history event
func NewTransactionDTO(e *types.Event) TransactionDTO {
	return TransactionDTO{
		ID:         e.ID,
		Type:       string(e.Type),
		OrderID:    e.OrderID,
		TradeID:    e.TradeID,
		Symbol:     e.Symbol,
		FromToken:  e.FromToken,
		ToToken:    e.ToToken,
		FromAmount: e.FromAmount,
		ToAmount:   e.ToAmount,
		LimitPrice: e.LimitPrice,
		Status:     string(e.Status),
		OrderType:  string(e.OrderType),
		CreatedAt:  e.CreatedAt,
	}
}

// Pagination echoes the page window plus totals
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// TransactionsResponse is a page of a user's transaction history
type TransactionsResponse struct {
	BaseResponse
	Transactions []TransactionDTO `json:"transactions"`
	Pagination   Pagination       `json:"pagination"`
}

// HoldingDTO is one user/token balance row
type HoldingDTO struct {
	UserID           string  `json:"user_id"`
	TokenID          string  `json:"token_id"`
	ActualBalance    float64 `json:"actual_balance"`
	AvailableBalance float64 `json:"available_balance"`
	HeldBalance      float64 `json:"held_balance"`
}

// NewHoldingDTO converts a ledger balance
func NewHoldingDTO(b types.Balance) HoldingDTO {
	return HoldingDTO{
		UserID:           b.UserID,
		TokenID:          b.Asset,
		ActualBalance:    b.Actual,
		AvailableBalance: b.Available(),
		HeldBalance:      b.Held,
	}
}

// HoldingsResponse returns one or more balance rows
type HoldingsResponse struct {
	BaseResponse
	Holdings []HoldingDTO `json:"holdings"`
}

// DepositResponse acknowledges a deposit with the updated balance
type DepositResponse struct {
	BaseResponse
	Holding HoldingDTO `json:"holding"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Version       string    `json:"version"`
	Pairs         []string  `json:"pairs,omitempty"`
}
