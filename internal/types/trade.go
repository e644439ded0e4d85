package types

import "time"

// Trade represents a matched fill between a resting (maker) order and an
// incoming (taker) order. Price is always the maker's limit price.
type Trade struct {
	TradeID      uint64    `json:"trade_id"`
	Symbol       string    `json:"symbol"`
	MakerOrderID uint64    `json:"maker_order_id"`
	TakerOrderID uint64    `json:"taker_order_id"`
	BuyOrderID   uint64    `json:"buy_order_id"`
	SellOrderID  uint64    `json:"sell_order_id"`
	BuyUserID    string    `json:"buy_user_id"`
	SellUserID   string    `json:"sell_user_id"`
	TakerSide    Side      `json:"taker_side"`
	Price        float64   `json:"price"`
	Quantity     float64   `json:"quantity"`
	Timestamp    time.Time `json:"timestamp"`
}
