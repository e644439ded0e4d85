package types

// PriceLevel is one aggregated level of a depth snapshot
type PriceLevel struct {
	Price      float64 `json:"price"`
	Quantity   float64 `json:"quantity"`
	OrderCount int     `json:"order_count"`
}

// DepthSnapshot is a point-in-time view of one pair's book: top-N
// levels per side plus derived prices. LastPrice is the most recent
// trade price; MidPrice is the bid/ask midpoint when both sides exist.
type DepthSnapshot struct {
	Symbol   string       `json:"symbol"`
	Bids     []PriceLevel `json:"bids"`
	Asks     []PriceLevel `json:"asks"`
	BestBid   float64      `json:"best_bid,omitempty"`
	BestAsk   float64      `json:"best_ask,omitempty"`
	MidPrice  float64      `json:"mid_price,omitempty"`
	Spread    float64      `json:"spread,omitempty"`
	LastPrice float64      `json:"last_price,omitempty"`
}
