package matching

import (
	"math"
	"sort"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// OrderBook holds the resting limit orders for one trading pair.
// Each side is a price -> FIFO slice map with an orderID -> price index
// for direct cancellation; best prices are found by scanning the keys.
// Empty price levels are removed so best-price scans stay proportional
// to the number of live levels.
//
// The book is not internally synchronized: the owning Engine serializes
// all access under its per-pair lock.
type OrderBook struct {
	pair types.Pair
	bids *bookSide
	asks *bookSide
}

type bookSide struct {
	levels map[float64][]*types.Order
	index  map[uint64]float64 // orderID -> price level
}

func newBookSide() *bookSide {
	return &bookSide{
		levels: make(map[float64][]*types.Order),
		index:  make(map[uint64]float64),
	}
}

// NewOrderBook creates an empty book for a pair
func NewOrderBook(pair types.Pair) *OrderBook {
	return &OrderBook{
		pair: pair,
		bids: newBookSide(),
		asks: newBookSide(),
	}
}

// Pair returns the trading pair this book belongs to
func (ob *OrderBook) Pair() types.Pair {
	return ob.pair
}

func (ob *OrderBook) side(s types.Side) *bookSide {
	if s == types.SideBuy {
		return ob.bids
	}
	return ob.asks
}

// Add appends a resting order to the back of its price level (FIFO)
func (ob *OrderBook) Add(order *types.Order) {
	side := ob.side(order.Side)
	side.levels[order.LimitPrice] = append(side.levels[order.LimitPrice], order)
	side.index[order.ID] = order.LimitPrice
}

// Remove deletes an order from the book by ID, cleaning up its price
// level if it becomes empty. Returns the removed order, or false if it
// is not resting in this book.
func (ob *OrderBook) Remove(orderID uint64) (*types.Order, bool) {
	if order, ok := ob.bids.remove(orderID); ok {
		return order, true
	}
	return ob.asks.remove(orderID)
}

func (bs *bookSide) remove(orderID uint64) (*types.Order, bool) {
	price, ok := bs.index[orderID]
	if !ok {
		return nil, false
	}

	block := bs.levels[price]
	for i, order := range block {
		if order.ID == orderID {
			bs.levels[price] = append(block[:i], block[i+1:]...)
			if len(bs.levels[price]) == 0 {
				delete(bs.levels, price)
			}
			delete(bs.index, orderID)
			return order, true
		}
	}
	return nil, false
}

// Contains reports whether an order is resting in this book
func (ob *OrderBook) Contains(orderID uint64) bool {
	_, inBids := ob.bids.index[orderID]
	_, inAsks := ob.asks.index[orderID]
	return inBids || inAsks
}

// BestBid returns the highest bid level, FIFO-ordered
func (ob *OrderBook) BestBid() (float64, []*types.Order, bool) {
	if len(ob.bids.levels) == 0 {
		return 0, nil, false
	}
	best := 0.0
	for price := range ob.bids.levels {
		if price > best {
			best = price
		}
	}
	return best, ob.bids.levels[best], true
}

// BestAsk returns the lowest ask level, FIFO-ordered
func (ob *OrderBook) BestAsk() (float64, []*types.Order, bool) {
	if len(ob.asks.levels) == 0 {
		return 0, nil, false
	}
	best := math.MaxFloat64
	for price := range ob.asks.levels {
		if price < best {
			best = price
		}
	}
	return best, ob.asks.levels[best], true
}

// peelFront removes the head order of a price level once fully filled
func (bs *bookSide) peelFront(price float64) {
	block := bs.levels[price]
	if len(block) == 0 {
		return
	}
	delete(bs.index, block[0].ID)
	block = block[1:]
	if len(block) == 0 {
		delete(bs.levels, price)
	} else {
		bs.levels[price] = block
	}
}

// Depth returns up to max aggregated levels per side: bids descending,
// asks ascending. Quantities are unfilled remainders.
func (ob *OrderBook) Depth(max int) (bids, asks []types.PriceLevel) {
	bids = ob.bids.aggregate(max, true)
	asks = ob.asks.aggregate(max, false)
	return bids, asks
}

func (bs *bookSide) aggregate(max int, descending bool) []types.PriceLevel {
	prices := make([]float64, 0, len(bs.levels))
	for price := range bs.levels {
		prices = append(prices, price)
	}
	if descending {
		sort.Sort(sort.Reverse(sort.Float64Slice(prices)))
	} else {
		sort.Float64s(prices)
	}

	levels := make([]types.PriceLevel, 0, max)
	for _, price := range prices {
		if max > 0 && len(levels) >= max {
			break
		}
		var qty float64
		for _, order := range bs.levels[price] {
			qty += order.Remaining()
		}
		levels = append(levels, types.PriceLevel{
			Price:      price,
			Quantity:   qty,
			OrderCount: len(bs.levels[price]),
		})
	}
	return levels
}

// Orders returns all resting orders on one side, best price first and
// FIFO within a level
func (ob *OrderBook) Orders(s types.Side) []*types.Order {
	bs := ob.side(s)

	prices := make([]float64, 0, len(bs.levels))
	for price := range bs.levels {
		prices = append(prices, price)
	}
	if s == types.SideBuy {
		sort.Sort(sort.Reverse(sort.Float64Slice(prices)))
	} else {
		sort.Float64s(prices)
	}

	var orders []*types.Order
	for _, price := range prices {
		orders = append(orders, bs.levels[price]...)
	}
	return orders
}
