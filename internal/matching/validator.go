package matching

import (
	"fmt"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// Validate checks the static shape of an order before it touches the
// ledger or the book
func Validate(o *types.Order) error {
	if o.Side != types.SideBuy && o.Side != types.SideSell {
		return fmt.Errorf("%w: %q", types.ErrInvalidSide, o.Side)
	}
	if o.OrderType != types.OrderTypeLimit && o.OrderType != types.OrderTypeMarket {
		return fmt.Errorf("%w: %q", types.ErrInvalidOrderType, o.OrderType)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("%w: %v", types.ErrInvalidQuantity, o.Quantity)
	}
	switch o.OrderType {
	case types.OrderTypeLimit:
		if o.LimitPrice <= 0 {
			return fmt.Errorf("%w: %v", types.ErrInvalidPrice, o.LimitPrice)
		}
	case types.OrderTypeMarket:
		if o.LimitPrice != 0 {
			return fmt.Errorf("%w: market orders carry no price", types.ErrInvalidPrice)
		}
	}
	return nil
}

// RequiredReservation computes how much of the funding asset must be
// held before the order is accepted.
//
// A sell reserves the base quantity and a limit buy reserves
// quantity * limit price exactly. A market buy has no price of its
// own, so it reserves against the current best ask padded by a
// protective band; the unused remainder is released once the order
// finishes. A market buy against an empty ask side has no price to
// estimate from and is rejected outright.
func RequiredReservation(o *types.Order, book *OrderBook, band float64) (float64, error) {
	if o.Side == types.SideSell {
		return o.Quantity, nil
	}

	if o.OrderType == types.OrderTypeLimit {
		return o.Quantity * o.LimitPrice, nil
	}

	bestAsk, _, ok := book.BestAsk()
	if !ok {
		return 0, fmt.Errorf("%w: no asks resting in %s", types.ErrNoLiquidity, o.Pair.Symbol())
	}
	if band < 1 {
		band = 1
	}
	return o.Quantity * bestAsk * band, nil
}
