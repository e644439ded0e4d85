package types

import "errors"

// Error taxonomy for the exchange core.
//
// Validation errors reject an order synchronously with no state change.
// Consistency faults indicate a reservation or matching bug and are never
// silently ignored.
var (
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrInvalidPrice        = errors.New("limit price must be greater than zero")
	ErrInvalidSide         = errors.New("side must be buy or sell")
	ErrInvalidOrderType    = errors.New("order type must be limit or market")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrNoLiquidity         = errors.New("no liquidity to price market order")

	ErrOrderNotFound   = errors.New("order not found")
	ErrNothingToCancel = errors.New("nothing to cancel")

	ErrConsistencyFault = errors.New("ledger consistency fault")
)
