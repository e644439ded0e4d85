package ledger

import (
	"fmt"
	"sync"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/logger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/storage"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// Ledger tracks available vs actual balances per user per asset.
// The in-memory state is authoritative; an optional BalanceStore
// receives write-through copies for durability and dashboard reads.
//
// All mutations run under one mutex, which serializes reservation,
// release and settlement for every (user, asset) pair.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]*types.Balance
	store    storage.BalanceStore
}

// New creates a ledger. store may be nil for a purely in-memory ledger.
func New(store storage.BalanceStore) *Ledger {
	return &Ledger{
		balances: make(map[string]*types.Balance),
		store:    store,
	}
}

func key(userID, asset string) string {
	return userID + ":" + asset
}

// getLocked returns the balance row, creating a zero row if absent.
// Caller must hold l.mu.
func (l *Ledger) getLocked(userID, asset string) *types.Balance {
	k := key(userID, asset)
	b, ok := l.balances[k]
	if !ok {
		b = &types.Balance{UserID: userID, Asset: asset}
		l.balances[k] = b
	}
	return b
}

// persistLocked writes a balance through to the backing store.
// Store failures are logged, not fatal: the in-memory ledger stays
// authoritative and the store catches up on the next write.
func (l *Ledger) persistLocked(b *types.Balance) {
	if l.store == nil {
		return
	}
	if err := l.store.Save(b); err != nil {
		logger.L().Warnw("balance write-through failed",
			"user_id", b.UserID, "asset", b.Asset, "error", err)
	}
}

// Deposit credits actual (and therefore available) balance
func (l *Ledger) Deposit(userID, asset string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive: %v", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.getLocked(userID, asset)
	b.Actual += amount
	l.persistLocked(b)
	return nil
}

// Reserve moves amount from available to held. Available decreases,
// actual is unchanged. Fails with ErrInsufficientBalance and no state
// change if the user cannot cover the amount.
func (l *Ledger) Reserve(userID, asset string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("reserve amount must not be negative: %v", amount)
	}
	if amount == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.getLocked(userID, asset)
	if b.Available() < amount {
		return fmt.Errorf("%w: %s/%s available %v, need %v",
			types.ErrInsufficientBalance, userID, asset, b.Available(), amount)
	}

	b.Held += amount
	l.persistLocked(b)
	return nil
}

// Release returns a held amount to available. Releasing more than is
// held indicates a reservation bug and is a consistency fault.
func (l *Ledger) Release(userID, asset string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("release amount must not be negative: %v", amount)
	}
	if amount == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.getLocked(userID, asset)
	if b.Held < amount-epsilon {
		logger.L().Errorw("release exceeds held funds",
			"user_id", userID, "asset", asset, "held", b.Held, "release", amount)
		return fmt.Errorf("%w: release %v exceeds held %v for %s/%s",
			types.ErrConsistencyFault, amount, b.Held, userID, asset)
	}

	b.Held -= amount
	clampLocked(b)
	l.persistLocked(b)
	return nil
}

// Settle applies one trade to both counterparties. It is the only
// operation that moves actual balances: the buyer gives quantity*price
// of the quote asset (consumed from held funds) and receives quantity
// of the base asset; the seller the reverse.
//
// All preconditions are checked before any mutation. Insufficient
// actual balance here means reservation at acceptance was wrong; the
// fault is logged as critical and the trade is rejected, never
// partially applied.
func (l *Ledger) Settle(buyUserID, sellUserID, baseAsset, quoteAsset string, quantity, price float64) error {
	if quantity <= 0 || price <= 0 {
		return fmt.Errorf("settle requires positive quantity and price: qty=%v price=%v", quantity, price)
	}
	notional := quantity * price

	l.mu.Lock()
	defer l.mu.Unlock()

	buyerQuote := l.getLocked(buyUserID, quoteAsset)
	buyerBase := l.getLocked(buyUserID, baseAsset)
	sellerBase := l.getLocked(sellUserID, baseAsset)
	sellerQuote := l.getLocked(sellUserID, quoteAsset)

	if buyerQuote.Held < notional-epsilon || buyerQuote.Actual < notional-epsilon {
		logger.L().Errorw("settlement consistency fault on buyer",
			"buy_user", buyUserID, "asset", quoteAsset,
			"held", buyerQuote.Held, "actual", buyerQuote.Actual, "need", notional)
		return fmt.Errorf("%w: buyer %s cannot cover %v %s",
			types.ErrConsistencyFault, buyUserID, notional, quoteAsset)
	}
	if sellerBase.Held < quantity-epsilon || sellerBase.Actual < quantity-epsilon {
		logger.L().Errorw("settlement consistency fault on seller",
			"sell_user", sellUserID, "asset", baseAsset,
			"held", sellerBase.Held, "actual", sellerBase.Actual, "need", quantity)
		return fmt.Errorf("%w: seller %s cannot cover %v %s",
			types.ErrConsistencyFault, sellUserID, quantity, baseAsset)
	}

	buyerQuote.Held -= notional
	buyerQuote.Actual -= notional
	buyerBase.Actual += quantity

	sellerBase.Held -= quantity
	sellerBase.Actual -= quantity
	sellerQuote.Actual += notional

	clampLocked(buyerQuote)
	clampLocked(sellerBase)

	l.persistLocked(buyerQuote)
	l.persistLocked(buyerBase)
	l.persistLocked(sellerBase)
	l.persistLocked(sellerQuote)
	return nil
}

// Get returns a copy of the user's balance in one asset
func (l *Ledger) Get(userID, asset string) types.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.balances[key(userID, asset)]
	if !ok {
		return types.Balance{UserID: userID, Asset: asset}
	}
	return *b
}

// GetByUser returns copies of all the user's balances
func (l *Ledger) GetByUser(userID string) []types.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []types.Balance
	for _, b := range l.balances {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out
}

// epsilon absorbs float64 rounding from repeated partial fills
const epsilon = 1e-9

// clampLocked zeroes negative dust left behind by float arithmetic
func clampLocked(b *types.Balance) {
	if b.Held < 0 && b.Held > -epsilon {
		b.Held = 0
	}
	if b.Actual < 0 && b.Actual > -epsilon {
		b.Actual = 0
	}
}
