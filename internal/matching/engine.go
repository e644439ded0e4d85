package matching

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/ledger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/logger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/storage"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// epsilon absorbs float64 rounding across repeated partial fills
const epsilon = 1e-9

// EventSink receives transaction history records. Implementations must
// not block: the engine calls Record while holding its pair lock.
type EventSink interface {
	Record(events ...*types.Event)
}

// MarketData receives book and tape updates after each book mutation
type MarketData interface {
	PublishDepth(symbol string, bids, asks []types.PriceLevel)
	PublishTrade(trade *types.Trade)
}

// sequence provides process-wide monotonic order and trade IDs shared
// by every engine in a set
type sequence struct {
	orders atomic.Uint64
	trades atomic.Uint64
}

// Engine matches orders for one trading pair with price-time priority.
// All submissions and cancellations for the pair are serialized by the
// engine mutex; reads for market data take the same lock so they see
// the book only between complete operations, never mid-match.
type Engine struct {
	mu   sync.Mutex
	pair types.Pair
	book *OrderBook
	seq  *sequence

	ledger *ledger.Ledger
	orders storage.OrderStore
	trades storage.TradeStore
	events EventSink
	market MarketData

	band        float64
	depthLevels int
}

// Submit validates, reserves funds for, and matches one incoming
// order. The returned trades are everything the order executed on
// arrival; any unfilled limit remainder is resting in the book and
// any unfilled market remainder has been cancelled.
//
// A validation or reservation failure rejects the order with no state
// change. A consistency fault aborts matching before the faulty fill:
// trades already settled stand, the remainder is cancelled and its
// reservation released, and the error is returned to the caller.
func (e *Engine) Submit(o *types.Order) ([]*types.Trade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := Validate(o); err != nil {
		e.record(types.OrderEvent(types.EventOrderRejected, o, e.estimatePrice(o)))
		return nil, err
	}

	reserve, err := RequiredReservation(o, e.book, e.band)
	if err != nil {
		e.record(types.OrderEvent(types.EventOrderRejected, o, e.estimatePrice(o)))
		return nil, err
	}
	if err := e.ledger.Reserve(o.UserID, o.FundingAsset(), reserve); err != nil {
		e.record(types.OrderEvent(types.EventOrderRejected, o, e.estimatePrice(o)))
		return nil, err
	}
	o.Reserved = reserve
	o.Status = types.StatusOpen

	if err := e.orders.Save(o); err != nil {
		logger.L().Warnw("order save failed", "order_id", o.ID, "error", err)
	}
	e.record(types.OrderEvent(types.EventOrderCreated, o, e.estimatePrice(o)))

	trades, matchErr := e.match(o)
	finishErr := e.finishTaker(o, trades, matchErr != nil)
	e.updateOrder(o)
	e.publishDepth()

	if matchErr != nil {
		return trades, matchErr
	}
	return trades, finishErr
}

// match executes the incoming order against the opposite side until it
// is filled, the book can no longer satisfy it, or a settlement fault
// aborts it. Fills always execute at the maker's limit price.
func (e *Engine) match(taker *types.Order) ([]*types.Trade, error) {
	var out []*types.Trade

	for taker.Remaining() > epsilon {
		var price float64
		var queue []*types.Order
		var ok bool
		if taker.Side == types.SideBuy {
			price, queue, ok = e.book.BestAsk()
		} else {
			price, queue, ok = e.book.BestBid()
		}
		if !ok {
			break
		}
		if taker.OrderType == types.OrderTypeLimit {
			if taker.Side == types.SideBuy && price > taker.LimitPrice {
				break
			}
			if taker.Side == types.SideSell && price < taker.LimitPrice {
				break
			}
		}

		maker := queue[0]
		qty := math.Min(taker.Remaining(), maker.Remaining())

		// A market buy may never spend past its own reservation:
		// walking up a steep book would otherwise consume held funds
		// belonging to the user's other open orders. The affordable
		// part fills and the rest is cancelled like an exhausted book.
		if taker.Side == types.SideBuy && taker.OrderType == types.OrderTypeMarket {
			if affordable := taker.Reserved / price; affordable < qty {
				qty = affordable
			}
			if qty <= epsilon {
				break
			}
		}

		buyer, seller := taker, maker
		if taker.Side == types.SideSell {
			buyer, seller = maker, taker
		}

		err := e.ledger.Settle(buyer.UserID, seller.UserID, e.pair.Base, e.pair.Quote, qty, price)
		if err != nil {
			return out, err
		}

		if err := e.consumeReservations(taker, maker, qty, price); err != nil {
			return out, err
		}

		now := time.Now().UTC()
		taker.FilledQuantity += qty
		taker.UpdatedAt = now
		maker.FilledQuantity += qty
		maker.UpdatedAt = now

		trade := &types.Trade{
			TradeID:      e.seq.trades.Add(1),
			Symbol:       e.pair.Symbol(),
			MakerOrderID: maker.ID,
			TakerOrderID: taker.ID,
			BuyOrderID:   buyer.ID,
			SellOrderID:  seller.ID,
			BuyUserID:    buyer.UserID,
			SellUserID:   seller.UserID,
			TakerSide:    taker.Side,
			Price:        price,
			Quantity:     qty,
			Timestamp:    now,
		}
		out = append(out, trade)

		var releaseErr error
		if maker.Remaining() <= epsilon {
			maker.FilledQuantity = maker.Quantity
			maker.Status = types.StatusFilled
			e.book.side(maker.Side).peelFront(price)
			releaseErr = e.releaseLeftover(maker)
		} else {
			maker.Status = types.StatusPartiallyFilled
		}
		e.updateOrder(maker)

		if err := e.trades.Save(trade); err != nil {
			logger.L().Warnw("trade save failed", "trade_id", trade.TradeID, "error", err)
		}
		e.record(types.TradeEvents(trade, e.pair, e.fillStatus(buyer), e.fillStatus(seller))...)
		if e.market != nil {
			e.market.PublishTrade(trade)
		}

		// the trade stands, but a release fault aborts further matching
		if releaseErr != nil {
			return out, releaseErr
		}
	}

	return out, nil
}

// fillStatus reports what a fill left an order as, before the taker's
// final disposition is decided
func (e *Engine) fillStatus(o *types.Order) types.OrderStatus {
	if o.Remaining() <= epsilon {
		return types.StatusFilled
	}
	return types.StatusPartiallyFilled
}

// consumeReservations draws down each side's held funds to reflect one
// settled fill. A taker buying with a limit above the execution price
// reserved more quote than the fill consumed; the difference is
// refunded immediately so price improvement never strands funds.
func (e *Engine) consumeReservations(taker, maker *types.Order, qty, price float64) error {
	if taker.Side == types.SideBuy {
		maker.Reserved -= qty

		if taker.OrderType == types.OrderTypeLimit {
			refund := qty * (taker.LimitPrice - price)
			if refund > epsilon {
				if err := e.ledger.Release(taker.UserID, e.pair.Quote, refund); err != nil {
					return err
				}
			}
			taker.Reserved -= qty * taker.LimitPrice
		} else {
			taker.Reserved -= qty * price
		}
		return nil
	}

	// taker sells base; maker bought at its own limit price
	maker.Reserved -= qty * price
	taker.Reserved -= qty
	return nil
}

// finishTaker resolves the incoming order's final state after matching.
// Limit remainders rest in the book. Market remainders never rest: the
// unfilled part is cancelled and its reservation released. An aborted
// order is treated like a market remainder regardless of type. A
// release fault is returned so the caller sees the inconsistency.
func (e *Engine) finishTaker(o *types.Order, trades []*types.Trade, aborted bool) error {
	if o.Remaining() <= epsilon {
		o.FilledQuantity = o.Quantity
		o.Status = types.StatusFilled
		return e.releaseLeftover(o)
	}

	if o.OrderType == types.OrderTypeLimit && !aborted {
		e.book.Add(o)
		if o.FilledQuantity > epsilon {
			o.Status = types.StatusPartiallyFilled
		} else {
			o.Status = types.StatusOpen
		}
		return nil
	}

	releaseErr := e.releaseLeftover(o)
	o.Status = types.StatusCancelled
	o.UpdatedAt = time.Now().UTC()

	basis := avgFillPrice(trades)
	if basis == 0 {
		basis = e.estimatePrice(o)
	}
	e.record(types.OrderEvent(types.EventOrderCancelled, o, basis))
	return releaseErr
}

// releaseLeftover returns any remaining reservation to the user. Used
// when an order leaves the book for good: a filled order may carry
// float dust, a cancelled one its whole unfilled reservation, and a
// finished market buy the unspent part of its protective band. A
// failed release is a consistency fault the caller must surface.
func (e *Engine) releaseLeftover(o *types.Order) error {
	var err error
	if o.Reserved > epsilon {
		if err = e.ledger.Release(o.UserID, o.FundingAsset(), o.Reserved); err != nil {
			logger.L().Errorw("leftover release failed",
				"order_id", o.ID, "user_id", o.UserID, "amount", o.Reserved, "error", err)
		}
	}
	o.Reserved = 0
	return err
}

// estimatePrice values an order's quote leg for history records: the
// limit price when there is one, otherwise the best opposite price
func (e *Engine) estimatePrice(o *types.Order) float64 {
	if o.OrderType == types.OrderTypeLimit {
		return o.LimitPrice
	}
	var price float64
	var ok bool
	if o.Side == types.SideBuy {
		price, _, ok = e.book.BestAsk()
	} else {
		price, _, ok = e.book.BestBid()
	}
	if !ok {
		return 0
	}
	return price
}

// avgFillPrice is the quantity-weighted price across a submit's fills
func avgFillPrice(trades []*types.Trade) float64 {
	var qty, notional float64
	for _, t := range trades {
		qty += t.Quantity
		notional += t.Price * t.Quantity
	}
	if qty <= epsilon {
		return 0
	}
	return notional / qty
}

// Cancel removes a resting order from the book and releases its held
// funds. Cancelling an already filled or cancelled order returns the
// order together with ErrNothingToCancel; an unknown ID returns
// ErrOrderNotFound. A release fault still cancels the order but is
// returned so the caller knows held funds are inconsistent.
func (e *Engine) Cancel(orderID uint64) (*types.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.book.Remove(orderID)
	if !ok {
		if existing, err := e.orders.Get(orderID); err == nil && existing.IsTerminal() {
			return existing, types.ErrNothingToCancel
		}
		return nil, types.ErrOrderNotFound
	}

	releaseErr := e.releaseLeftover(order)
	order.Status = types.StatusCancelled
	order.UpdatedAt = time.Now().UTC()
	e.updateOrder(order)
	e.record(types.OrderEvent(types.EventOrderCancelled, order, e.estimatePrice(order)))
	e.publishDepth()

	return order, releaseErr
}

// Depth returns an aggregated snapshot of the book's top levels
func (e *Engine) Depth(levels int) types.DepthSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if levels <= 0 {
		levels = e.depthLevels
	}
	bids, asks := e.book.Depth(levels)

	snap := types.DepthSnapshot{
		Symbol: e.pair.Symbol(),
		Bids:   bids,
		Asks:   asks,
	}
	if len(bids) > 0 {
		snap.BestBid = bids[0].Price
	}
	if len(asks) > 0 {
		snap.BestAsk = asks[0].Price
	}
	if snap.BestBid > 0 && snap.BestAsk > 0 {
		snap.MidPrice = (snap.BestBid + snap.BestAsk) / 2
		snap.Spread = snap.BestAsk - snap.BestBid
	}
	return snap
}

// RestingOrders returns copies of all resting orders, bids then asks,
// each side best price first and FIFO within a level
func (e *Engine) RestingOrders() (bids, asks []types.Order) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, o := range e.book.Orders(types.SideBuy) {
		bids = append(bids, *o)
	}
	for _, o := range e.book.Orders(types.SideSell) {
		asks = append(asks, *o)
	}
	return bids, asks
}

func (e *Engine) updateOrder(o *types.Order) {
	if err := e.orders.Update(o); err != nil {
		logger.L().Warnw("order update failed", "order_id", o.ID, "error", err)
	}
}

func (e *Engine) record(events ...*types.Event) {
	if e.events != nil {
		e.events.Record(events...)
	}
}

func (e *Engine) publishDepth() {
	if e.market == nil {
		return
	}
	bids, asks := e.book.Depth(e.depthLevels)
	e.market.PublishDepth(e.pair.Symbol(), bids, asks)
}

// Deps bundles the collaborators shared by every pair engine
type Deps struct {
	Ledger *ledger.Ledger
	Orders storage.OrderStore
	Trades storage.TradeStore
	Events EventSink
	Market MarketData

	// Band pads the best-ask estimate when reserving for a market buy.
	// Values below 1 are treated as 1 (no padding).
	Band float64

	// DepthLevels caps aggregated depth snapshots per side
	DepthLevels int
}

// EngineSet owns one matching engine per trading pair, created lazily
// on first use, with order and trade IDs drawn from shared sequences
// so IDs are unique across pairs.
type EngineSet struct {
	mu      sync.RWMutex
	engines map[string]*Engine
	deps    Deps
	seq     sequence
}

// NewEngineSet creates an empty engine registry
func NewEngineSet(deps Deps) *EngineSet {
	if deps.DepthLevels <= 0 {
		deps.DepthLevels = 20
	}
	return &EngineSet{
		engines: make(map[string]*Engine),
		deps:    deps,
	}
}

// Engine returns the matching engine for a pair, creating it on first use
func (s *EngineSet) Engine(pair types.Pair) *Engine {
	symbol := pair.Symbol()

	s.mu.RLock()
	e, ok := s.engines[symbol]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.engines[symbol]; ok {
		return e
	}
	e = &Engine{
		pair:        pair,
		book:        NewOrderBook(pair),
		seq:         &s.seq,
		ledger:      s.deps.Ledger,
		orders:      s.deps.Orders,
		trades:      s.deps.Trades,
		events:      s.deps.Events,
		market:      s.deps.Market,
		band:        s.deps.Band,
		depthLevels: s.deps.DepthLevels,
	}
	s.engines[symbol] = e
	return e
}

// Lookup returns the engine for a symbol if one exists
func (s *EngineSet) Lookup(symbol string) (*Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.engines[symbol]
	return e, ok
}

// Symbols returns the symbols with live engines
func (s *EngineSet) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.engines))
	for symbol := range s.engines {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Submit builds an order with the next shared ID and routes it to the
// pair's engine. The order is returned in its post-matching state.
func (s *EngineSet) Submit(userID string, pair types.Pair, side types.Side, orderType types.OrderType, limitPrice, quantity float64) (*types.Order, []*types.Trade, error) {
	order := types.NewOrder(s.seq.orders.Add(1), userID, pair, side, orderType, limitPrice, quantity)
	trades, err := s.Engine(pair).Submit(order)
	return order, trades, err
}

// Cancel resolves an order ID to its pair engine and cancels it there
func (s *EngineSet) Cancel(orderID uint64) (*types.Order, error) {
	order, err := s.deps.Orders.Get(orderID)
	if err != nil {
		return nil, types.ErrOrderNotFound
	}
	return s.Engine(order.Pair).Cancel(orderID)
}
