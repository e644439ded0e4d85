package marketdata

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/logger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/stream"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// Publisher keeps the latest per-symbol market data for dashboard
// reads: the aggregated depth, a capped tape of recent trades, and
// the last trade price. Engines push updates after each completed
// operation; readers get a consistent copy without touching engine
// locks.
//
// Updates fan out to the websocket hub and the optional trade feed.
type Publisher struct {
	mu    sync.RWMutex
	books map[string]*bookState

	tapeCap  int
	hub      *Hub
	producer *stream.Producer
}

type bookState struct {
	bids      []types.PriceLevel
	asks      []types.PriceLevel
	tape      []types.Trade // newest first
	lastPrice float64
}

// wsMessage is the envelope pushed to websocket subscribers
type wsMessage struct {
	Channel string      `json:"channel"`
	Symbol  string      `json:"symbol"`
	Data    interface{} `json:"data"`
}

// NewPublisher creates a publisher. hub and producer may be nil.
func NewPublisher(tapeCap int, hub *Hub, producer *stream.Producer) *Publisher {
	if tapeCap <= 0 {
		tapeCap = 12
	}
	return &Publisher{
		books:    make(map[string]*bookState),
		tapeCap:  tapeCap,
		hub:      hub,
		producer: producer,
	}
}

func (p *Publisher) stateLocked(symbol string) *bookState {
	bs, ok := p.books[symbol]
	if !ok {
		bs = &bookState{}
		p.books[symbol] = bs
	}
	return bs
}

// PublishDepth replaces the cached depth for a symbol
func (p *Publisher) PublishDepth(symbol string, bids, asks []types.PriceLevel) {
	p.mu.Lock()
	bs := p.stateLocked(symbol)
	bs.bids = bids
	bs.asks = asks
	snap := p.snapshotLocked(symbol, bs)
	p.mu.Unlock()

	p.broadcast("depth", symbol, snap)
}

// PublishTrade prepends a trade to the symbol's tape and updates the
// last price
func (p *Publisher) PublishTrade(trade *types.Trade) {
	p.mu.Lock()
	bs := p.stateLocked(trade.Symbol)
	bs.tape = append([]types.Trade{*trade}, bs.tape...)
	if len(bs.tape) > p.tapeCap {
		bs.tape = bs.tape[:p.tapeCap]
	}
	bs.lastPrice = trade.Price
	p.mu.Unlock()

	p.broadcast("trade", trade.Symbol, trade)

	if p.producer != nil {
		go func(t types.Trade) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := p.producer.PublishTrade(ctx, &t); err != nil {
				logger.L().Warnw("trade feed publish failed",
					"trade_id", t.TradeID, "symbol", t.Symbol, "error", err)
			}
		}(*trade)
	}
}

// Snapshot returns the cached depth snapshot for a symbol. The second
// return is false when the symbol has never been published.
func (p *Publisher) Snapshot(symbol string) (types.DepthSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	bs, ok := p.books[symbol]
	if !ok {
		return types.DepthSnapshot{Symbol: symbol}, false
	}
	return p.snapshotLocked(symbol, bs), true
}

// snapshotLocked builds a snapshot with copied level slices.
// Caller must hold p.mu.
func (p *Publisher) snapshotLocked(symbol string, bs *bookState) types.DepthSnapshot {
	snap := types.DepthSnapshot{
		Symbol:    symbol,
		Bids:      append([]types.PriceLevel(nil), bs.bids...),
		Asks:      append([]types.PriceLevel(nil), bs.asks...),
		LastPrice: bs.lastPrice,
	}
	if len(bs.bids) > 0 {
		snap.BestBid = bs.bids[0].Price
	}
	if len(bs.asks) > 0 {
		snap.BestAsk = bs.asks[0].Price
	}
	if snap.BestBid > 0 && snap.BestAsk > 0 {
		snap.MidPrice = (snap.BestBid + snap.BestAsk) / 2
		snap.Spread = snap.BestAsk - snap.BestBid
	}
	return snap
}

// RecentTrades returns up to limit trades for a symbol, newest first
func (p *Publisher) RecentTrades(symbol string, limit int) []types.Trade {
	p.mu.RLock()
	defer p.mu.RUnlock()

	bs, ok := p.books[symbol]
	if !ok {
		return nil
	}
	if limit <= 0 || limit > len(bs.tape) {
		limit = len(bs.tape)
	}
	return append([]types.Trade(nil), bs.tape[:limit]...)
}

// LastPrice returns the most recent trade price for a symbol, zero if
// nothing has traded
func (p *Publisher) LastPrice(symbol string) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if bs, ok := p.books[symbol]; ok {
		return bs.lastPrice
	}
	return 0
}

func (p *Publisher) broadcast(channel, symbol string, data interface{}) {
	if p.hub == nil {
		return
	}
	payload, err := json.Marshal(wsMessage{Channel: channel, Symbol: symbol, Data: data})
	if err != nil {
		logger.L().Warnw("market data marshal failed", "channel", channel, "error", err)
		return
	}
	p.hub.Broadcast(symbol, payload)
}
