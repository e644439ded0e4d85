package marketdata

import (
	"testing"
	"time"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

func tradeAt(id uint64, price, qty float64) *types.Trade {
	return &types.Trade{
		TradeID:   id,
		Symbol:    "btc-usdt",
		TakerSide: types.SideBuy,
		Price:     price,
		Quantity:  qty,
		Timestamp: time.Now().UTC(),
	}
}

func TestSnapshotUnknownSymbol(t *testing.T) {
	p := NewPublisher(12, nil, nil)

	snap, ok := p.Snapshot("eth-usdt")
	if ok {
		t.Error("Unknown symbol should report not found")
	}
	if snap.Symbol != "eth-usdt" {
		t.Errorf("Snapshot should echo the symbol, got %q", snap.Symbol)
	}
}

func TestPublishDepthAndSnapshot(t *testing.T) {
	p := NewPublisher(12, nil, nil)

	p.PublishDepth("btc-usdt",
		[]types.PriceLevel{{Price: 100, Quantity: 5, OrderCount: 1}},
		[]types.PriceLevel{{Price: 102, Quantity: 3, OrderCount: 2}},
	)

	snap, ok := p.Snapshot("btc-usdt")
	if !ok {
		t.Fatal("Snapshot should exist after publish")
	}
	if snap.BestBid != 100 || snap.BestAsk != 102 {
		t.Errorf("Best prices wrong: bid=%f ask=%f", snap.BestBid, snap.BestAsk)
	}
	if snap.MidPrice != 101 {
		t.Errorf("Expected mid 101, got %f", snap.MidPrice)
	}
	if snap.Spread != 2 {
		t.Errorf("Expected spread 2, got %f", snap.Spread)
	}
}

func TestSnapshotReturnsCopies(t *testing.T) {
	p := NewPublisher(12, nil, nil)
	p.PublishDepth("btc-usdt",
		[]types.PriceLevel{{Price: 100, Quantity: 5}}, nil)

	snap, _ := p.Snapshot("btc-usdt")
	snap.Bids[0].Price = 1

	again, _ := p.Snapshot("btc-usdt")
	if again.Bids[0].Price != 100 {
		t.Error("Snapshot leaked internal state")
	}
}

func TestTapeNewestFirstAndCapped(t *testing.T) {
	p := NewPublisher(3, nil, nil)

	for i := 1; i <= 5; i++ {
		p.PublishTrade(tradeAt(uint64(i), float64(100+i), 1))
	}

	tape := p.RecentTrades("btc-usdt", 10)
	if len(tape) != 3 {
		t.Fatalf("Tape should cap at 3, got %d", len(tape))
	}
	for i, wantID := range []uint64{5, 4, 3} {
		if tape[i].TradeID != wantID {
			t.Errorf("Position %d: expected trade %d, got %d", i, wantID, tape[i].TradeID)
		}
	}

	if p.LastPrice("btc-usdt") != 105 {
		t.Errorf("Expected last price 105, got %f", p.LastPrice("btc-usdt"))
	}
}

func TestRecentTradesLimit(t *testing.T) {
	p := NewPublisher(12, nil, nil)
	for i := 1; i <= 6; i++ {
		p.PublishTrade(tradeAt(uint64(i), 100, 1))
	}

	if got := len(p.RecentTrades("btc-usdt", 2)); got != 2 {
		t.Errorf("Expected 2 trades, got %d", got)
	}
	if got := len(p.RecentTrades("nope-usdt", 5)); got != 0 {
		t.Errorf("Unknown symbol should return empty, got %d", got)
	}
}
