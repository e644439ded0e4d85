package matching

import (
	"errors"
	"testing"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/ledger"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/storage/memory"
	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

// collectingSink gathers history events for assertions
type collectingSink struct {
	events []*types.Event
}

func (c *collectingSink) Record(events ...*types.Event) {
	c.events = append(c.events, events...)
}

func (c *collectingSink) byType(t types.EventType) []*types.Event {
	var out []*types.Event
	for _, e := range c.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestSet(t *testing.T) (*EngineSet, *ledger.Ledger, *collectingSink) {
	t.Helper()
	l := ledger.New(nil)
	sink := &collectingSink{}
	set := NewEngineSet(Deps{
		Ledger:      l,
		Orders:      memory.NewOrderStore(1000),
		Trades:      memory.NewTradeStore(1000),
		Events:      sink,
		Band:        1.05,
		DepthLevels: 20,
	})
	return set, l, sink
}

func fund(t *testing.T, l *ledger.Ledger, user, asset string, amount float64) {
	t.Helper()
	if err := l.Deposit(user, asset, amount); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
}

func btcusdt() types.Pair {
	return types.NewPair("btc", "usdt")
}

func TestLimitOrderRestsWithoutMatch(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "usdt", 2000)

	order, trades, err := set.Submit("alice", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 10)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("Expected no trades, got %d", len(trades))
	}
	if order.Status != types.StatusOpen {
		t.Errorf("Expected open status, got %s", order.Status)
	}

	b := l.Get("alice", "usdt")
	if b.Held != 1000 {
		t.Errorf("Expected 1000 usdt held, got %f", b.Held)
	}
	if b.Available() != 1000 {
		t.Errorf("Expected 1000 usdt available, got %f", b.Available())
	}

	snap := set.Engine(btcusdt()).Depth(0)
	if len(snap.Bids) != 1 || snap.Bids[0].Price != 100 || snap.Bids[0].Quantity != 10 {
		t.Errorf("Expected resting bid level, got %+v", snap.Bids)
	}
}

func TestMarketBuyExecutesAtMakerPrice(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "btc", 10)
	fund(t, l, "bob", "usdt", 1000)

	if _, _, err := set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 10); err != nil {
		t.Fatalf("Sell failed: %v", err)
	}

	order, trades, err := set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeMarket, 0, 4)
	if err != nil {
		t.Fatalf("Market buy failed: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}
	if trades[0].Price != 100 {
		t.Errorf("Trade must execute at maker price 100, got %f", trades[0].Price)
	}
	if trades[0].Quantity != 4 {
		t.Errorf("Expected quantity 4, got %f", trades[0].Quantity)
	}
	if trades[0].TakerSide != types.SideBuy {
		t.Errorf("Expected taker side buy, got %s", trades[0].TakerSide)
	}
	if order.Status != types.StatusFilled {
		t.Errorf("Expected filled, got %s", order.Status)
	}

	// the protective band over-reservation must be fully released
	bobQuote := l.Get("bob", "usdt")
	if bobQuote.Held != 0 {
		t.Errorf("Expected no held usdt after fill, got %f", bobQuote.Held)
	}
	if bobQuote.Actual != 600 {
		t.Errorf("Expected 600 usdt left, got %f", bobQuote.Actual)
	}
	if got := l.Get("bob", "btc").Actual; got != 4 {
		t.Errorf("Expected 4 btc, got %f", got)
	}
	if got := l.Get("alice", "usdt").Actual; got != 400 {
		t.Errorf("Expected seller to receive 400 usdt, got %f", got)
	}
}

func TestMarketRemainderNeverRests(t *testing.T) {
	set, l, sink := newTestSet(t)
	fund(t, l, "alice", "usdt", 1000)
	fund(t, l, "bob", "btc", 8)

	set.Submit("alice", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 5)

	order, trades, err := set.Submit("bob", btcusdt(), types.SideSell, types.OrderTypeMarket, 0, 8)
	if err != nil {
		t.Fatalf("Market sell failed: %v", err)
	}
	if len(trades) != 1 || trades[0].Quantity != 5 {
		t.Fatalf("Expected single trade of 5, got %+v", trades)
	}
	if order.Status != types.StatusCancelled {
		t.Errorf("Unfilled market remainder must be cancelled, got %s", order.Status)
	}
	if order.FilledQuantity != 5 {
		t.Errorf("Expected filled quantity 5, got %f", order.FilledQuantity)
	}

	snap := set.Engine(btcusdt()).Depth(0)
	if len(snap.Asks) != 0 {
		t.Errorf("Market remainder must not rest, asks: %+v", snap.Asks)
	}

	// unfilled base reservation released
	if held := l.Get("bob", "btc").Held; held != 0 {
		t.Errorf("Expected no held btc, got %f", held)
	}

	if got := len(sink.byType(types.EventOrderCancelled)); got != 1 {
		t.Errorf("Expected 1 cancellation event, got %d", got)
	}
}

func TestMarketBuyEmptyBookRejected(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "bob", "usdt", 1000)

	_, _, err := set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeMarket, 0, 1)
	if !errors.Is(err, types.ErrNoLiquidity) {
		t.Errorf("Expected ErrNoLiquidity, got %v", err)
	}

	// rejection must leave funds untouched
	if held := l.Get("bob", "usdt").Held; held != 0 {
		t.Errorf("Expected no held usdt, got %f", held)
	}
}

func TestFIFOPriorityAtSamePrice(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "btc", 5)
	fund(t, l, "carol", "btc", 5)
	fund(t, l, "bob", "usdt", 1000)

	first, _, _ := set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 5)
	second, _, _ := set.Submit("carol", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 5)

	_, trades, err := set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 7)
	if err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(trades))
	}
	if trades[0].MakerOrderID != first.ID {
		t.Errorf("First fill should hit the older order %d, got %d", first.ID, trades[0].MakerOrderID)
	}
	if trades[0].Quantity != 5 {
		t.Errorf("First fill should take the full older order, got %f", trades[0].Quantity)
	}
	if trades[1].MakerOrderID != second.ID || trades[1].Quantity != 2 {
		t.Errorf("Second fill wrong: %+v", trades[1])
	}
}

func TestPricePriorityAcrossLevels(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "btc", 10)
	fund(t, l, "bob", "usdt", 2000)

	set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 102, 5)
	set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 5)

	_, trades, err := set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeMarket, 0, 8)
	if err != nil {
		t.Fatalf("Market buy failed: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(trades))
	}
	if trades[0].Price != 100 || trades[1].Price != 102 {
		t.Errorf("Must fill cheapest ask first: %f then %f", trades[0].Price, trades[1].Price)
	}
}

func TestLimitBuyPriceImprovementRefund(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "btc", 10)
	fund(t, l, "bob", "usdt", 1000)

	set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 95, 10)

	order, trades, err := set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 10)
	if err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	if len(trades) != 1 || trades[0].Price != 95 {
		t.Fatalf("Expected fill at maker price 95, got %+v", trades)
	}
	if order.Status != types.StatusFilled {
		t.Errorf("Expected filled, got %s", order.Status)
	}

	// reserved 1000, spent 950: the 50 difference comes straight back
	bobQuote := l.Get("bob", "usdt")
	if bobQuote.Held != 0 {
		t.Errorf("Expected no held usdt, got %f", bobQuote.Held)
	}
	if bobQuote.Actual != 50 {
		t.Errorf("Expected 50 usdt remaining, got %f", bobQuote.Actual)
	}
}

func TestPartialFillStatusTransitions(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "btc", 10)
	fund(t, l, "bob", "usdt", 2000)

	maker, _, _ := set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 10)

	_, trades, _ := set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 4)
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}
	if maker.Status != types.StatusPartiallyFilled || maker.FilledQuantity != 4 {
		t.Errorf("Maker should be partially filled 4, got %s/%f", maker.Status, maker.FilledQuantity)
	}

	set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 6)
	if maker.Status != types.StatusFilled {
		t.Errorf("Maker should be filled, got %s", maker.Status)
	}
	if held := l.Get("alice", "btc").Held; held != 0 {
		t.Errorf("Filled maker should hold nothing, got %f", held)
	}
}

func TestTakerLimitRemainderRests(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "btc", 5)
	fund(t, l, "bob", "usdt", 800)

	set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 5)

	order, trades, err := set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 8)
	if err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	if len(trades) != 1 || trades[0].Quantity != 5 {
		t.Fatalf("Expected fill of 5, got %+v", trades)
	}
	if order.Status != types.StatusPartiallyFilled {
		t.Errorf("Expected partially_filled, got %s", order.Status)
	}

	// only the unfilled 3 stays reserved
	if held := l.Get("bob", "usdt").Held; held != 300 {
		t.Errorf("Expected 300 usdt held for remainder, got %f", held)
	}

	snap := set.Engine(btcusdt()).Depth(0)
	if len(snap.Bids) != 1 || snap.Bids[0].Quantity != 3 {
		t.Errorf("Remainder should rest as bid of 3, got %+v", snap.Bids)
	}
}

func TestCancelReleasesReservation(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "usdt", 1000)

	order, _, err := set.Submit("alice", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 10)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	cancelled, err := set.Cancel(order.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != types.StatusCancelled {
		t.Errorf("Expected cancelled, got %s", cancelled.Status)
	}
	if held := l.Get("alice", "usdt").Held; held != 0 {
		t.Errorf("Cancel should release all held funds, got %f", held)
	}

	if _, err := set.Cancel(order.ID); !errors.Is(err, types.ErrNothingToCancel) {
		t.Errorf("Second cancel should return ErrNothingToCancel, got %v", err)
	}
	if _, err := set.Cancel(99999); !errors.Is(err, types.ErrOrderNotFound) {
		t.Errorf("Unknown ID should return ErrOrderNotFound, got %v", err)
	}
}

func TestCancelFilledOrderRejected(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "btc", 5)
	fund(t, l, "bob", "usdt", 500)

	maker, _, _ := set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 5)
	set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 5)

	if _, err := set.Cancel(maker.ID); !errors.Is(err, types.ErrNothingToCancel) {
		t.Errorf("Cancelling a filled order should fail, got %v", err)
	}
}

func TestInsufficientBalanceRejected(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "usdt", 100)

	_, _, err := set.Submit("alice", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 10)
	if !errors.Is(err, types.ErrInsufficientBalance) {
		t.Errorf("Expected ErrInsufficientBalance, got %v", err)
	}

	snap := set.Engine(btcusdt()).Depth(0)
	if len(snap.Bids) != 0 {
		t.Errorf("Rejected order must not rest, got %+v", snap.Bids)
	}
}

func TestValidationRejections(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "usdt", 1000)

	cases := []struct {
		name      string
		side      types.Side
		orderType types.OrderType
		price     float64
		qty       float64
		wantErr   error
	}{
		{"zero quantity", types.SideBuy, types.OrderTypeLimit, 100, 0, types.ErrInvalidQuantity},
		{"negative quantity", types.SideBuy, types.OrderTypeLimit, 100, -1, types.ErrInvalidQuantity},
		{"zero limit price", types.SideBuy, types.OrderTypeLimit, 0, 1, types.ErrInvalidPrice},
		{"market with price", types.SideBuy, types.OrderTypeMarket, 50, 1, types.ErrInvalidPrice},
		{"bad side", types.Side("hold"), types.OrderTypeLimit, 100, 1, types.ErrInvalidSide},
		{"bad type", types.SideBuy, types.OrderType("stop"), 100, 1, types.ErrInvalidOrderType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := set.Submit("alice", btcusdt(), tc.side, tc.orderType, tc.price, tc.qty)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNoCrossedBookAfterMatching(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "btc", 100)
	fund(t, l, "bob", "usdt", 100000)

	set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 101, 10)
	set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 103, 10)
	set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeLimit, 102, 15)
	set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeLimit, 99, 5)

	snap := set.Engine(btcusdt()).Depth(0)
	if snap.BestBid > 0 && snap.BestAsk > 0 && snap.BestBid >= snap.BestAsk {
		t.Errorf("Book is crossed: bid %f >= ask %f", snap.BestBid, snap.BestAsk)
	}
}

func TestBalanceConservationAcrossTrades(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "btc", 50)
	fund(t, l, "bob", "usdt", 10000)
	fund(t, l, "carol", "btc", 20)
	fund(t, l, "carol", "usdt", 5000)

	set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 20)
	set.Submit("carol", btcusdt(), types.SideSell, types.OrderTypeLimit, 101, 10)
	set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeLimit, 101, 25)
	set.Submit("carol", btcusdt(), types.SideBuy, types.OrderTypeLimit, 99, 10)
	set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeMarket, 0, 5)

	var totalBTC, totalUSDT float64
	for _, user := range []string{"alice", "bob", "carol"} {
		totalBTC += l.Get(user, "btc").Actual
		totalUSDT += l.Get(user, "usdt").Actual
	}
	if diff := totalBTC - 70; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("btc not conserved: %f", totalBTC)
	}
	if diff := totalUSDT - 15000; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("usdt not conserved: %f", totalUSDT)
	}
}

func TestEngineSetSharedIDsAcrossPairs(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "usdt", 10000)

	a, _, _ := set.Submit("alice", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 1)
	b, _, _ := set.Submit("alice", types.NewPair("eth", "usdt"), types.SideBuy, types.OrderTypeLimit, 50, 1)

	if a.ID == b.ID {
		t.Errorf("Order IDs must be unique across pairs: %d == %d", a.ID, b.ID)
	}
	if len(set.Symbols()) != 2 {
		t.Errorf("Expected 2 live engines, got %v", set.Symbols())
	}
}

func TestSubmitRecordsHistoryEvents(t *testing.T) {
	set, l, sink := newTestSet(t)
	fund(t, l, "alice", "btc", 5)
	fund(t, l, "bob", "usdt", 500)

	set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 5)
	set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 5)

	if got := len(sink.byType(types.EventOrderCreated)); got != 2 {
		t.Errorf("Expected 2 creation events, got %d", got)
	}

	// one trade produces a record per counterparty
	tradeEvents := sink.byType(types.EventTrade)
	if len(tradeEvents) != 2 {
		t.Fatalf("Expected 2 trade events, got %d", len(tradeEvents))
	}

	// buyer spends quote, receives base; seller the reverse
	var buyerEvent, sellerEvent *types.Event
	for _, e := range tradeEvents {
		if e.UserID == "bob" {
			buyerEvent = e
		}
		if e.UserID == "alice" {
			sellerEvent = e
		}
	}
	if buyerEvent == nil || sellerEvent == nil {
		t.Fatal("Missing counterparty events")
	}
	if buyerEvent.FromToken != "usdt" || buyerEvent.ToToken != "btc" {
		t.Errorf("Buyer event tokens wrong: %s -> %s", buyerEvent.FromToken, buyerEvent.ToToken)
	}
	if buyerEvent.FromAmount != 500 || buyerEvent.ToAmount != 5 {
		t.Errorf("Buyer event amounts wrong: %f -> %f", buyerEvent.FromAmount, buyerEvent.ToAmount)
	}
	if sellerEvent.FromToken != "btc" || sellerEvent.ToToken != "usdt" {
		t.Errorf("Seller event tokens wrong: %s -> %s", sellerEvent.FromToken, sellerEvent.ToToken)
	}
}

func TestMarketBuySpendCappedByReservation(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "btc", 0.5)
	fund(t, l, "carol", "btc", 0.5)
	fund(t, l, "bob", "usdt", 1000)

	set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 40, 0.5)
	set.Submit("carol", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 0.5)

	// an unrelated resting bid holds 30 usdt; the market buy below must
	// never touch that reservation
	resting, _, err := set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeLimit, 30, 1)
	if err != nil {
		t.Fatalf("Resting bid failed: %v", err)
	}

	// reserves best ask 40 * band 1.05 * qty 1 = 42. 0.5 fills at 40
	// (spends 20), then only 22/100 = 0.22 is affordable at the next
	// level; the rest is cancelled.
	order, trades, err := set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeMarket, 0, 1)
	if err != nil {
		t.Fatalf("Market buy failed: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(trades))
	}
	if order.Status != types.StatusCancelled {
		t.Errorf("Capped market buy must cancel its remainder, got %s", order.Status)
	}
	if diff := order.FilledQuantity - 0.72; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Expected filled quantity 0.72, got %f", order.FilledQuantity)
	}

	bobQuote := l.Get("bob", "usdt")
	if diff := bobQuote.Held - 30; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Resting bid's 30 usdt reservation must survive intact, got held %f", bobQuote.Held)
	}
	if diff := bobQuote.Actual - 958; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Market buy must spend at most its 42 usdt reservation, got actual %f", bobQuote.Actual)
	}
	if diff := l.Get("bob", "btc").Actual - 0.72; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Expected 0.72 btc bought, got %f", l.Get("bob", "btc").Actual)
	}

	// the untouched resting bid still cancels cleanly
	if _, err := set.Cancel(resting.ID); err != nil {
		t.Errorf("Cancel of resting bid failed: %v", err)
	}
	if held := l.Get("bob", "usdt").Held; held > 1e-6 || held < -1e-6 {
		t.Errorf("Expected no held usdt after cancel, got %f", held)
	}
}

func TestCancelSurfacesReleaseFault(t *testing.T) {
	set, l, _ := newTestSet(t)
	fund(t, l, "alice", "usdt", 1000)

	order, _, err := set.Submit("alice", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 1)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// corrupt the hold out from under the order
	if err := l.Release("alice", "usdt", 60); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	cancelled, err := set.Cancel(order.ID)
	if !errors.Is(err, types.ErrConsistencyFault) {
		t.Errorf("Cancel must surface the release fault, got %v", err)
	}
	if cancelled == nil || cancelled.Status != types.StatusCancelled {
		t.Errorf("Order should still be cancelled, got %+v", cancelled)
	}
	// the failed release must not move funds
	if held := l.Get("alice", "usdt").Held; held != 40 {
		t.Errorf("Expected held to stay at 40, got %f", held)
	}
}

func TestTradeEventsCarryOrderStatus(t *testing.T) {
	set, l, sink := newTestSet(t)
	fund(t, l, "alice", "btc", 5)
	fund(t, l, "bob", "usdt", 300)

	set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 5)
	set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeMarket, 0, 2)

	tradeEvents := sink.byType(types.EventTrade)
	if len(tradeEvents) != 2 {
		t.Fatalf("Expected 2 trade events, got %d", len(tradeEvents))
	}
	for _, e := range tradeEvents {
		switch e.UserID {
		case "bob":
			if e.Status != types.StatusFilled {
				t.Errorf("Buyer trade event should be filled, got %q", e.Status)
			}
		case "alice":
			if e.Status != types.StatusPartiallyFilled {
				t.Errorf("Seller trade event should be partially_filled, got %q", e.Status)
			}
		default:
			t.Errorf("Unexpected event user %s", e.UserID)
		}
	}
}

func TestMarketOrderHistoryAmountsNotZeroed(t *testing.T) {
	set, l, sink := newTestSet(t)
	fund(t, l, "alice", "btc", 1)
	fund(t, l, "bob", "usdt", 300)

	set.Submit("alice", btcusdt(), types.SideSell, types.OrderTypeLimit, 100, 1)

	// fills 1 at 100, the second unit cancels
	order, _, err := set.Submit("bob", btcusdt(), types.SideBuy, types.OrderTypeMarket, 0, 2)
	if err != nil {
		t.Fatalf("Market buy failed: %v", err)
	}
	if order.Status != types.StatusCancelled {
		t.Fatalf("Expected cancelled remainder, got %s", order.Status)
	}

	var created, cancelled *types.Event
	for _, e := range sink.events {
		if e.UserID != "bob" {
			continue
		}
		switch e.Type {
		case types.EventOrderCreated:
			created = e
		case types.EventOrderCancelled:
			cancelled = e
		}
	}
	if created == nil || cancelled == nil {
		t.Fatal("Missing lifecycle events for the market order")
	}

	// quote leg valued at best ask on creation, at the fill price after
	if created.FromAmount != 200 || created.ToAmount != 2 {
		t.Errorf("Created event amounts wrong: %f -> %f", created.FromAmount, created.ToAmount)
	}
	if cancelled.FromAmount != 200 || cancelled.ToAmount != 2 {
		t.Errorf("Cancelled event amounts wrong: %f -> %f", cancelled.FromAmount, cancelled.ToAmount)
	}
}

func TestRejectionRecordsEvent(t *testing.T) {
	set, _, sink := newTestSet(t)

	set.Submit("pauper", btcusdt(), types.SideBuy, types.OrderTypeLimit, 100, 1)

	if got := len(sink.byType(types.EventOrderRejected)); got != 1 {
		t.Errorf("Expected 1 rejection event, got %d", got)
	}
}
