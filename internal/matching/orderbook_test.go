package matching

import (
	"testing"

	"github.com/tanzhongyan/Yorkshire-Crypto-Exchange-sub000/internal/types"
)

func testPair() types.Pair {
	return types.NewPair("btc", "usdt")
}

func restingOrder(id uint64, side types.Side, price, qty float64) *types.Order {
	return types.NewOrder(id, "user", testPair(), side, types.OrderTypeLimit, price, qty)
}

func TestAddAndBestPrices(t *testing.T) {
	ob := NewOrderBook(testPair())

	ob.Add(restingOrder(1, types.SideBuy, 99, 10))
	ob.Add(restingOrder(2, types.SideBuy, 100, 5))
	ob.Add(restingOrder(3, types.SideSell, 102, 8))
	ob.Add(restingOrder(4, types.SideSell, 101, 3))

	price, queue, ok := ob.BestBid()
	if !ok || price != 100 {
		t.Errorf("Expected best bid 100, got %f (ok=%v)", price, ok)
	}
	if len(queue) != 1 || queue[0].ID != 2 {
		t.Errorf("Best bid queue wrong: %+v", queue)
	}

	price, queue, ok = ob.BestAsk()
	if !ok || price != 101 {
		t.Errorf("Expected best ask 101, got %f (ok=%v)", price, ok)
	}
	if len(queue) != 1 || queue[0].ID != 4 {
		t.Errorf("Best ask queue wrong: %+v", queue)
	}
}

func TestEmptyBookHasNoBest(t *testing.T) {
	ob := NewOrderBook(testPair())

	if _, _, ok := ob.BestBid(); ok {
		t.Error("Empty book should have no best bid")
	}
	if _, _, ok := ob.BestAsk(); ok {
		t.Error("Empty book should have no best ask")
	}
}

func TestFIFOWithinPriceLevel(t *testing.T) {
	ob := NewOrderBook(testPair())

	ob.Add(restingOrder(1, types.SideSell, 100, 5))
	ob.Add(restingOrder(2, types.SideSell, 100, 5))
	ob.Add(restingOrder(3, types.SideSell, 100, 5))

	_, queue, _ := ob.BestAsk()
	for i, wantID := range []uint64{1, 2, 3} {
		if queue[i].ID != wantID {
			t.Errorf("Position %d: expected order %d, got %d", i, wantID, queue[i].ID)
		}
	}
}

func TestRemoveCleansEmptyLevel(t *testing.T) {
	ob := NewOrderBook(testPair())
	ob.Add(restingOrder(1, types.SideBuy, 100, 10))

	order, ok := ob.Remove(1)
	if !ok || order.ID != 1 {
		t.Fatalf("Remove failed: ok=%v", ok)
	}
	if ob.Contains(1) {
		t.Error("Order still present after remove")
	}
	if _, _, ok := ob.BestBid(); ok {
		t.Error("Empty level should be cleaned up")
	}
}

func TestRemoveUnknownOrder(t *testing.T) {
	ob := NewOrderBook(testPair())

	if _, ok := ob.Remove(42); ok {
		t.Error("Remove of unknown order should return false")
	}
}

func TestPeelFrontAdvancesQueue(t *testing.T) {
	ob := NewOrderBook(testPair())
	ob.Add(restingOrder(1, types.SideSell, 100, 5))
	ob.Add(restingOrder(2, types.SideSell, 100, 5))

	ob.asks.peelFront(100)

	_, queue, ok := ob.BestAsk()
	if !ok || len(queue) != 1 || queue[0].ID != 2 {
		t.Errorf("Expected order 2 at front, got %+v", queue)
	}
	if ob.Contains(1) {
		t.Error("Peeled order should not be indexed")
	}

	ob.asks.peelFront(100)
	if _, _, ok := ob.BestAsk(); ok {
		t.Error("Level should be removed after last order peeled")
	}
}

func TestDepthAggregation(t *testing.T) {
	ob := NewOrderBook(testPair())

	ob.Add(restingOrder(1, types.SideBuy, 100, 10))
	ob.Add(restingOrder(2, types.SideBuy, 100, 5))
	ob.Add(restingOrder(3, types.SideBuy, 99, 7))
	ob.Add(restingOrder(4, types.SideSell, 101, 4))
	ob.Add(restingOrder(5, types.SideSell, 103, 2))

	bids, asks := ob.Depth(10)

	if len(bids) != 2 {
		t.Fatalf("Expected 2 bid levels, got %d", len(bids))
	}
	if bids[0].Price != 100 || bids[0].Quantity != 15 || bids[0].OrderCount != 2 {
		t.Errorf("Top bid level wrong: %+v", bids[0])
	}
	if bids[1].Price != 99 {
		t.Errorf("Bids should be descending, got %+v", bids)
	}

	if len(asks) != 2 {
		t.Fatalf("Expected 2 ask levels, got %d", len(asks))
	}
	if asks[0].Price != 101 || asks[1].Price != 103 {
		t.Errorf("Asks should be ascending, got %+v", asks)
	}
}

func TestDepthUsesRemainingQuantity(t *testing.T) {
	ob := NewOrderBook(testPair())

	o := restingOrder(1, types.SideSell, 100, 10)
	o.FilledQuantity = 4
	ob.Add(o)

	_, asks := ob.Depth(1)
	if len(asks) != 1 || asks[0].Quantity != 6 {
		t.Errorf("Depth should aggregate unfilled remainder, got %+v", asks)
	}
}

func TestDepthLevelCap(t *testing.T) {
	ob := NewOrderBook(testPair())
	for i := 1; i <= 5; i++ {
		ob.Add(restingOrder(uint64(i), types.SideSell, 100+float64(i), 1))
	}

	_, asks := ob.Depth(3)
	if len(asks) != 3 {
		t.Errorf("Expected 3 levels, got %d", len(asks))
	}
	if asks[0].Price != 101 {
		t.Errorf("Cap should keep the best levels, got %+v", asks)
	}
}

func TestOrdersBestFirstFIFO(t *testing.T) {
	ob := NewOrderBook(testPair())

	ob.Add(restingOrder(1, types.SideBuy, 99, 1))
	ob.Add(restingOrder(2, types.SideBuy, 100, 1))
	ob.Add(restingOrder(3, types.SideBuy, 100, 1))

	orders := ob.Orders(types.SideBuy)
	wantIDs := []uint64{2, 3, 1}
	if len(orders) != len(wantIDs) {
		t.Fatalf("Expected %d orders, got %d", len(wantIDs), len(orders))
	}
	for i, want := range wantIDs {
		if orders[i].ID != want {
			t.Errorf("Position %d: expected order %d, got %d", i, want, orders[i].ID)
		}
	}
}
