package aggregator

import (
	"testing"
	"time"

	"tradelab/pkg/models"
)

var baseTime = time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC)

func tradeAt(symbol string, price, volume float64, offset time.Duration) models.Trade {
	return models.Trade{
		Symbol:    symbol,
		Price:     price,
		Volume:    volume,
		Timestamp: baseTime.Add(offset),
	}
}

// The reference scenario: trades at t=0, t=30s and t=65s with a 60s
// interval yield one sealed candle and one in-progress candle at 105.
func TestBuilder_SealsAtIntervalBoundary(t *testing.T) {
	b := NewBuilder("AAPL", time.Minute)
	b.AddTrade(tradeAt("AAPL", 100, 10, 0))
	b.AddTrade(tradeAt("AAPL", 102, 5, 30*time.Second))
	b.AddTrade(tradeAt("AAPL", 105, 7, 65*time.Second))

	sealed := b.Candles()
	if len(sealed) != 1 {
		t.Fatalf("expected 1 sealed candle, got %d", len(sealed))
	}
	c := sealed[0]
	if c.Open != 100 || c.High != 102 || c.Low != 100 || c.Close != 102 {
		t.Errorf("sealed candle OHLC wrong: %+v", c)
	}
	if c.Volume != 15 {
		t.Errorf("expected sealed volume 15, got %f", c.Volume)
	}
	if !c.StartTime.Equal(baseTime) {
		t.Errorf("expected bucket start %v, got %v", baseTime, c.StartTime)
	}

	current, ok := b.Current()
	if !ok {
		t.Fatal("expected an in-progress candle")
	}
	if current.Open != 105 || current.Close != 105 || current.Volume != 7 {
		t.Errorf("in-progress candle wrong: %+v", current)
	}
	if !current.StartTime.Equal(baseTime.Add(65 * time.Second)) {
		t.Errorf("new bucket must anchor at the sealing trade's time, got %v", current.StartTime)
	}
}

func TestBuilder_FirstTradeOpensCandle(t *testing.T) {
	b := NewBuilder("AAPL", time.Minute)

	if _, ok := b.Current(); ok {
		t.Error("no candle should exist before the first trade")
	}
	if got := b.Candles(); len(got) != 0 {
		t.Errorf("expected no sealed candles, got %d", len(got))
	}

	b.AddTrade(tradeAt("AAPL", 100, 3, 0))
	current, ok := b.Current()
	if !ok {
		t.Fatal("first trade must open a candle")
	}
	if current.Open != 100 || current.High != 100 || current.Low != 100 || current.Close != 100 || current.Volume != 3 {
		t.Errorf("opening candle must be seeded by the trade: %+v", current)
	}
}

func TestBuilder_OpenIsFixedHighLowWiden(t *testing.T) {
	b := NewBuilder("AAPL", time.Minute)
	b.AddTrade(tradeAt("AAPL", 100, 1, 0))
	b.AddTrade(tradeAt("AAPL", 110, 1, 10*time.Second))
	b.AddTrade(tradeAt("AAPL", 95, 1, 20*time.Second))
	b.AddTrade(tradeAt("AAPL", 103, 1, 30*time.Second))

	current, _ := b.Current()
	if current.Open != 100 {
		t.Errorf("open must never change, got %f", current.Open)
	}
	if current.High != 110 || current.Low != 95 {
		t.Errorf("high/low must widen monotonically, got high=%f low=%f", current.High, current.Low)
	}
	if current.Close != 103 {
		t.Errorf("close must equal the latest price, got %f", current.Close)
	}
	if current.Volume != 4 {
		t.Errorf("volume must accumulate, got %f", current.Volume)
	}
}

// Candle invariants over an arbitrary trade sequence spanning buckets.
func TestBuilder_SealedCandleInvariants(t *testing.T) {
	b := NewBuilder("AAPL", time.Minute)
	prices := []float64{100, 97, 104, 99, 108, 95, 101, 103, 96, 107}
	for i, p := range prices {
		b.AddTrade(tradeAt("AAPL", p, 1, time.Duration(i*25)*time.Second))
	}

	sealed := b.Candles()
	if len(sealed) == 0 {
		t.Fatal("expected sealed candles")
	}
	for i, c := range sealed {
		if c.High < c.Open || c.High < c.Close {
			t.Errorf("candle %d: high %f below open/close", i, c.High)
		}
		if c.Low > c.Open || c.Low > c.Close {
			t.Errorf("candle %d: low %f above open/close", i, c.Low)
		}
		if c.Volume < 0 {
			t.Errorf("candle %d: negative volume %f", i, c.Volume)
		}
		if i > 0 && c.StartTime.Before(sealed[i-1].StartTime) {
			t.Errorf("candle %d: out of order start times", i)
		}
	}
}

// An interval with no trades yields no candle at all; the next trade
// simply opens a bucket at its own time.
func TestBuilder_GapsAreAbsent(t *testing.T) {
	b := NewBuilder("AAPL", time.Minute)
	b.AddTrade(tradeAt("AAPL", 100, 1, 0))
	b.AddTrade(tradeAt("AAPL", 101, 1, 10*time.Minute))

	sealed := b.Candles()
	if len(sealed) != 1 {
		t.Fatalf("expected exactly 1 sealed candle across the gap, got %d", len(sealed))
	}
	current, _ := b.Current()
	if !current.StartTime.Equal(baseTime.Add(10 * time.Minute)) {
		t.Errorf("bucket after the gap must anchor at the trade's time, got %v", current.StartTime)
	}
}

// An out-of-order trade seals the open bucket early rather than being
// re-bucketed or crashing the aggregator.
func TestBuilder_OutOfOrderSealsEarly(t *testing.T) {
	b := NewBuilder("AAPL", time.Minute)
	b.AddTrade(tradeAt("AAPL", 100, 1, 30*time.Second))
	b.AddTrade(tradeAt("AAPL", 99, 1, 40*time.Second))
	b.AddTrade(tradeAt("AAPL", 98, 1, 10*time.Second)) // time goes backwards

	sealed := b.Candles()
	if len(sealed) != 1 {
		t.Fatalf("expected the open candle to be sealed early, got %d sealed", len(sealed))
	}
	if sealed[0].Open != 100 || sealed[0].Close != 99 {
		t.Errorf("early-sealed candle must keep its contents: %+v", sealed[0])
	}

	current, ok := b.Current()
	if !ok {
		t.Fatal("out-of-order trade must open a fresh candle")
	}
	if current.Open != 98 || !current.StartTime.Equal(baseTime.Add(10*time.Second)) {
		t.Errorf("fresh candle must be seeded by the out-of-order trade: %+v", current)
	}
}

func TestAggregator_RoutesPerSymbol(t *testing.T) {
	a := New(time.Minute)
	a.AddTrade(tradeAt("AAPL", 100, 1, 0))
	a.AddTrade(tradeAt("MSFT", 370, 2, 0))
	a.AddTrade(tradeAt("AAPL", 101, 1, 61*time.Second))

	if got := a.Candles("AAPL"); len(got) != 1 {
		t.Errorf("expected 1 sealed AAPL candle, got %d", len(got))
	}
	if got := a.Candles("MSFT"); len(got) != 0 {
		t.Errorf("expected no sealed MSFT candles, got %d", len(got))
	}
	if current, ok := a.Current("MSFT"); !ok || current.Open != 370 {
		t.Errorf("MSFT in-progress candle wrong: %+v ok=%v", current, ok)
	}
	if _, ok := a.Current("NVDA"); ok {
		t.Error("unknown symbol must report no candle")
	}
	if got := a.Candles("NVDA"); got != nil {
		t.Errorf("unknown symbol must report no sealed candles, got %v", got)
	}
}
