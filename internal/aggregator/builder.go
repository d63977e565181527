package aggregator

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"tradelab/pkg/models"
)

// Builder folds the trade stream for one symbol into fixed-width OHLCV
// buckets. Buckets anchor at the first trade that opens them; a trade at
// or beyond start+interval seals the bucket and opens a new one. No
// candle is synthesized for an interval with zero trades, so gaps are
// simply absent from the sealed sequence.
type Builder struct {
	symbol   string
	interval time.Duration

	mu      sync.Mutex
	current *models.Candle
	sealed  []models.Candle
}

func NewBuilder(symbol string, interval time.Duration) *Builder {
	return &Builder{
		symbol:   symbol,
		interval: interval,
	}
}

// AddTrade folds one trade into the open bucket. Trade time is assumed
// non-decreasing; a trade earlier than the open bucket's start seals the
// bucket early and opens a new one at the trade's time, so violated
// ordering degrades candle quality but never corrupts a sealed candle.
func (b *Builder) AddTrade(trade models.Trade) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		b.open(trade)
		return
	}

	elapsed := trade.Timestamp.Sub(b.current.StartTime)
	if elapsed < 0 {
		log.Warn().
			Str("symbol", b.symbol).
			Time("trade_ts", trade.Timestamp).
			Time("bucket_start", b.current.StartTime).
			Msg("Out-of-order trade, sealing current candle early")
		b.seal()
		b.open(trade)
		return
	}

	if elapsed < b.interval {
		b.current.High = max(b.current.High, trade.Price)
		b.current.Low = min(b.current.Low, trade.Price)
		b.current.Close = trade.Price
		b.current.Volume += trade.Volume
		return
	}

	b.seal()
	b.open(trade)
}

// Candles returns a copy of the sealed candles in bucket order. The
// in-progress candle is not included.
func (b *Builder) Candles() []models.Candle {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Candle, len(b.sealed))
	copy(out, b.sealed)
	return out
}

// Current returns the in-progress candle, if any trade has opened one.
func (b *Builder) Current() (models.Candle, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return models.Candle{}, false
	}
	return *b.current, true
}

func (b *Builder) open(trade models.Trade) {
	b.current = &models.Candle{
		Symbol:    b.symbol,
		Open:      trade.Price,
		High:      trade.Price,
		Low:       trade.Price,
		Close:     trade.Price,
		Volume:    trade.Volume,
		StartTime: trade.Timestamp,
	}
}

func (b *Builder) seal() {
	b.sealed = append(b.sealed, *b.current)
	log.Debug().
		Str("symbol", b.symbol).
		Float64("open", b.current.Open).
		Float64("high", b.current.High).
		Float64("low", b.current.Low).
		Float64("close", b.current.Close).
		Float64("volume", b.current.Volume).
		Time("start", b.current.StartTime).
		Msg("Sealed candle")
	b.current = nil
}
