package aggregator

import (
	"sync"
	"time"

	"tradelab/pkg/models"
)

// Aggregator routes trades to one Builder per symbol, creating builders
// lazily on the first trade for a symbol.
type Aggregator struct {
	interval time.Duration

	mu       sync.RWMutex
	builders map[string]*Builder
}

func New(interval time.Duration) *Aggregator {
	return &Aggregator{
		interval: interval,
		builders: make(map[string]*Builder),
	}
}

func (a *Aggregator) AddTrade(trade models.Trade) {
	a.builder(trade.Symbol).AddTrade(trade)
}

// Candles returns the sealed candles for one symbol, oldest first.
func (a *Aggregator) Candles(symbol string) []models.Candle {
	a.mu.RLock()
	b, ok := a.builders[symbol]
	a.mu.RUnlock()
	if !ok {
		return nil
	}
	return b.Candles()
}

// Current returns the in-progress candle for one symbol.
func (a *Aggregator) Current(symbol string) (models.Candle, bool) {
	a.mu.RLock()
	b, ok := a.builders[symbol]
	a.mu.RUnlock()
	if !ok {
		return models.Candle{}, false
	}
	return b.Current()
}

func (a *Aggregator) builder(symbol string) *Builder {
	a.mu.RLock()
	b, ok := a.builders[symbol]
	a.mu.RUnlock()
	if ok {
		return b
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if b, ok := a.builders[symbol]; ok {
		return b
	}
	b = NewBuilder(symbol, a.interval)
	a.builders[symbol] = b
	return b
}
