package feed

import (
	"tradelab/internal/aggregator"
	"tradelab/internal/pricestore"
	"tradelab/pkg/models"
)

// Dispatcher drains the trade channel and fans each trade out to the
// price store and the candle aggregator. It runs as the single writer
// for both, so updates land strictly in receive order.
type Dispatcher struct {
	tradeCh <-chan models.Trade
	store   *pricestore.Store
	agg     *aggregator.Aggregator
	done    chan struct{}
}

func NewDispatcher(tradeCh <-chan models.Trade, store *pricestore.Store, agg *aggregator.Aggregator) *Dispatcher {
	return &Dispatcher{
		tradeCh: tradeCh,
		store:   store,
		agg:     agg,
		done:    make(chan struct{}),
	}
}

// Run consumes trades until the trade channel is closed.
func (d *Dispatcher) Run() {
	go func() {
		defer close(d.done)
		for trade := range d.tradeCh {
			d.store.Apply(trade)
			d.agg.AddTrade(trade)
		}
	}()
}

// Wait blocks until the dispatcher has drained and stopped.
func (d *Dispatcher) Wait() {
	<-d.done
}
