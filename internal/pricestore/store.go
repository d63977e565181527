package pricestore

import (
	"sync"
	"time"

	"tradelab/pkg/models"
)

// Store maps each symbol to its latest and immediately preceding price.
// Exactly one writer (the ingest dispatcher) calls Apply; any number of
// readers call Get and Snapshot. Records are never removed while the
// session is open.
type Store struct {
	mu      sync.RWMutex
	quotes  map[string]models.Quote
	updates chan struct{}
}

func NewStore() *Store {
	return &Store{
		quotes:  make(map[string]models.Quote),
		updates: make(chan struct{}, 1),
	}
}

// Apply folds one trade into the store: the first trade for a symbol
// creates its quote with no previous price; every later trade shifts
// current into previous. Observation time is processing time, not the
// exchange timestamp.
func (s *Store) Apply(trade models.Trade) {
	s.mu.Lock()
	if existing, ok := s.quotes[trade.Symbol]; ok {
		prev := existing.CurrentPrice
		s.quotes[trade.Symbol] = models.Quote{
			Symbol:        trade.Symbol,
			CurrentPrice:  trade.Price,
			PreviousPrice: &prev,
			UpdatedAt:     time.Now(),
		}
	} else {
		s.quotes[trade.Symbol] = models.Quote{
			Symbol:       trade.Symbol,
			CurrentPrice: trade.Price,
			UpdatedAt:    time.Now(),
		}
	}
	s.mu.Unlock()

	s.notify()
}

// Get returns the quote for one symbol.
func (s *Store) Get(symbol string) (models.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[symbol]
	return q, ok
}

// Snapshot returns a read-consistent copy of every quote.
func (s *Store) Snapshot() map[string]models.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Quote, len(s.quotes))
	for symbol, q := range s.quotes {
		out[symbol] = q
	}
	return out
}

// Updates signals that at least one quote changed since the last
// receive. Notifications are coalesced, latest-wins, so a slow consumer
// never blocks the writer.
func (s *Store) Updates() <-chan struct{} {
	return s.updates
}

func (s *Store) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
