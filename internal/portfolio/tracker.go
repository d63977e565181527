package portfolio

import (
	"context"
	"sync"

	"tradelab/internal/auth"
	"tradelab/internal/common"
	"tradelab/internal/pricestore"
	"tradelab/internal/storage"
	"tradelab/internal/util"
	"tradelab/pkg/models"
)

// Tracker keeps one user's portfolio valuation current. It recomputes by
// calling Value whenever the price store publishes an update or the
// order engine reports a holdings change; there is no polling.
type Tracker struct {
	session *auth.Session
	repo    storage.Repository
	store   *pricestore.Store
	logger  *util.Logger

	holdingsCh chan struct{}

	mu     sync.RWMutex
	latest models.Portfolio
}

func NewTracker(session *auth.Session, repo storage.Repository, store *pricestore.Store, logger *util.Logger) *Tracker {
	return &Tracker{
		session:    session,
		repo:       repo,
		store:      store,
		logger:     logger,
		holdingsCh: make(chan struct{}, 1),
	}
}

// Run recomputes on every change notification until the context is
// cancelled. Notifications are coalesced by their senders, so a burst of
// ticks costs one recompute.
func (t *Tracker) Run(ctx context.Context) {
	go func() {
		t.recompute(ctx)
		for {
			select {
			case <-t.store.Updates():
				t.recompute(ctx)
			case <-t.holdingsCh:
				t.recompute(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// HoldingsChanged signals that the holdings snapshot mutated. Safe to
// call from any goroutine; never blocks.
func (t *Tracker) HoldingsChanged() {
	select {
	case t.holdingsCh <- struct{}{}:
	default:
	}
}

// Latest returns the most recently computed portfolio.
func (t *Tracker) Latest() models.Portfolio {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latest
}

func (t *Tracker) recompute(ctx context.Context) {
	holdings, err := t.repo.GetHoldings(ctx, t.session.UserID())
	if err != nil {
		t.logger.Error(err, common.ErrCodeStorageFailed, common.ErrMsgStorageFailed, "Holdings fetch failed, keeping previous valuation")
		return
	}

	_, summary := Value(holdings, t.store.Snapshot())

	t.mu.Lock()
	t.latest = summary
	t.mu.Unlock()
}
