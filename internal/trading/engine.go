package trading

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"tradelab/internal/auth"
	"tradelab/internal/common"
	"tradelab/internal/storage"
	"tradelab/internal/util"
	"tradelab/pkg/models"
)

// Engine validates and executes buy/sell orders against the wallet, the
// ledger, and the holdings snapshot. The wallet write and the ledger
// append are two sequential remote calls, not one transaction; the buy
// path re-credits the wallet when the ledger append fails, which is the
// only compensation in the engine.
type Engine struct {
	repo   storage.Repository
	logger *util.Logger

	// onHoldingsChanged triggers revaluation after a settled order.
	onHoldingsChanged func()

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(repo storage.Repository, logger *util.Logger, onHoldingsChanged func()) *Engine {
	return &Engine{
		repo:              repo,
		logger:            logger,
		onHoldingsChanged: onHoldingsChanged,
		locks:             make(map[string]*sync.Mutex),
	}
}

// Buy debits the wallet, appends the ledger entry, then folds the shares
// into the holding at the cost-weighted average.
func (e *Engine) Buy(ctx context.Context, session *auth.Session, symbol string, quantity int64, price decimal.Decimal) (models.Transaction, error) {
	if session == nil {
		return models.Transaction{}, auth.ErrIdentityMissing
	}
	if quantity <= 0 {
		return models.Transaction{}, ErrInvalidQuantity
	}
	if !price.IsPositive() {
		return models.Transaction{}, ErrInvalidPrice
	}

	symbol = strings.ToUpper(symbol)
	userID := session.UserID()

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := e.repo.GetUser(ctx, userID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("load user: %w", err)
	}

	totalCost := price.Mul(decimal.NewFromInt(quantity))
	if user.Wallet.LessThan(totalCost) {
		return models.Transaction{}, &InsufficientFundsError{Required: totalCost, Available: user.Wallet}
	}

	// Funds first. If the ledger append below fails the debit is undone.
	if err := e.repo.UpdateWalletBalance(ctx, userID, user.Wallet.Sub(totalCost)); err != nil {
		return models.Transaction{}, fmt.Errorf("debit wallet: %w", err)
	}

	tx := models.Transaction{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Quantity:  quantity,
		Price:     price,
		TotalCost: totalCost,
		Type:      models.TransactionBuy,
		Timestamp: time.Now(),
	}
	if err := e.repo.AppendTransaction(ctx, userID, tx); err != nil {
		if rbErr := e.repo.UpdateWalletBalance(ctx, userID, user.Wallet); rbErr != nil {
			e.logger.Error(rbErr, common.ErrCodeWalletUpdateFailed, common.ErrMsgWalletUpdateFailed, "Wallet rollback failed after ledger error", "user", userID, "amount", totalCost.String())
		}
		return models.Transaction{}, &LedgerWriteError{Err: err}
	}

	if err := e.applyBuyToHolding(ctx, userID, tx); err != nil {
		return models.Transaction{}, err
	}

	e.logger.Info("Order settled", "type", "buy", "symbol", symbol, "quantity", quantity, "price", price.String())
	e.notifyHoldingsChanged()
	return tx, nil
}

// Sell appends the ledger entry, credits the wallet with the proceeds,
// then reduces the holding. The order is reversed relative to Buy since
// funds are not at risk on a sell. AvgCost is held fixed across sells.
func (e *Engine) Sell(ctx context.Context, session *auth.Session, symbol string, quantity int64, price decimal.Decimal) (models.Transaction, error) {
	if session == nil {
		return models.Transaction{}, auth.ErrIdentityMissing
	}
	if quantity <= 0 {
		return models.Transaction{}, ErrInvalidQuantity
	}
	if !price.IsPositive() {
		return models.Transaction{}, ErrInvalidPrice
	}

	symbol = strings.ToUpper(symbol)
	userID := session.UserID()

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	holding, ok, err := e.findHolding(ctx, userID, symbol)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("load holdings: %w", err)
	}
	if !ok {
		return models.Transaction{}, &InsufficientSharesError{Symbol: symbol, Requested: quantity, Owned: 0}
	}
	if holding.Quantity < quantity {
		return models.Transaction{}, &InsufficientSharesError{Symbol: symbol, Requested: quantity, Owned: holding.Quantity}
	}

	proceeds := price.Mul(decimal.NewFromInt(quantity))
	tx := models.Transaction{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Quantity:  quantity,
		Price:     price,
		TotalCost: proceeds,
		Type:      models.TransactionSell,
		Timestamp: time.Now(),
	}
	if err := e.repo.AppendTransaction(ctx, userID, tx); err != nil {
		return models.Transaction{}, &LedgerWriteError{Err: err}
	}

	user, err := e.repo.GetUser(ctx, userID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("trade executed but wallet update failed: %w", err)
	}
	if err := e.repo.UpdateWalletBalance(ctx, userID, user.Wallet.Add(proceeds)); err != nil {
		// The ledger entry stands; there is nothing to compensate here.
		return models.Transaction{}, fmt.Errorf("trade executed but wallet update failed: %w", err)
	}

	if err := e.applySellToHolding(ctx, userID, holding, quantity); err != nil {
		return models.Transaction{}, err
	}

	e.logger.Info("Order settled", "type", "sell", "symbol", symbol, "quantity", quantity, "price", price.String())
	e.notifyHoldingsChanged()
	return tx, nil
}

func (e *Engine) applyBuyToHolding(ctx context.Context, userID string, tx models.Transaction) error {
	holding, ok, err := e.findHolding(ctx, userID, tx.Symbol)
	if err != nil {
		return fmt.Errorf("load holdings: %w", err)
	}

	if ok {
		newQuantity := holding.Quantity + tx.Quantity
		newTotalCost := holding.TotalCost.Add(tx.TotalCost)
		holding.Quantity = newQuantity
		holding.TotalCost = newTotalCost
		holding.AvgCost = newTotalCost.Div(decimal.NewFromInt(newQuantity))
	} else {
		holding = models.Holding{
			Symbol:    tx.Symbol,
			Quantity:  tx.Quantity,
			AvgCost:   tx.Price,
			TotalCost: tx.TotalCost,
		}
	}

	if err := e.repo.UpsertHolding(ctx, userID, holding); err != nil {
		return fmt.Errorf("upsert holding: %w", err)
	}
	return nil
}

func (e *Engine) applySellToHolding(ctx context.Context, userID string, holding models.Holding, sold int64) error {
	holding.Quantity -= sold
	if holding.Quantity <= 0 {
		if err := e.repo.DeleteHolding(ctx, userID, holding.Symbol); err != nil {
			return fmt.Errorf("delete holding: %w", err)
		}
		return nil
	}

	holding.TotalCost = holding.AvgCost.Mul(decimal.NewFromInt(holding.Quantity))
	if err := e.repo.UpsertHolding(ctx, userID, holding); err != nil {
		return fmt.Errorf("upsert holding: %w", err)
	}
	return nil
}

func (e *Engine) findHolding(ctx context.Context, userID, symbol string) (models.Holding, bool, error) {
	holdings, err := e.repo.GetHoldings(ctx, userID)
	if err != nil {
		return models.Holding{}, false, err
	}
	for _, h := range holdings {
		if h.Symbol == symbol {
			return h, true, nil
		}
	}
	return models.Holding{}, false, nil
}

func (e *Engine) notifyHoldingsChanged() {
	if e.onHoldingsChanged != nil {
		e.onHoldingsChanged()
	}
}

// userLock serializes order execution per user so two concurrent orders
// cannot interleave their read-modify-write of wallet and holding.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}
