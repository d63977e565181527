package trading

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("trading: quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("trading: price must be greater than zero")
)

// InsufficientFundsError rejects a buy whose total cost exceeds the
// wallet balance. It names both amounts so the caller can surface them.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need $%s but only have $%s", e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// InsufficientSharesError rejects a sell for more shares than owned.
// Owned is zero when no holding exists for the symbol.
type InsufficientSharesError struct {
	Symbol    string
	Requested int64
	Owned     int64
}

func (e *InsufficientSharesError) Error() string {
	if e.Owned == 0 {
		return fmt.Sprintf("insufficient shares: no shares of %s owned", e.Symbol)
	}
	return fmt.Sprintf("insufficient shares: requested %d but only own %d shares of %s", e.Requested, e.Owned, e.Symbol)
}

// LedgerWriteError wraps a failed transaction append. On the buy path it
// is reported only after the wallet debit has been compensated.
type LedgerWriteError struct {
	Err error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("ledger write failed: %v", e.Err)
}

func (e *LedgerWriteError) Unwrap() error {
	return e.Err
}
