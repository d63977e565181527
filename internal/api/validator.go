package api

import (
	"fmt"
	"regexp"
	"strings"
)

// OrderRequest is the POST /api/v1/orders payload. Price is optional;
// zero means execute at the live quote.
type OrderRequest struct {
	Side     string  `json:"side"`
	Symbol   string  `json:"symbol"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSymbol normalizes and checks a ticker symbol.
func (v *Validator) ValidateSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("symbol is required")
	}
	if !symbolPattern.MatchString(symbol) {
		return "", fmt.Errorf("invalid symbol %q", symbol)
	}
	return symbol, nil
}

// ValidateOrder checks the payload shape; funds and inventory checks
// belong to the trading engine.
func (v *Validator) ValidateOrder(req *OrderRequest) error {
	if req.Side != "buy" && req.Side != "sell" {
		return fmt.Errorf("side must be %q or %q", "buy", "sell")
	}
	symbol, err := v.ValidateSymbol(req.Symbol)
	if err != nil {
		return err
	}
	req.Symbol = symbol
	if req.Quantity <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	if req.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}
