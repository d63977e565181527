package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one execution reported by the market-data feed. Trades are
// ephemeral: they feed the price store and the candle aggregator and are
// never persisted.
type Trade struct {
	Symbol     string
	Price      float64
	Volume     float64
	Timestamp  time.Time
	Conditions []string
}

// Quote holds the latest and the immediately preceding price for one
// symbol. PreviousPrice is nil until a second trade has been observed.
type Quote struct {
	Symbol        string
	CurrentPrice  float64
	PreviousPrice *float64
	UpdatedAt     time.Time
}

// PriceChange returns the absolute change since the preceding trade, or
// nil when only one trade has been observed.
func (q Quote) PriceChange() *float64 {
	if q.PreviousPrice == nil {
		return nil
	}
	d := q.CurrentPrice - *q.PreviousPrice
	return &d
}

// PercentChange returns the percent change since the preceding trade, or
// nil when there is no previous price or it is not positive.
func (q Quote) PercentChange() *float64 {
	if q.PreviousPrice == nil || *q.PreviousPrice <= 0 {
		return nil
	}
	p := (q.CurrentPrice - *q.PreviousPrice) / *q.PreviousPrice * 100
	return &p
}

// Candle is one OHLCV bucket, sealed or in progress.
type Candle struct {
	Symbol    string    `json:"symbol"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	StartTime time.Time `json:"start_time"`
}

// Holding is one position owned by a user. TotalCost equals AvgCost
// multiplied by Quantity after every mutation; a holding that reaches
// zero quantity is deleted, never kept at zero.
type Holding struct {
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	AvgCost   decimal.Decimal `json:"avg_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Transaction is one immutable ledger entry.
type Transaction struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	TotalCost decimal.Decimal `json:"total_cost"`
	Type      TransactionType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
}

// Position is a holding joined with its live quote. Derived, never stored.
type Position struct {
	Holding
	CurrentPrice        decimal.Decimal `json:"current_price"`
	MarketValue         decimal.Decimal `json:"market_value"`
	UnrealizedPL        decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPLPercent float64         `json:"unrealized_pl_percent"`
}

// Portfolio aggregates every valued position. Weights sum to 100 whenever
// TotalValue is positive and the map is empty when there are no positions.
type Portfolio struct {
	Positions           []Position         `json:"positions"`
	TotalCost           decimal.Decimal    `json:"total_cost"`
	TotalValue          decimal.Decimal    `json:"total_value"`
	UnrealizedPL        decimal.Decimal    `json:"unrealized_pl"`
	UnrealizedPLPercent float64            `json:"unrealized_pl_percent"`
	Weights             map[string]float64 `json:"weights"`
}

// User is the profile stored per authenticated identity.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Wallet      decimal.Decimal
	Active      bool
}
