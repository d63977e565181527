package portfolio

import (
	"github.com/shopspring/decimal"
	"tradelab/pkg/models"
)

// Value joins a holdings snapshot with a price snapshot and returns the
// valued positions plus the aggregate summary. It is a pure function of
// its two inputs; the caller invokes it whenever either input changes.
// A holding whose symbol has no quote yet is excluded from the valued
// set, not zero-valued, until a price arrives.
func Value(holdings []models.Holding, prices map[string]models.Quote) ([]models.Position, models.Portfolio) {
	positions := make([]models.Position, 0, len(holdings))

	totalCost := decimal.Zero
	totalValue := decimal.Zero

	for _, h := range holdings {
		quote, ok := prices[h.Symbol]
		if !ok {
			continue
		}

		currentPrice := decimal.NewFromFloat(quote.CurrentPrice)
		marketValue := currentPrice.Mul(decimal.NewFromInt(h.Quantity))
		unrealizedPL := marketValue.Sub(h.TotalCost)

		var plPercent float64
		if h.TotalCost.IsPositive() {
			plPercent = unrealizedPL.Div(h.TotalCost).InexactFloat64() * 100
		}

		positions = append(positions, models.Position{
			Holding:             h,
			CurrentPrice:        currentPrice,
			MarketValue:         marketValue,
			UnrealizedPL:        unrealizedPL,
			UnrealizedPLPercent: plPercent,
		})

		totalCost = totalCost.Add(h.TotalCost)
		totalValue = totalValue.Add(marketValue)
	}

	unrealizedPL := totalValue.Sub(totalCost)
	var plPercent float64
	if totalCost.IsPositive() {
		plPercent = unrealizedPL.Div(totalCost).InexactFloat64() * 100
	}

	weights := make(map[string]float64)
	if totalValue.IsPositive() {
		for _, p := range positions {
			weights[p.Symbol] = p.MarketValue.Div(totalValue).InexactFloat64() * 100
		}
	}

	summary := models.Portfolio{
		Positions:           positions,
		TotalCost:           totalCost,
		TotalValue:          totalValue,
		UnrealizedPL:        unrealizedPL,
		UnrealizedPLPercent: plPercent,
		Weights:             weights,
	}
	return positions, summary
}
