package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"tradelab/internal/auth"
	"tradelab/internal/trading"
	"tradelab/pkg/models"
)

// HealthCheck handles GET /healthz. Storage is only probed when the
// adapter supports it; the in-memory adapter has nothing to check.
func (h *Handler) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"feed":      h.feed.State().String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if checker, ok := h.repo.(interface{ Health(context.Context) error }); ok {
		if err := checker.Health(c.Request.Context()); err != nil {
			resp["status"] = "DEGRADED"
			resp["storage"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetPrices handles GET /api/v1/prices: the full quote snapshot.
func (h *Handler) GetPrices(c *gin.Context) {
	snapshot := h.prices.Snapshot()

	out := make([]quoteView, 0, len(snapshot))
	for _, q := range snapshot {
		out = append(out, newQuoteView(q))
	}
	c.JSON(http.StatusOK, out)
}

// GetCandles handles GET /api/v1/candles/:symbol. Only sealed candles
// are listed; ?current=true appends the in-progress candle separately.
func (h *Handler) GetCandles(c *gin.Context) {
	symbol, err := h.validator.ValidateSymbol(c.Param("symbol"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	candles := h.candles.Candles(symbol)
	if candles == nil {
		candles = []models.Candle{}
	}

	resp := gin.H{"symbol": symbol, "candles": candles}
	if c.Query("current") == "true" {
		if current, ok := h.candles.Current(symbol); ok {
			resp["current"] = current
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetPortfolio handles GET /api/v1/portfolio: the latest valuation.
func (h *Handler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Latest())
}

// GetTransactions handles GET /api/v1/transactions, newest first.
func (h *Handler) GetTransactions(c *gin.Context) {
	transactions, err := h.repo.GetTransactions(c.Request.Context(), h.session.UserID())
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// PlaceOrder handles POST /api/v1/orders. When no price is given the
// order executes at the live quote; without a quote it is rejected.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleValidationError(c, err)
		return
	}
	if err := h.validator.ValidateOrder(&req); err != nil {
		h.handleValidationError(c, err)
		return
	}

	price := decimal.NewFromFloat(req.Price)
	if req.Price == 0 {
		quote, ok := h.prices.Get(req.Symbol)
		if !ok {
			h.handleError(c, trading.ErrInvalidPrice, http.StatusUnprocessableEntity, "No live price for "+req.Symbol)
			return
		}
		price = decimal.NewFromFloat(quote.CurrentPrice)
	}

	var (
		tx  models.Transaction
		err error
	)
	switch req.Side {
	case "buy":
		tx, err = h.engine.Buy(c.Request.Context(), h.session, req.Symbol, req.Quantity, price)
	case "sell":
		tx, err = h.engine.Sell(c.Request.Context(), h.session, req.Symbol, req.Quantity, price)
	}
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

func (h *Handler) handleOrderError(c *gin.Context, err error) {
	var fundsErr *trading.InsufficientFundsError
	var sharesErr *trading.InsufficientSharesError
	var ledgerErr *trading.LedgerWriteError

	switch {
	case errors.Is(err, trading.ErrInvalidQuantity), errors.Is(err, trading.ErrInvalidPrice):
		h.handleError(c, err, http.StatusBadRequest, err.Error())
	case errors.As(err, &fundsErr), errors.As(err, &sharesErr):
		h.handleError(c, err, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, auth.ErrIdentityMissing):
		h.handleError(c, err, http.StatusUnauthorized, "Not authenticated")
	case errors.As(err, &ledgerErr):
		h.handleError(c, err, http.StatusBadGateway, "Order failed, funds unchanged")
	default:
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
	}
}

type quoteView struct {
	Symbol        string   `json:"symbol"`
	CurrentPrice  float64  `json:"current_price"`
	PreviousPrice *float64 `json:"previous_price,omitempty"`
	PriceChange   *float64 `json:"price_change,omitempty"`
	PercentChange *float64 `json:"percent_change,omitempty"`
	UpdatedAt     string   `json:"updated_at"`
}

func newQuoteView(q models.Quote) quoteView {
	return quoteView{
		Symbol:        q.Symbol,
		CurrentPrice:  q.CurrentPrice,
		PreviousPrice: q.PreviousPrice,
		PriceChange:   q.PriceChange(),
		PercentChange: q.PercentChange(),
		UpdatedAt:     q.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
