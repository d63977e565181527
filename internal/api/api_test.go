package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"tradelab/internal/aggregator"
	"tradelab/internal/auth"
	"tradelab/internal/config"
	"tradelab/internal/feed"
	"tradelab/internal/portfolio"
	"tradelab/internal/pricestore"
	"tradelab/internal/storage"
	"tradelab/internal/trading"
	"tradelab/internal/util"
	"tradelab/pkg/models"
)

func newTestHandler(t *testing.T) (*Handler, *pricestore.Store) {
	t.Helper()
	logger := util.NewLogger()

	repo := storage.NewMemory()
	repo.PutUser(models.User{ID: "u1", Email: "u1@test", Wallet: decimal.NewFromInt(10000), Active: true})

	session, err := auth.Login(context.Background(), repo, "u1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	store := pricestore.NewStore()
	candles := aggregator.New(time.Minute)
	tracker := portfolio.NewTracker(session, repo, store, logger)
	engine := trading.NewEngine(repo, logger, tracker.HoldingsChanged)

	tradeCh := make(chan models.Trade, 1)
	feedSession := feed.NewSession(&config.Config{}, tradeCh, logger)

	return NewHandler(store, candles, tracker, engine, repo, session, feedSession, logger), store
}

func doRequest(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandler(t)
	w := doRequest(t, h, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["feed"] != "disconnected" {
		t.Errorf("expected disconnected feed state, got %v", resp["feed"])
	}
	if w.Header().Get(RequestIDHeaderKey) == "" {
		t.Error("expected a request id header")
	}
}

func TestGetPrices(t *testing.T) {
	h, store := newTestHandler(t)
	store.Apply(models.Trade{Symbol: "AAPL", Price: 190, Volume: 1, Timestamp: time.Now()})
	store.Apply(models.Trade{Symbol: "AAPL", Price: 191, Volume: 1, Timestamp: time.Now()})

	w := doRequest(t, h, http.MethodGet, "/api/v1/prices", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var views []quoteView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 1 || views[0].Symbol != "AAPL" || views[0].CurrentPrice != 191 {
		t.Errorf("unexpected prices payload: %+v", views)
	}
	if views[0].PreviousPrice == nil || *views[0].PreviousPrice != 190 {
		t.Errorf("expected previous price 190, got %v", views[0].PreviousPrice)
	}
}

func TestPlaceOrder(t *testing.T) {
	h, store := newTestHandler(t)
	store.Apply(models.Trade{Symbol: "AAPL", Price: 150, Volume: 1, Timestamp: time.Now()})

	// Explicit price.
	w := doRequest(t, h, http.MethodPost, "/api/v1/orders", `{"side":"buy","symbol":"AAPL","quantity":10,"price":150}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Market price from the live quote.
	w = doRequest(t, h, http.MethodPost, "/api/v1/orders", `{"side":"sell","symbol":"AAPL","quantity":5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for market order, got %d: %s", w.Code, w.Body.String())
	}

	var tx models.Transaction
	if err := json.Unmarshal(w.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tx.Type != models.TransactionSell || tx.Quantity != 5 {
		t.Errorf("unexpected transaction: %+v", tx)
	}
}

func TestPlaceOrder_Rejections(t *testing.T) {
	h, store := newTestHandler(t)

	// No live quote and no explicit price.
	w := doRequest(t, h, http.MethodPost, "/api/v1/orders", `{"side":"buy","symbol":"MSFT","quantity":1}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 without a quote, got %d", w.Code)
	}

	// Bad payload shape.
	w = doRequest(t, h, http.MethodPost, "/api/v1/orders", `{"side":"short","symbol":"AAPL","quantity":1,"price":1}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad side, got %d", w.Code)
	}

	// Oversell.
	store.Apply(models.Trade{Symbol: "AAPL", Price: 150, Volume: 1, Timestamp: time.Now()})
	w = doRequest(t, h, http.MethodPost, "/api/v1/orders", `{"side":"sell","symbol":"AAPL","quantity":3}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for oversell, got %d", w.Code)
	}

	// Insufficient funds.
	w = doRequest(t, h, http.MethodPost, "/api/v1/orders", `{"side":"buy","symbol":"AAPL","quantity":1000,"price":150}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for insufficient funds, got %d", w.Code)
	}
}

func TestGetCandles_EmptyListNotNull(t *testing.T) {
	h, _ := newTestHandler(t)

	w := doRequest(t, h, http.MethodGet, "/api/v1/candles/AAPL", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"candles":[]`) {
		t.Errorf("symbol without candles must list an empty array, got %s", w.Body.String())
	}
}

func TestGetCandlesValidatesSymbol(t *testing.T) {
	h, _ := newTestHandler(t)

	if w := doRequest(t, h, http.MethodGet, "/api/v1/candles/aapl", ""); w.Code != http.StatusOK {
		t.Errorf("expected 200 for a lowercased symbol, got %d", w.Code)
	}
	if w := doRequest(t, h, http.MethodGet, "/api/v1/candles/bad%20symbol", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an invalid symbol, got %d", w.Code)
	}
}

func TestGetTransactions(t *testing.T) {
	h, store := newTestHandler(t)
	store.Apply(models.Trade{Symbol: "AAPL", Price: 150, Volume: 1, Timestamp: time.Now()})

	if w := doRequest(t, h, http.MethodPost, "/api/v1/orders", `{"side":"buy","symbol":"AAPL","quantity":2}`); w.Code != http.StatusCreated {
		t.Fatalf("buy failed: %d", w.Code)
	}

	w := doRequest(t, h, http.MethodGet, "/api/v1/transactions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var txs []models.Transaction
	if err := json.Unmarshal(w.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(txs) != 1 || txs[0].Symbol != "AAPL" {
		t.Errorf("unexpected ledger payload: %+v", txs)
	}
}
