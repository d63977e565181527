package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"tradelab/internal/aggregator"
	"tradelab/internal/auth"
	"tradelab/internal/feed"
	"tradelab/internal/portfolio"
	"tradelab/internal/pricestore"
	"tradelab/internal/storage"
	"tradelab/internal/trading"
	"tradelab/internal/util"
)

const (
	ServiceName         = "tradelab"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// Handler exposes the core pipeline over HTTP: live quotes, sealed
// candles, the valued portfolio, the ledger, and order placement. It is
// presentation glue only; every computation happens in the core services.
type Handler struct {
	prices    *pricestore.Store
	candles   *aggregator.Aggregator
	tracker   *portfolio.Tracker
	engine    *trading.Engine
	repo      storage.Repository
	session   *auth.Session
	feed      *feed.Session
	logger    *util.Logger
	validator *Validator
}

func NewHandler(
	prices *pricestore.Store,
	candles *aggregator.Aggregator,
	tracker *portfolio.Tracker,
	engine *trading.Engine,
	repo storage.Repository,
	session *auth.Session,
	feedSession *feed.Session,
	logger *util.Logger,
) *Handler {
	return &Handler{
		prices:    prices,
		candles:   candles,
		tracker:   tracker,
		engine:    engine,
		repo:      repo,
		session:   session,
		feed:      feedSession,
		logger:    logger,
		validator: NewValidator(),
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware())

	router.GET("/healthz", h.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/prices", h.GetPrices)
		v1.GET("/candles/:symbol", h.GetCandles)
		v1.GET("/portfolio", h.GetPortfolio)
		v1.GET("/transactions", h.GetTransactions)
		v1.POST("/orders", h.PlaceOrder)
	}

	return router
}

// Serve runs the HTTP server on the given port, blocking until it stops.
func (h *Handler) Serve(port int) error {
	return h.Router().Run(fmt.Sprintf(":%d", port))
}

// handleError logs the error and sends the HTTP response.
func (h *Handler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID := c.GetString(RequestIDContextKey)

	h.logger.Debug("API error",
		"request_id", requestID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err.Error(),
		"status_code", statusCode,
	)

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestID,
	})
}

func (h *Handler) handleValidationError(c *gin.Context, err error) {
	h.handleError(c, err, http.StatusBadRequest, err.Error())
}
