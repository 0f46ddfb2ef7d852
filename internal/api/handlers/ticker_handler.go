package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/thanhnp/dealer-hedge/internal/quote"
)

// TickerHandler accepts price updates from the hedging orchestrator
type TickerHandler struct {
	ticker *quote.Ticker
}

// NewTickerHandler creates a new TickerHandler
func NewTickerHandler(ticker *quote.Ticker) *TickerHandler {
	return &TickerHandler{ticker: ticker}
}

type tickerRequest struct {
	Bid *decimal.Decimal `json:"bid"`
	Ask *decimal.Decimal `json:"ask"`
}

type tickerResponse struct {
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Put replaces the current bid/ask
// PUT /api/v1/ticker
func (h *TickerHandler) Put(c *gin.Context) {
	var req tickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.Bid == nil || req.Ask == nil {
		badRequest(c, "bid and ask are required")
		return
	}

	if err := h.ticker.Update(quote.Prices{Bid: *req.Bid, Ask: *req.Ask}); err != nil {
		respondError(c, err)
		return
	}
	h.Get(c)
}

// Get returns the current bid/ask
// GET /api/v1/ticker
func (h *TickerHandler) Get(c *gin.Context) {
	prices, updated, ok := h.ticker.Latest()
	if !ok {
		respondError(c, quote.ErrTickerUnavailable)
		return
	}
	c.JSON(http.StatusOK, tickerResponse{Bid: prices.Bid, Ask: prices.Ask, UpdatedAt: updated.UTC()})
}
