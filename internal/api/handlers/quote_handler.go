package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/dealer-hedge/internal/metrics"
	"github.com/thanhnp/dealer-hedge/internal/models"
	"github.com/thanhnp/dealer-hedge/internal/quote"
	"github.com/thanhnp/dealer-hedge/pkg/units"
)

// QuoteHandler prices conversions against the latest ticker
type QuoteHandler struct {
	ticker  *quote.Ticker
	metrics *metrics.QuoteMetrics
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(ticker *quote.Ticker, m *metrics.QuoteMetrics) *QuoteHandler {
	return &QuoteHandler{ticker: ticker, metrics: m}
}

type midResponse struct {
	CentsPerSat units.CentsPerSatsRatio `json:"centsPerSat"`
}

// Buy quotes the dealer buying BTC
// POST /api/v1/quotes/buy
func (h *QuoteHandler) Buy(c *gin.Context) {
	h.serve(c, quote.SideBuy)
}

// Sell quotes the dealer selling BTC
// POST /api/v1/quotes/sell
func (h *QuoteHandler) Sell(c *gin.Context) {
	h.serve(c, quote.SideSell)
}

func (h *QuoteHandler) serve(c *gin.Context, side quote.Side) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.ObserveQuote(string(side), "", err)
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	settlement := string(quote.SettlementOf(req))

	q, err := h.ticker.Quoter()
	if err != nil {
		h.metrics.ObserveQuote(string(side), settlement, err)
		respondError(c, err)
		return
	}

	var resp models.QuoteResponse
	if side == quote.SideBuy {
		resp, err = q.QuoteBuy(req)
	} else {
		resp, err = q.QuoteSell(req)
	}
	h.metrics.ObserveQuote(string(side), settlement, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Mid returns the display mid rate
// GET /api/v1/quotes/mid
func (h *QuoteHandler) Mid(c *gin.Context) {
	q, err := h.ticker.Quoter()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, midResponse{CentsPerSat: q.MidRate()})
}
