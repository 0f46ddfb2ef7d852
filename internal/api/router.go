package api

import (
	"log/slog"
	"net/http"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/gin-gonic/gin"

	"github.com/thanhnp/dealer-hedge/internal/api/handlers"
	"github.com/thanhnp/dealer-hedge/internal/api/middleware"
	"github.com/thanhnp/dealer-hedge/internal/events"
	"github.com/thanhnp/dealer-hedge/internal/metrics"
	"github.com/thanhnp/dealer-hedge/internal/quote"
)

// Options carries the collaborators of the HTTP API
type Options struct {
	Ledger    handlers.TransferLedger
	Ticker    *quote.Ticker
	Publisher events.Publisher
	// Params enables transfer address validation when set
	Params     *chaincfg.Params
	AdminToken string
	Logger     *slog.Logger
}

// Router wraps the Gin router with handlers
type Router struct {
	engine          *gin.Engine
	adminToken      string
	logger          *slog.Logger
	tickerHandler   *handlers.TickerHandler
	quoteHandler    *handlers.QuoteHandler
	transferHandler *handlers.TransferHandler
}

// NewRouter creates a new Router with all handlers
func NewRouter(opts Options) *Router {
	gin.SetMode(gin.ReleaseMode)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "api"))

	r := &Router{
		engine:          gin.New(),
		adminToken:      opts.AdminToken,
		logger:          logger,
		tickerHandler:   handlers.NewTickerHandler(opts.Ticker),
		quoteHandler:    handlers.NewQuoteHandler(opts.Ticker, metrics.Quotes()),
		transferHandler: handlers.NewTransferHandler(opts.Ledger, opts.Publisher, opts.Params, logger),
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// setupMiddleware configures middleware
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Metrics(metrics.HTTP()))
	r.engine.Use(middleware.CORS())
}

// setupRoutes configures API routes
func (r *Router) setupRoutes() {
	// Health check
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	admin := middleware.AdminAuth(r.adminToken)

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/ticker", r.tickerHandler.Get)
		v1.PUT("/ticker", admin, r.tickerHandler.Put)

		quotes := v1.Group("/quotes")
		{
			quotes.POST("/buy", r.quoteHandler.Buy)
			quotes.POST("/sell", r.quoteHandler.Sell)
			quotes.GET("/mid", r.quoteHandler.Mid)
		}

		transfers := v1.Group("/transfers")
		{
			transfers.GET("", r.transferHandler.List)
			transfers.POST("", admin, r.transferHandler.Insert)
			transfers.DELETE("", admin, r.transferHandler.Clear)
			transfers.GET("/:address", r.transferHandler.Get)
			transfers.POST("/:address/complete", admin, r.transferHandler.Complete)
		}

		v1.GET("/exposure", r.transferHandler.Exposure)
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
