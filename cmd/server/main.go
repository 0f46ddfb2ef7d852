package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thanhnp/dealer-hedge/internal/api"
	"github.com/thanhnp/dealer-hedge/internal/app"
	"github.com/thanhnp/dealer-hedge/internal/config"
	"github.com/thanhnp/dealer-hedge/internal/logging"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.Setup(logging.Options{
		Service:    "dealer-hedge",
		Env:        cfg.Logging.Env,
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	logger.Info("starting dealer hedge server")

	// Open the transfer ledger
	transfers, closeStore, err := app.OpenLedger(cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to open ledger", slog.Any("error", err))
		os.Exit(1)
	}

	ticker, err := app.NewTicker(cfg.Pricing)
	if err != nil {
		logger.Error("invalid pricing configuration", slog.Any("error", err))
		os.Exit(1)
	}

	notifier := app.NewNotifier(cfg.Events, logger)

	router := api.NewRouter(api.Options{
		Ledger:     transfers,
		Ticker:     ticker,
		Publisher:  notifier,
		Params:     addressParams(cfg, logger),
		AdminToken: cfg.Server.AdminToken,
		Logger:     logger,
	})
	if cfg.Server.AdminToken == "" {
		logger.Warn("admin token not configured; mutating routes are unauthenticated")
	}

	// Create HTTP server
	addr := cfg.Server.Addr()
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Engine(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", slog.Any("error", err))
	}

	if err := notifier.Close(); err != nil {
		logger.Error("error closing event publisher", slog.Any("error", err))
	}
	if err := closeStore(); err != nil {
		logger.Error("error closing ledger store", slog.Any("error", err))
	}

	logger.Info("server stopped")
}
