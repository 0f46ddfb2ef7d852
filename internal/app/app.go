// Package app wires configuration into the ledger, ticker and event
// publisher shared by the server and the admin CLI.
package app

import (
	"fmt"
	"log/slog"

	"github.com/thanhnp/dealer-hedge/internal/config"
	"github.com/thanhnp/dealer-hedge/internal/events"
	"github.com/thanhnp/dealer-hedge/internal/events/kafka"
	"github.com/thanhnp/dealer-hedge/internal/ledger"
	"github.com/thanhnp/dealer-hedge/internal/metrics"
	"github.com/thanhnp/dealer-hedge/internal/quote"
	"github.com/thanhnp/dealer-hedge/internal/storage"
)

// OpenLedger opens the configured store and returns a ledger on top of it
// together with the store's close func.
func OpenLedger(cfg config.StorageConfig, logger *slog.Logger) (*ledger.Ledger, func() error, error) {
	backend, err := storage.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(backend, cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", backend, err)
	}

	opts := []ledger.Option{
		ledger.WithLogger(logger.With(slog.String("component", "ledger"))),
		ledger.WithMetrics(metrics.Ledger()),
	}
	if cfg.Lock {
		if locker, ok := store.(ledger.Locker); ok {
			opts = append(opts, ledger.WithLocker(locker))
		} else {
			logger.Warn("storage backend has no cross-process lock; run a single instance per store",
				slog.String("backend", string(backend)))
		}
	}

	logger.Info("ledger store opened",
		slog.String("backend", string(backend)),
		slog.String("path", cfg.Path))
	return ledger.New(store, opts...), store.Close, nil
}

// NewTicker builds the price ticker from the pricing section
func NewTicker(cfg config.PricingConfig) (*quote.Ticker, error) {
	fees, err := cfg.Fees()
	if err != nil {
		return nil, err
	}
	return quote.NewTicker(fees, cfg.MaxTickerAge.Duration)
}

// NewNotifier returns the event fan-out, publishing to Kafka when enabled
func NewNotifier(cfg config.EventsConfig, logger *slog.Logger) *events.Notifier {
	if !cfg.Enabled {
		return events.NewNotifier()
	}
	logger.Info("publishing ledger events",
		slog.Any("brokers", cfg.Brokers),
		slog.String("topic", cfg.Topic))
	return events.NewNotifier(kafka.NewPublisher(cfg.Brokers, cfg.Topic))
}
