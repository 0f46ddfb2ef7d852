package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thanhnp/dealer-hedge/internal/app"
	"github.com/thanhnp/dealer-hedge/internal/config"
	"github.com/thanhnp/dealer-hedge/internal/ledger"
	"github.com/thanhnp/dealer-hedge/internal/logging"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "hedgectl",
		Short:         "Administer the dealer transfer ledger and price quotes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "Path to configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log ledger activity to stderr")

	root.AddCommand(newTransfersCmd(opts), newQuoteCmd(opts))
	return root
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath)
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return logging.Component(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), "hedgectl")
}

// withLedger opens the configured ledger for the duration of fn
func (o *rootOptions) withLedger(cmd *cobra.Command, fn func(*config.Config, *ledger.Ledger) error) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}
	l, closeStore, err := app.OpenLedger(cfg.Storage, o.logger(cmd))
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(cfg, l)
}
