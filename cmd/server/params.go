package main

import (
	"log/slog"
	"os"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/thanhnp/dealer-hedge/internal/config"
)

// addressParams returns the network transfer addresses are checked against,
// or nil when validation is disabled
func addressParams(cfg *config.Config, logger *slog.Logger) *chaincfg.Params {
	if !cfg.Bitcoin.ValidateAddresses {
		return nil
	}
	params, err := cfg.Bitcoin.Params()
	if err != nil {
		logger.Error("invalid bitcoin network", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("validating transfer addresses", slog.String("network", params.Name))
	return params
}
