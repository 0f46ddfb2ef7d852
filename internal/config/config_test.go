package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "file", cfg.Storage.Backend)
	require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout.Duration)

	fees, err := cfg.Pricing.Fees()
	require.NoError(t, err)
	require.Equal(t, "0.0005", fees.BaseFee.String())
	require.Equal(t, "0.001", fees.DelayedSpread.String())
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  admin_token: secret
  shutdown_timeout: 5s
storage:
  backend: sqlite
  path: /tmp/ledger.db
pricing:
  base_fee: "0.001"
  immediate_spread: "0.002"
  delayed_spread: "0.004"
  max_ticker_age: 15s
bitcoin:
  network: regtest
events:
  enabled: true
  brokers: ["kafka:9092"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "secret", cfg.Server.AdminToken)
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout.Duration)
	require.Equal(t, "sqlite", cfg.Storage.Backend)
	require.Equal(t, 15*time.Second, cfg.Pricing.MaxTickerAge.Duration)
	require.Equal(t, []string{"kafka:9092"}, cfg.Events.Brokers)
	require.Equal(t, "dealer.transfers", cfg.Events.Topic)

	params, err := cfg.Bitcoin.Params()
	require.NoError(t, err)
	require.Equal(t, chaincfg.RegressionNetParams.Name, params.Name)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("ADMIN_TOKEN", "env-token")
	t.Setenv("STORAGE_BACKEND", "pebble")
	t.Setenv("STORAGE_PATH", "/var/lib/dealer")
	t.Setenv("PRICING_DELAYED_SPREAD", "0.002")
	t.Setenv("BITCOIN_NETWORK", "testnet3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_ENV", "staging")
	t.Setenv("EVENTS_ENABLED", "1")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("KAFKA_TOPIC", "hedge")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	require.Equal(t, 7000, cfg.Server.Port)
	require.Equal(t, "env-token", cfg.Server.AdminToken)
	require.Equal(t, "pebble", cfg.Storage.Backend)
	require.Equal(t, "/var/lib/dealer", cfg.Storage.Path)
	require.Equal(t, "0.002", cfg.Pricing.DelayedSpread)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "staging", cfg.Logging.Env)
	require.True(t, cfg.Events.Enabled)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.Events.Brokers)
	require.Equal(t, "hedge", cfg.Events.Topic)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown backend":       func(c *Config) { c.Storage.Backend = "redis" },
		"missing path":          func(c *Config) { c.Storage.Path = "" },
		"bad fee":               func(c *Config) { c.Pricing.BaseFee = "abc" },
		"negative fee":          func(c *Config) { c.Pricing.BaseFee = "-0.1" },
		"delayed below":         func(c *Config) { c.Pricing.DelayedSpread = "0.0001" },
		"zero immediate margin": func(c *Config) { c.Pricing.BaseFee = "0"; c.Pricing.ImmediateSpread = "0" },
		"unknown network":       func(c *Config) { c.Bitcoin.Network = "dogenet" },
		"port":                  func(c *Config) { c.Server.Port = 0 },
		"events without broker": func(c *Config) { c.Events.Enabled = true },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestMemoryBackendNeedsNoPath(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "memory"
	cfg.Storage.Path = ""
	require.NoError(t, cfg.Validate())
}

func TestDurationRejectsGarbage(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  shutdown_timeout: soon\n"))
	require.Error(t, err)
}
