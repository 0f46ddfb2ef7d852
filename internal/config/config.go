package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/thanhnp/dealer-hedge/internal/quote"
	"github.com/thanhnp/dealer-hedge/internal/storage"
)

// Duration wraps time.Duration so YAML files can use "30s" style values
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses human readable duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be string")
	}
	raw := value.Value
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Pricing PricingConfig `yaml:"pricing"`
	Bitcoin BitcoinConfig `yaml:"bitcoin"`
	Logging LoggingConfig `yaml:"logging"`
	Events  EventsConfig  `yaml:"events"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Port            int      `yaml:"port"`
	Host            string   `yaml:"host"`
	AdminToken      string   `yaml:"admin_token"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects the ledger persistence backend
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	// Lock takes an advisory file lock around every ledger mutation. Only
	// the file backend supports it.
	Lock bool `yaml:"lock"`
}

// PricingConfig holds the fee schedule as decimal strings
type PricingConfig struct {
	BaseFee         string   `yaml:"base_fee"`
	ImmediateSpread string   `yaml:"immediate_spread"`
	DelayedSpread   string   `yaml:"delayed_spread"`
	MaxTickerAge    Duration `yaml:"max_ticker_age"`
}

// Fees parses the fee schedule
func (p PricingConfig) Fees() (quote.Fees, error) {
	base, err := decimal.NewFromString(strings.TrimSpace(p.BaseFee))
	if err != nil {
		return quote.Fees{}, fmt.Errorf("pricing.base_fee: %w", err)
	}
	immediate, err := decimal.NewFromString(strings.TrimSpace(p.ImmediateSpread))
	if err != nil {
		return quote.Fees{}, fmt.Errorf("pricing.immediate_spread: %w", err)
	}
	delayed, err := decimal.NewFromString(strings.TrimSpace(p.DelayedSpread))
	if err != nil {
		return quote.Fees{}, fmt.Errorf("pricing.delayed_spread: %w", err)
	}
	fees := quote.Fees{BaseFee: base, ImmediateSpread: immediate, DelayedSpread: delayed}
	if err := fees.Validate(); err != nil {
		return quote.Fees{}, err
	}
	return fees, nil
}

// BitcoinConfig selects the network transfer addresses must belong to
type BitcoinConfig struct {
	Network           string `yaml:"network"`
	ValidateAddresses bool   `yaml:"validate_addresses"`
}

// Params returns the chain parameters for the configured network
func (b BitcoinConfig) Params() (*chaincfg.Params, error) {
	switch strings.ToLower(strings.TrimSpace(b.Network)) {
	case "", "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	}
	return nil, fmt.Errorf("unknown bitcoin network %q", b.Network)
}

// LoggingConfig controls log verbosity and optional file rotation
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Env        string `yaml:"env"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// EventsConfig configures transfer lifecycle event publishing
type EventsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ShutdownTimeout: Duration{30 * time.Second},
		},
		Storage: StorageConfig{
			Backend: string(storage.BackendFile),
			Path:    "./data/ledger.json",
			Lock:    true,
		},
		Pricing: PricingConfig{
			BaseFee:         "0.0005",
			ImmediateSpread: "0.0005",
			DelayedSpread:   "0.001",
			MaxTickerAge:    Duration{time.Minute},
		},
		Bitcoin: BitcoinConfig{
			Network:           "mainnet",
			ValidateAddresses: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Events: EventsConfig{
			Topic: "dealer.transfers",
		},
	}
}

// Load loads configuration from a YAML file, a .env file and environment
// variables, in increasing order of precedence
func Load(path string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if it exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// Override with environment variables
	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadEnv() {
	// Server config
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if token := os.Getenv("ADMIN_TOKEN"); token != "" {
		c.Server.AdminToken = token
	}

	// Storage config
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if path := os.Getenv("STORAGE_PATH"); path != "" {
		c.Storage.Path = path
	}

	// Pricing config
	if fee := os.Getenv("PRICING_BASE_FEE"); fee != "" {
		c.Pricing.BaseFee = fee
	}
	if spread := os.Getenv("PRICING_IMMEDIATE_SPREAD"); spread != "" {
		c.Pricing.ImmediateSpread = spread
	}
	if spread := os.Getenv("PRICING_DELAYED_SPREAD"); spread != "" {
		c.Pricing.DelayedSpread = spread
	}

	// Bitcoin config
	if network := os.Getenv("BITCOIN_NETWORK"); network != "" {
		c.Bitcoin.Network = network
	}

	// Logging config
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		c.Logging.Env = env
	}

	// Events config
	if enabled := os.Getenv("EVENTS_ENABLED"); enabled != "" {
		c.Events.Enabled = enabled == "true" || enabled == "1"
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Events.Brokers = splitList(brokers)
	}
	if topic := os.Getenv("KAFKA_TOPIC"); topic != "" {
		c.Events.Topic = topic
	}
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	backend, err := storage.ParseBackend(c.Storage.Backend)
	if err != nil {
		return fmt.Errorf("storage.backend: %w", err)
	}
	if backend != storage.BackendMemory && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage.path: %w", storage.ErrPathRequired)
	}
	if _, err := c.Pricing.Fees(); err != nil {
		return err
	}
	if c.Pricing.MaxTickerAge.Duration < 0 {
		return fmt.Errorf("pricing.max_ticker_age must not be negative")
	}
	if _, err := c.Bitcoin.Params(); err != nil {
		return fmt.Errorf("bitcoin.network: %w", err)
	}
	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("events.brokers must be set when events are enabled")
		}
		if strings.TrimSpace(c.Events.Topic) == "" {
			return fmt.Errorf("events.topic must be set when events are enabled")
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
