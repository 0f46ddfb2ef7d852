package quote

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrTickerUnavailable is returned before the first price update.
	ErrTickerUnavailable = errors.New("ticker unavailable")
	// ErrTickerStale is returned when the latest update is older than the max age.
	ErrTickerStale = errors.New("ticker stale")
)

// Ticker holds the most recent bid/ask observation pushed by the hedging
// orchestrator and hands out quoters built from it.
type Ticker struct {
	mu      sync.RWMutex
	fees    Fees
	maxAge  time.Duration
	prices  Prices
	updated time.Time
	quoter  *Quoter
	clock   func() time.Time
}

// NewTicker validates the fee schedule and returns an empty ticker. A zero
// maxAge disables the staleness check.
func NewTicker(fees Fees, maxAge time.Duration) (*Ticker, error) {
	if err := fees.Validate(); err != nil {
		return nil, err
	}
	return &Ticker{fees: fees, maxAge: maxAge, clock: time.Now}, nil
}

// WithClock overrides the ticker clock for deterministic tests.
func (t *Ticker) WithClock(clock func() time.Time) {
	if clock == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clock = clock
}

// Update replaces the current prices.
func (t *Ticker) Update(prices Prices) error {
	q, err := New(prices, t.fees)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prices = prices
	t.updated = t.clock()
	t.quoter = q
	return nil
}

// Latest returns the current prices, when they were set, and whether any
// update has happened yet.
func (t *Ticker) Latest() (Prices, time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.prices, t.updated, t.quoter != nil
}

// Fees returns the configured fee schedule.
func (t *Ticker) Fees() Fees {
	return t.fees
}

// Quoter returns a quoter for the latest prices.
func (t *Ticker) Quoter() (*Quoter, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.quoter == nil {
		return nil, ErrTickerUnavailable
	}
	if t.maxAge > 0 {
		if age := t.clock().Sub(t.updated); age > t.maxAge {
			return nil, fmt.Errorf("%w: last update %s ago", ErrTickerStale, age.Truncate(time.Second))
		}
	}
	return t.quoter, nil
}
