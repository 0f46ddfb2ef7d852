// Package ledger tracks in-flight transfers between the dealer wallet and the
// hedging exchange.
//
// The backing store is the single source of truth. Every operation reloads
// the full snapshot, applies its change in memory and writes the complete
// snapshot back; nothing is cached between calls. Operations are serialised
// within a process by a mutex. Processes sharing one store must also be
// given a Locker (see WithLocker); without one, two processes inserting the
// same address concurrently can both succeed and the later write wins.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/thanhnp/dealer-hedge/internal/metrics"
	"github.com/thanhnp/dealer-hedge/internal/models"
	"github.com/thanhnp/dealer-hedge/internal/storage"
	"github.com/thanhnp/dealer-hedge/pkg/units"
)

// completionStep is the minimum distance between a completion timestamp
// and both the wall clock and the previous update.
const completionStep = time.Second

// Store reads and writes the whole ledger snapshot. Read returns
// storage.ErrNotFound before the first write. Write must either replace the
// snapshot completely or leave it untouched.
type Store interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// Locker provides mutual exclusion across processes sharing a Store. Lock
// blocks until the lock is held or ctx is done and returns the release func.
type Locker interface {
	Lock(ctx context.Context) (func() error, error)
}

// Option configures a Ledger
type Option func(*Ledger)

// WithLocker guards every reload-mutate-persist cycle with locker
func WithLocker(locker Locker) Option {
	return func(l *Ledger) { l.locker = locker }
}

// WithClock overrides the clock used for timestamps
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics sets the collectors observed by each operation
func WithMetrics(m *metrics.LedgerMetrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// Ledger is the authority on outstanding wallet/exchange transfers
type Ledger struct {
	mu      sync.Mutex
	store   Store
	locker  Locker
	clock   func() time.Time
	logger  *slog.Logger
	metrics *metrics.LedgerMetrics
}

// New returns a ledger persisted in store
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		clock:  time.Now,
		logger: slog.Default().With(slog.String("component", "ledger")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Insert records a new pending transfer. It fails with ErrAlreadyExists when
// a pending transfer is already recorded for the address. A completed entry
// for the same address is replaced.
func (l *Ledger) Insert(ctx context.Context, transfer models.InFlightTransfer) (models.InFlightTransfer, error) {
	transfer.Address = strings.TrimSpace(transfer.Address)
	if err := validate(transfer); err != nil {
		return models.InFlightTransfer{}, err
	}

	var stored models.InFlightTransfer
	err := l.run(ctx, "insert", func(entries transfers) (bool, error) {
		if existing, ok := entries[transfer.Address]; ok && existing.IsPending() {
			return false, fmt.Errorf("%w: %s", ErrAlreadyExists, transfer.Address)
		}
		now := l.now()
		transfer.Status = models.StatusPending
		transfer.CreatedTimestamp = now
		transfer.UpdatedTimestamp = now
		entries[transfer.Address] = transfer
		stored = transfer
		return true, nil
	})
	if err != nil {
		return models.InFlightTransfer{}, err
	}
	l.logger.Info("transfer inserted",
		slog.String("address", stored.Address),
		slog.String("direction", string(stored.Direction)),
		slog.Int64("sats", int64(stored.TransferSizeInSats)))
	return stored, nil
}

// Complete marks the pending transfer for address as completed
func (l *Ledger) Complete(ctx context.Context, address string) (models.InFlightTransfer, error) {
	address = strings.TrimSpace(address)
	var stored models.InFlightTransfer
	err := l.run(ctx, "complete", func(entries transfers) (bool, error) {
		existing, ok := entries[address]
		if !ok {
			return false, fmt.Errorf("%w: %s", ErrDoesNotExist, address)
		}
		if !existing.IsPending() {
			return false, fmt.Errorf("%w: %s", ErrAlreadyCompleted, address)
		}
		updated := l.now().Add(completionStep)
		if !updated.After(existing.UpdatedTimestamp) {
			updated = existing.UpdatedTimestamp.Add(completionStep)
		}
		existing.Status = models.StatusCompleted
		existing.UpdatedTimestamp = updated
		entries[address] = existing
		stored = existing
		return true, nil
	})
	if err != nil {
		return models.InFlightTransfer{}, err
	}
	l.logger.Info("transfer completed", slog.String("address", address))
	return stored, nil
}

// Get returns the entry for address
func (l *Ledger) Get(ctx context.Context, address string) (models.InFlightTransfer, error) {
	address = strings.TrimSpace(address)
	var found models.InFlightTransfer
	err := l.run(ctx, "get", func(entries transfers) (bool, error) {
		t, ok := entries[address]
		if !ok {
			return false, fmt.Errorf("%w: %s", ErrDoesNotExist, address)
		}
		found = t
		return false, nil
	})
	return found, err
}

// ListPending returns the pending transfers, restricted to direction unless
// it is empty. Results are ordered by creation time, then address.
func (l *Ledger) ListPending(ctx context.Context, direction models.Direction) ([]models.InFlightTransfer, error) {
	if direction != "" && !direction.Valid() {
		return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidTransfer, direction)
	}
	return l.list(ctx, "list_pending", func(t models.InFlightTransfer) bool {
		return t.IsPending() && (direction == "" || t.Direction == direction)
	})
}

// ListAll returns every entry regardless of status
func (l *Ledger) ListAll(ctx context.Context) ([]models.InFlightTransfer, error) {
	return l.list(ctx, "list_all", func(models.InFlightTransfer) bool { return true })
}

// PendingTotals sums the pending transfer sizes per direction. Both
// directions are always present in the result.
func (l *Ledger) PendingTotals(ctx context.Context) (map[models.Direction]units.Satoshis, error) {
	pending, err := l.ListPending(ctx, "")
	if err != nil {
		return nil, err
	}
	return pendingTotals(pending), nil
}

// Clear empties the ledger. The current snapshot is not read first.
func (l *Ledger) Clear(ctx context.Context) error {
	start := time.Now()
	err := l.locked(ctx, func() error {
		return l.persist(ctx, transfers{})
	})
	l.metrics.ObserveOperation("clear", err, time.Since(start))
	if err != nil {
		return err
	}
	l.logger.Warn("ledger cleared")
	return nil
}

func (l *Ledger) list(ctx context.Context, op string, keep func(models.InFlightTransfer) bool) ([]models.InFlightTransfer, error) {
	out := []models.InFlightTransfer{}
	err := l.run(ctx, op, func(entries transfers) (bool, error) {
		for _, t := range entries {
			if keep(t) {
				out = append(out, t)
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedTimestamp.Equal(out[j].CreatedTimestamp) {
			return out[i].CreatedTimestamp.Before(out[j].CreatedTimestamp)
		}
		return out[i].Address < out[j].Address
	})
	return out, nil
}

// run reloads the snapshot, hands it to fn and persists it when fn reports
// a change. Nothing is written when fn fails.
func (l *Ledger) run(ctx context.Context, op string, fn func(transfers) (bool, error)) error {
	start := time.Now()
	err := l.locked(ctx, func() error {
		entries, err := l.load(ctx)
		if err != nil {
			return err
		}
		changed, err := fn(entries)
		if err != nil || !changed {
			return err
		}
		return l.persist(ctx, entries)
	})
	l.metrics.ObserveOperation(op, err, time.Since(start))
	return err
}

func (l *Ledger) locked(ctx context.Context, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locker != nil {
		unlock, err := l.locker.Lock(ctx)
		if err != nil {
			return persistenceError("lock", err)
		}
		defer func() {
			if err := unlock(); err != nil {
				l.logger.Error("failed to release ledger lock", slog.Any("error", err))
			}
		}()
	}
	return fn()
}

func (l *Ledger) load(ctx context.Context) (transfers, error) {
	data, err := l.store.Read(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		l.logger.Info("initializing empty ledger snapshot")
		empty := transfers{}
		if err := l.persist(ctx, empty); err != nil {
			return nil, err
		}
		return empty, nil
	}
	if err != nil {
		l.logger.Error("failed to read ledger snapshot", slog.Any("error", err))
		return nil, persistenceError("read", err)
	}
	entries, err := decodeSnapshot(data)
	if err != nil {
		l.logger.Error("failed to decode ledger snapshot", slog.Any("error", err))
		return nil, persistenceError("decode", err)
	}
	return entries, nil
}

func (l *Ledger) persist(ctx context.Context, entries transfers) error {
	data, err := encodeSnapshot(entries)
	if err != nil {
		return persistenceError("encode", err)
	}
	if err := l.store.Write(ctx, data); err != nil {
		l.logger.Error("failed to write ledger snapshot", slog.Any("error", err))
		return persistenceError("write", err)
	}
	if l.metrics != nil {
		pending := make([]models.InFlightTransfer, 0, len(entries))
		for _, t := range entries {
			if t.IsPending() {
				pending = append(pending, t)
			}
		}
		for direction, sats := range pendingTotals(pending) {
			l.metrics.SetPending(string(direction), int64(sats))
		}
	}
	return nil
}

func (l *Ledger) now() time.Time {
	return l.clock().UTC()
}

func validate(t models.InFlightTransfer) error {
	switch {
	case t.Address == "":
		return fmt.Errorf("%w: address is required", ErrInvalidTransfer)
	case !t.Direction.Valid():
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidTransfer, t.Direction)
	case t.TransferSizeInSats <= 0:
		return fmt.Errorf("%w: transfer size must be positive, got %d", ErrInvalidTransfer, t.TransferSizeInSats)
	}
	return nil
}

func pendingTotals(pending []models.InFlightTransfer) map[models.Direction]units.Satoshis {
	totals := map[models.Direction]units.Satoshis{
		models.WithdrawToWallet:  0,
		models.DepositOnExchange: 0,
	}
	for _, t := range pending {
		totals[t.Direction] += t.TransferSizeInSats
	}
	return totals
}
