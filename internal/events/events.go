// Package events announces transfer ledger changes to interested parties.
// Publishing happens after the ledger write succeeded; the ledger stays the
// source of truth and subscribers must tolerate missed events.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thanhnp/dealer-hedge/internal/models"
)

// Event types
const (
	TypeTransferInserted  = "transfer.inserted"
	TypeTransferCompleted = "transfer.completed"
	TypeLedgerCleared     = "ledger.cleared"
)

// Event is a single ledger change
type Event struct {
	ID         string                   `json:"id"`
	Type       string                   `json:"type"`
	OccurredAt time.Time                `json:"occurredAt"`
	Transfer   *models.InFlightTransfer `json:"transfer,omitempty"`
}

// Key is used for partitioning so events of one address stay ordered
func (e Event) Key() string {
	if e.Transfer != nil {
		return e.Transfer.Address
	}
	return e.Type
}

// NewTransferEvent builds an event for a transfer change
func NewTransferEvent(eventType string, transfer models.InFlightTransfer, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: at.UTC(),
		Transfer:   &transfer,
	}
}

// NewClearedEvent builds the event emitted after the ledger is cleared
func NewClearedEvent(at time.Time) Event {
	return Event{ID: uuid.NewString(), Type: TypeLedgerCleared, OccurredAt: at.UTC()}
}

// Publisher delivers events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Handler is called for every published event
type Handler func(ctx context.Context, event Event) error

// Notifier fans events out to registered handlers and publishers
type Notifier struct {
	mu         sync.RWMutex
	handlers   []Handler
	publishers []Publisher
}

// NewNotifier returns a notifier delivering to publishers
func NewNotifier(publishers ...Publisher) *Notifier {
	n := &Notifier{}
	for _, p := range publishers {
		if p != nil {
			n.publishers = append(n.publishers, p)
		}
	}
	return n
}

// OnEvent registers a handler for every event
func (n *Notifier) OnEvent(handler Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, handler)
}

// Publish delivers event to every handler and publisher. All targets are
// attempted; their errors are joined.
func (n *Notifier) Publish(ctx context.Context, event Event) error {
	n.mu.RLock()
	handlers := append([]Handler(nil), n.handlers...)
	publishers := append([]Publisher(nil), n.publishers...)
	n.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher
func (n *Notifier) Close() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var errs []error
	for _, p := range n.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Publisher = (*Notifier)(nil)
