package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned when a pending transfer already exists
	// for the address being inserted.
	ErrAlreadyExists = errors.New("pending transfer already exists")
	// ErrDoesNotExist is returned for addresses with no ledger entry.
	ErrDoesNotExist = errors.New("transfer does not exist")
	// ErrAlreadyCompleted is returned when completing a completed transfer.
	ErrAlreadyCompleted = errors.New("transfer already completed")
	// ErrInvalidTransfer is returned for malformed transfers and filters.
	ErrInvalidTransfer = errors.New("invalid transfer")
	// ErrPersistence wraps every failure of the backing store. The durable
	// snapshot is unchanged when an operation returns it.
	ErrPersistence = errors.New("ledger persistence failure")
)

func persistenceError(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, stage, err)
}
