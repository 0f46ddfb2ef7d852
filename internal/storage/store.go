// Package storage provides the whole-snapshot persistence collaborators used
// by the transfer ledger. Every backend reads and writes one opaque byte
// snapshot and guarantees that a failed write leaves the previous snapshot
// intact.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Read when no snapshot has been written yet.
	ErrNotFound = errors.New("snapshot not found")
	// ErrUnknownBackend is returned by Open for unsupported backend names.
	ErrUnknownBackend = errors.New("unknown storage backend")
	// ErrPathRequired is returned when a persistent backend has no path.
	ErrPathRequired = errors.New("storage path must be configured")
)

// Backend names a storage implementation
type Backend string

const (
	BackendFile   Backend = "file"
	BackendPebble Backend = "pebble"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// ParseBackend normalises a backend name
func ParseBackend(name string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	switch b {
	case BackendFile, BackendPebble, BackendSQLite, BackendMemory:
		return b, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// SnapshotStore reads and writes a single snapshot
type SnapshotStore interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Open creates the store for the given backend rooted at path
func Open(backend Backend, path string) (SnapshotStore, error) {
	if backend != BackendMemory && strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}
	switch backend {
	case BackendFile:
		return NewFileStore(path)
	case BackendPebble:
		db, err := NewPebbleDB(path)
		if err != nil {
			return nil, err
		}
		return NewPebbleStore(db), nil
	case BackendSQLite:
		dsn, err := FileDSN(path)
		if err != nil {
			return nil, err
		}
		return OpenSQLite(dsn)
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
