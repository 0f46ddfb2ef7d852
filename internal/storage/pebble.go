package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
)

// Key prefixes (simulating column families)
const (
	PrefixSnapshots = "snp:"
)

// Column family names
const (
	CFSnapshots = "snapshots"
)

// Column family name to prefix mapping
var cfPrefixes = map[string]string{
	CFSnapshots: PrefixSnapshots,
}

// DefaultSnapshotKey is the key the ledger snapshot is stored under
const DefaultSnapshotKey = "in_flight_transfers"

// PebbleDB wraps the Pebble database
type PebbleDB struct {
	db *pebble.DB
}

// NewPebbleDB creates a new PebbleDB instance
func NewPebbleDB(path string) (*PebbleDB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	cache := pebble.NewCache(64 << 20)
	defer cache.Unref()

	opts := &pebble.Options{
		Cache:        cache,
		MaxOpenFiles: 100,
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &PebbleDB{db: db}, nil
}

// Close closes the database
func (p *PebbleDB) Close() error {
	return p.db.Close()
}

// prefixKey creates a prefixed key for the given column family
func (p *PebbleDB) prefixKey(cf string, key []byte) ([]byte, error) {
	prefix, ok := cfPrefixes[cf]
	if !ok {
		return nil, fmt.Errorf("column family not found: %s", cf)
	}
	return append([]byte(prefix), key...), nil
}

// Put stores a key-value pair in the specified column family. The write is
// synced to the WAL before returning.
func (p *PebbleDB) Put(cf string, key, value []byte) error {
	prefixedKey, err := p.prefixKey(cf, key)
	if err != nil {
		return err
	}
	return p.db.Set(prefixedKey, value, pebble.Sync)
}

// Get retrieves a value from the specified column family. A missing key
// yields a nil value and no error.
func (p *PebbleDB) Get(cf string, key []byte) ([]byte, error) {
	prefixedKey, err := p.prefixKey(cf, key)
	if err != nil {
		return nil, err
	}

	value, closer, err := p.db.Get(prefixedKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	// Copy the value since it's only valid until closer.Close()
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// PebbleStore keeps the snapshot under one key. Pebble applies a single Set
// atomically, and holds an exclusive directory lock, so a store is only ever
// shared by the goroutines of one process.
type PebbleStore struct {
	db  *PebbleDB
	key []byte
}

// NewPebbleStore returns a store writing DefaultSnapshotKey in db
func NewPebbleStore(db *PebbleDB) *PebbleStore {
	return &PebbleStore{db: db, key: []byte(DefaultSnapshotKey)}
}

// Read returns the current snapshot
func (s *PebbleStore) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.db.Get(CFSnapshots, s.key)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return data, nil
}

// Write replaces the snapshot
func (s *PebbleStore) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	if err := s.db.Put(CFSnapshots, s.key, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *PebbleStore) Close() error {
	return s.db.Close()
}
