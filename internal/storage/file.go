package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryDelay is how often a blocked Lock call polls the lock file
const lockRetryDelay = 25 * time.Millisecond

// FileStore keeps the snapshot in a single file. Writes go to a temporary
// file in the same directory which is synced and renamed over the target, so
// readers observe either the old or the new snapshot, never a mix.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore creates the parent directory and returns a store for path
func NewFileStore(path string) (*FileStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve snapshot path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileStore{path: abs, lock: flock.New(abs + ".lock")}, nil
}

// Path returns the absolute snapshot path
func (s *FileStore) Path() string {
	return s.path
}

// Read returns the current snapshot
func (s *FileStore) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Write atomically replaces the snapshot
func (s *FileStore) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	committed = true

	// Persist the rename itself.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}
	return nil
}

// Lock takes an exclusive advisory lock on a sibling ".lock" file, waiting
// until it is available or ctx is done. Cooperating processes that share the
// snapshot file serialise their read-modify-write cycles through it.
func (s *FileStore) Lock(ctx context.Context) (func() error, error) {
	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock snapshot: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("lock snapshot: %s busy", s.lock.Path())
	}
	return s.lock.Unlock, nil
}

// Close releases the lock file handle
func (s *FileStore) Close() error {
	return s.lock.Close()
}
