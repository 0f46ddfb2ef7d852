package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

const defaultFilePragmas = "mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// FileDSN converts a filesystem path into an on-disk SQLite DSN. Callers must
// ensure the path is non-empty.
func FileDSN(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", ErrPathRequired
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve storage path: %w", err)
	}
	return fmt.Sprintf("file:%s?%s", abs, defaultFilePragmas), nil
}
