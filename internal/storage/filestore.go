package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one <user_id>.json file per user under a base directory,
// the layout the original deployment used. Writes go through a temp file and
// rename so a crash never leaves a half-written ledger behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the base directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(userID string) string {
	return filepath.Join(s.dir, sanitize(userID)+".json")
}

// sanitize maps an opaque user id onto a safe flat filename. Anything
// outside [A-Za-z0-9._-] becomes "_", and path traversal is impossible
// because separators are rewritten too.
func sanitize(userID string) string {
	var b strings.Builder
	for _, r := range userID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// Get returns the stored payload for userID, or (nil, nil) when no file
// exists yet.
func (s *FileStore) Get(_ context.Context, userID string) ([]byte, error) {
	data, err := os.ReadFile(s.path(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger file for %s: %w", userID, err)
	}
	return data, nil
}

// Put atomically replaces the payload for userID.
func (s *FileStore) Put(_ context.Context, userID string, data []byte) error {
	path := s.path(userID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write ledger file for %s: %w", userID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace ledger file for %s: %w", userID, err)
	}
	return nil
}

// Close is a no-op; the store holds no open handles between calls.
func (s *FileStore) Close() error {
	return nil
}
