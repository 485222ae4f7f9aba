package ledger

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore persists ledger payloads as one JSON file per scope key inside
// a directory. Keys are query-escaped to stay filename safe.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, url.QueryEscape(key)+".json")
}

// Read returns the payload for a key and whether one exists.
func (f *FileStore) Read(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading ledger file: %w", err)
	}
	return data, true, nil
}

// Write replaces the payload for a key, creating the directory on first use.
func (f *FileStore) Write(key string, payload []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger directory %s: %w", f.dir, err)
	}
	if err := os.WriteFile(f.path(key), payload, 0o644); err != nil {
		return fmt.Errorf("writing ledger file: %w", err)
	}
	return nil
}

// Delete drops the payload for a key. Deleting an absent key is a no-op.
func (f *FileStore) Delete(key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("removing ledger file: %w", err)
	}
	return nil
}
