package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"btc_backend/internal/feature/marketdata/usecase"
)

// FileStore keeps one JSON file per key under dir, named <sha256(key)>.json.
type FileStore struct {
	dir    string
	expiry time.Duration
	now    func() time.Time
}

var _ usecase.CacheStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir. The directory is created on first write.
func NewFileStore(dir string, opts ...Option) *FileStore {
	o := buildOptions(opts)
	return &FileStore{dir: dir, expiry: o.expiry, now: o.now}
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, storageID(key)+".json")
}

// Get returns the payload stored under key if it is younger than the expiry.
func (s *FileStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, usecase.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", usecase.ErrCacheIO, key, err)
	}
	return decodeEntry(b, s.now(), s.expiry)
}

// Set writes payload under key, replacing any previous entry.
// The file is written to a temp file and renamed so readers never see a partial entry.
func (s *FileStore) Set(ctx context.Context, key string, payload json.RawMessage) error {
	b, err := encodeEntry(s.now(), payload)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir: %v", usecase.ErrCacheIO, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".entry-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", usecase.ErrCacheIO, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %v", usecase.ErrCacheIO, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", usecase.ErrCacheIO, key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("%w: rename %s: %v", usecase.ErrCacheIO, key, err)
	}
	return nil
}

// Clear removes every entry file. It keeps going past individual failures and
// returns them joined. A missing directory is not an error.
func (s *FileStore) Clear(ctx context.Context) error {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("%w: list entries: %v", usecase.ErrCacheIO, err)
	}
	var errs []error
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", usecase.ErrCacheIO, errors.Join(errs...))
	}
	return nil
}
