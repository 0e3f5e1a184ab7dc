package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

// ErrNotFound is returned by a Backend when a key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Backend is the durable blob storage behind a Store.
type Backend interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
}

// Watchable is implemented by backends whose data lives in a local directory.
type Watchable interface {
	WatchPath() string
}

// DiskvBackend keeps each key as a file under a base directory.
type DiskvBackend struct {
	d        *diskv.Diskv
	basePath string
}

var _ Backend = (*DiskvBackend)(nil)
var _ Watchable = (*DiskvBackend)(nil)

// NewDiskv creates a diskv backed store rooted at basePath.
func NewDiskv(basePath string) (*DiskvBackend, error) {
	if basePath == "" {
		return nil, errors.New("store: base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &DiskvBackend{d: diskv.New(diskv.Options{
		BasePath:  basePath,
		TempDir:   filepath.Join(basePath, ".tmp"),
		Transform: flatTransform,
		// Other processes write the same keys, so nothing is cached.
		CacheSizeMax: 0,
	}), basePath: basePath}, nil
}

func (b *DiskvBackend) Read(key string) ([]byte, error) {
	if !b.d.Has(key) {
		return nil, ErrNotFound
	}
	val, err := b.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return val, nil
}

func (b *DiskvBackend) Write(key string, data []byte) error {
	if err := b.d.Write(key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

// WatchPath is the directory holding the key files.
func (b *DiskvBackend) WatchPath() string {
	return b.basePath
}

func flatTransform(string) []string {
	return []string{}
}
