// Package cache persists API responses as JSON files between runs, so a
// re-run does not hammer the API for data it already has.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mik2003/malthemes/internal/logger"
)

// Cache is a directory of JSON files, grouped into buckets (one subdirectory
// per data kind, e.g. "animelist", "anime").
type Cache struct {
	dir string
}

// New creates a cache rooted at dir. The directory is created lazily on the
// first Put.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Get loads the cached value for bucket/key into v. It returns false with a
// nil error on a cache miss.
func (c *Cache) Get(bucket, key string, v any) (bool, error) {
	path := c.path(bucket, key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("cache miss", "bucket", bucket, "key", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read cache %s/%s: %w", bucket, key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode cache %s/%s: %w", bucket, key, err)
	}

	logger.Debug("cache hit", "bucket", bucket, "key", key)
	return true, nil
}

// Put stores v as the cached value for bucket/key.
func (c *Cache) Put(bucket, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache %s/%s: %w", bucket, key, err)
	}

	path := c.path(bucket, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache %s/%s: %w", bucket, key, err)
	}

	logger.Debug("cache store", "bucket", bucket, "key", key, "bytes", len(data))
	return nil
}

func (c *Cache) path(bucket, key string) string {
	return filepath.Join(c.dir, bucket, key+".json")
}
