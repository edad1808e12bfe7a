package aws

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	instanceCacheTTL = 24 * time.Hour
	priceCacheTTL    = 24 * time.Hour
)

// FileCache stores AWS catalog and price lookups as JSON files. A nil *FileCache is a
// valid, always-empty cache.
type FileCache struct {
	dir string
}

// NewFileCache creates a new file cache in the given directory.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

// Get retrieves a cached value if it exists and hasn't expired.
func (fc *FileCache) Get(key string, ttl time.Duration, dest any) bool {
	if fc == nil {
		return false
	}
	path := fc.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > ttl {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Set stores a value in the cache.
func (fc *FileCache) Set(key string, value any) error {
	if fc == nil {
		return nil
	}
	if err := os.MkdirAll(fc.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling cache value: %w", err)
	}
	if err := os.WriteFile(fc.path(key), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// Clear removes all cached data.
func (fc *FileCache) Clear() error {
	if fc == nil {
		return nil
	}
	entries, err := os.ReadDir(fc.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, e := range entries {
		if err := os.Remove(filepath.Join(fc.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (fc *FileCache) path(key string) string {
	return filepath.Join(fc.dir, cacheKeyReplacer.Replace(key)+".json")
}

var cacheKeyReplacer = strings.NewReplacer("/", "_", string(filepath.Separator), "_", " ", "_")

// cached returns the cached value for key, or calls fetch and caches its result.
// A failed cache write does not fail the lookup.
func cached[T any](fc *FileCache, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var v T
	if fc.Get(key, ttl, &v) {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return v, err
	}
	_ = fc.Set(key, v)
	return v, nil
}
