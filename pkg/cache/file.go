package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gauravv801/QA-Eval/pkg/observability"
)

// FileCache persists entries as JSON files under a base directory.
// Entries are sharded by digest prefix to keep directories small.
type FileCache struct {
	dir string
}

// cacheEntry is the on-disk envelope.
type cacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// NewFileCache creates a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache root directory.
func (c *FileCache) Dir() string { return c.dir }

// path shards keys as dir/<digest[:2]>/<digest[2:]>.json. The class prefix
// becomes a subdirectory so classes can be cleared independently.
func (c *FileCache) path(key string) string {
	class, digest := KeyType(key), key
	if i := strings.IndexByte(key, ':'); i >= 0 {
		digest = key[i+1:]
	}
	if len(digest) < 4 {
		return filepath.Join(c.dir, class, digest+".json")
	}
	return filepath.Join(c.dir, class, digest[:2], digest[2:]+".json")
}

// Get implements Cache.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(c.path(key))
	if os.IsNotExist(err) {
		observability.Cache().OnCacheMiss(ctx, KeyType(key))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Corrupt entry: treat as a miss and drop it.
		_ = os.Remove(c.path(key))
		observability.Cache().OnCacheMiss(ctx, KeyType(key))
		return nil, false, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(c.path(key))
		observability.Cache().OnCacheMiss(ctx, KeyType(key))
		return nil, false, nil
	}

	observability.Cache().OnCacheHit(ctx, KeyType(key))
	return entry.Data, true, nil
}

// Set implements Cache.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := cacheEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache shard: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("committing cache entry: %w", err)
	}

	observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	return nil
}

// Delete implements Cache.
func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cache entry: %w", err)
	}
	return nil
}

// Close implements Cache. File caches hold no open resources.
func (c *FileCache) Close() error { return nil }

// Clear removes every entry under the cache root and returns the number of
// files removed.
func (c *FileCache) Clear() (int, error) {
	count := 0
	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == c.dir || info.IsDir() {
			return nil
		}
		if err := os.Remove(path); err == nil {
			count++
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("clearing cache: %w", err)
	}

	// Clean up empty shard directories
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return count, nil
	}
	for _, e := range entries {
		if e.IsDir() {
			_ = os.RemoveAll(filepath.Join(c.dir, e.Name()))
		}
	}
	return count, nil
}
