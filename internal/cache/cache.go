// Package cache stores per-file elision results on disk, keyed by file path
// and validated against a BLAKE3 hash of the content and a fingerprint of
// the analysis options.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/panbanda/elide/pkg/models"
	"github.com/zeebo/blake3"
)

// Cache provides file-based caching for analysis results. A disabled cache
// misses on every lookup and ignores stores.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry represents a cached analysis result.
type Entry struct {
	Hash      string          `json:"hash"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New creates a new cache instance. A ttlHours of zero means entries never
// expire.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Enabled reports whether the cache stores anything.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Fingerprint folds the option values that change analysis output into one
// value. Changing any of them invalidates previously cached results.
func Fingerprint(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

func contentHash(content []byte, fingerprint uint64) string {
	return HashBytes(content) + "-" + strconv.FormatUint(fingerprint, 16)
}

// Lookup returns the cached result for path when it was computed from the
// same content under the same options.
func (c *Cache) Lookup(path string, content []byte, fingerprint uint64) (*models.FileResult, bool) {
	data, ok := c.GetWithHash(path, contentHash(content, fingerprint))
	if !ok {
		return nil, false
	}
	var res models.FileResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return &res, true
}

// Store records the result for path.
func (c *Cache) Store(path string, content []byte, fingerprint uint64, res *models.FileResult) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.SetWithHash(path, contentHash(content, fingerprint), data)
}

// GetWithHash retrieves a cached entry only if the hash matches and the
// entry has not expired.
func (c *Cache) GetWithHash(key, hash string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}

	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Hash != hash {
		return nil, false
	}

	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		os.Remove(path)
		return nil, false
	}

	return entry.Data, true
}

// SetWithHash stores data in the cache with a hash for validation.
func (c *Cache) SetWithHash(key, hash string, data []byte) error {
	if !c.Enabled() {
		return nil
	}

	entryData, err := json.Marshal(Entry{
		Hash:      hash,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(key), entryData, 0600)
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.Enabled() {
		return nil
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0755)
}

// keyPath converts a key to a filesystem path.
func (c *Cache) keyPath(key string) string {
	// Use BLAKE3 hash of key for filename to avoid path issues
	hash := blake3.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	stats := &Stats{}
	if !c.Enabled() {
		return stats, nil
	}

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		stats.Entries++
		stats.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
