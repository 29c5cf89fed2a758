package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/yw7tools/converter"
	"github.com/erraggy/yw7tools/host/memhost"
)

// inlineSourceName labels inline documents in issues and errors.
const inlineSourceName = "<inline>"

// documentInput represents the two ways a yw7 document can be provided to a tool.
// Exactly one of File or Content must be set.
type documentInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a .yw7 file on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline yw7 XML document content"`
}

// snapshotInput represents a host project snapshot, on disk or inline.
// Exactly one of File or Content must be set.
type snapshotInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a .yaml/.toml/.json host snapshot"`
	Content string `json:"content,omitempty" jsonschema:"Inline host snapshot content"`
	Format  string `json:"format,omitempty"  jsonschema:"Format of inline content: yaml (default)\\, toml or json"`
}

// cacheEntry holds a cached import result with LRU ordering and TTL expiry.
type cacheEntry struct {
	result    *converter.ImportResult
	insertAt  time.Time
	expiresAt time.Time
}

// importCacheStore provides a session-scoped cache of imported documents.
// File inputs are keyed by (absolutePath, modTime). Content inputs are keyed
// by a SHA-256 hash. A background sweeper removes expired entries.
type importCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var importCache = &importCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached result or nil. Expired entries are lazily removed.
func (c *importCacheStore) get(key string) *converter.ImportResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		e.insertAt = time.Now()
		return e.result
	}
	return nil
}

// put stores a result, evicting the least recently used entry if at capacity.
func (c *importCacheStore) put(key string, result *converter.ImportResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{result: result, insertAt: now, expiresAt: now.Add(ttl)}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *importCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes expired entries.
// Only the first call spawns a sweeper. It stops when ctx is cancelled.
func (c *importCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *importCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *importCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKey returns the cache key of d, or "" when d cannot be cached.
func (d documentInput) cacheKey() string {
	switch {
	case d.File != "":
		abs, err := filepath.Abs(d.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(abs)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("file:%s:%d", abs, info.ModTime().UnixNano())
	case d.Content != "":
		h := sha256.Sum256([]byte(d.Content))
		return "content:" + hex.EncodeToString(h[:])
	}
	return ""
}

// check enforces the single-source and inline size rules.
func (d documentInput) check() error {
	switch {
	case d.File != "" && d.Content != "":
		return fmt.Errorf("exactly one of file or content must be provided (got 2)")
	case d.File == "" && d.Content == "":
		return fmt.Errorf("exactly one of file or content must be provided (got 0)")
	case int64(len(d.Content)) > cfg.MaxInlineSize:
		return fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set YW7TOOLS_MCP_MAX_INLINE_SIZE to increase",
			len(d.Content), cfg.MaxInlineSize)
	}
	return nil
}

// options returns the converter options naming d as the import source.
func (d documentInput) options() []converter.Option {
	if d.File != "" {
		return []converter.Option{converter.WithFilePath(d.File)}
	}
	return []converter.Option{
		converter.WithBytes([]byte(d.Content)),
		converter.WithSourceName(inlineSourceName),
	}
}

// resolve imports the document with the server's base options, using the cache.
func (d documentInput) resolve(base []converter.Option) (*converter.ImportResult, error) {
	if err := d.check(); err != nil {
		return nil, err
	}

	var key string
	if cfg.CacheEnabled {
		key = d.cacheKey()
	}
	if key != "" {
		if cached := importCache.get(key); cached != nil {
			return cached, nil
		}
	}

	result, err := converter.ImportWithOptions(append(d.options(), base...)...)
	if err != nil {
		return nil, err
	}
	if key != "" {
		importCache.put(key, result, cfg.CacheTTL)
	}
	return result, nil
}

// resolve loads the host snapshot.
func (s snapshotInput) resolve() (*memhost.Project, error) {
	switch {
	case s.File != "" && s.Content != "":
		return nil, fmt.Errorf("exactly one of file or content must be provided (got 2)")
	case s.File != "":
		return memhost.Load(s.File)
	case s.Content == "":
		return nil, fmt.Errorf("exactly one of file or content must be provided (got 0)")
	case int64(len(s.Content)) > cfg.MaxInlineSize:
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes", len(s.Content), cfg.MaxInlineSize)
	}
	format := memhost.Format(s.Format)
	if format == "" {
		format = memhost.FormatYAML
	}
	return memhost.Unmarshal([]byte(s.Content), format)
}
