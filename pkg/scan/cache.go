package scan

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of cached files.
const DefaultCacheSize = 4096

type cacheEntry struct {
	sum     [sha256.Size]byte
	imports []Import
}

// Cache remembers the imports of files by content hash, so watch runs only
// reparse files that changed. A nil *Cache never hits.
type Cache struct {
	entries *lru.Cache[string, cacheEntry]
}

// NewCache creates a cache holding up to size files.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Get returns the imports stored for path if content is unchanged.
func (c *Cache) Get(path string, content []byte) ([]Import, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.entries.Get(path)
	if !ok || entry.sum != sha256.Sum256(content) {
		return nil, false
	}
	return entry.imports, true
}

// Put stores the imports parsed from content.
func (c *Cache) Put(path string, content []byte, imports []Import) {
	if c == nil {
		return
	}
	c.entries.Add(path, cacheEntry{sum: sha256.Sum256(content), imports: imports})
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.entries.Purge()
}
