// Package assets handles game asset loading and caching.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/leodutra/bevy-city/pkg/gtaenc"
	"github.com/leodutra/bevy-city/pkg/img"
)

// lodPrefix marks auxiliary low-detail model names that placement
// instantiation should skip.
const lodPrefix = "lod"

// Manager loads asset bytes from IMG archives and an optional loose
// directory. It owns no format knowledge; decoding the bytes is the
// caller's business.
type Manager struct {
	archives []*img.Archive
	dir      string
	cache    *Cache
	mu       sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// AddArchive mounts an IMG archive.
// Archives are searched in reverse order (last added = highest priority).
func (m *Manager) AddArchive(path string) error {
	archive, err := img.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	m.mu.Lock()
	m.archives = append(m.archives, archive)
	m.mu.Unlock()

	return nil
}

// SetDirectory mounts a loose asset directory. Files found there win
// over archive entries, mirroring how the game prefers unpacked data.
func (m *Manager) SetDirectory(dir string) {
	m.mu.Lock()
	m.dir = dir
	m.mu.Unlock()
}

// Load loads a file by its asset path, case-insensitively.
func (m *Manager) Load(path string) ([]byte, error) {
	key := gtaenc.NormalizePath(path)

	// Check cache first
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dir != "" {
		if data, err := os.ReadFile(filepath.Join(m.dir, filepath.FromSlash(key))); err == nil {
			m.cache.Set(key, data)
			return data, nil
		}
	}

	// Archive entries are keyed by bare file name.
	name := filepath.Base(key)
	for i := len(m.archives) - 1; i >= 0; i-- {
		data, err := m.archives[i].Read(name)
		if err == nil {
			m.cache.Set(key, data)
			return data, nil
		}
	}

	return nil, fmt.Errorf("asset not found: %s", path)
}

// List returns the union of all mounted archive entry names, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, archive := range m.archives {
		for _, name := range archive.List() {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModelPath maps a placement record's model name to its container
// path, per the game's naming convention.
func ModelPath(modelName string) string {
	return fmt.Sprintf("models/gta3/%s.dff", strings.ToLower(modelName))
}

// IsLODName reports whether a model name carries the level-of-detail
// prefix. LOD meshes appear in placement lists like ordinary instances
// but are not meant to be instantiated alongside their full-detail
// counterpart.
func IsLODName(modelName string) bool {
	return len(modelName) > len(lodPrefix) && strings.EqualFold(modelName[:len(lodPrefix)], lodPrefix)
}

// Close closes all archives.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, archive := range m.archives {
		archive.Close()
	}
	m.archives = nil
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
