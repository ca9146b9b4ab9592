package resource

import (
	"context"
	"sync"

	"github.com/mark3labs/stepwise/internal/page"
)

// Content is a rendered resource as stored in a Cache.
type Content struct {
	Root       page.Root `json:"root"`
	Controller string    `json:"controller,omitempty"`
}

// Cache stores rendered content by ID. Put keeps an existing entry: the
// first rendering of an ID wins until it is invalidated.
type Cache interface {
	Get(ctx context.Context, id page.ID) (*Content, bool, error)
	Put(ctx context.Context, id page.ID, c *Content) error
	Invalidate(ctx context.Context, id page.ID) error
}

// MemoryCache is an in-process Cache. Entries are keyed by ID only, so a
// cache must not be shared between resolvers over different sources.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[page.ID]Content
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[page.ID]Content)}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, id page.ID) (*Content, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.entries[id]
	if !ok {
		return nil, false, nil
	}
	return &c, true, nil
}

// Put implements Cache.
func (m *MemoryCache) Put(_ context.Context, id page.ID, c *Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		m.entries[id] = *c
	}
	return nil
}

// Invalidate implements Cache.
func (m *MemoryCache) Invalidate(_ context.Context, id page.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len returns the number of cached entries.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
