// internal/cache/cache.go
package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"gitscout/internal/model"
)

// DefaultTTL is how long a trending result list is reused.
const DefaultTTL = time.Hour

// Key identifies one cached trending result list.
type Key struct {
	Sort     model.SortOption
	Category model.Category
}

func (k Key) String() string {
	return string(k.Sort) + ":" + string(k.Category)
}

// Cache stores whole trending result lists. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key Key) ([]model.Repository, bool)
	Set(ctx context.Context, key Key, repos []model.Repository)
}

type entry struct {
	repos     []model.Repository
	expiresAt time.Time
}

// Memory is a process-local Cache. Expired entries are recomputed lazily by the caller.
type Memory struct {
	mu      sync.RWMutex
	entries map[Key]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory cache whose entries expire ttl after being stored.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[Key]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached list for key if it has not expired.
func (m *Memory) Get(_ context.Context, key Key) ([]model.Repository, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return slices.Clone(e.repos), true
}

// Set stores a copy of repos under key.
func (m *Memory) Set(_ context.Context, key Key, repos []model.Repository) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{
		repos:     slices.Clone(repos),
		expiresAt: m.now().Add(m.ttl),
	}
}
