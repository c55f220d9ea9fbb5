package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

type memoryEntry struct {
	records  []domain.RawRecord
	expireAt time.Time
}

// MemorySnapshotCache is the in-process record cache. A zero TTL keeps
// entries until they are deleted.
type MemorySnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySnapshotCache(ttl time.Duration) *MemorySnapshotCache {
	return &MemorySnapshotCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemorySnapshotCache) Get(_ context.Context, key string) ([]domain.RawRecord, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expireAt.IsZero() && !c.now().Before(e.expireAt) {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && cur.expireAt.Equal(e.expireAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.records, true, nil
}

func (c *MemorySnapshotCache) Set(_ context.Context, key string, records []domain.RawRecord) error {
	if key == "" {
		return nil
	}
	e := memoryEntry{records: records}
	if c.ttl > 0 {
		e.expireAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
	return nil
}

func (c *MemorySnapshotCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemorySnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
