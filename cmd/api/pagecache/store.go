// Package pagecache keeps generated page snapshots and serves them with
// stale-while-revalidate semantics.
package pagecache

import (
	"context"
	"sync"
	"time"
)

// Snapshot is one generated page body.
type Snapshot struct {
	Key         string
	Body        []byte
	GeneratedAt time.Time
}

// Store persists snapshots. Get reports ok=false for an unknown key.
type Store interface {
	Get(ctx context.Context, key string) (snap Snapshot, ok bool, err error)
	Put(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
	Close(ctx context.Context) error
}

// cache is a small thread-safe map.
type cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func newCache[K comparable, V any]() *cache[K, V] {
	return &cache[K, V]{items: make(map[K]V)}
}

func (c *cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

func (c *cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	items *cache[string, Snapshot]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: newCache[string, Snapshot]()}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Snapshot, bool, error) {
	snap, ok := s.items.Get(key)
	if !ok {
		return Snapshot{}, false, nil
	}
	snap.Body = append([]byte(nil), snap.Body...)
	return snap, true, nil
}

func (s *MemoryStore) Put(_ context.Context, snap Snapshot) error {
	snap.Body = append([]byte(nil), snap.Body...)
	s.items.Set(snap.Key, snap)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.items.Delete(k)
	}
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.items.Clear()
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

// Len returns the number of stored snapshots.
func (s *MemoryStore) Len() int { return s.items.Len() }
