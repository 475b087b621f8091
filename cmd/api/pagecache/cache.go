package pagecache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"spacetravelling/cmd/internal/logger"
)

// Status tells how a Serve call was answered.
type Status string

const (
	// Miss: no snapshot existed and the page was generated in the request.
	Miss Status = "MISS"
	// Fresh: a snapshot younger than its ttl was served.
	Fresh Status = "HIT"
	// Stale: an expired snapshot was served and regeneration started in the background.
	Stale Status = "STALE"
	// Bypass: the page was generated without touching the cache.
	Bypass Status = "BYPASS"
)

// GenerateFunc builds the page body. Errors are never cached.
type GenerateFunc func(ctx context.Context) ([]byte, error)

// Cache serves page snapshots with stale-while-revalidate semantics.
// Generation of a given key is single-flight across concurrent requests.
//
// A generation that started before an Invalidate of its key never stores its
// body: Invalidate bumps the key's version and the Put is skipped when the
// version moved while generate was running.
type Cache struct {
	store Store
	group singleflight.Group
	now   func() time.Time
	bg    sync.WaitGroup

	// mu: Put 은 RLock, Invalidate 는 Lock. version 확인과 Put 사이에 Invalidate 가 끼지 않는다.
	mu    sync.RWMutex
	epoch uint64            // Invalidate() 전체 삭제 횟수
	gens  map[string]uint64 // key 별 Invalidate 횟수
}

type version struct {
	epoch, gen uint64
}

func New(store Store) *Cache {
	return &Cache{store: store, now: time.Now, gens: make(map[string]uint64)}
}

func (c *Cache) version(key string) version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return version{epoch: c.epoch, gen: c.gens[key]}
}

// Serve returns the body for key.
//
//   - no snapshot: generate now (blocking fallback) and store it
//   - snapshot younger than ttl (or ttl <= 0): serve it
//   - older snapshot: serve it once more and regenerate in the background;
//     if regeneration fails the stale snapshot is kept
//
// Store failures are logged and treated as a miss, never as a page failure.
func (c *Cache) Serve(ctx context.Context, key string, ttl time.Duration, generate GenerateFunc) ([]byte, Status, error) {
	snap, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.WarnWithFields("pagecache get failed", logger.Fields{"key": key, "error": err.Error()})
		ok = false
	}

	if !ok {
		body, err := c.regenerate(ctx, key, generate)
		if err != nil {
			return nil, Miss, err
		}
		return body, Miss, nil
	}

	if ttl <= 0 || c.now().Sub(snap.GeneratedAt) < ttl {
		return snap.Body, Fresh, nil
	}

	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		// 요청이 끝나도 재생성은 계속되어야 하므로 cancel 만 끊는다.
		bgCtx := context.WithoutCancel(ctx)
		if _, err := c.regenerate(bgCtx, key, generate); err != nil {
			logger.WarnWithFields("pagecache background regeneration failed; keeping stale snapshot", logger.Fields{
				"key":   key,
				"error": err.Error(),
			})
		}
	}()
	return snap.Body, Stale, nil
}

func (c *Cache) regenerate(ctx context.Context, key string, generate GenerateFunc) ([]byte, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		started := c.version(key)
		body, err := generate(ctx)
		if err != nil {
			return nil, err
		}
		c.putIfCurrent(ctx, Snapshot{Key: key, Body: body, GeneratedAt: c.now()}, started)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) putIfCurrent(ctx context.Context, snap Snapshot, started version) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.epoch != started.epoch || c.gens[snap.Key] != started.gen {
		logger.DebugWithFields("pagecache key invalidated during generation; not storing", logger.Fields{"key": snap.Key})
		return
	}
	if err := c.store.Put(ctx, snap); err != nil {
		logger.WarnWithFields("pagecache put failed", logger.Fields{"key": snap.Key, "error": err.Error()})
	}
}

// Warm stores a freshly generated body for key.
func (c *Cache) Warm(ctx context.Context, key string, body []byte) error {
	if err := c.store.Put(ctx, Snapshot{Key: key, Body: body, GeneratedAt: c.now()}); err != nil {
		return fmt.Errorf("warm %s: %w", key, err)
	}
	return nil
}

// Invalidate drops the given keys; with no keys it drops every snapshot.
// Generations of those keys that are still running will not be stored.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		c.epoch++
		return c.store.Clear(ctx)
	}
	for _, k := range keys {
		c.gens[k]++
		c.group.Forget(k)
	}
	return c.store.Delete(ctx, keys...)
}

// Wait blocks until background regenerations have finished.
func (c *Cache) Wait() {
	c.bg.Wait()
}

// Close waits for background work and closes the store.
func (c *Cache) Close(ctx context.Context) error {
	c.Wait()
	return c.store.Close(ctx)
}

// Page keys
func ListingKey() string { return "/" }
func PostKey(uid string) string { return "/post/" + uid }
func FeedKey() string { return "/feed.xml" }
