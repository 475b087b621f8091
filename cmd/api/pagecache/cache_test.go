package pagecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache() (*Cache, *MemoryStore, *clock) {
	store := NewMemoryStore()
	clk := &clock{now: time.Date(2021, 3, 25, 19, 25, 28, 0, time.UTC)}
	c := New(store)
	c.now = clk.Now
	return c, store, clk
}

func counter(bodies ...string) (GenerateFunc, *int32) {
	var calls int32
	return func(context.Context) ([]byte, error) {
		n := atomic.AddInt32(&calls, 1)
		i := int(n) - 1
		if i >= len(bodies) {
			i = len(bodies) - 1
		}
		return []byte(bodies[i]), nil
	}, &calls
}

func TestServeMissThenFresh(t *testing.T) {
	c, store, clk := newTestCache()
	gen, calls := counter("v1", "v2")
	ctx := context.Background()

	body, status, err := c.Serve(ctx, "/", time.Minute, gen)
	require.NoError(t, err)
	assert.Equal(t, Miss, status)
	assert.Equal(t, "v1", string(body))
	assert.Equal(t, 1, store.Len())

	clk.Advance(59 * time.Second)
	body, status, err = c.Serve(ctx, "/", time.Minute, gen)
	require.NoError(t, err)
	assert.Equal(t, Fresh, status)
	assert.Equal(t, "v1", string(body))
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestServeStaleOnceThenRegenerated(t *testing.T) {
	c, _, clk := newTestCache()
	gen, calls := counter("v1", "v2")
	ctx := context.Background()

	_, _, err := c.Serve(ctx, "/", time.Minute, gen)
	require.NoError(t, err)

	clk.Advance(61 * time.Second)
	body, status, err := c.Serve(ctx, "/", time.Minute, gen)
	require.NoError(t, err)
	assert.Equal(t, Stale, status)
	assert.Equal(t, "v1", string(body), "stale content is served while regenerating")

	c.Wait()
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))

	body, status, err = c.Serve(ctx, "/", time.Minute, gen)
	require.NoError(t, err)
	assert.Equal(t, Fresh, status)
	assert.Equal(t, "v2", string(body))
}

func TestServeKeepsStaleWhenRegenerationFails(t *testing.T) {
	c, _, clk := newTestCache()
	ctx := context.Background()

	_, _, err := c.Serve(ctx, "/", time.Minute, func(context.Context) ([]byte, error) { return []byte("v1"), nil })
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	failing := func(context.Context) ([]byte, error) { return nil, errors.New("source unavailable") }
	body, status, err := c.Serve(ctx, "/", time.Minute, failing)
	require.NoError(t, err)
	assert.Equal(t, Stale, status)
	assert.Equal(t, "v1", string(body))
	c.Wait()

	body, status, err = c.Serve(ctx, "/", time.Minute, failing)
	require.NoError(t, err)
	assert.Equal(t, Stale, status)
	assert.Equal(t, "v1", string(body))
	c.Wait()
}

func TestServeMissErrorIsNotCached(t *testing.T) {
	c, store, _ := newTestCache()
	notFound := errors.New("not found")

	_, status, err := c.Serve(context.Background(), "/post/x", time.Minute, func(context.Context) ([]byte, error) {
		return nil, notFound
	})
	assert.ErrorIs(t, err, notFound)
	assert.Equal(t, Miss, status)
	assert.Equal(t, 0, store.Len())
}

func TestServeZeroTTLNeverExpires(t *testing.T) {
	c, _, clk := newTestCache()
	gen, calls := counter("v1", "v2")

	_, _, err := c.Serve(context.Background(), "/", 0, gen)
	require.NoError(t, err)
	clk.Advance(24 * time.Hour)

	_, status, err := c.Serve(context.Background(), "/", 0, gen)
	require.NoError(t, err)
	assert.Equal(t, Fresh, status)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestServeMissIsSingleFlight(t *testing.T) {
	c, _, _ := newTestCache()
	release := make(chan struct{})
	var calls int32
	gen := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("v1"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _, err := c.Serve(context.Background(), "/", time.Minute, gen)
			assert.NoError(t, err)
			assert.Equal(t, "v1", string(body))
		}()
	}
	// 모든 goroutine 이 singleflight 에 합류할 시간을 준다.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestInvalidate(t *testing.T) {
	c, store, _ := newTestCache()
	ctx := context.Background()
	for _, k := range []string{ListingKey(), PostKey("a"), PostKey("b")} {
		require.NoError(t, c.Warm(ctx, k, []byte(k)))
	}

	require.NoError(t, c.Invalidate(ctx, PostKey("a")))
	assert.Equal(t, 2, store.Len())

	require.NoError(t, c.Invalidate(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestInvalidateDuringBackgroundRegenerationDropsItsResult(t *testing.T) {
	c, store, clk := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Warm(ctx, PostKey("a"), []byte("v1")))
	clk.Advance(2 * time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	old := func(context.Context) ([]byte, error) {
		close(started)
		<-release
		return []byte("fetched before the webhook"), nil
	}
	body, status, err := c.Serve(ctx, PostKey("a"), time.Minute, old)
	require.NoError(t, err)
	assert.Equal(t, Stale, status)
	assert.Equal(t, "v1", string(body))

	<-started
	require.NoError(t, c.Invalidate(ctx, PostKey("a")))
	close(release)
	c.Wait()

	assert.Equal(t, 0, store.Len())

	fresh, _ := counter("v2")
	body, status, err = c.Serve(ctx, PostKey("a"), time.Minute, fresh)
	require.NoError(t, err)
	assert.Equal(t, Miss, status)
	assert.Equal(t, "v2", string(body))
}

func TestClearDuringMissGenerationDropsItsResult(t *testing.T) {
	c, store, _ := newTestCache()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		body, status, err := c.Serve(ctx, ListingKey(), time.Minute, func(context.Context) ([]byte, error) {
			close(started)
			<-release
			return []byte("old"), nil
		})
		assert.NoError(t, err)
		assert.Equal(t, Miss, status)
		// 요청한 쪽은 본문을 받지만 저장되지는 않는다.
		assert.Equal(t, "old", string(body))
	}()

	<-started
	require.NoError(t, c.Invalidate(ctx))
	close(release)
	<-done

	assert.Equal(t, 0, store.Len())
}

func TestInvalidateOtherKeyKeepsGeneration(t *testing.T) {
	c, store, _ := newTestCache()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, err := c.Serve(ctx, PostKey("a"), time.Minute, func(context.Context) ([]byte, error) {
			close(started)
			<-release
			return []byte("a"), nil
		})
		assert.NoError(t, err)
	}()

	<-started
	require.NoError(t, c.Invalidate(ctx, PostKey("b")))
	close(release)
	<-done

	_, ok, err := store.Get(ctx, PostKey("a"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreCopiesBodies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	body := []byte("page")
	require.NoError(t, store.Put(ctx, Snapshot{Key: "/", Body: body}))
	body[0] = 'X'

	snap, ok, err := store.Get(ctx, "/")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "page", string(snap.Body))

	_, ok, err = store.Get(ctx, "/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestZstdCompressor(t *testing.T) {
	z := &ZstdCompressor{}
	in := []byte(`{"postsPagination":{"results":[],"next_page":null},"preview":false}`)

	packed, err := z.Compress(in)
	require.NoError(t, err)
	out, err := z.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = z.Decompress([]byte("not zstd"))
	assert.Error(t, err)
}
