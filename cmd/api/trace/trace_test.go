package trace

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))

	ctx := WithRequestAndSpan(context.Background(), "req-1", 0)
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "0", CurrentSpanID(ctx))
}

func TestNextSpanIDIsUniqueAcrossGoroutines(t *testing.T) {
	ctx := WithRequestAndSpan(context.Background(), "req-1", 0)

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			requestID, spanID := NextSpanID(ctx)
			assert.Equal(t, "req-1", requestID)
			mu.Lock()
			seen[spanID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 20)
	assert.Equal(t, "20", CurrentSpanID(ctx))
}

func TestNextSpanIDWithoutTrace(t *testing.T) {
	requestID, spanID := NextSpanID(context.Background())
	assert.NotEmpty(t, requestID)
	assert.Equal(t, "1", spanID)
}
