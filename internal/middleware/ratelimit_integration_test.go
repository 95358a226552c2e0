//go:build integration

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/flashdeck/internal/cache"
	"github.com/flashdeck/flashdeck/internal/testutil"
)

// TestRateLimitUser_Concurrent drives the Redis token bucket through the
// middleware from many goroutines and checks no more than the burst passes.
func TestRateLimitUser_Concurrent(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(ctx, testutil.RequireEnv(t, "REDIS_URL"))
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, testutil.FlushRedis(ctx, c.Client()))

	const burst = 5
	handler := RateLimitUser(RateLimitConfig{
		Logger:        discardLogger(),
		Users:         c,
		UserPerMinute: 1,
		UserBurst:     burst,
	})(okHandler())

	var allowed, rejected int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/decks", nil), "user-concurrent"))
			switch rec.Code {
			case http.StatusOK:
				atomic.AddInt64(&allowed, 1)
			case http.StatusTooManyRequests:
				atomic.AddInt64(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, burst, allowed)
	assert.EqualValues(t, 20-burst, rejected)
}
