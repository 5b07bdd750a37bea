package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWaitBoundsConcurrency verifies at most maxConcurrent jobs run at once.
func TestWaitBoundsConcurrency(t *testing.T) {
	limiter := New(2, 0)

	var running, peak int32
	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, limiter.Wait(context.Background()))
			defer limiter.Release()

			now := atomic.AddInt32(&running, 1)
			for {
				current := atomic.LoadInt32(&peak)
				if now <= current || atomic.CompareAndSwapInt32(&peak, current, now) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

// TestWaitRespectsCancellation verifies a blocked Wait returns when the context is cancelled.
func TestWaitRespectsCancellation(t *testing.T) {
	limiter := New(1, 0)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	limiter.Release()
}

// TestUnboundedLimiter verifies zero bounds never block.
func TestUnboundedLimiter(t *testing.T) {
	limiter := New(0, 0)

	for range 100 {
		require.NoError(t, limiter.Wait(context.Background()))
		limiter.Release()
	}
}

// TestReleaseWithoutWait verifies a spurious Release does not panic or block.
func TestReleaseWithoutWait(t *testing.T) {
	limiter := New(1, 0)
	limiter.Release()

	require.NoError(t, limiter.Wait(context.Background()))
	limiter.Release()
}
