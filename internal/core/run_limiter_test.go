package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLimiter_AcquireRelease(t *testing.T) {
	limiter := NewRunLimiter(2, time.Second)
	ctx := context.Background()

	assert.Equal(t, 2, limiter.Status().Available)

	release1, err := limiter.Acquire(ctx)
	require.NoError(t, err)
	release2, err := limiter.Acquire(ctx)
	require.NoError(t, err)

	status := limiter.Status()
	assert.Equal(t, 2, status.Active)
	assert.Equal(t, 0, status.Available)

	release1()
	release1() // ignored
	assert.Equal(t, 1, limiter.Active())

	release2()
	assert.Equal(t, 0, limiter.Active())
	assert.Equal(t, 2, limiter.Status().MaxConcurrent)
}

func TestRunLimiter_BusyWhenFull(t *testing.T) {
	limiter := NewRunLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	release, err := limiter.Acquire(ctx)
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = limiter.Acquire(ctx)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrBusy)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond, "gave up too fast")
}

func TestRunLimiter_ContextCancellation(t *testing.T) {
	limiter := NewRunLimiter(1, 5*time.Second)

	release, err := limiter.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := limiter.Acquire(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Error("Acquire did not return after context cancellation")
	}
}

func TestRunLimiter_ConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewRunLimiter(maxConcurrent, time.Second)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		maxObserved int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := limiter.Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			if n := limiter.Active(); n > maxObserved {
				maxObserved = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxObserved, maxConcurrent)
	assert.Equal(t, 0, limiter.Active())
}

func TestRunLimiter_Wait(t *testing.T) {
	limiter := NewRunLimiter(2, time.Second)

	release, err := limiter.Acquire(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- limiter.Wait(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Wait returned while a run was active")
	case <-time.After(30 * time.Millisecond):
	}

	release()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Error("Wait did not return after release")
	}
}

func TestRunLimiter_WaitTimeout(t *testing.T) {
	limiter := NewRunLimiter(1, time.Second)
	release, _ := limiter.Acquire(context.Background())
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, limiter.Wait(ctx), context.DeadlineExceeded)
}
