package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHistory_CapacityAndOrder(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(3)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, h.Record(ctx, ActivityEntry{
			FileName:  fmt.Sprintf("f%d.csv", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "f4.csv", all[0].FileName)
	assert.Equal(t, "f3.csv", all[1].FileName)
	assert.Equal(t, "f2.csv", all[2].FileName)

	two, err := h.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestMemoryHistory_DefaultCapacity(t *testing.T) {
	h := NewMemoryHistory(0)
	assert.Equal(t, 500, h.capacity)
}

func TestMemoryHistory_Purge(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(10)

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, age := range []time.Duration{48 * time.Hour, 25 * time.Hour, time.Hour, 0} {
		require.NoError(t, h.Record(ctx, ActivityEntry{CreatedAt: now.Add(-age)}))
	}

	purged, err := h.Purge(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	left, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}

func TestService_PurgeHistory(t *testing.T) {
	svc, history := newTestService(t)
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, history.Record(ctx, ActivityEntry{FileName: "old.csv", CreatedAt: now.AddDate(0, 0, -31)}))
	require.NoError(t, history.Record(ctx, ActivityEntry{FileName: "new.csv", CreatedAt: now.AddDate(0, 0, -1)}))

	svc.purgeHistory(ctx, 30*24*time.Hour)

	left, err := history.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "new.csv", left[0].FileName)
}

func TestService_RetentionSchedulerStopsOnCancel(t *testing.T) {
	svc, history := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, history.Record(ctx, ActivityEntry{CreatedAt: time.Now().Add(-time.Hour)}))

	done := make(chan struct{})
	go func() {
		svc.StartRetentionScheduler(ctx, RetentionConfig{
			Retention:     time.Minute,
			CheckInterval: time.Hour,
		})
		close(done)
	}()

	// The first purge runs before the ticker starts.
	require.Eventually(t, func() bool {
		left, _ := history.Recent(context.Background(), 10)
		return len(left) == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestService_RetentionSchedulerDisabled(t *testing.T) {
	svc, _ := newTestService(t)

	// Returns immediately instead of looping.
	svc.StartRetentionScheduler(context.Background(), RetentionConfig{})
}
