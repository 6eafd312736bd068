package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestQueueRunsJobs(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	done := make(chan struct{}, 3)

	q := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		seen[job.ID] = true
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2, Logger: zaptest.NewLogger(t)})
	q.Start(context.Background())
	defer q.Stop()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job{ID: id}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("jobs did not finish")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 3)
}

func TestQueueRetriesUntilLimit(t *testing.T) {
	var calls atomic.Int32
	attempts := make(chan int, 10)

	q := NewQueue("test", func(_ context.Context, job Job) error {
		calls.Add(1)
		attempts <- job.Attempt
		return errors.New("boom")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond, Logger: zaptest.NewLogger(t)})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "x"}))

	var got []int
	for len(got) < 3 {
		select {
		case a := <-attempts:
			got = append(got, a)
		case <-time.After(2 * time.Second):
			t.Fatalf("only saw attempts %v", got)
		}
	}
	time.Sleep(20 * time.Millisecond)
	q.Stop()

	assert.Equal(t, []int{0, 1, 2}, got)
	assert.EqualValues(t, 3, calls.Load())
	assert.EqualValues(t, 0, q.Pending())
}

func TestQueueRecoversPanics(t *testing.T) {
	attempts := make(chan int, 4)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		attempts <- job.Attempt
		if job.Attempt == 0 {
			panic("renderer exploded")
		}
		return nil
	}, QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond, Logger: zaptest.NewLogger(t)})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "p"}))
	for want := 0; want < 2; want++ {
		select {
		case got := <-attempts:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("retry after panic not observed")
		}
	}
}

func TestQueueEnqueueRequiresStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.Enqueue(Job{ID: "a"}), ErrQueueClosed)

	q.Start(context.Background())
	q.Stop()
	q.Stop()
	assert.ErrorIs(t, q.Enqueue(Job{ID: "b"}), ErrQueueClosed)
}

func TestBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	assert.Equal(t, base, Backoff(base, 0))
	assert.Equal(t, base, Backoff(base, 1))
	assert.Equal(t, 200*time.Millisecond, Backoff(base, 2))
	assert.Equal(t, 400*time.Millisecond, Backoff(base, 3))
	assert.Equal(t, time.Minute, Backoff(base, 20))
}
